package rag

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strings"
	"syscall"
	"time"

	"ai-docchat-be/internal/constant"
	"ai-docchat-be/pkg/llm"
)

// GeneratorConfig encapsulates generation parameters. The low temperature
// keeps answers anchored to the retrieved context.
type GeneratorConfig struct {
	Temperature float64
	TopP        float64
	MaxTokens   int
	Timeout     time.Duration
}

func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Temperature: 0.1,
		TopP:        0.9,
		MaxTokens:   1000,
		Timeout:     120 * time.Second,
	}
}

// Generator turns a query and assembled context into the final answer.
type Generator struct {
	provider llm.LLMProvider
	cfg      GeneratorConfig
	logger   *log.Logger
}

func NewGenerator(provider llm.LLMProvider, cfg GeneratorConfig, logger *log.Logger) *Generator {
	def := DefaultGeneratorConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	return &Generator{
		provider: provider,
		cfg:      cfg,
		logger:   logger,
	}
}

// Generate produces the response for query given the assembled context. It
// always returns displayable text: backend failures map to the user-facing
// fallback strings rather than errors, and no stack trace ever crosses this
// boundary.
func (g *Generator) Generate(ctx context.Context, query, contextText string) string {
	var prompt string
	if strings.TrimSpace(contextText) != "" {
		prompt = fmt.Sprintf(constant.RAGPromptWithContext, contextText, query)
	} else {
		prompt = fmt.Sprintf(constant.RAGPromptNoContext, query)
	}

	genCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	response, err := g.provider.Generate(genCtx, prompt,
		llm.WithTemperature(g.cfg.Temperature),
		llm.WithTopP(g.cfg.TopP),
		llm.WithMaxTokens(g.cfg.MaxTokens),
	)
	if err != nil {
		return g.fallback(err)
	}

	g.logger.Printf("[PHASE] Response generated: %d characters", len(response))
	return response
}

func (g *Generator) fallback(err error) string {
	switch {
	case isTimeout(err):
		g.logger.Printf("[ERROR] LLM request timed out: %v", err)
		return constant.LLMTimeoutResponse
	case isUnreachable(err):
		g.logger.Printf("[ERROR] LLM server unreachable: %v", err)
		return constant.LLMUnreachableResponse
	default:
		g.logger.Printf("[ERROR] LLM generation failed: %v", err)
		return fmt.Sprintf("Error generating response: %v", err)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isUnreachable(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
