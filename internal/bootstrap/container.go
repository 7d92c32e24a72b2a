package bootstrap

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"ai-docchat-be/internal/config"
	"ai-docchat-be/internal/mapper"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/internal/repository/memory"
	"ai-docchat-be/internal/service"
	"ai-docchat-be/pkg/embedding"
	"ai-docchat-be/pkg/extract"
	"ai-docchat-be/pkg/llm/factory"
	"ai-docchat-be/pkg/rag"
	ragEvents "ai-docchat-be/pkg/rag/events"
	"ai-docchat-be/pkg/textproc"
	"ai-docchat-be/pkg/vectorstore"
	"ai-docchat-be/pkg/vectorstore/chromem"
	"ai-docchat-be/pkg/vectorstore/pgstore"

	pktNats "ai-docchat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Services
	WorkflowService service.IRagWorkflowService
	SessionService  service.ISessionService
	DocumentService service.IDocumentService

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	pipelineLogger := initPipelineLogger()

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	// Initialize Embedding Provider based on Config
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else if cfg.Ai.EmbeddingProvider == "jina" {
		embeddingProvider = embedding.NewJinaProvider(cfg.Ai.JinaAPIKey)
		log.Printf("[INFO] Using Embedding Provider: JINA AI")
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GeminiAPIKey)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	// Redis-backed embedding cache, optional
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v. Embedding cache disabled", err)
		} else {
			embeddingProvider = embedding.NewCachedProvider(embeddingProvider, rdb, cfg.Rag.EmbedCacheTTL)
			log.Printf("[INFO] Embedding cache enabled (TTL %s)", cfg.Rag.EmbedCacheTTL)
		}
	}

	batchEmbedder := embedding.NewBatchEmbedder(embeddingProvider, embedding.BatchEmbedderConfig{
		BatchSize: cfg.Rag.EmbedBatchSize,
		Workers:   cfg.Rag.EmbedWorkers,
	})

	// Initialize LLM Provider based on Config
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.LLMBaseURL,
		cfg.Ai.HuggingFaceKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Vector Store
	var vectorStore vectorstore.Store
	switch cfg.Vector.Driver {
	case "postgres":
		if db == nil {
			log.Fatalf("[FATAL] Vector driver postgres requires a database connection")
		}
		vectorStore = pgstore.NewStore(db)
		log.Printf("[INFO] Using Vector Store: POSTGRES (pgvector)")
	default:
		if cfg.Vector.ChromemPath != "" {
			persistent, err := chromem.NewPersistent(cfg.Vector.ChromemPath)
			if err != nil {
				log.Fatalf("[FATAL] Failed to open vector store at %s: %v", cfg.Vector.ChromemPath, err)
			}
			vectorStore = persistent
			log.Printf("[INFO] Using Vector Store: CHROMEM (%s)", cfg.Vector.ChromemPath)
		} else {
			vectorStore = chromem.NewInMemory()
			log.Printf("[INFO] Using Vector Store: CHROMEM (in-memory)")
		}
	}

	// 5. RAG Pipeline
	registry := extract.NewRegistry()
	normalizer := textproc.NewNormalizer(textproc.NormalizerConfig{
		RemoveStopwords: cfg.Rag.RemoveStopwords,
	})
	chunker := textproc.NewChunker(textproc.ChunkerConfig{
		MaxSize: cfg.Rag.ChunkMaxSize,
		Overlap: cfg.Rag.ChunkOverlap,
		MinSize: cfg.Rag.ChunkMinSize,
	})

	genCfg := rag.DefaultGeneratorConfig()
	genCfg.Timeout = cfg.Rag.GenerateTimeout

	ingestor := rag.NewIngestor(registry, normalizer, chunker, batchEmbedder, vectorStore, pipelineLogger)
	retriever := rag.NewRetriever(vectorStore, rag.RetrieverConfig{
		TopK:          cfg.Rag.TopK,
		MinSimilarity: float32(cfg.Rag.MinSimilarity),
		ContextDocs:   cfg.Rag.ContextDocs,
	}, pipelineLogger)
	generator := rag.NewGenerator(llmProvider, genCfg, pipelineLogger)

	runLogs := rag.NewRunLogFactory(cfg.App.RunLogDir)
	workflow := rag.NewWorkflow(ingestor, normalizer, batchEmbedder, retriever, generator, runLogs, pipelineLogger)

	// 6. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	eventPublisher := ragEvents.NewNatsPublisher(natsPub, sysLogger)

	// Initialize In-Memory Session Storage
	sessionRepo := memory.NewSessionRepository()
	workflowMapper := mapper.NewWorkflowMapper()

	// 7. Services
	publisherService := service.NewPublisherService(pubSub, cfg.App.IngestTopic)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.IngestTopic,
		ingestor,
		sessionRepo,
		runLogs,
		eventPublisher,
	)

	sessionService := service.NewSessionService(sessionRepo, vectorStore, eventPublisher, workflowMapper)
	workflowService := service.NewRagWorkflowService(
		workflow,
		sessionService,
		eventPublisher,
		workflowMapper,
	)
	documentService := service.NewDocumentService(publisherService)

	return &Container{
		WorkflowService: workflowService,
		SessionService:  sessionService,
		DocumentService: documentService,

		ConsumerService: consumerService,
	}
}

// initPipelineLogger opens the dedicated pipeline log. Phase and state lines
// are chatty, so they get their own file instead of the main zap stream.
func initPipelineLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "rag_pipeline.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[RAG] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}
