package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"ai-docchat-be/internal/bootstrap"
	"ai-docchat-be/internal/config"
	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/tracer"
	"ai-docchat-be/pkg/database"

	"github.com/fatih/color"
	"gorm.io/gorm"
)

func main() {
	query := flag.String("query", "", "question to ask; empty starts the interactive prompt")
	session := flag.String("session", "", "session id to continue; empty starts a fresh one")
	docsFlag := flag.String("docs", "", "comma-separated document paths to ingest with the query")
	flag.Parse()

	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer("ai-docchat-backend")
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database (only the postgres vector driver needs it)
	var gormDB *gorm.DB
	if cfg.Vector.Driver == "postgres" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
		gormDB = db
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	ctx := context.Background()
	if *query != "" {
		runOnce(ctx, container, *session, *query, *docsFlag)
		return
	}
	runInteractive(ctx, container, *session)
}

func runOnce(ctx context.Context, c *bootstrap.Container, sessionID, query, docsFlag string) {
	docs, err := loadDocuments(docsFlag)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}

	res, err := c.WorkflowService.RunWorkflow(ctx, &dto.WorkflowRequest{
		Query:     query,
		Documents: docs,
		SessionId: sessionID,
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	printResult(res)
}

func runInteractive(ctx context.Context, c *bootstrap.Container, sessionID string) {
	color.Cyan("=== Document Chat ===")

	created, err := c.SessionService.Create(ctx, &dto.CreateSessionRequest{SessionId: sessionID})
	if err != nil {
		color.Red("Failed to create session: %v", err)
		os.Exit(1)
	}
	sessionID = created.SessionId
	fmt.Printf("Session: %s\n", sessionID)
	fmt.Println(`Type a question, or \upload <file>, \history, \info, \delete, \quit`)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case line == `\quit` || line == `\q`:
			return

		case strings.HasPrefix(line, `\upload `):
			uploadDocument(ctx, c, sessionID, strings.TrimSpace(strings.TrimPrefix(line, `\upload `)))

		case line == `\history`:
			showHistory(ctx, c, sessionID)

		case line == `\info`:
			showSession(ctx, c, sessionID)

		case line == `\delete`:
			if err := c.SessionService.Delete(ctx, sessionID); err != nil {
				color.Red("Failed: %v", err)
				continue
			}
			color.Green("Session %s deleted", sessionID)
			return

		default:
			res, err := c.WorkflowService.RunWorkflow(ctx, &dto.WorkflowRequest{
				Query:     line,
				SessionId: sessionID,
			})
			if err != nil {
				color.Red("Failed: %v", err)
				continue
			}
			printResult(res)
		}
	}
}

func uploadDocument(ctx context.Context, c *bootstrap.Container, sessionID, path string) {
	content, err := os.ReadFile(path)
	if err != nil {
		color.Red("Failed: %v", err)
		return
	}

	err = c.DocumentService.Upload(ctx, &dto.IngestDocumentMessage{
		SessionId: sessionID,
		Filename:  filepath.Base(path),
		Content:   content,
	})
	if err != nil {
		color.Red("Failed: %v", err)
		return
	}
	color.Green("Queued %s for ingestion", filepath.Base(path))
}

func showHistory(ctx context.Context, c *bootstrap.Container, sessionID string) {
	history, err := c.SessionService.History(ctx, sessionID)
	if err != nil {
		color.Red("Failed: %v", err)
		return
	}
	if len(history) == 0 {
		fmt.Println("No exchanges yet.")
		return
	}
	for _, ex := range history {
		color.Yellow("[%s] %s", ex.AskedAt.Format("15:04:05"), ex.Query)
		fmt.Printf("  %s\n", ex.Response)
	}
}

func showSession(ctx context.Context, c *bootstrap.Container, sessionID string) {
	info, err := c.SessionService.Show(ctx, sessionID)
	if err != nil {
		color.Red("Failed: %v", err)
		return
	}
	if info == nil {
		color.Red("Session %s not found", sessionID)
		return
	}
	fmt.Printf("Session:   %s\nCreated:   %s\nDocuments: %d\nChunks:    %d\nExchanges: %d\n",
		info.SessionId, info.CreatedAt.Format("2006-01-02 15:04:05"), info.DocumentCount, info.ChunkCount, info.Exchanges)
}

func printResult(res *dto.WorkflowResponse) {
	color.Green("Status: %s (session %s)", res.Status, res.SessionId)
	fmt.Printf("\n%s\n\n", res.Response)

	if len(res.Citations) > 0 {
		color.Yellow("Citations:")
		for _, cit := range res.Citations {
			fmt.Printf("  - %s\n", cit)
		}
	}
	for _, e := range res.Errors {
		color.Red("Error: %s", e)
	}
}

func loadDocuments(docsFlag string) ([]dto.DocumentUploadDTO, error) {
	if docsFlag == "" {
		return nil, nil
	}

	var docs []dto.DocumentUploadDTO
	for _, path := range strings.Split(docsFlag, ",") {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		docs = append(docs, dto.DocumentUploadDTO{
			Filename: filepath.Base(path),
			Content:  content,
		})
	}
	return docs, nil
}
