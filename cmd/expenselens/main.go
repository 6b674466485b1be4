package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"expenselens/internal/api"
	"expenselens/internal/api/handlers"
	"expenselens/internal/parser"
	"expenselens/internal/repository"
	"expenselens/internal/service"
	"expenselens/pkg/config"
	"expenselens/pkg/logger"
	"expenselens/pkg/postgres"

	"go.uber.org/zap"
)

// @title ExpenseLens API
// @version 1.0
// @description Expense statement analysis and grounded Q&A service

// @host localhost:8000
// @BasePath /

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting ExpenseLens service")

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.EnsureSchema(ctx, db, cfg.RAG.EmbeddingDim); err != nil {
		appLogger.Fatal("Failed to ensure database schema", zap.Error(err))
	}

	chunkRepo := repository.NewChunkRepository(db, appLogger)

	llmService, err := service.NewLLMService(&cfg.GigaChat, &cfg.RAG, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize LLM service", zap.Error(err))
	}
	defer llmService.Close()

	pdfService := service.NewPDFService(appLogger)
	extractor := parser.NewPaytmExtractor(appLogger)
	statementService := service.NewStatementService(pdfService, extractor, appLogger)

	retrievalService := service.NewRetrievalService(chunkRepo, llmService, appLogger)
	memoryService := service.NewMemoryService(llmService, appLogger)
	summaryService := service.NewSummaryService(llmService, retrievalService, appLogger)
	chatService := service.NewChatService(llmService, retrievalService, memoryService, cfg.RAG.TopK, appLogger)

	statementHandler := handlers.NewStatementHandler(statementService, appLogger)
	chatHandler := handlers.NewChatHandler(summaryService, chatService, appLogger)

	app := api.SetupRouter(statementHandler, chatHandler)

	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
