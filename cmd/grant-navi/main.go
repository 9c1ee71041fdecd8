package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"grant-navi/internal/api"
	"grant-navi/internal/api/handlers"
	"grant-navi/internal/repository"
	"grant-navi/internal/service"
	"grant-navi/pkg/config"
	"grant-navi/pkg/logger"
	"grant-navi/pkg/postgres"

	"go.uber.org/zap"
)

// @title Grant Navi API
// @version 1.0
// @description 補助金・助成金マッチングサービス API

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
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
	appLogger.Info("Starting Grant Navi service")

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Repositories
	grantRepo := repository.NewGrantRepository(db, appLogger)
	sessionRepo := repository.NewSessionRepository(db, appLogger)
	categoryRepo := repository.NewCategoryRepository(db, appLogger)

	// The purpose-to-keyword mapping is built once from the category master.
	categories, err := categoryRepo.ListAll(ctx)
	if err != nil {
		appLogger.Fatal("Failed to load category master", zap.Error(err))
	}
	categoryIndex := service.NewCategoryIndex(categories)
	appLogger.Info("Category master loaded", zap.Int("categories", len(categories)))

	// Services
	llmService, err := service.NewLLMService(&cfg.GigaChat, &cfg.Matching, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize LLM service", zap.Error(err))
	}
	defer llmService.Close()

	profileService := service.NewProfileService(sessionRepo, llmService, appLogger)
	matchingService := service.NewMatchingService(
		grantRepo, profileService, llmService, categoryIndex, cfg.Matching, appLogger,
	)

	// Handlers
	sessionHandler := handlers.NewSessionHandler(sessionRepo, appLogger)
	matchingHandler := handlers.NewMatchingHandler(matchingService, appLogger)

	app := api.SetupRouter(sessionHandler, matchingHandler)

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
