// cmd/backend/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/inkforge/storyassist/internal/app"
	"github.com/inkforge/storyassist/internal/backend"
	"github.com/inkforge/storyassist/internal/config"
	"github.com/inkforge/storyassist/internal/llm"
	_ "github.com/inkforge/storyassist/internal/llm/providers/openai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := app.NewLogger(cfg.DebugMode)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	provider, err := llm.GetProvider(cfg.LLMProvider, cfg.LLMConfig())
	if err != nil {
		logger.Fatal("failed to initialize provider",
			zap.String("provider", cfg.LLMProvider),
			zap.Strings("available", llm.ListProviders()),
			zap.Error(err))
	}

	handler := backend.NewHandler(provider, cfg.AIModel, cfg.AIMaxContextTokens, logger)

	if !cfg.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := backend.SetupRouter(handler)

	srv := &http.Server{
		Addr:    ":" + cfg.BackendPort,
		Handler: router,
	}

	go func() {
		logger.Info("generation backend listening",
			zap.String("port", cfg.BackendPort),
			zap.String("provider", provider.GetName()),
			zap.String("model", cfg.AIModel))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("forced shutdown", zap.Error(err))
	}
	logger.Info("backend stopped")
}
