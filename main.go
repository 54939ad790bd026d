package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"gundash/internal"
	"gundash/internal/config"
	"gundash/internal/container"
	"gundash/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.LogLevel)).With("main")
	gin.SetMode(appConfig.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	if err := appContainer.Init(ctx); err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	// Warm the dataset so a bad path shows up at startup rather than on first request
	if t, err := appContainer.Dataset.Get(ctx); err != nil {
		logger.Warn("Dataset not loaded yet: %v", err)
	} else {
		logger.Info("Dataset %s: %d rows, %d columns", appConfig.Data.Path, t.Len(), len(t.Fields()))
	}

	server, err := ui.NewServer(appContainer)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	addr := net.JoinHostPort("", appConfig.Server.Port)
	if err := server.Start(ctx, addr, appConfig.Server.ShutdownTimeout); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server failed: %v", err)
	}
	logger.Info("Server stopped")
}
