// Command server is the entry point for the Dev Forum API.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/huzidev/dev-forum-api/internal/config"
	"github.com/huzidev/dev-forum-api/internal/middleware"
	"github.com/huzidev/dev-forum-api/internal/observability"
	"github.com/huzidev/dev-forum-api/internal/server"
)

// @title Dev Forum API
// @version 1.0
// @description Developer community backend with posts, polls, Q&A, friends, plans and points.

// @contact.name API Support
// @contact.email support@devforum.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8375
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the identity provider session token.

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "dev-forum-api",
		ServiceVersion: cfg.ServiceVersion,
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSamplerRatio,
	})
	if err != nil {
		middleware.Logger.Warn("tracing disabled", "error", err)
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		middleware.Logger.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			middleware.Logger.Error("server shutdown error", "error", err)
		}
		if shutdownTracing != nil {
			if err := shutdownTracing(ctx); err != nil {
				middleware.Logger.Error("tracing shutdown error", "error", err)
			}
		}
	}()

	if err := srv.Start(); err != nil {
		log.Fatal(err)
	}
}
