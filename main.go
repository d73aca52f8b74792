package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tradenavi/orchestrator/internal/adapter/chain"
	"github.com/tradenavi/orchestrator/internal/adapter/llm"
	"github.com/tradenavi/orchestrator/internal/config"
	"github.com/tradenavi/orchestrator/internal/jobs"
	"github.com/tradenavi/orchestrator/internal/observability"
	"github.com/tradenavi/orchestrator/internal/policy"
	store "github.com/tradenavi/orchestrator/internal/repository"
	"github.com/tradenavi/orchestrator/internal/service"
	transport "github.com/tradenavi/orchestrator/internal/transport/http"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log.Printf("Starting orchestrator...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Database: %s", cfg.DatabaseURL)
	log.Printf("Chain URL: %s", cfg.ChainURL)
	log.Printf("LLM URL: %s", cfg.LLMURL)

	// Initialize store
	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer db.Close()

	// Initialize chain driver client
	chainClient := chain.NewClient(cfg.ChainURL, cfg.ChainTimeout)

	// Initialize LLM client (title generation)
	llmClient := llm.NewClient(cfg.LLMURL, cfg.LLMAPIKey, cfg.LLMTimeout)

	// Initialize policy engine
	ctx := context.Background()
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	// Initialize metrics and background scheduler
	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	scheduler := jobs.NewScheduler(cfg.JobQueueSize, metrics)

	// Initialize service
	svc := service.New(db, chainClient, llmClient, scheduler, policyEngine, metrics, cfg)

	// Create HTTP server
	server := transport.NewServer(svc)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("API started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down orchestrator...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}
	if err := scheduler.Stop(shutdownCtx); err != nil {
		log.Printf("Failed to drain background jobs: %v", err)
	}

	log.Println("Orchestrator stopped")
}
