// Package service implements the chat stream orchestration: session
// resolution, history management, chain streaming, and post-processing,
// all inside a single savepoint-managed transaction per request.
package service

import (
	"github.com/tradenavi/orchestrator/internal/adapter/chain"
	"github.com/tradenavi/orchestrator/internal/adapter/llm"
	"github.com/tradenavi/orchestrator/internal/config"
	"github.com/tradenavi/orchestrator/internal/jobs"
	"github.com/tradenavi/orchestrator/internal/observability"
	"github.com/tradenavi/orchestrator/internal/policy"
	store "github.com/tradenavi/orchestrator/internal/repository"
)

type Service struct {
	store        *store.SQLiteStore
	chainClient  chain.Streamer
	llmClient    llm.CompletionClient
	scheduler    *jobs.Scheduler
	policyEngine *policy.Engine
	metrics      *observability.Metrics
	config       *config.Config
}

func New(st *store.SQLiteStore, chainClient chain.Streamer, llmClient llm.CompletionClient, scheduler *jobs.Scheduler, policyEngine *policy.Engine, metrics *observability.Metrics, cfg *config.Config) *Service {
	return &Service{
		store:        st,
		chainClient:  chainClient,
		llmClient:    llmClient,
		scheduler:    scheduler,
		policyEngine: policyEngine,
		metrics:      metrics,
		config:       cfg,
	}
}
