package api

import (
	"github.com/minsuklee/fundscope/internal/analysis"
	"github.com/minsuklee/fundscope/internal/config"
	"github.com/minsuklee/fundscope/internal/extraction"
	"github.com/minsuklee/fundscope/internal/infrastructure"
	"github.com/minsuklee/fundscope/internal/oracle"
	"github.com/minsuklee/fundscope/pkg/pagination"
)

// Runtime extends Infrastructure with the analysis pipeline and
// API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pipeline   *analysis.Pipeline
	Pagination pagination.Config
}

// NewRuntime creates an API runtime with a module-scoped logger and a
// fully wired pipeline: extractor, oracle client, and rubric.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	logger := infra.Logger.With("module", "api")

	client := oracle.NewClient(cfg.Agent, oracle.Options{
		Attempts: cfg.Oracle.Attempts,
		Timeout:  cfg.Oracle.TimeoutDuration(),
		Backoff:  cfg.Oracle.BackoffDuration(),
	}, logger)

	pipeline := analysis.New(
		extraction.New(logger),
		client,
		cfg.Rubric.Rubric,
		cfg.Oracle.Concurrency,
		logger,
	)

	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    logger,
			Database:  infra.Database,
		},
		Pipeline:   pipeline,
		Pagination: cfg.API.Pagination,
	}
}
