package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/readcheck/internal/config"
	"github.com/abhisek/readcheck/internal/evaluator"
	"github.com/abhisek/readcheck/internal/grading"
	"github.com/abhisek/readcheck/internal/judgment"
	"github.com/abhisek/readcheck/internal/llm"
	"github.com/abhisek/readcheck/internal/logger"
	"github.com/abhisek/readcheck/internal/metrics"
	"github.com/abhisek/readcheck/internal/scoring"
	"github.com/abhisek/readcheck/internal/store"
)

// env is what every subcommand needs: configuration, a logger and an open
// store.
type env struct {
	cfg   *config.Config
	log   *zap.Logger
	store *store.Store
}

// setup loads configuration, applies the persistent flag overrides and
// opens the store.
func setup(cmd *cobra.Command) (*env, error) {
	file, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(file)
	if err != nil {
		return nil, err
	}
	if d, _ := cmd.Flags().GetString("driver"); d != "" {
		cfg.DB.Driver = d
	}
	if dsn, _ := cmd.Flags().GetString("db"); dsn != "" {
		cfg.DB.DSN = dsn
	}
	if cfg.DB.DSN == "" && cfg.DB.Driver == store.DriverSQLite {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
		cfg.DB.DSN = p
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cmd.Context(), cfg.DB.StoreOptions())
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &env{cfg: cfg, log: log, store: st}, nil
}

func (e *env) Close() {
	_ = e.store.Close()
	_ = e.log.Sync()
}

// gradingService wires the judgment provider, evaluator, scoring engine and
// recorder. A provider that cannot be built leaves open answers to degrade
// to the technical-error verdict.
func (e *env) gradingService(ctx context.Context, m *metrics.Metrics) *grading.Service {
	var provider llm.Provider
	if err := e.cfg.LLM.Validate(); err != nil {
		e.log.Warn("judgment provider not configured, open answers cannot be graded", zap.Error(err))
	} else if p, err := llm.NewProvider(ctx, e.cfg.LLM, e.store.EventRepo(), e.log); err != nil {
		e.log.Warn("judgment provider unavailable", zap.Error(err))
	} else {
		provider = p
	}

	jcfg := judgment.DefaultConfig()
	if e.cfg.LLM.Timeout > 0 {
		jcfg.Timeout = e.cfg.LLM.Timeout
	}
	eval := evaluator.New(judgment.NewClient(provider, jcfg),
		evaluator.WithLogger(e.log),
		evaluator.WithObserver(m),
	)
	engine := scoring.New(eval, scoring.WithOpenConcurrency(e.cfg.Grading.OpenConcurrency))

	return grading.NewService(e.store.PassageRepo(), e.store.AttemptRepo(), engine,
		grading.WithLogger(e.log),
		grading.WithObserver(m),
	)
}
