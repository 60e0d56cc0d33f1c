package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/holdfast/yieldscore/internal/config"
	"github.com/holdfast/yieldscore/internal/events"
	"github.com/holdfast/yieldscore/internal/gates"
	"github.com/holdfast/yieldscore/internal/learner"
	"github.com/holdfast/yieldscore/internal/metrics"
	"github.com/holdfast/yieldscore/internal/persistence"
	"github.com/holdfast/yieldscore/internal/persistence/postgres"
	"github.com/holdfast/yieldscore/internal/providers"
	"github.com/holdfast/yieldscore/internal/scoring"
	"github.com/holdfast/yieldscore/internal/sim"
	"github.com/holdfast/yieldscore/internal/simcache"
	"github.com/holdfast/yieldscore/internal/weights"
)

// app holds the wired components for one CLI invocation.
type app struct {
	cfg        *config.Config
	pipeline   *scoring.Pipeline
	learner    *learner.Learner
	accessor   *weights.Accessor
	weights    persistence.WeightsRepo
	db         *sqlx.DB
	metricsSrv *http.Server
}

func (a *app) close() {
	if a.metricsSrv != nil {
		_ = a.metricsSrv.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

// buildApp assembles the pipeline. With a database DSN it runs against
// postgres; otherwise everything is in-process, backed by the fixture file.
func buildApp(cmd *cobra.Command) (*app, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	if cfg.Fixtures == "" {
		return nil, fmt.Errorf("no fixture file configured; set fixtures in config or YIELDSCORE_FIXTURES")
	}
	fixtures, err := providers.LoadStaticProvider(cfg.Fixtures)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}
	var (
		scores     persistence.ScoreRepo
		shadow     persistence.ShadowRepo
		weightRepo persistence.WeightsRepo
	)

	if cfg.Database.DSN != "" {
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		db, err := postgres.Connect(ctx, cfg.Database.DSN, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
		if err != nil {
			return nil, err
		}
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		a.db = db
		scores = postgres.NewScoresRepo(db, cfg.Database.QueryTimeout.Std())
		shadow = postgres.NewShadowRepo(db, cfg.Database.QueryTimeout.Std())
		pgWeights := postgres.NewWeightsRepo(db, cfg.Database.QueryTimeout.Std())
		if err := seedWeights(ctx, pgWeights, cfg); err != nil {
			db.Close()
			return nil, err
		}
		weightRepo = pgWeights
	} else {
		scores = persistence.NewMemoryScoreRepo()
		shadow = persistence.NewMemoryShadowRepo()
		seed, err := seedSnapshot(cmd.Context(), cfg)
		if err != nil {
			return nil, err
		}
		weightRepo = persistence.NewMemoryWeightsRepo(*seed)
	}

	a.weights = weightRepo
	a.accessor = weights.NewAccessor(weightRepo, log.Logger)
	a.learner = learner.New(shadow, weightRepo, log.Logger)

	promReg := prometheus.NewRegistry()
	reg := metrics.NewRegistry(promReg)
	if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(promReg))
		a.metricsSrv = &http.Server{Addr: addr, Handler: mux}
		go func() {
			if err := a.metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Str("addr", addr).Msg("metrics listener failed")
			}
		}()
		log.Info().Str("addr", addr).Msg("serving prometheus metrics")
	}

	bus := events.NewBus(log.Logger)

	a.pipeline, err = scoring.NewPipeline(scoring.Deps{
		Weights:   a.accessor,
		Gates:     gates.NewRouter(),
		Engine:    sim.NewEngine(),
		Cache:     simcache.NewAuto(cfg.Cache.RedisAddr, cfg.Cache.SimTTL.Std()),
		Features:  fixtures,
		Classes:   fixtures,
		Sentiment: fixtures,
		Scores:    scores,
		Shadow:    shadow,
		Bus:       bus,
		Metrics:   reg,
		Log:       log.Logger,
	})
	if err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

// seedSnapshot picks the initial weight snapshot: the configured weights
// file when present, the builtin defaults otherwise.
func seedSnapshot(ctx context.Context, cfg *config.Config) (*weights.Snapshot, error) {
	if cfg.Weights.File == "" {
		return weights.DefaultSnapshot(), nil
	}
	fs := weights.NewFileStore(cfg.Weights.File)
	version, err := fs.CurrentVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("weights file %s: %w", cfg.Weights.File, err)
	}
	return fs.Load(ctx, version)
}

// seedWeights publishes the initial version into an empty database.
func seedWeights(ctx context.Context, repo persistence.WeightsRepo, cfg *config.Config) error {
	if _, err := repo.CurrentVersion(ctx); err == nil {
		return nil
	}
	snap, err := seedSnapshot(ctx, cfg)
	if err != nil {
		return err
	}
	log.Info().Str("version", snap.Version).Msg("seeding initial weight version")
	return repo.InsertVersion(ctx, *snap)
}
