package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"golists/internal/config"
	"golists/internal/db"
	"golists/internal/email"
	"golists/internal/filter"
	"golists/internal/jobs"
	"golists/internal/logger"
	"golists/internal/metrics"
	"golists/internal/models"
	"golists/internal/pipeline"
	"golists/internal/server"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env, cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
	log.Info().Msg("server exited")
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.SessionSecret == "" && !cfg.IsDev() {
		return errors.New("SESSION_SECRET is required outside development")
	}

	modCfg, err := config.LoadModerationConfig(cfg.ModerationConfigFile)
	if err != nil {
		return fmt.Errorf("failed to load moderation config %s: %w", cfg.ModerationConfigFile, err)
	}

	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info().Msg("migrations completed successfully")

	if err := seedSettings(ctx, database, modCfg, log); err != nil {
		return err
	}
	if cfg.IsDev() {
		if err := database.SeedDevData(ctx, nil); err != nil {
			log.Warn().Err(err).Msg("failed to seed development data")
		}
	}

	words := filter.NewCache(database, cfg.BadWordsRefresh, log)
	recorder := metrics.Register(prometheus.DefaultRegisterer, database, log)

	p := pipeline.New(pipeline.Deps{
		Store:    database,
		Catalog:  database.Catalog(),
		Words:    words,
		Settings: database,
		Notifier: email.NewNotifier(cfg, database, log),
		Observer: recorder,
		Logger:   log,
	}, pipeline.Config{
		MaxCommentLength:    cfg.MaxCommentLength,
		MaxSuggestionLength: cfg.MaxSuggestionLength,
		Penalties: map[string]int{
			models.PenaltyDelete: modCfg.PenaltyScore(models.PenaltyDelete),
			models.PenaltyEdit:   modCfg.PenaltyScore(models.PenaltyEdit),
			models.PenaltyReport: modCfg.PenaltyScore(models.PenaltyReport),
		},
	})

	srv := server.New(cfg, log)
	srv.RegisterRoutes(server.Deps{
		Pipeline: p,
		Store:    database,
		Words:    words,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(srv.Start)
	g.Go(func() error {
		jobs.NewBadWordRefresher(words, cfg.BadWordsRefresh, log).Start(gctx)
		return nil
	})
	if cfg.ReconcileInterval > 0 {
		g.Go(func() error {
			jobs.NewReconciler(database, cfg.ReconcileInterval, log).Start(gctx)
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server")
		return srv.Shutdown()
	})

	return g.Wait()
}

// seedSettings applies the rate limits and bad words from the moderation
// file. Bad words are only added; removing one is an admin action.
func seedSettings(ctx context.Context, database *db.DB, modCfg *config.ModerationConfig, log zerolog.Logger) error {
	if limits, ok := modCfg.SeedRateLimits(); ok {
		if err := database.SetRateLimits(ctx, limits); err != nil {
			return fmt.Errorf("failed to apply rate limits: %w", err)
		}
		log.Info().Int("per_target_minutes", limits.PerTargetMinutes).Msg("rate limits applied from config")
	}

	added := 0
	for _, word := range modCfg.BadWords {
		if err := database.AddBadWord(ctx, word); err != nil {
			if errors.Is(err, models.ErrInvalidBadWord) {
				continue
			}
			return fmt.Errorf("failed to seed bad word: %w", err)
		}
		added++
	}
	if added > 0 {
		log.Info().Int("count", added).Msg("bad words seeded from config")
	}
	return nil
}
