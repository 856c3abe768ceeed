package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/trogers1052/investment-tracker/internal/config"
	"github.com/trogers1052/investment-tracker/internal/dashboard"
	"github.com/trogers1052/investment-tracker/internal/database"
	"github.com/trogers1052/investment-tracker/internal/kafka"
	"github.com/trogers1052/investment-tracker/internal/metrics"
	"github.com/trogers1052/investment-tracker/internal/quotes"
	"github.com/trogers1052/investment-tracker/internal/store"
)

// app is the wired pipeline of one process
type app struct {
	dash    *dashboard.Dashboard
	metrics *metrics.Registry
	closers []func() error
	log     zerolog.Logger
}

func newApp(cfg *config.Config, log zerolog.Logger) (*app, error) {
	a := &app{metrics: metrics.New(), log: log}
	opts := dashboard.Options{
		Watchlist:          cfg.Quotes.Watchlist,
		MinRefreshInterval: cfg.Quotes.RefreshMinInterval,
		PublishTimeout:     cfg.Kafka.PublishTimeout,
		Currency:           cfg.Currency,
		Metrics:            a.metrics,
	}

	var backend store.Backend
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		db, err := database.New(cfg.Database.ConnectionString())
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		if err := db.Migrate(cfg.Database.MigrationsPath); err != nil {
			a.Close()
			return nil, err
		}
		backend = db
		opts.Recorder = db
		log.Info().Str("host", cfg.Database.Host).Str("database", cfg.Database.DBName).Msg("Using postgres store")
	default:
		fb := store.NewFileBackend(cfg.Store.Path)
		backend = fb
		log.Info().Str("path", fb.Path()).Msg("Using file store")
	}

	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		a.closers = append(a.closers, producer.Close)
		opts.Publisher = producer
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", producer.Topic()).Msg("Publishing position events")
	}

	source := quotes.NewYahooSource(cfg.Quotes.BaseURL, log)
	fetcher := quotes.NewFetcher(source, quotes.Options{
		Period:   cfg.Quotes.Period,
		Interval: cfg.Quotes.Interval,
		Timeout:  cfg.Quotes.Timeout,
		Metrics:  a.metrics,
	}, log)

	a.dash = dashboard.New(store.New(backend), fetcher, opts, log)
	return a, nil
}

// Close releases connections in reverse order of creation
func (a *app) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn().Err(err).Msg("Failed to close resource")
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to close resource: %w", err)
			}
		}
	}
	a.closers = nil
	return firstErr
}
