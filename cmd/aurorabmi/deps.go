package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/aurora-bmi/aurorabmi/internal/bmi"
	"github.com/aurora-bmi/aurorabmi/internal/config"
	"github.com/aurora-bmi/aurorabmi/internal/ingest"
	"github.com/aurora-bmi/aurorabmi/internal/persistence"
	"github.com/aurora-bmi/aurorabmi/internal/persistence/localstore"
	"github.com/aurora-bmi/aurorabmi/internal/persistence/postgres"
	"github.com/aurora-bmi/aurorabmi/internal/pubsub"
)

// pipelineDeps bundles everything `run` and `backfill` need to score and
// persist one trading day. It is built once per process invocation and
// torn down on exit.
type pipelineDeps struct {
	aggregator *ingest.Aggregator
	primary    persistence.HistoryStore
	fallback   persistence.HistoryStore
	publisher  *pubsub.Publisher
}

func buildPipelineDeps(ctx context.Context, cfg *config.Config) (*pipelineDeps, error) {
	aggregator, err := buildAggregator(cfg)
	if err != nil {
		return nil, err
	}

	pgCfg := postgres.DefaultConfig(cfg.Postgres.DSN)
	if cfg.Postgres.MaxOpenConns > 0 {
		pgCfg.MaxOpenConns = cfg.Postgres.MaxOpenConns
	}
	if cfg.Postgres.ConnMaxLifetime > 0 {
		pgCfg.ConnMaxLifetime = time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second
	}

	var primary persistence.HistoryStore
	if pgStore, err := postgres.Open(ctx, pgCfg); err != nil {
		log.Warn().Err(err).Msg("postgres history store unavailable, falling back to local snapshot store only")
	} else {
		primary = pgStore
	}

	fallback, err := localstore.Open(cfg.Storage.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("open local snapshot store: %w", err)
	}

	var publisher *pubsub.Publisher
	if p, err := pubsub.Dial(ctx, cfg.Redis.PubSubAddr); err != nil {
		log.Warn().Err(err).Msg("pubsub broker unavailable, live updates disabled for this run")
	} else {
		publisher = p
	}

	return &pipelineDeps{
		aggregator: aggregator,
		primary:    primary,
		fallback:   fallback,
		publisher:  publisher,
	}, nil
}

func buildAggregator(cfg *config.Config) (*ingest.Aggregator, error) {
	var clients []ingest.VendorClient

	for _, name := range []string{"fmp", "polygon", "unusualwhales"} {
		vc, ok := cfg.Vendors[name]
		if !ok || !vc.Enabled {
			continue
		}
		limiter := ingest.NewLimiter(float64(vc.RPS), vc.Burst)

		var client ingest.VendorClient
		switch name {
		case "fmp":
			client = ingest.NewFMPClient(vc.BaseURL, vc.APIKey(), limiter)
		case "polygon":
			client = ingest.NewPolygonClient(vc.BaseURL, vc.APIKey(), limiter)
		case "unusualwhales":
			client = ingest.NewUnusualWhalesClient(vc.BaseURL, vc.APIKey(), limiter)
		}
		clients = append(clients, client)
	}

	if len(clients) == 0 {
		return nil, fmt.Errorf("no vendors enabled in config")
	}

	const failureThreshold = 5
	const breakerTimeout = 30 * time.Second
	return ingest.NewAggregator(clients, failureThreshold, breakerTimeout), nil
}

// readStore returns whichever store history reads should come from: the
// cumulative Postgres store when reachable, the local snapshot store
// otherwise.
func (d *pipelineDeps) readStore() persistence.HistoryStore {
	if d.primary != nil {
		return d.primary
	}
	return d.fallback
}

// persistBoth writes the row to whichever stores are available. A
// failure on one store is logged but never aborts the other.
func (d *pipelineDeps) persistBoth(ctx context.Context, row bmi.HistoryRow) {
	if d.primary != nil {
		if err := d.primary.Upsert(ctx, row); err != nil {
			log.Error().Err(err).Time("date", row.Date).Msg("upsert to postgres history store failed")
		}
	}
	if d.fallback != nil {
		if err := d.fallback.Upsert(ctx, row); err != nil {
			log.Error().Err(err).Time("date", row.Date).Msg("upsert to local snapshot store failed")
		}
	}
}

func (d *pipelineDeps) close() {
	if d.primary != nil {
		if err := d.primary.Close(); err != nil {
			log.Warn().Err(err).Msg("closing postgres history store")
		}
	}
	if d.fallback != nil {
		if err := d.fallback.Close(); err != nil {
			log.Warn().Err(err).Msg("closing local snapshot store")
		}
	}
	if d.publisher != nil {
		if err := d.publisher.Close(); err != nil {
			log.Warn().Err(err).Msg("closing pubsub publisher")
		}
	}
}
