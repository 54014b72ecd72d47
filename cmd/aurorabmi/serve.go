package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/aurora-bmi/aurorabmi/internal/bmi"
	"github.com/aurora-bmi/aurorabmi/internal/config"
	"github.com/aurora-bmi/aurorabmi/internal/httpapi"
	"github.com/aurora-bmi/aurorabmi/internal/persistence"
	"github.com/aurora-bmi/aurorabmi/internal/persistence/localstore"
	"github.com/aurora-bmi/aurorabmi/internal/persistence/postgres"
	"github.com/aurora-bmi/aurorabmi/internal/pubsub"
)

func newServeCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the read-only dashboard, metrics and live-feed server",
		Long:  "Starts the HTTP API: JSON history lookups under /bmi, a Prometheus /metrics endpoint, and a websocket live feed under /ws/live relayed from the pub/sub broadcast channel.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(*configPath, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "override the listen address from config (host:port)")

	return cmd
}

func runServe(configPath, addrOverride string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	store, err := openServeStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	metrics := httpapi.NewMetrics()
	hub := httpapi.NewHub(metrics)

	svrCfg := httpapi.DefaultConfig()
	if addrOverride != "" {
		svrCfg.Addr = addrOverride
	}
	server := httpapi.NewServer(svrCfg, store, metrics, hub)

	if sub, err := dialLiveSubscriber(ctx, cfg.Redis.PubSubAddr); err != nil {
		log.Warn().Err(err).Msg("live feed disabled: pub/sub broker unavailable")
	} else {
		defer sub.Close()
		go hub.Run(func() (bmi.BMIResult, error) { return sub.Next(ctx) })
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		log.Info().Msg("shutting down aurorabmi dashboard server")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return server.Shutdown(shutdownCtx)
	}
}

func openServeStore(ctx context.Context, cfg *config.Config) (persistence.HistoryStore, error) {
	if pgStore, err := postgres.Open(ctx, postgres.DefaultConfig(cfg.Postgres.DSN)); err == nil {
		return pgStore, nil
	} else {
		log.Warn().Err(err).Msg("postgres unavailable for serve, falling back to local snapshot store")
	}

	store, err := localstore.Open(cfg.Storage.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("open local snapshot store: %w", err)
	}
	return store, nil
}

func dialLiveSubscriber(ctx context.Context, addr string) (*pubsub.Subscriber, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pubsub redis connection failed: %w", err)
	}
	return pubsub.NewSubscriber(ctx, client), nil
}
