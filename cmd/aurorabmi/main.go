// Command aurorabmi computes and serves the AURORA breadth market index:
// `run` scores a single trading day, `backfill` rehydrates a date range,
// and `serve` exposes the read-only dashboard/metrics/websocket API.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/aurora-bmi/aurorabmi/internal/config"
	"github.com/aurora-bmi/aurorabmi/internal/obslog"
)

const (
	appName = "aurorabmi"
	version = "v1.0.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339

	var (
		configPath string
		verbose    bool
	)

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "AURORA breadth market index scoring pipeline",
		Version: version,
		Long: `aurorabmi computes a daily 0-100 market-breadth participation
score from four weighted volume/issue/structural/institutional features,
classifies it into a GREEN/LIGHT_GREEN/YELLOW/RED band, and persists the
result to a cumulative history store.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			obslog.Init(verbose, "")
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/aurorabmi.yaml", "path to the deployment config file")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug-level logging")

	rootCmd.AddCommand(newRunCmd(&configPath, &verbose))
	rootCmd.AddCommand(newBackfillCmd(&configPath, &verbose))
	rootCmd.AddCommand(newServeCmd(&configPath))

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("aurorabmi failed")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
