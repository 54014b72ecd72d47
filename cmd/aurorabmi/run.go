package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/aurora-bmi/aurorabmi/internal/bmi"
)

func newRunCmd(configPath *string, verbose *bool) *cobra.Command {
	var dateStr string
	var force bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Score a single trading day and persist the result",
		Long:  "Fetches one trading day's breadth inputs from the configured vendors, runs the scoring pipeline against the cumulative history, persists the result, and publishes it to the live feed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDay(*configPath, dateStr, force, *verbose)
		},
	}

	cmd.Flags().StringVar(&dateStr, "date", time.Now().UTC().Format("2006-01-02"), "trading day to score (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&force, "force", false, "recompute and overwrite even if a result already exists for this day")

	return cmd
}

func runDay(configPath, dateStr string, force, verbose bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return fmt.Errorf("invalid --date %q: %w", dateStr, err)
	}

	deps, err := buildPipelineDeps(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build pipeline dependencies: %w", err)
	}
	defer deps.close()

	result, err := scoreDay(ctx, deps, date, force, verbose)
	if err != nil {
		return err
	}

	log.Info().
		Time("date", result.Date).
		Float64("score", result.Score).
		Str("band", string(result.Band)).
		Str("status", string(result.Status)).
		Msg("aurora bmi run complete")

	fmt.Printf("%s  score=%.2f  band=%s  status=%s\n", result.Date.Format("2006-01-02"), result.Score, result.Band, result.Status)
	return nil
}

// scoreDay loads history, fetches the day's inputs, runs the pipeline,
// persists the result to both stores and publishes it live. It is
// shared by `run` and `backfill`.
func scoreDay(ctx context.Context, deps *pipelineDeps, date time.Time, force, verbose bool) (bmi.BMIResult, error) {
	store := deps.readStore()

	if !force {
		if _, found, err := store.LoadDay(ctx, date); err != nil {
			return bmi.BMIResult{}, fmt.Errorf("check existing result for %s: %w", date.Format("2006-01-02"), err)
		} else if found {
			return bmi.BMIResult{}, fmt.Errorf("result for %s already exists, pass --force to recompute", date.Format("2006-01-02"))
		}
	}

	history, err := store.LoadHistory(ctx, date)
	if err != nil {
		return bmi.BMIResult{}, fmt.Errorf("load history before %s: %w", date.Format("2006-01-02"), err)
	}

	inputs := deps.aggregator.FetchDay(ctx, date)
	if verbose {
		logVerboseInputs(inputs)
	}

	result, err := bmi.Calculate(inputs, history)
	if err != nil {
		return bmi.BMIResult{}, fmt.Errorf("calculate bmi for %s: %w", date.Format("2006-01-02"), err)
	}

	fv, err := bmi.ComputeFeatures(inputs)
	if err != nil {
		return bmi.BMIResult{}, fmt.Errorf("recompute features for history row: %w", err)
	}

	row := bmi.AppendHistory(history, inputs, fv, result)
	var lastRow bmi.HistoryRow
	for _, r := range row {
		if r.Date.Equal(date) {
			lastRow = r
			break
		}
	}

	deps.persistBoth(ctx, lastRow)
	if deps.publisher != nil {
		deps.publisher.Publish(ctx, result)
	}

	return result, nil
}

func logVerboseInputs(inputs bmi.FeatureInputs) {
	event := log.Debug().Time("date", inputs.Date)
	if inputs.VAdv != nil {
		event = event.Str("v_adv", "$"+humanize.CommafWithDigits(*inputs.VAdv, 0))
	}
	if inputs.VDec != nil {
		event = event.Str("v_dec", "$"+humanize.CommafWithDigits(*inputs.VDec, 0))
	}
	event.Msg("fetched vendor inputs")
}
