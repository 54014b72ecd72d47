package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/aurora-bmi/aurorabmi/internal/obslog"
)

func newBackfillCmd(configPath *string, verbose *bool) *cobra.Command {
	var fromStr, toStr string

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Rehydrate a baseline by scoring a date range",
		Long:  "Repeatedly runs the scoring pipeline across [--from, --to], day by day, oldest first, so the rolling baseline builds up the same way it would have live. Used to rebuild history after a store migration or an extended outage.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackfill(*configPath, fromStr, toStr, *verbose)
		},
	}

	cmd.Flags().StringVar(&fromStr, "from", "", "first trading day to score (YYYY-MM-DD), required")
	cmd.Flags().StringVar(&toStr, "to", "", "last trading day to score (YYYY-MM-DD), required")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")

	return cmd
}

func runBackfill(configPath, fromStr, toStr string, verbose bool) error {
	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		return fmt.Errorf("invalid --from %q: %w", fromStr, err)
	}
	to, err := time.Parse("2006-01-02", toStr)
	if err != nil {
		return fmt.Errorf("invalid --to %q: %w", toStr, err)
	}
	if to.Before(from) {
		return fmt.Errorf("--to (%s) is before --from (%s)", toStr, fromStr)
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 6*time.Hour)
	defer cancel()

	deps, err := buildPipelineDeps(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build pipeline dependencies: %w", err)
	}
	defer deps.close()

	days := businessDaysBetween(from, to)
	progress := obslog.NewProgressIndicator("backfill", len(days), false)

	var failures int
	for _, day := range days {
		if _, err := scoreDay(ctx, deps, day, true, verbose); err != nil {
			failures++
			log.Error().Err(err).Time("date", day).Msg("backfill: day failed, continuing")
		}
		progress.Step(day.Format("2006-01-02"))
	}

	if failures > 0 {
		progress.Fail(fmt.Sprintf("%d of %d days failed", failures, len(days)))
		return fmt.Errorf("backfill completed with %d failures out of %d days", failures, len(days))
	}

	progress.Finish()
	return nil
}

// businessDaysBetween returns every Monday-Friday date in [from, to]
// inclusive. Market holidays are not excluded — a vendor request for a
// holiday simply returns no data, scoring a row of absent features,
// which is the same degradation path a live holiday run takes.
func businessDaysBetween(from, to time.Time) []time.Time {
	var days []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		days = append(days, d)
	}
	return days
}
