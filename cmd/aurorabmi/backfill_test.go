package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusinessDaysBetween(t *testing.T) {
	from := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC) // Friday
	to := time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC)   // Wednesday
	days := businessDaysBetween(from, to)

	want := []string{"2026-01-02", "2026-01-05", "2026-01-06", "2026-01-07"}
	require.Len(t, days, len(want))
	for i, d := range days {
		assert.Equal(t, want[i], d.Format("2006-01-02"), "day %d", i)
	}
}

func TestNewBackfillCmd_RequiresFromAndTo(t *testing.T) {
	configPath := "config/aurorabmi.yaml"
	verbose := false
	cmd := newBackfillCmd(&configPath, &verbose)

	cmd.SetArgs([]string{})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	err := cmd.Execute()
	assert.Error(t, err, "expected an error when --from and --to are omitted")
}
