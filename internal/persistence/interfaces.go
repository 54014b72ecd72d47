// Package persistence declares the storage-agnostic contract the CLI
// driver uses to load and save AURORA BMI history, satisfied by both
// internal/persistence/postgres (cumulative store) and
// internal/persistence/localstore (offline snapshot fallback).
package persistence

import (
	"context"
	"time"

	"github.com/aurora-bmi/aurorabmi/internal/bmi"
)

// HistoryStore persists and retrieves bmi.HistoryRow values keyed by
// trading day. Implementations deduplicate by date, last-writer-wins.
type HistoryStore interface {
	Upsert(ctx context.Context, row bmi.HistoryRow) error
	LoadHistory(ctx context.Context, asOf time.Time) (bmi.HistoryView, error)
	LoadDay(ctx context.Context, date time.Time) (bmi.HistoryRow, bool, error)
	Close() error
}
