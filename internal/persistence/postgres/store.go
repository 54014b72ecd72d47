// Package postgres persists the cumulative AURORA BMI history to a
// PostgreSQL table, one row per trading day. A day is written with an
// upsert so a re-run of the same date overwrites rather than duplicates,
// matching the last-writer-wins rule the core pipeline already applies
// to in-memory HistoryView rows.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/aurora-bmi/aurorabmi/internal/bmi"
	"github.com/aurora-bmi/aurorabmi/internal/persistence"
)

var _ persistence.HistoryStore = (*Store)(nil)

// Config configures the connection pool. DSN is the only required field.
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	QueryTimeout    time.Duration
}

// DefaultConfig returns conservative pool defaults for a single-process
// daily batch job, not a high-throughput service.
func DefaultConfig(dsn string) Config {
	return Config{
		DSN:             dsn,
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: 30 * time.Minute,
		QueryTimeout:    10 * time.Second,
	}
}

// Store is the PostgreSQL-backed implementation of the cumulative
// history store.
type Store struct {
	db      *sqlx.DB
	timeout time.Duration
}

// Open connects to Postgres, verifies reachability with a ping, and
// ensures the bmi_history table exists.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	db, err := sqlx.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &Store{db: db, timeout: cfg.QueryTimeout}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewStore wraps an already-open *sqlx.DB, for callers that manage the
// connection pool themselves (tests, shared pools).
func NewStore(db *sqlx.DB, timeout time.Duration) *Store {
	return &Store{db: db, timeout: timeout}
}

func (s *Store) ensureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS bmi_history (
			date              DATE PRIMARY KEY,
			vpb               DOUBLE PRECISION,
			ipb               DOUBLE PRECISION,
			sbc               DOUBLE PRECISION,
			ipo               DOUBLE PRECISION,
			vpb_zscore        DOUBLE PRECISION,
			vpb_contribution  DOUBLE PRECISION,
			ipb_zscore        DOUBLE PRECISION,
			ipb_contribution  DOUBLE PRECISION,
			sbc_zscore        DOUBLE PRECISION,
			sbc_contribution  DOUBLE PRECISION,
			ipo_zscore        DOUBLE PRECISION,
			ipo_contribution  DOUBLE PRECISION,
			raw_composite     DOUBLE PRECISION,
			score             DOUBLE PRECISION,
			band              TEXT,
			status            TEXT,
			explanation       TEXT,
			updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("ensure bmi_history schema: %w", err)
	}
	return nil
}

// Upsert writes one trading day's row, overwriting any existing row for
// the same date.
func (s *Store) Upsert(ctx context.Context, row bmi.HistoryRow) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var band, status, explanation *string
	if row.Band != nil {
		b := string(*row.Band)
		band = &b
	}
	if row.Status != nil {
		st := string(*row.Status)
		status = &st
	}
	explanation = row.Explanation

	vpbZ, vpbC := componentColumns(row, bmi.VPB)
	ipbZ, ipbC := componentColumns(row, bmi.IPB)
	sbcZ, sbcC := componentColumns(row, bmi.SBC)
	ipoZ, ipoC := componentColumns(row, bmi.IPO)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bmi_history (
			date, vpb, ipb, sbc, ipo,
			vpb_zscore, vpb_contribution, ipb_zscore, ipb_contribution,
			sbc_zscore, sbc_contribution, ipo_zscore, ipo_contribution,
			raw_composite, score, band, status, explanation, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, now())
		ON CONFLICT (date) DO UPDATE SET
			vpb = EXCLUDED.vpb,
			ipb = EXCLUDED.ipb,
			sbc = EXCLUDED.sbc,
			ipo = EXCLUDED.ipo,
			vpb_zscore = EXCLUDED.vpb_zscore,
			vpb_contribution = EXCLUDED.vpb_contribution,
			ipb_zscore = EXCLUDED.ipb_zscore,
			ipb_contribution = EXCLUDED.ipb_contribution,
			sbc_zscore = EXCLUDED.sbc_zscore,
			sbc_contribution = EXCLUDED.sbc_contribution,
			ipo_zscore = EXCLUDED.ipo_zscore,
			ipo_contribution = EXCLUDED.ipo_contribution,
			raw_composite = EXCLUDED.raw_composite,
			score = EXCLUDED.score,
			band = EXCLUDED.band,
			status = EXCLUDED.status,
			explanation = EXCLUDED.explanation,
			updated_at = now()`,
		row.Date, row.VPB, row.IPB, row.SBC, row.IPO,
		vpbZ, vpbC, ipbZ, ipbC, sbcZ, sbcC, ipoZ, ipoC,
		row.RawComposite, row.Score, band, status, explanation)
	if err != nil {
		return fmt.Errorf("upsert bmi_history %s: %w", row.Date.Format("2006-01-02"), err)
	}
	return nil
}

// componentColumns splits a feature's ComponentValues (if any) into the
// nullable zscore/contribution columns a row actually stores.
func componentColumns(row bmi.HistoryRow, name bmi.FeatureName) (zscore, contribution *float64) {
	c, ok := row.Components[name]
	if !ok {
		return nil, nil
	}
	z, ctr := c.ZScore, c.Contribution
	return &z, &ctr
}

// historyRecord mirrors bmi_history's columns for sqlx scanning.
type historyRecord struct {
	Date            time.Time `db:"date"`
	VPB             *float64  `db:"vpb"`
	IPB             *float64  `db:"ipb"`
	SBC             *float64  `db:"sbc"`
	IPO             *float64  `db:"ipo"`
	VPBZScore       *float64  `db:"vpb_zscore"`
	VPBContribution *float64  `db:"vpb_contribution"`
	IPBZScore       *float64  `db:"ipb_zscore"`
	IPBContribution *float64  `db:"ipb_contribution"`
	SBCZScore       *float64  `db:"sbc_zscore"`
	SBCContribution *float64  `db:"sbc_contribution"`
	IPOZScore       *float64  `db:"ipo_zscore"`
	IPOContribution *float64  `db:"ipo_contribution"`
	RawComposite    *float64  `db:"raw_composite"`
	Score           *float64  `db:"score"`
	Band            *string   `db:"band"`
	Status          *string   `db:"status"`
	Explanation     *string   `db:"explanation"`
}

func (r historyRecord) toRow() bmi.HistoryRow {
	row := bmi.HistoryRow{
		Date:         r.Date,
		VPB:          r.VPB,
		IPB:          r.IPB,
		SBC:          r.SBC,
		IPO:          r.IPO,
		RawComposite: r.RawComposite,
		Score:        r.Score,
		Explanation:  r.Explanation,
	}
	addComponent(&row, bmi.VPB, r.VPBZScore, r.VPBContribution)
	addComponent(&row, bmi.IPB, r.IPBZScore, r.IPBContribution)
	addComponent(&row, bmi.SBC, r.SBCZScore, r.SBCContribution)
	addComponent(&row, bmi.IPO, r.IPOZScore, r.IPOContribution)
	if r.Band != nil {
		b := bmi.Band(*r.Band)
		row.Band = &b
	}
	if r.Status != nil {
		st := bmi.BaselineStatus(*r.Status)
		row.Status = &st
	}
	return row
}

// addComponent sets row.Components[name] when both column values for that
// feature were persisted. A single absent column means the feature had no
// component that day, matching the map's "absent means excluded" contract.
func addComponent(row *bmi.HistoryRow, name bmi.FeatureName, zscore, contribution *float64) {
	if zscore == nil || contribution == nil {
		return
	}
	if row.Components == nil {
		row.Components = make(map[bmi.FeatureName]bmi.ComponentValues, len(bmi.FeatureOrder))
	}
	row.Components[name] = bmi.ComponentValues{ZScore: *zscore, Contribution: *contribution}
}

// LoadHistory returns every row strictly before asOf, ordered ascending
// by date, ready to hand to bmi.Calculate as a HistoryView.
func (s *Store) LoadHistory(ctx context.Context, asOf time.Time) (bmi.HistoryView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryxContext(ctx, `
		SELECT date, vpb, ipb, sbc, ipo,
			vpb_zscore, vpb_contribution, ipb_zscore, ipb_contribution,
			sbc_zscore, sbc_contribution, ipo_zscore, ipo_contribution,
			raw_composite, score, band, status, explanation
		FROM bmi_history
		WHERE date < $1
		ORDER BY date ASC`, asOf)
	if err != nil {
		return nil, fmt.Errorf("load bmi_history before %s: %w", asOf.Format("2006-01-02"), err)
	}
	defer rows.Close()

	var out bmi.HistoryView
	for rows.Next() {
		var rec historyRecord
		if err := rows.StructScan(&rec); err != nil {
			return nil, fmt.Errorf("scan bmi_history row: %w", err)
		}
		out = append(out, rec.toRow())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bmi_history rows: %w", err)
	}
	return out, nil
}

// LoadDay returns the row for exactly one date, or (zero, false, nil)
// if no row exists yet.
func (s *Store) LoadDay(ctx context.Context, date time.Time) (bmi.HistoryRow, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var rec historyRecord
	err := s.db.QueryRowxContext(ctx, `
		SELECT date, vpb, ipb, sbc, ipo,
			vpb_zscore, vpb_contribution, ipb_zscore, ipb_contribution,
			sbc_zscore, sbc_contribution, ipo_zscore, ipo_contribution,
			raw_composite, score, band, status, explanation
		FROM bmi_history
		WHERE date = $1`, date).StructScan(&rec)
	if err != nil {
		if err == sql.ErrNoRows {
			return bmi.HistoryRow{}, false, nil
		}
		return bmi.HistoryRow{}, false, fmt.Errorf("load bmi_history day %s: %w", date.Format("2006-01-02"), err)
	}
	return rec.toRow(), true, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
