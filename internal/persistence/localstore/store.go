// Package localstore is a durable offline fallback for the cumulative
// history store: one embedded SQLite file, used when no Postgres
// instance is reachable. It is not a cache — a day written here is as
// authoritative as a day written to Postgres, and the CLI driver treats
// the two stores as interchangeable implementations of
// persistence.HistoryStore.
package localstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aurora-bmi/aurorabmi/internal/bmi"
	"github.com/aurora-bmi/aurorabmi/internal/persistence"
)

var _ persistence.HistoryStore = (*Store)(nil)

// Store is the SQLite-backed HistoryStore.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the snapshot database at path and ensures its
// schema exists. WAL mode keeps a concurrent reader (the dashboard)
// from blocking the CLI driver's writes.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open local snapshot store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping local snapshot store: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS bmi_snapshot (
			date              TEXT PRIMARY KEY,
			vpb               REAL,
			ipb               REAL,
			sbc               REAL,
			ipo               REAL,
			vpb_zscore        REAL,
			vpb_contribution  REAL,
			ipb_zscore        REAL,
			ipb_contribution  REAL,
			sbc_zscore        REAL,
			sbc_contribution  REAL,
			ipo_zscore        REAL,
			ipo_contribution  REAL,
			raw_composite     REAL,
			score             REAL,
			band              TEXT,
			status            TEXT,
			explanation       TEXT,
			updated_at        TEXT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("migrate bmi_snapshot: %w", err)
	}
	return nil
}

const dateLayout = "2006-01-02"

// Upsert writes one trading day's row, overwriting any existing row for
// the same date.
func (s *Store) Upsert(ctx context.Context, row bmi.HistoryRow) error {
	var band, status *string
	if row.Band != nil {
		b := string(*row.Band)
		band = &b
	}
	if row.Status != nil {
		st := string(*row.Status)
		status = &st
	}

	vpbZ, vpbC := componentColumns(row, bmi.VPB)
	ipbZ, ipbC := componentColumns(row, bmi.IPB)
	sbcZ, sbcC := componentColumns(row, bmi.SBC)
	ipoZ, ipoC := componentColumns(row, bmi.IPO)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bmi_snapshot (
			date, vpb, ipb, sbc, ipo,
			vpb_zscore, vpb_contribution, ipb_zscore, ipb_contribution,
			sbc_zscore, sbc_contribution, ipo_zscore, ipo_contribution,
			raw_composite, score, band, status, explanation, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			vpb = excluded.vpb,
			ipb = excluded.ipb,
			sbc = excluded.sbc,
			ipo = excluded.ipo,
			vpb_zscore = excluded.vpb_zscore,
			vpb_contribution = excluded.vpb_contribution,
			ipb_zscore = excluded.ipb_zscore,
			ipb_contribution = excluded.ipb_contribution,
			sbc_zscore = excluded.sbc_zscore,
			sbc_contribution = excluded.sbc_contribution,
			ipo_zscore = excluded.ipo_zscore,
			ipo_contribution = excluded.ipo_contribution,
			raw_composite = excluded.raw_composite,
			score = excluded.score,
			band = excluded.band,
			status = excluded.status,
			explanation = excluded.explanation,
			updated_at = excluded.updated_at`,
		row.Date.Format(dateLayout), row.VPB, row.IPB, row.SBC, row.IPO,
		vpbZ, vpbC, ipbZ, ipbC, sbcZ, sbcC, ipoZ, ipoC,
		row.RawComposite, row.Score, band, status, row.Explanation, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upsert bmi_snapshot %s: %w", row.Date.Format(dateLayout), err)
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

// LoadHistory returns every row strictly before asOf, ordered ascending
// by date.
func (s *Store) LoadHistory(ctx context.Context, asOf time.Time) (bmi.HistoryView, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, vpb, ipb, sbc, ipo,
			vpb_zscore, vpb_contribution, ipb_zscore, ipb_contribution,
			sbc_zscore, sbc_contribution, ipo_zscore, ipo_contribution,
			raw_composite, score, band, status, explanation
		FROM bmi_snapshot
		WHERE date < ?
		ORDER BY date ASC`, asOf.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("load bmi_snapshot before %s: %w", asOf.Format(dateLayout), err)
	}
	defer rows.Close()

	var out bmi.HistoryView
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bmi_snapshot row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bmi_snapshot rows: %w", err)
	}
	return out, nil
}

// LoadDay returns the row for exactly one date, or (zero, false, nil)
// if no row exists yet.
func (s *Store) LoadDay(ctx context.Context, date time.Time) (bmi.HistoryRow, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT date, vpb, ipb, sbc, ipo,
			vpb_zscore, vpb_contribution, ipb_zscore, ipb_contribution,
			sbc_zscore, sbc_contribution, ipo_zscore, ipo_contribution,
			raw_composite, score, band, status, explanation
		FROM bmi_snapshot
		WHERE date = ?`, date.Format(dateLayout))

	result, err := scanRow(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return bmi.HistoryRow{}, false, nil
		}
		return bmi.HistoryRow{}, false, fmt.Errorf("load bmi_snapshot day %s: %w", date.Format(dateLayout), err)
	}
	return result, true, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRow(scanner rowScanner) (bmi.HistoryRow, error) {
	var dateStr string
	var vpb, ipb, sbc, ipo *float64
	var vpbZ, vpbC, ipbZ, ipbC, sbcZ, sbcC, ipoZ, ipoC *float64
	var rawComposite, score *float64
	var band, status, explanation *string

	err := scanner.Scan(
		&dateStr, &vpb, &ipb, &sbc, &ipo,
		&vpbZ, &vpbC, &ipbZ, &ipbC, &sbcZ, &sbcC, &ipoZ, &ipoC,
		&rawComposite, &score, &band, &status, &explanation)
	if err != nil {
		return bmi.HistoryRow{}, err
	}

	date, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return bmi.HistoryRow{}, fmt.Errorf("parse bmi_snapshot date %q: %w", dateStr, err)
	}

	row := bmi.HistoryRow{
		Date:         date,
		VPB:          vpb,
		IPB:          ipb,
		SBC:          sbc,
		IPO:          ipo,
		RawComposite: rawComposite,
		Score:        score,
		Explanation:  explanation,
	}
	addComponent(&row, bmi.VPB, vpbZ, vpbC)
	addComponent(&row, bmi.IPB, ipbZ, ipbC)
	addComponent(&row, bmi.SBC, sbcZ, sbcC)
	addComponent(&row, bmi.IPO, ipoZ, ipoC)
	if band != nil {
		b := bmi.Band(*band)
		row.Band = &b
	}
	if status != nil {
		st := bmi.BaselineStatus(*status)
		row.Status = &st
	}
	return row, nil
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

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
