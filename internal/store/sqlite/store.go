// Package sqlite persists submitted records in a SQLite database through the
// pure-Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/goliatone/go-tourforms/pkg/itinerary"
	"github.com/goliatone/go-tourforms/pkg/record"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

// ErrNotFound is returned by Get for unknown ids.
var ErrNotFound = errors.New("sqlite: record not found")

// Store saves records as a JSON payload row plus one row per itinerary stay.
type Store struct {
	db *sql.DB
}

// Open connects to path, applies pending migrations and returns the store.
// Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	// a single connection keeps ":memory:" databases alive and serializes writers
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping %s: %w", path, err)
	}
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// New wraps an existing, migrated handle.
func New(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlite: db is nil")
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes rec and its stays in one transaction.
func (s *Store) Save(ctx context.Context, rec record.Record) error {
	if rec.ID == "" {
		return fmt.Errorf("save record: id is empty")
	}
	payload, err := json.Marshal(rec.Values)
	if err != nil {
		return fmt.Errorf("save record %s: encode values: %w", rec.ID, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save record %s: begin: %w", rec.ID, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO records (id, form, payload, submitted_at) VALUES (?, ?, ?, ?)`,
		rec.ID, rec.Form, string(payload), record.FormatTime(rec.SubmittedAt))
	if err != nil {
		return fmt.Errorf("save record %s: insert: %w", rec.ID, err)
	}
	for i, stay := range rec.Itinerary {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO stays (record_id, position, name, nights) VALUES (?, ?, ?, ?)`,
			rec.ID, i, stay.Name, stay.Nights)
		if err != nil {
			return fmt.Errorf("save record %s: insert stay %d: %w", rec.ID, i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save record %s: commit: %w", rec.ID, err)
	}
	return nil
}

// Get loads a record with its itinerary.
func (s *Store) Get(ctx context.Context, id string) (record.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, form, payload, submitted_at FROM records WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return record.Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return record.Record{}, fmt.Errorf("get record %s: %w", id, err)
	}
	if err := s.loadStays(ctx, &rec); err != nil {
		return record.Record{}, err
	}
	return rec, nil
}

// List returns the newest records of form first. limit <= 0 means no limit.
func (s *Store) List(ctx context.Context, form string, limit int) ([]record.Record, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, form, payload, submitted_at FROM records WHERE form = ? ORDER BY submitted_at DESC, id LIMIT ?`,
		form, limit)
	if err != nil {
		return nil, fmt.Errorf("list records %s: %w", form, err)
	}
	defer rows.Close()

	var out []record.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list records %s: %w", form, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list records %s: %w", form, err)
	}
	for i := range out {
		if err := s.loadStays(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) loadStays(ctx context.Context, rec *record.Record) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, nights FROM stays WHERE record_id = ? ORDER BY position`, rec.ID)
	if err != nil {
		return fmt.Errorf("load stays %s: %w", rec.ID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var stay itinerary.StayItem
		if err := rows.Scan(&stay.Name, &stay.Nights); err != nil {
			return fmt.Errorf("load stays %s: %w", rec.ID, err)
		}
		rec.Itinerary = append(rec.Itinerary, stay)
	}
	return rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (record.Record, error) {
	var (
		rec       record.Record
		payload   string
		submitted string
	)
	if err := row.Scan(&rec.ID, &rec.Form, &payload, &submitted); err != nil {
		return record.Record{}, err
	}
	if err := json.Unmarshal([]byte(payload), &rec.Values); err != nil {
		return record.Record{}, fmt.Errorf("decode payload: %w", err)
	}
	at, err := time.Parse(record.TimestampLayout, submitted)
	if err != nil {
		return record.Record{}, fmt.Errorf("decode submitted_at: %w", err)
	}
	rec.SubmittedAt = at.UTC()
	return rec, nil
}
