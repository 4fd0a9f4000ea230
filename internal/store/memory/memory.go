// Package memory keeps submitted records in process. It backs tests and the
// console's dry-run mode.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goliatone/go-tourforms/pkg/record"
)

// ErrNotFound is returned by Get for unknown ids.
var ErrNotFound = errors.New("memory: record not found")

// Store is a concurrency-safe, append-only record list.
type Store struct {
	mu      sync.RWMutex
	records []record.Record
	byID    map[string]int
}

// New returns an empty store.
func New() *Store {
	return &Store{byID: make(map[string]int)}
}

// Save appends rec. Ids must be unique.
func (s *Store) Save(ctx context.Context, rec record.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.byID[rec.ID]; dup {
		return fmt.Errorf("memory: record %s already stored", rec.ID)
	}
	s.byID[rec.ID] = len(s.records)
	s.records = append(s.records, clone(rec))
	return nil
}

// Get returns the record with id.
func (s *Store) Get(_ context.Context, id string) (record.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byID[id]
	if !ok {
		return record.Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return clone(s.records[idx]), nil
}

// List returns the records of a form in submission order. An empty form
// lists everything.
func (s *Store) List(_ context.Context, form string) ([]record.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []record.Record
	for _, rec := range s.records {
		if form == "" || rec.Form == form {
			out = append(out, clone(rec))
		}
	}
	return out, nil
}

// Len reports how many records are stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func clone(rec record.Record) record.Record {
	out := rec
	out.Values = make(map[string]any, len(rec.Values))
	for k, v := range rec.Values {
		out.Values[k] = v
	}
	if rec.Itinerary != nil {
		out.Itinerary = append(rec.Itinerary[:0:0], rec.Itinerary...)
	}
	return out
}
