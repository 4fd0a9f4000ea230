package testsupport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-tourforms/pkg/model"
	"github.com/goliatone/go-tourforms/pkg/record"
)

// LoadDefinition reads a YAML form definition fixture and validates it.
func LoadDefinition(t *testing.T, path string) model.FormDefinition {
	t.Helper()

	def, err := LoadDefinitionFromPath(path)
	if err != nil {
		t.Fatalf("load definition: %v", err)
	}
	return def
}

// LoadDefinitionFromPath returns a definition without requiring testing.T,
// for fixtures wired in setup functions.
func LoadDefinitionFromPath(path string) (model.FormDefinition, error) {
	if path == "" {
		return model.FormDefinition{}, errors.New("testsupport: definition path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.FormDefinition{}, fmt.Errorf("testsupport: read definition: %w", err)
	}
	var def model.FormDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return model.FormDefinition{}, fmt.Errorf("testsupport: unmarshal definition: %w", err)
	}
	if err := def.Validate(); err != nil {
		return model.FormDefinition{}, fmt.Errorf("testsupport: %s: %w", path, err)
	}
	return def, nil
}

// RecordingStore keeps every record it is handed. When Err is set Save
// returns it and records nothing.
type RecordingStore struct {
	mu      sync.Mutex
	Err     error
	records []record.Record
}

// Save implements record.Store.
func (s *RecordingStore) Save(_ context.Context, rec record.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.records = append(s.records, rec)
	return nil
}

// Records returns a copy of what was saved.
func (s *RecordingStore) Records() []record.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]record.Record(nil), s.records...)
}

// Rejecting returns a store that refuses every record with payload.
func Rejecting(store string, payload map[string][]string) *RecordingStore {
	return &RecordingStore{Err: &record.RejectedError{Store: store, Payload: payload}}
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents. Tests can assert
// the renderer returns and writes the same payload without duplicating buffer
// setup.
func CaptureOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return out, buf.String()
}
