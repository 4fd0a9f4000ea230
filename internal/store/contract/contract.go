// Package contract guards a record store with the exported record schemas.
// Records that do not satisfy their form's schema never reach the wrapped
// store; the violations come back as a *record.RejectedError keyed by field
// path so the session can show them next to the inputs.
package contract

import (
	"context"
	"fmt"
	"sort"

	"github.com/xeipuuv/gojsonschema"

	"github.com/goliatone/go-tourforms/pkg/export"
	"github.com/goliatone/go-tourforms/pkg/model"
	"github.com/goliatone/go-tourforms/pkg/record"
)

// StoreName identifies the guard in rejection errors.
const StoreName = "contract"

// Store validates records before delegating to next.
type Store struct {
	next    record.Store
	schemas map[string]*gojsonschema.Schema
}

// New compiles a schema per definition.
func New(next record.Store, defs ...model.FormDefinition) (*Store, error) {
	if next == nil {
		return nil, fmt.Errorf("contract: next store is nil")
	}
	s := &Store{next: next, schemas: make(map[string]*gojsonschema.Schema, len(defs))}
	for _, def := range defs {
		raw, err := export.SchemaJSON(def)
		if err != nil {
			return nil, err
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			return nil, fmt.Errorf("contract: compile %s schema: %w", def.ID, err)
		}
		s.schemas[def.ID] = schema
	}
	return s, nil
}

// Save validates rec.Flat() against the form's schema and forwards valid
// records. Records of forms without a schema are refused.
func (s *Store) Save(ctx context.Context, rec record.Record) error {
	schema, ok := s.schemas[rec.Form]
	if !ok {
		return fmt.Errorf("contract: no schema for form %q", rec.Form)
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(rec.Flat()))
	if err != nil {
		return fmt.Errorf("contract: validate %s: %w", rec.ID, err)
	}
	if !result.Valid() {
		return &record.RejectedError{Store: StoreName, Payload: violations(result.Errors())}
	}
	return s.next.Save(ctx, rec)
}

// violations groups result errors by field path. Missing-property errors are
// reported by gojsonschema against the parent, so the property name is
// appended to keep them attributable to a field.
func violations(errs []gojsonschema.ResultError) map[string][]string {
	out := make(map[string][]string, len(errs))
	for _, e := range errs {
		path := e.Field()
		if e.Type() == "required" {
			if property, ok := e.Details()["property"].(string); ok && property != "" {
				if path == "(root)" {
					path = property
				} else {
					path = path + "." + property
				}
			}
		}
		out[path] = append(out[path], e.Description())
	}
	for path := range out {
		sort.Strings(out[path])
	}
	return out
}
