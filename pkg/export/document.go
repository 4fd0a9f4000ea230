package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-tourforms/pkg/model"
)

// Info titles the exported document.
type Info struct {
	Title   string
	Version string
}

// Document builds an OpenAPI 3 description of the record intake: one
// component schema per form and a POST /records/{form} operation accepting
// it. The result is loaded and validated with kin-openapi before it is
// returned, so downstream consumers can rely on it.
func Document(ctx context.Context, info Info, defs ...model.FormDefinition) (*openapi3.T, error) {
	if len(defs) == 0 {
		return nil, errors.New("export: at least one form definition is required")
	}
	if info.Title == "" {
		info.Title = "Tour desk records"
	}
	if info.Version == "" {
		info.Version = "1.0.0"
	}

	schemas := make(map[string]any, len(defs))
	paths := make(map[string]any, len(defs))
	for _, def := range defs {
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("export: %w", err)
		}
		schemas[def.ID] = RecordSchema(def)
		paths["/records/"+def.ID] = map[string]any{
			"post": map[string]any{
				"operationId": "submit" + strings.ReplaceAll(model.DefaultLabeler(def.ID), " ", ""),
				"summary":     "Submit a " + def.Title + " record",
				"tags":        []string{"records"},
				"requestBody": map[string]any{
					"required": true,
					"content": map[string]any{
						"application/json": map[string]any{
							"schema": map[string]any{"$ref": "#/components/schemas/" + def.ID},
						},
					},
				},
				"responses": map[string]any{
					"201": map[string]any{"description": "Record stored"},
					"422": map[string]any{"description": "Record rejected by the store contract"},
				},
			},
		}
	}

	raw, err := json.Marshal(map[string]any{
		"openapi":    "3.0.3",
		"info":       map[string]any{"title": info.Title, "version": info.Version},
		"paths":      paths,
		"components": map[string]any{"schemas": schemas},
	})
	if err != nil {
		return nil, fmt.Errorf("export: marshal document: %w", err)
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("export: load document: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("export: validate document: %w", err)
	}
	return doc, nil
}
