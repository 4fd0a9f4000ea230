package export

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-tourforms/pkg/model"
	"github.com/goliatone/go-tourforms/pkg/record"
)

// Extension keys carried on exported field schemas.
const (
	ExtensionVisibleWhen  = "x-visible-when"
	ExtensionRequiredWhen = "x-required-when"
	ExtensionOptions      = "x-options"
)

// RecordSchema describes the flat payload of a submitted record
// (record.Record.Flat). Only unconditionally required, always visible fields
// are listed as required; conditional rules travel as extensions. Empty
// strings are accepted wherever a format rule applies because optional
// fields are stored as "".
func RecordSchema(def model.FormDefinition) *openapi3.Schema {
	schema := &openapi3.Schema{
		Type:        &openapi3.Types{openapi3.TypeObject},
		Title:       def.Title,
		Properties:  make(openapi3.Schemas, len(def.Fields)+1),
		Description: fmt.Sprintf("Record payload of the %s form.", def.ID),
	}
	for _, field := range def.Fields {
		schema.Properties[field.Name] = &openapi3.SchemaRef{Value: fieldSchema(field)}
		if field.Required && field.VisibleWhen == "" {
			schema.Required = append(schema.Required, field.Name)
		}
	}
	if def.Itinerary {
		schema.Properties[record.ItineraryKey] = &openapi3.SchemaRef{Value: itinerarySchema()}
		schema.Required = append(schema.Required, record.ItineraryKey)
	}
	return schema
}

// SchemaJSON renders RecordSchema as JSON.
func SchemaJSON(def model.FormDefinition) ([]byte, error) {
	raw, err := json.Marshal(RecordSchema(def))
	if err != nil {
		return nil, fmt.Errorf("export: marshal %s schema: %w", def.ID, err)
	}
	return raw, nil
}

func fieldSchema(field model.Field) *openapi3.Schema {
	var schema *openapi3.Schema
	switch field.Kind {
	case model.KindDate:
		// null when unset, an ISO timestamp otherwise
		schema = &openapi3.Schema{Format: "date-time"}
	case model.KindNumber:
		schema = &openapi3.Schema{
			AnyOf: openapi3.SchemaRefs{
				{Value: &openapi3.Schema{Type: &openapi3.Types{openapi3.TypeNumber}}},
				{Value: &openapi3.Schema{Type: &openapi3.Types{openapi3.TypeString}, Pattern: `^(-?[0-9]+(\.[0-9]+)?)?$`}},
			},
		}
	default:
		schema = &openapi3.Schema{Type: &openapi3.Types{openapi3.TypeString}}
		if field.Required && field.VisibleWhen == "" {
			schema.MinLength = 1
		}
		for _, rule := range field.Rules {
			switch rule.Kind {
			case model.ValidationRulePattern:
				if p := rule.Params["pattern"]; p != "" {
					schema.Pattern = "^$|" + p
				}
			case model.ValidationRuleEmail:
				schema.Pattern = `^$|^[^@\s]+@[^@\s]+\.[^@\s]+$`
			}
		}
	}

	schema.Title = field.DisplayLabel()
	schema.Default = field.Default
	for _, rule := range field.Rules {
		if rule.Kind != model.ValidationRuleMin || field.Kind != model.KindNumber {
			continue
		}
		if n, err := strconv.ParseFloat(rule.Params["value"], 64); err == nil {
			schema.AnyOf[0].Value.Min = &n
		}
	}

	ext := make(map[string]any)
	if field.VisibleWhen != "" {
		ext[ExtensionVisibleWhen] = field.VisibleWhen
	}
	if field.RequiredWhen != "" {
		ext[ExtensionRequiredWhen] = field.RequiredWhen
	}
	if field.IsChoice() {
		key := field.Options
		if key == "" {
			key = field.Name
		}
		ext[ExtensionOptions] = key
	}
	if len(ext) > 0 {
		schema.Extensions = ext
	}
	return schema
}

func itinerarySchema() *openapi3.Schema {
	zero := 0.0
	return &openapi3.Schema{
		Type:  &openapi3.Types{openapi3.TypeArray},
		Title: "Itinerary",
		Items: &openapi3.SchemaRef{Value: &openapi3.Schema{
			Type:     &openapi3.Types{openapi3.TypeObject},
			Required: []string{"name", "nights"},
			Properties: openapi3.Schemas{
				"name":   {Value: &openapi3.Schema{Type: &openapi3.Types{openapi3.TypeString}, MinLength: 1}},
				"nights": {Value: &openapi3.Schema{Type: &openapi3.Types{openapi3.TypeInteger}, Min: &zero}},
			},
		}},
	}
}
