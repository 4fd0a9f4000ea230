package export_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-tourforms/pkg/export"
	"github.com/goliatone/go-tourforms/pkg/forms"
	"github.com/goliatone/go-tourforms/pkg/model"
)

func TestRecordSchemaRequiredFields(t *testing.T) {
	t.Parallel()

	schema := export.RecordSchema(forms.Package())
	if diff := cmp.Diff([]string{"subType", "itinerary"}, schema.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}

	sector := schema.Properties["sector"].Value
	if got := sector.Extensions[export.ExtensionVisibleWhen]; got != `tourType == "Domestic"` {
		t.Fatalf("expected visibility extension, got %#v", got)
	}
	if got := sector.Extensions[export.ExtensionOptions]; got != "packageSector" {
		t.Fatalf("expected options extension, got %#v", got)
	}
	if schema.Properties["itinerary"].Value.Items == nil {
		t.Fatalf("itinerary must describe its items")
	}
}

func TestRecordSchemaAcceptsEmptyOptionalFields(t *testing.T) {
	t.Parallel()

	schema := export.RecordSchema(forms.Lead())
	valid := map[string]any{
		"fullName":   "Meera Shah",
		"source":     "Direct",
		"assignedTo": "Priya Nair",
		"mobile":     "",
		"email":      "",
		"dob":        nil,
	}
	if err := schema.VisitJSON(valid); err != nil {
		t.Fatalf("expected payload to pass, got %v", err)
	}

	cases := map[string]map[string]any{
		"short mobile":  {"fullName": "Meera", "source": "Direct", "assignedTo": "Priya Nair", "mobile": "12345"},
		"bad email":     {"fullName": "Meera", "source": "Direct", "assignedTo": "Priya Nair", "email": "meera@"},
		"missing name":  {"source": "Direct", "assignedTo": "Priya Nair"},
		"blank name":    {"fullName": "", "source": "Direct", "assignedTo": "Priya Nair"},
		"numeric title": {"fullName": "Meera", "source": "Direct", "assignedTo": "Priya Nair", "title": 3.0},
	}
	for name, payload := range cases {
		if err := schema.VisitJSON(payload); err == nil {
			t.Fatalf("%s: expected schema violation", name)
		}
	}
}

func TestSchemaJSONNumberBounds(t *testing.T) {
	t.Parallel()

	raw, err := export.SchemaJSON(forms.LeadTour())
	if err != nil {
		t.Fatalf("SchemaJSON returned error: %v", err)
	}
	var decoded struct {
		Properties map[string]struct {
			AnyOf []struct {
				Type    string   `json:"type"`
				Minimum *float64 `json:"minimum"`
			} `json:"anyOf"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal schema: %v", err)
	}
	adults := decoded.Properties["adults"].AnyOf
	if len(adults) != 2 || adults[0].Minimum == nil || *adults[0].Minimum != 1 {
		t.Fatalf("expected adults minimum 1, got %+v", adults)
	}
}

func TestDocumentCoversCatalog(t *testing.T) {
	t.Parallel()

	catalog := forms.NewCatalog()
	doc, err := export.Document(context.Background(), export.Info{Title: "Tour desk"}, catalog.Definitions()...)
	if err != nil {
		t.Fatalf("Document returned error: %v", err)
	}
	if doc.Info.Version != "1.0.0" {
		t.Fatalf("expected default version, got %q", doc.Info.Version)
	}
	for _, id := range catalog.IDs() {
		item := doc.Paths.Value("/records/" + id)
		if item == nil || item.Post == nil {
			t.Fatalf("missing operation for %s", id)
		}
		media := item.Post.RequestBody.Value.Content.Get("application/json")
		if media == nil || media.Schema == nil || media.Schema.Value == nil {
			t.Fatalf("%s: request schema not resolved", id)
		}
	}
	if got := doc.Paths.Value("/records/leadTour").Post.OperationID; got != "submitLeadTour" {
		t.Fatalf("unexpected operation id %q", got)
	}
}

func TestDocumentRejectsInvalidDefinitions(t *testing.T) {
	t.Parallel()

	if _, err := export.Document(context.Background(), export.Info{}); err == nil {
		t.Fatalf("expected error without definitions")
	}
	broken := model.FormDefinition{ID: "broken", Fields: []model.Field{{Name: "a", Kind: model.KindText, VisibleWhen: "b =="}}}
	if _, err := export.Document(context.Background(), export.Info{}, broken); err == nil {
		t.Fatalf("expected invalid definition to fail")
	}
}
