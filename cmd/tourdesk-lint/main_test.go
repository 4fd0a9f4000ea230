package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-tourforms/pkg/forms"
)

func TestBuiltinScreensAreClean(t *testing.T) {
	t.Parallel()

	catalog := forms.NewCatalog()
	for _, def := range catalog.Definitions() {
		if got := lintDefinition(def.ID, def, catalog.Seeds(def.ID)); len(got) > 0 {
			t.Fatalf("%s: unexpected violations %+v", def.ID, got)
		}
	}
}

func TestLintFileReportsMissingLists(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "hotel.yaml")
	content := `
id: hotel
fields:
  - name: country
    kind: select
  - name: city
    kind: select
    options: hotelCity
    optionsBy: country
  - name: stars
    kind: radio
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	seeds := map[string][]string{
		"country":         {"India", "Nepal"},
		"hotelCity:India": {"Goa"},
	}
	got, err := lintFile(path, seeds)
	if err != nil {
		t.Fatalf("lintFile returned error: %v", err)
	}

	var messages []string
	for _, v := range got {
		messages = append(messages, v.location+": "+v.message)
	}
	want := []string{
		`form > hotel > field > city: no option list "hotelCity:Nepal" for country "Nepal"`,
		`form > hotel > field > stars: no option list "stars"`,
	}
	if diff := cmp.Diff(want, messages); diff != "" {
		t.Fatalf("violations mismatch (-want +got):\n%s", diff)
	}
}

func TestLintDefinitionReportsStructuralErrors(t *testing.T) {
	t.Parallel()

	def := forms.Staff()
	def.Fields[0].VisibleWhen = `unknownField == "x"`
	got := lintDefinition("staff.yaml", def, forms.NewCatalog().Seeds(forms.StaffID))
	if len(got) != 1 || got[0].location != "form > staff" {
		t.Fatalf("expected one form-level violation, got %+v", got)
	}
}
