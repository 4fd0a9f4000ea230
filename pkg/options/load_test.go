package options_test

import (
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-tourforms/pkg/options"
)

func TestParseSeedYAML(t *testing.T) {
	t.Parallel()

	raw := []byte(`
options:
  associateType: [Type A, Type B, Type A]
  "states:India":
    - Maharashtra
    - Delhi
`)
	got, err := options.ParseSeed(raw, "options.yaml")
	if err != nil {
		t.Fatalf("ParseSeed returned error: %v", err)
	}
	want := map[string][]string{
		"associateType": {"Type A", "Type B"},
		"states:India":  {"Maharashtra", "Delhi"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("seed mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSeedJSON(t *testing.T) {
	t.Parallel()

	got, err := options.ParseSeed([]byte(`{"options":{"country":["India","USA"]}}`), "options.json")
	if err != nil {
		t.Fatalf("ParseSeed returned error: %v", err)
	}
	if diff := cmp.Diff(map[string][]string{"country": {"India", "USA"}}, got); diff != "" {
		t.Fatalf("seed mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSeedErrors(t *testing.T) {
	t.Parallel()

	if _, err := options.ParseSeed([]byte("  "), "empty.yaml"); err == nil {
		t.Fatalf("expected error for empty seed")
	}
	if _, err := options.ParseSeed([]byte("options: [unbalanced"), "bad.yaml"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadSeedFSAndMerge(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"configs/options.yaml": {Data: []byte("options:\n  title: [Mr, Dr]\n")},
	}
	override, err := options.LoadSeedFS(fsys, "configs/options.yaml")
	if err != nil {
		t.Fatalf("LoadSeedFS returned error: %v", err)
	}

	merged := options.MergeSeeds(map[string][]string{
		"title":  {"Mr", "Ms", "Mrs"},
		"source": {"Direct"},
	}, override)

	want := map[string][]string{
		"title":  {"Mr", "Dr"},
		"source": {"Direct"},
	}
	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged seed mismatch (-want +got):\n%s", diff)
	}
}
