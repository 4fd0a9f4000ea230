package options_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-tourforms/pkg/options"
)

func TestRegistryAddAppendsAfterDefaults(t *testing.T) {
	t.Parallel()

	reg := options.New(map[string][]string{
		"associateType": {"Type A", "Type B"},
	})

	got, err := reg.Add("associateType", "Type C")
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	want := []string{"Type A", "Type B", "Type C"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, reg.Options("associateType")); diff != "" {
		t.Fatalf("registry mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Type C"}, reg.Added("associateType")); diff != "" {
		t.Fatalf("added mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistryDuplicateLeavesRegistryUnchanged(t *testing.T) {
	t.Parallel()

	reg := options.New(map[string][]string{"country": {"India", "USA"}})

	if _, err := reg.Add("country", "Japan"); err != nil {
		t.Fatalf("first Add returned error: %v", err)
	}
	before := reg.Options("country")

	_, err := reg.Add("country", "Japan")
	if !errors.Is(err, options.ErrDuplicateOption) {
		t.Fatalf("expected ErrDuplicateOption, got %v", err)
	}
	var dup *options.DuplicateOptionError
	if !errors.As(err, &dup) || dup.Field != "country" || dup.Value != "Japan" {
		t.Fatalf("expected DuplicateOptionError for country/Japan, got %#v", err)
	}
	if diff := cmp.Diff(before, reg.Options("country")); diff != "" {
		t.Fatalf("registry changed after duplicate (-want +got):\n%s", diff)
	}

	count := 0
	for _, v := range reg.Options("country") {
		if v == "Japan" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected Japan exactly once, got %d", count)
	}
}

func TestRegistryComparisonIsCaseSensitive(t *testing.T) {
	t.Parallel()

	reg := options.New(map[string][]string{"city": {"Mumbai"}})
	if _, err := reg.Add("city", "mumbai"); err != nil {
		t.Fatalf("expected case variant to be accepted, got %v", err)
	}
	if diff := cmp.Diff([]string{"Mumbai", "mumbai"}, reg.Options("city")); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistryRejectsBlankAndSanitizesMarkup(t *testing.T) {
	t.Parallel()

	reg := options.New(nil)
	if _, err := reg.Add("hotelType", "   "); !errors.Is(err, options.ErrEmptyOption) {
		t.Fatalf("expected ErrEmptyOption, got %v", err)
	}
	if _, err := reg.Add("hotelType", "<script>alert(1)</script>"); !errors.Is(err, options.ErrEmptyOption) {
		t.Fatalf("expected script-only value to sanitise to empty, got %v", err)
	}

	got, err := reg.Add("hotelType", " <b>Bed & Breakfast</b> ")
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if diff := cmp.Diff([]string{"Bed & Breakfast"}, got); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistrySeedDedupesAndMerge(t *testing.T) {
	t.Parallel()

	reg := options.New(map[string][]string{"assignedTo": {"Agent A", "Agent A", " ", "Agent B"}})
	reg.Merge("assignedTo", []string{"Agent B", "Agent C"})

	want := []string{"Agent A", "Agent B", "Agent C"}
	if diff := cmp.Diff(want, reg.Options("assignedTo")); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistryOptionsReturnsCopy(t *testing.T) {
	t.Parallel()

	reg := options.New(map[string][]string{"title": {"Mr", "Ms"}})
	got := reg.Options("title")
	got[0] = "changed"

	if diff := cmp.Diff([]string{"Mr", "Ms"}, reg.Options("title")); diff != "" {
		t.Fatalf("registry leaked internal slice (-want +got):\n%s", diff)
	}
}

func TestRegistryCloneIsIndependent(t *testing.T) {
	t.Parallel()

	reg := options.New(map[string][]string{"source": {"Direct"}})
	clone := reg.Clone()
	if _, err := clone.Add("source", "Website"); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if reg.Has("source", "Website") {
		t.Fatalf("clone mutation leaked into original")
	}
}

func TestRegistryPromote(t *testing.T) {
	t.Parallel()

	var got []string
	reg := options.New(nil, options.WithPromoter(options.PromoterFunc(func(_ context.Context, field, value string) error {
		got = append(got, field+"="+value)
		return nil
	})))

	if err := reg.Promote(context.Background(), "assignedTo", "Ravi Kumar"); err != nil {
		t.Fatalf("Promote returned error: %v", err)
	}
	if diff := cmp.Diff([]string{"assignedTo=Ravi Kumar"}, got); diff != "" {
		t.Fatalf("promotions mismatch (-want +got):\n%s", diff)
	}

	failing := options.New(nil, options.WithPromoter(options.PromoterFunc(func(context.Context, string, string) error {
		return errors.New("down")
	})))
	if err := failing.Promote(context.Background(), "assignedTo", "x"); err == nil {
		t.Fatalf("expected promoter error")
	}

	if err := options.New(nil).Promote(context.Background(), "assignedTo", "x"); err != nil {
		t.Fatalf("expected no-op without promoter, got %v", err)
	}
}
