package forms_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-tourforms/pkg/forms"
	"github.com/goliatone/go-tourforms/pkg/itinerary"
	"github.com/goliatone/go-tourforms/pkg/model"
	"github.com/goliatone/go-tourforms/pkg/record"
	"github.com/goliatone/go-tourforms/pkg/session"
)

type fakeDirectory struct {
	entries  map[string][]string
	promoted []string
}

func (f *fakeDirectory) List(_ context.Context, field string) ([]string, error) {
	return f.entries[field], nil
}

func (f *fakeDirectory) Promote(_ context.Context, field, value string) error {
	f.promoted = append(f.promoted, field+"="+value)
	f.entries[field] = append(f.entries[field], value)
	return nil
}

func open(t *testing.T, c *forms.Catalog, id string, opts ...session.Option) *session.Session {
	t.Helper()
	s, err := c.Open(context.Background(), id, opts...)
	if err != nil {
		t.Fatalf("Open(%s) returned error: %v", id, err)
	}
	return s
}

func set(t *testing.T, s *session.Session, values map[string]any) {
	t.Helper()
	for field, value := range values {
		if _, err := s.Set(field, value); err != nil {
			t.Fatalf("Set(%s) returned error: %v", field, err)
		}
	}
}

func TestDefinitionsAreValid(t *testing.T) {
	t.Parallel()

	c := forms.NewCatalog()
	if diff := cmp.Diff([]string{"associate", "lead", "leadTour", "package", "staff"}, c.IDs()); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
	for _, def := range c.Definitions() {
		if err := def.Validate(); err != nil {
			t.Fatalf("definition %s invalid: %v", def.ID, err)
		}
		seeds := c.Seeds(def.ID)
		for _, field := range def.Fields {
			if !field.IsChoice() || field.OptionsBy != "" || field.Shared {
				continue
			}
			if _, ok := seeds[field.OptionKey(nil)]; !ok {
				t.Fatalf("%s.%s has no seeded option list %q", def.ID, field.Name, field.OptionKey(nil))
			}
		}
	}
	if _, err := c.Open(context.Background(), "hotel"); err == nil {
		t.Fatalf("expected unknown screen error")
	}
}

func TestLeadReferralVisibility(t *testing.T) {
	t.Parallel()

	s := open(t, forms.NewCatalog(), forms.LeadID)
	if s.Visible("referralBy") {
		t.Fatalf("referralBy hidden until the source is a referral")
	}
	set(t, s, map[string]any{"source": "Referral"})
	if !s.Visible("referralBy") || s.Errors()["referralBy"] != "Referral By is required" {
		t.Fatalf("expected referralBy visible and required, got %v", s.Errors())
	}
	set(t, s, map[string]any{"businessType": "B2C"})
	if s.Visible("referralBy") || s.Errors().Has("referralBy") {
		t.Fatalf("referralBy must hide for B2C")
	}
}

func TestLeadTourCountryScenario(t *testing.T) {
	t.Parallel()

	store := &memoryStore{}
	s := open(t, forms.NewCatalog(), forms.LeadTourID, session.WithStore(store))
	set(t, s, map[string]any{
		"destination":   "Delhi",
		"services":      "Hotel",
		"adults":        "2",
		"arrivalDate":   time.Date(2026, 12, 20, 0, 0, 0, 0, time.UTC),
		"departureDate": time.Date(2026, 12, 27, 0, 0, 0, 0, time.UTC),
		"sharingType":   "Twin",
		"noOfRooms":     "1",
	})

	if _, err := s.Submit(context.Background()); err != nil {
		t.Fatalf("domestic submit returned error: %v", err)
	}

	set(t, s, map[string]any{"tourType": "International"})
	_, err := s.Submit(context.Background())
	var blocked *session.SubmissionBlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("expected blocked submit, got %v", err)
	}
	if diff := cmp.Diff(map[string]string{"country": "Country is required"}, map[string]string(blocked.Errors)); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if len(store.saved) != 1 {
		t.Fatalf("expected only the domestic record, got %d", len(store.saved))
	}

	set(t, s, map[string]any{"adults": "0", "noOfRooms": "0", "country": "Japan"})
	errs := s.Errors()
	if errs["adults"] != "At least 1 adult" || errs["noOfRooms"] != "At least 1 room" {
		t.Fatalf("unexpected bounds errors %v", errs)
	}
}

func TestAssociateScenarios(t *testing.T) {
	t.Parallel()

	store := &memoryStore{}
	s := open(t, forms.NewCatalog(), forms.AssociateID, session.WithStore(store))

	set(t, s, map[string]any{"mobile": "12345"})
	if got := s.Errors()["mobile"]; got != "Mobile must be 10 digits" {
		t.Fatalf("expected 10 digit error, got %q", got)
	}
	set(t, s, map[string]any{"mobile": "1234567890"})
	if s.Errors().Has("mobile") {
		t.Fatalf("expected valid mobile")
	}

	dialog, err := s.Set("associateType", model.AddNewOption)
	if err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	_ = dialog.SetInput("Type C")
	if _, err := dialog.Confirm(context.Background()); err != nil {
		t.Fatalf("Confirm returned error: %v", err)
	}
	if s.Value("associateType") != "Type C" {
		t.Fatalf("expected Type C selected, got %#v", s.Value("associateType"))
	}
	if diff := cmp.Diff([]string{"Type A", "Type B", "Type C"}, s.Registry().Options("associateType")); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}

	set(t, s, map[string]any{
		"firstName":        "Asha",
		"lastName":         "Rao",
		"alternateContact": "0987654321",
		"email":            "asha@example.com",
		"title":            "Ms.",
		"dob":              time.Date(1991, 7, 15, 0, 0, 0, 0, time.UTC),
		"associateUserId":  "asha.rao",
		"associateStatus":  "Active",
		"country":          "India",
		"state":            "State 1",
		"city":             "City 2",
		"address1":         "12 MG Road",
		"address2":         "Indiranagar",
		"address3":         "Near Metro",
		"pincode":          "560038",
	})
	rec, err := s.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit returned error: %v (%v)", err, s.Errors())
	}
	if len(store.saved) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(store.saved))
	}
	if rec.Values["dob"] != "1991-07-15T00:00:00.000Z" {
		t.Fatalf("dob must be ISO, got %#v", rec.Values["dob"])
	}
}

func TestStaffCascade(t *testing.T) {
	t.Parallel()

	s := open(t, forms.NewCatalog(), forms.StaffID)
	set(t, s, map[string]any{"country": "India"})
	states, _ := s.Options("state")
	if diff := cmp.Diff([]string{"Maharashtra", "Delhi", "Karnataka"}, states); diff != "" {
		t.Fatalf("states mismatch (-want +got):\n%s", diff)
	}
	set(t, s, map[string]any{"state": "Karnataka"})
	set(t, s, map[string]any{"city": "Bangalore"})

	set(t, s, map[string]any{"country": "USA"})
	if s.Value("state") != "" || s.Value("city") != "" {
		t.Fatalf("country change must clear state and city")
	}
	if s.Errors()["state"] != "Required" {
		t.Fatalf("expected state required, got %v", s.Errors())
	}
}

func TestPackageItineraryFlow(t *testing.T) {
	t.Parallel()

	store := &memoryStore{}
	s := open(t, forms.NewCatalog(), forms.PackageID, session.WithStore(store))

	set(t, s, map[string]any{"sector": "Kerala"})
	if diff := cmp.Diff(forms.SectorCities("Kerala"), s.Itinerary().Candidates()); diff != "" {
		t.Fatalf("candidates mismatch (-want +got):\n%s", diff)
	}

	if _, err := s.Move("Kerala - City 3", itinerary.Candidate, itinerary.Staged, 0); err != nil {
		t.Fatalf("Move returned error: %v", err)
	}
	if _, err := s.Move("Kerala - City 1", itinerary.Candidate, itinerary.Staged, 1); err != nil {
		t.Fatalf("Move returned error: %v", err)
	}
	_ = s.SetNights("Kerala - City 3", 2)
	_ = s.SetNights("Kerala - City 1", 3)

	_, err := s.Submit(context.Background())
	if !errors.Is(err, session.ErrSubmissionBlocked) {
		t.Fatalf("expected subType to block submit, got %v", err)
	}
	set(t, s, map[string]any{"subType": "Leisure"})
	rec, err := s.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	want := []itinerary.StayItem{{Name: "Kerala - City 3", Nights: 2}, {Name: "Kerala - City 1", Nights: 3}}
	if diff := cmp.Diff(want, rec.Itinerary); diff != "" {
		t.Fatalf("itinerary mismatch (-want +got):\n%s", diff)
	}

	set(t, s, map[string]any{"sector": "Goa"})
	if len(s.Itinerary().Staged()) != 0 || s.Itinerary().Len() != 3 {
		t.Fatalf("new sector must reseed the pools")
	}

	set(t, s, map[string]any{"tourType": "International"})
	if s.Itinerary().Len() != 0 {
		t.Fatalf("tour type switch must clear both pools")
	}
	for _, field := range []string{"sector", "subType", "destinationCountry", "sectorName"} {
		if s.Value(field) != "" {
			t.Fatalf("tour type switch must clear %s, got %#v", field, s.Value(field))
		}
	}
	if !s.Visible("sectorName") || s.Visible("sector") {
		t.Fatalf("international packages type the sector")
	}

	set(t, s, map[string]any{"sectorName": "Southeast Asia"})
	if s.Itinerary().Len() != 0 {
		t.Fatalf("manual sectors do not seed candidates")
	}
}

func TestLeadSubFormCreatesSharedAssociate(t *testing.T) {
	t.Parallel()

	dir := &fakeDirectory{entries: map[string][]string{forms.AssociatesKey: {"Priya Nair"}}}
	store := &memoryStore{}
	c := forms.NewCatalog(forms.WithDirectory(dir))
	s := open(t, c, forms.LeadID, session.WithStore(store))

	menu, _ := s.Options("assignedTo")
	if diff := cmp.Diff([]string{"Priya Nair", model.AddNewOption}, menu); diff != "" {
		t.Fatalf("menu mismatch (-want +got):\n%s", diff)
	}

	dialog, err := s.Set("assignedTo", model.AddNewOption)
	if err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	nested := dialog.SubForm()
	if nested == nil || nested.Definition().ID != forms.AssociateID {
		t.Fatalf("expected associate intake sub-form")
	}
	types, _ := nested.Options("associateType")
	if diff := cmp.Diff([]string{"Type A", "Type B", model.AddNewOption}, types); diff != "" {
		t.Fatalf("nested options mismatch (-want +got):\n%s", diff)
	}

	set(t, nested, map[string]any{
		"firstName": "Ravi", "lastName": "Kumar", "mobile": "9876543210", "alternateContact": "9876500000",
		"associateType": "Type A", "email": "ravi@example.com", "title": "Mr.", "dob": "1985-02-01",
		"associateUserId": "ravi.k", "associateStatus": "Active", "country": "India", "state": "State 1",
		"city": "City 1", "address1": "a", "address2": "b", "address3": "c", "pincode": "400001",
	})
	value, err := dialog.Confirm(context.Background())
	if err != nil {
		t.Fatalf("Confirm returned error: %v (%v)", err, nested.Errors())
	}
	if value != "Ravi Kumar" || s.Value("assignedTo") != "Ravi Kumar" {
		t.Fatalf("expected new associate selected, got %q", value)
	}
	if diff := cmp.Diff([]string{"associates=Ravi Kumar"}, dir.promoted); diff != "" {
		t.Fatalf("promotion mismatch (-want +got):\n%s", diff)
	}

	referral, _ := s.Options("referralBy")
	if diff := cmp.Diff([]string{"Priya Nair", "Ravi Kumar", model.AddNewOption}, referral); diff != "" {
		t.Fatalf("referral list shares the associate pool (-want +got):\n%s", diff)
	}
	if len(store.saved) != 1 || store.saved[0].Form != forms.AssociateID {
		t.Fatalf("expected the associate record to be stored")
	}

	next := open(t, c, forms.LeadID)
	if !next.Registry().Has(forms.AssociatesKey, "Ravi Kumar") {
		t.Fatalf("a new lead session must see the promoted associate")
	}
}

func TestLeadSubFormAdditionsFollowTheOuterDialog(t *testing.T) {
	t.Parallel()

	addType := func(t *testing.T, nested *session.Session, value string) {
		t.Helper()
		inner, err := nested.Set("associateType", model.AddNewOption)
		if err != nil || inner == nil {
			t.Fatalf("expected an inner dialog, got %v (%v)", inner, err)
		}
		if err := inner.SetInput(value); err != nil {
			t.Fatalf("SetInput returned error: %v", err)
		}
		if _, err := inner.Confirm(context.Background()); err != nil {
			t.Fatalf("inner Confirm returned error: %v", err)
		}
	}

	c := forms.NewCatalog(forms.WithDirectory(&fakeDirectory{entries: map[string][]string{}}))

	s := open(t, c, forms.LeadID, session.WithStore(&memoryStore{}))
	before := s.Registry().Options("associateType")
	dialog, err := s.Set("assignedTo", model.AddNewOption)
	if err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	addType(t, dialog.SubForm(), "Type Z")
	dialog.Cancel()

	if diff := cmp.Diff(before, s.Registry().Options("associateType")); diff != "" {
		t.Fatalf("cancel must leave the registry untouched (-want +got):\n%s", diff)
	}

	s = open(t, c, forms.LeadID, session.WithStore(&memoryStore{}))
	dialog, err = s.Set("assignedTo", model.AddNewOption)
	if err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	nested := dialog.SubForm()
	addType(t, nested, "Type Z")
	set(t, nested, map[string]any{
		"firstName": "Meera", "lastName": "Shah", "mobile": "9876543210", "alternateContact": "9876500000",
		"email": "meera@example.com", "title": "Ms.", "dob": "1988-07-11",
		"associateUserId": "meera.s", "associateStatus": "Active", "country": "India", "state": "State 1",
		"city": "City 1", "address1": "a", "address2": "b", "address3": "c", "pincode": "400001",
	})
	if _, err := dialog.Confirm(context.Background()); err != nil {
		t.Fatalf("Confirm returned error: %v (%v)", err, nested.Errors())
	}
	if !s.Registry().Has("associateType", "Type Z") {
		t.Fatalf("a confirmed sub-form keeps the options it added, got %v", s.Registry().Options("associateType"))
	}
}

func TestSeedOverrides(t *testing.T) {
	t.Parallel()

	c := forms.NewCatalog(forms.WithSeedOverrides(map[string][]string{
		"hotelType": {"Homestay", "Resort"},
		"unused":    {"x"},
	}))
	seeds := c.Seeds(forms.LeadTourID)
	if diff := cmp.Diff([]string{"Homestay", "Resort"}, seeds["hotelType"]); diff != "" {
		t.Fatalf("override mismatch (-want +got):\n%s", diff)
	}
	if _, ok := seeds["unused"]; ok {
		t.Fatalf("overrides must not add keys the screen does not use")
	}
}

type memoryStore struct {
	saved []record.Record
}

func (m *memoryStore) Save(_ context.Context, rec record.Record) error {
	m.saved = append(m.saved, rec)
	return nil
}
