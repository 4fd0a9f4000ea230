package contract_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-tourforms/internal/store/contract"
	"github.com/goliatone/go-tourforms/internal/store/memory"
	"github.com/goliatone/go-tourforms/pkg/forms"
	"github.com/goliatone/go-tourforms/pkg/itinerary"
	"github.com/goliatone/go-tourforms/pkg/record"
	"github.com/goliatone/go-tourforms/pkg/session"
)

func newGuard(t *testing.T) (*contract.Store, *memory.Store) {
	t.Helper()
	inner := memory.New()
	guard, err := contract.New(inner, forms.NewCatalog().Definitions()...)
	require.NoError(t, err)
	return guard, inner
}

func TestValidRecordsPassThrough(t *testing.T) {
	t.Parallel()

	guard, inner := newGuard(t)
	rec := record.New(forms.Lead(), map[string]any{
		"fullName":   "Meera Shah",
		"mobile":     "9876543210",
		"email":      "meera@example.com",
		"source":     "Direct",
		"assignedTo": "Priya Nair",
		"dob":        time.Date(1990, 4, 30, 18, 30, 0, 0, time.UTC),
	}, nil, time.Now())

	require.NoError(t, guard.Save(context.Background(), rec))
	assert.Equal(t, 1, inner.Len())
}

func TestViolationsAreKeyedByField(t *testing.T) {
	t.Parallel()

	guard, inner := newGuard(t)
	rec := record.New(forms.Lead(), map[string]any{
		"fullName":   "",
		"mobile":     "12345",
		"source":     "Direct",
		"assignedTo": "Priya Nair",
	}, nil, time.Now())

	err := guard.Save(context.Background(), rec)
	var rejected *record.RejectedError
	require.True(t, errors.As(err, &rejected), "got %v", err)
	assert.Equal(t, contract.StoreName, rejected.Store)
	assert.Contains(t, rejected.Payload, "fullName")
	assert.Contains(t, rejected.Payload, "mobile")
	assert.Zero(t, inner.Len())

	mapped := record.MapRejection(forms.Lead(), rejected.Payload)
	assert.Contains(t, mapped.Fields, "mobile")
	assert.Empty(t, mapped.Form)
}

func TestMissingPropertiesAndNestedPaths(t *testing.T) {
	t.Parallel()

	guard, _ := newGuard(t)

	missing := record.Record{ID: "r1", Form: forms.PackageID, Values: map[string]any{"tourType": "Domestic"}}
	err := guard.Save(context.Background(), missing)
	var rejected *record.RejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Contains(t, rejected.Payload, "subType")
	assert.Contains(t, rejected.Payload, "itinerary")

	negative := record.New(forms.Package(), map[string]any{"tourType": "Domestic", "subType": "Leisure"},
		[]itinerary.StayItem{{Name: "Goa - City 1", Nights: -1}}, time.Now())
	err = guard.Save(context.Background(), negative)
	require.True(t, errors.As(err, &rejected))
	assert.Contains(t, rejected.Payload, "itinerary.0.nights")

	mapped := record.MapRejection(forms.Package(), rejected.Payload)
	assert.Contains(t, mapped.Fields, record.ItineraryKey)
}

func TestUnknownFormIsRefused(t *testing.T) {
	t.Parallel()

	guard, _ := newGuard(t)
	err := guard.Save(context.Background(), record.Record{ID: "x", Form: "hotel"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no schema for form "hotel"`)
}

func TestSessionInputPassesContract(t *testing.T) {
	t.Parallel()

	guard, inner := newGuard(t)
	s, err := forms.NewCatalog().Open(context.Background(), forms.LeadID,
		session.WithStore(guard),
		session.WithInitialValues(map[string]any{"dob": ""}),
	)
	require.NoError(t, err)

	for field, value := range map[string]any{
		"fullName":   "  Meera Shah ",
		"mobile":     " 9876543210 ",
		"email":      " meera@example.com",
		"source":     "Direct",
		"assignedTo": "Priya Nair",
	} {
		_, err := s.Set(field, value)
		require.NoError(t, err, field)
	}
	require.Empty(t, s.Errors())

	rec, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, inner.Len())
	assert.Equal(t, "9876543210", rec.Values["mobile"])
	assert.Equal(t, "Meera Shah", rec.Values["fullName"])
	assert.Nil(t, rec.Values["dob"])
}
