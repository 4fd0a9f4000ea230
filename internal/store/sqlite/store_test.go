package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-tourforms/internal/store/sqlite"
	"github.com/goliatone/go-tourforms/pkg/forms"
	"github.com/goliatone/go-tourforms/pkg/itinerary"
	"github.com/goliatone/go-tourforms/pkg/record"
)

func openTemp(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSaveAndGetRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTemp(t)

	submitted := time.Date(2026, 9, 12, 6, 45, 10, 123000000, time.UTC)
	rec := record.New(forms.Package(), map[string]any{
		"tourType": "Domestic",
		"sector":   "Kerala",
		"subType":  "Leisure",
	}, []itinerary.StayItem{
		{Name: "Kerala - City 2", Nights: 3},
		{Name: "Kerala - City 1", Nights: 0},
	}, submitted)
	require.NoError(t, store.Save(ctx, rec))

	got, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, forms.PackageID, got.Form)
	assert.Equal(t, submitted, got.SubmittedAt)
	assert.Equal(t, rec.Values, got.Values)
	assert.Equal(t, rec.Itinerary, got.Itinerary, "stay order survives storage")

	assert.Error(t, store.Save(ctx, rec), "primary key rejects a second save")

	_, err = store.Get(ctx, "nope")
	assert.True(t, errors.Is(err, sqlite.ErrNotFound))
}

func TestListNewestFirst(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTemp(t)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		rec := record.New(forms.Staff(), map[string]any{"firstName": "Staff"}, nil, base.Add(time.Duration(i)*time.Hour))
		ids = append(ids, rec.ID)
		require.NoError(t, store.Save(ctx, rec))
	}
	require.NoError(t, store.Save(ctx, record.New(forms.Associate(), nil, nil, base)))

	got, err := store.List(ctx, forms.StaffID, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, ids[2], got[0].ID)
	assert.Equal(t, ids[1], got[1].ID)

	all, err := store.List(ctx, forms.StaffID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMigrateIsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "records.db")
	first, err := sqlite.Open(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := sqlite.Open(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestSaveRollsBackOnStayFailure(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store, err := sqlite.New(db)
	require.NoError(t, err)

	rec := record.New(forms.Package(), map[string]any{"tourType": "Domestic"},
		[]itinerary.StayItem{{Name: "Goa - City 1", Nights: 1}}, time.Now())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO records").
		WithArgs(rec.ID, rec.Form, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO stays").
		WithArgs(rec.ID, 0, "Goa - City 1", 1).
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	err = store.Save(context.Background(), rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert stay 0")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateSkipsWhenCurrent(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT COALESCE").WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(sqlite.SchemaVersion))

	require.NoError(t, sqlite.Migrate(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}
