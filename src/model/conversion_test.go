package model

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/bankconv/src/database"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.RunMigrations(db))
	return db
}

func TestInsertAndListConversions(t *testing.T) {
	db := openTestDB(t)
	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	id1, err := InsertConversion(db, Conversion{
		RequestID: "req-1", Filename: "gennaio.csv", Format: "csv", Profile: "intesa",
		Rows: 12, NetAmount: "-310.25", Status: StatusSuccess, DurationMS: 4, CreatedAt: base,
	})
	require.NoError(t, err)
	id2, err := InsertConversion(db, Conversion{
		RequestID: "req-2", Filename: "febbraio.xlsx", Format: "xlsx", Profile: "intesa",
		Status: StatusFailed, Error: "could not find header row in input", CreatedAt: base.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	got, err := ListRecentConversions(db, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "febbraio.xlsx", got[0].Filename, "newest first")
	assert.Equal(t, StatusFailed, got[0].Status)
	assert.Equal(t, "0", got[0].NetAmount)
	assert.Equal(t, "could not find header row in input", got[0].Error)

	assert.Equal(t, "req-1", got[1].RequestID)
	assert.Equal(t, 12, got[1].Rows)
	assert.Equal(t, "-310.25", got[1].NetAmount)
	assert.True(t, base.Equal(got[1].CreatedAt))

	limited, err := ListRecentConversions(db, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestListConversionsEmpty(t *testing.T) {
	db := openTestDB(t)
	got, err := ListRecentConversions(db, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	db := openTestDB(t)
	assert.NoError(t, database.RunMigrations(db))
}
