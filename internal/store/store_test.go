package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesFileAndKeepsRowsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.db")

	first, err := Open(path)
	require.NoError(t, err)
	assert.FileExists(t, path)
	mustInsert(t, first, 1, 2)
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	defer second.Close()

	coords, err := second.Coordinates(context.Background())
	require.NoError(t, err)
	require.Len(t, coords, 1)
	assert.Equal(t, 1.0, coords[0].X)
	assert.Equal(t, 2.0, coords[0].Y)
}

// The pool is capped at one connection, so an in-memory database keeps its
// table between statements.
func TestOpen_InMemory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	mustInsert(t, s, 3, 4)
	mustInsert(t, s, 5, 6)

	n, err := s.CountCoordinates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestOpen_UnwritableDirectory(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "grid.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database")
}

func TestStore_Accessors(t *testing.T) {
	s := createTestStore(t)

	require.NotNil(t, s.DB())
	assert.NoError(t, s.DB().Ping())
	assert.NoError(t, s.Ping(context.Background()))

	var zero Store
	assert.NoError(t, zero.Close(), "closing a store without a connection")
}

func TestOpen_ConnectionPragmas(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "2"}, // FULL
		{"busy_timeout", "5000"},
	}
	for _, tt := range tests {
		t.Run(tt.pragma, func(t *testing.T) {
			got, err := s.Pragma(ctx, tt.pragma)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDSN(t *testing.T) {
	assert.Equal(t, "grid.db?_busy_timeout=5000&_journal_mode=WAL&_synchronous=FULL", dsn("grid.db"))
	assert.Equal(t, "file:grid.db?cache=shared&_busy_timeout=5000&_journal_mode=WAL&_synchronous=FULL", dsn("file:grid.db?cache=shared"))
}

func TestSchema_CoordinatesTable(t *testing.T) {
	s := createTestStore(t)
	assert.Equal(t, []string{"x", "y", "id"}, getTableColumns(t, s.db, "coordinates"))
}

func TestEnsureSchema_RepeatedCallsKeepRows(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	mustInsert(t, s, 1, 1)

	require.NoError(t, s.EnsureSchema(ctx))
	require.NoError(t, s.EnsureSchema(ctx))

	assert.Equal(t, 1, countTables(t, s.db, "coordinates"))
	n, err := s.CountCoordinates(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSchema_VersionStableAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "open %d", i)

		version, err := s.Pragma(context.Background(), "user_version")
		require.NoError(t, err)
		assert.Equal(t, "1", version, "open %d", i)
		require.NoError(t, s.Close())
	}
}

// A file written before user_version was recorded is adopted as is.
func TestSchema_AdoptsUnversionedTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.db")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec("CREATE TABLE coordinates (x float, y float, id INTEGER PRIMARY KEY AUTOINCREMENT)")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO coordinates (x, y) VALUES (4, 4)")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	version, err := s.Pragma(context.Background(), "user_version")
	require.NoError(t, err)
	assert.Equal(t, "1", version)
	assert.Equal(t, int64(2), mustInsert(t, s, 5, 5))
}
