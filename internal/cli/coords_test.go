package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/affectgrid/internal/grid"
	"github.com/roach88/affectgrid/internal/store"
)

func seedDatabase(t *testing.T, points ...grid.Point) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "grid.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	for _, p := range points {
		_, err := st.InsertCoordinate(context.Background(), p.X, p.Y)
		require.NoError(t, err)
	}
	require.NoError(t, st.Close())
	return path
}

func TestCoordsCommand_Text(t *testing.T) {
	isolateConfig(t)
	db := seedDatabase(t, grid.Point{X: 2, Y: 7}, grid.Point{X: 8.5, Y: 1})

	stdout, _, err := execute(t, "coords", "--db", db)
	require.NoError(t, err)

	assert.Contains(t, stdout, "VALENCE")
	assert.Contains(t, stdout, "     1     2.000     7.000  Negative")
	assert.Contains(t, stdout, "     2     8.500     1.000  Positive")
	assert.Contains(t, stdout, "Total: 2")
}

func TestCoordsCommand_JSON(t *testing.T) {
	isolateConfig(t)
	db := seedDatabase(t, grid.Point{X: 2, Y: 7})

	stdout, _, err := execute(t, "--format", "json", "coords", "--db", db)
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   CoordsResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Total)
	assert.Equal(t, []CoordinateRow{{ID: 1, X: 2, Y: 7, Valence: grid.ValenceNegative}}, resp.Data.Coordinates)
}

func TestCoordsCommand_Empty(t *testing.T) {
	isolateConfig(t)
	db := seedDatabase(t)

	stdout, _, err := execute(t, "coords", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "No coordinates stored.\n", stdout)
}

func TestCoordsCommand_DatabaseFromEnv(t *testing.T) {
	isolateConfig(t)
	db := seedDatabase(t, grid.Point{X: 1, Y: 1})
	t.Setenv("AFFECTGRID_STORE_PATH", db)

	stdout, _, err := execute(t, "coords")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Total: 1")
}

func TestCoordsCommand_MissingDatabase(t *testing.T) {
	isolateConfig(t)
	missing := filepath.Join(t.TempDir(), "nope.db")

	_, _, err := execute(t, "coords", "--db", missing)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "database not found")
	assert.NoFileExists(t, missing, "coords must not create the database")
}
