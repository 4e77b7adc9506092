package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/roach88/affectgrid/internal/config"
)

func TestConfigShow_Defaults(t *testing.T) {
	isolateConfig(t)

	stdout, _, err := execute(t, "config", "show")
	require.NoError(t, err)

	var got config.Config
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, config.Default(), got)
	assert.Contains(t, stdout, "port: 8888")
}

func TestConfigShow_FileAndEnv(t *testing.T) {
	isolateConfig(t)
	path := filepath.Join(t.TempDir(), "grid.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9100
store:
  path: /var/lib/affectgrid/grid.db
`), 0644))
	t.Setenv("AFFECTGRID_SERVER_PORT", "9200")

	stdout, _, err := execute(t, "--config", path, "config", "show")
	require.NoError(t, err)

	var got config.Config
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, 9200, got.Server.Port, "env overrides file")
	assert.Equal(t, "/var/lib/affectgrid/grid.db", got.Store.Path)
}

func TestConfigShow_DiscoveredFile(t *testing.T) {
	isolateConfig(t)
	require.NoError(t, os.WriteFile("affectgrid.yaml", []byte("semlog:\n  format: ntriples\n"), 0644))

	stdout, _, err := execute(t, "--format", "json", "config", "show")
	require.NoError(t, err)

	var resp struct {
		Data struct {
			File   string        `json:"file"`
			Config config.Config `json:"config"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "affectgrid.yaml", filepath.Base(resp.Data.File))
	assert.Equal(t, "ntriples", resp.Data.Config.Semlog.Format)
}

func TestConfigShow_Invalid(t *testing.T) {
	isolateConfig(t)
	t.Setenv("AFFECTGRID_INGEST_RANGE_POLICY", "wrap")

	_, _, err := execute(t, "config", "show")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "ingest.range_policy")
}

func TestConfigShow_MissingExplicitFile(t *testing.T) {
	isolateConfig(t)

	_, _, err := execute(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "config", "show")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load config")
}
