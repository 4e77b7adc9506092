package cli

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/affectgrid/internal/grid"
	"github.com/roach88/affectgrid/internal/metrics"
	"github.com/roach88/affectgrid/internal/server"
	"github.com/roach88/affectgrid/internal/store"
	"github.com/roach88/affectgrid/internal/testutil"
)

// serveRun is a serve command running in the background.
type serveRun struct {
	srv    *server.Server
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	cancel context.CancelFunc
	done   chan error
}

// startServe runs serve on an ephemeral port and waits until it listens.
func startServe(t *testing.T, root *RootOptions, args ...string) *serveRun {
	t.Helper()
	isolateConfig(t)

	ready := make(chan *server.Server, 1)
	opts := &ServeOptions{
		RootOptions:    root,
		TokenGenerator: testutil.NewFixedSessionGenerator("serve-session"),
		Ready:          func(s *server.Server) { ready <- s },
	}

	run := &serveRun{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}, done: make(chan error, 1)}
	ctx, cancel := context.WithCancel(context.Background())
	run.cancel = cancel
	t.Cleanup(cancel)

	cmd := newServeCommand(opts)
	cmd.SetOut(run.stdout)
	cmd.SetErr(run.stderr)
	cmd.SetContext(ctx)
	cmd.SetArgs(append([]string{"--host", "127.0.0.1", "--port", "0"}, args...))

	go func() { run.done <- cmd.Execute() }()

	select {
	case run.srv = <-ready:
	case err := <-run.done:
		t.Fatalf("serve exited before listening: %v", err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not start")
	}
	return run
}

// stop cancels serve and returns its error.
func (r *serveRun) stop(t *testing.T) error {
	t.Helper()
	r.cancel()
	select {
	case err := <-r.done:
		return err
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
		return nil
	}
}

func TestServe_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "grid.db")
	factLog := filepath.Join(dir, "grid.ttl")

	run := startServe(t, &RootOptions{Format: "text", LogFormat: "text"},
		"--db", db, "--semlog-path", factLog)
	base := run.srv.BaseURL()

	resp, err := http.Get(base + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, resp.Cookies(), 1)
	assert.Equal(t, "handler_cookie", resp.Cookies()[0].Name)
	assert.Equal(t, "serve-session", resp.Cookies()[0].Value)

	resp, err = http.Post(base+"/save_coordinates", "application/json", strings.NewReader(`{"x": 2, "y": 7}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = http.Post(base+"/save_coordinates", "application/json", strings.NewReader(`{"x": 2}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	require.NoError(t, run.stop(t))
	assert.Contains(t, run.stdout.String(), "Affect grid listening on http://127.0.0.1:")
	assert.Contains(t, run.stderr.String(), "affectgrid stopped gracefully")

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()
	coords, err := st.Coordinates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []grid.Coordinate{{ID: 1, X: 2, Y: 7}}, coords)

	data, err := os.ReadFile(factLog)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# coordinate 1 valence Negative")
	assert.Contains(t, string(data), `obo:MFOEM_000208 obo:y "7.0"^^xsd:double .`)
}

func TestServe_WithoutSemanticLog(t *testing.T) {
	dir := t.TempDir()
	factLog := filepath.Join(dir, "grid.ttl")

	run := startServe(t, &RootOptions{Format: "text", LogFormat: "json"},
		"--db", filepath.Join(dir, "grid.db"), "--semlog=false", "--semlog-path", factLog)

	resp, err := http.Post(run.srv.BaseURL()+"/save_coordinates", "application/json", strings.NewReader(`{"x": 8.5, "y": 1}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	require.NoError(t, run.stop(t))
	assert.NoFileExists(t, factLog)
	assert.Contains(t, run.stderr.String(), `"msg":"pipeline starting"`)
}

func TestServe_LogsExistingCoordinates(t *testing.T) {
	db := seedDatabase(t, grid.Point{X: 1, Y: 2}, grid.Point{X: 3, Y: 4})

	run := startServe(t, &RootOptions{Format: "text", LogFormat: "text", Verbose: true},
		"--db", db, "--semlog-path", filepath.Join(t.TempDir(), "grid.ttl"))
	require.NoError(t, run.stop(t))

	logs := run.stderr.String()
	assert.Contains(t, logs, "database ready")
	assert.Contains(t, logs, "coordinates=2")
	assert.Contains(t, logs, `msg="stored coordinate" id=1 x=1 y=2`)
	assert.Contains(t, logs, `msg="stored coordinate" id=2 x=3 y=4`)
}

func TestServe_InvalidConfiguration(t *testing.T) {
	isolateConfig(t)
	db := filepath.Join(t.TempDir(), "grid.db")

	cmd := NewServeCommand(&RootOptions{Format: "text", LogFormat: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--db", db, "--range-policy", "wrap"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.NoFileExists(t, db)
}

func TestServe_UnopenableDatabase(t *testing.T) {
	isolateConfig(t)

	cmd := NewServeCommand(&RootOptions{Format: "text", LogFormat: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--db", filepath.Join(t.TempDir(), "missing", "dir", "grid.db")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to open database")
}

func TestServeMetrics(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	recorder := metrics.New()
	recorder.Accepted(grid.ValenceNegative, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serveMetrics(ctx, addr, recorder, time.Second, testutil.DiscardLogger()) }()

	var body string
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/metrics")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		buf := &bytes.Buffer{}
		_, _ = buf.ReadFrom(resp.Body)
		body = buf.String()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)
	assert.Contains(t, body, `affectgrid_coordinates_ingested_total{valence="Negative"} 1`)

	cancel()
	require.NoError(t, <-done)
}
