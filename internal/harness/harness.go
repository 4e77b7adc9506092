package harness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/affectgrid/internal/grid"
	"github.com/roach88/affectgrid/internal/pipeline"
	"github.com/roach88/affectgrid/internal/semlog"
	"github.com/roach88/affectgrid/internal/server"
	"github.com/roach88/affectgrid/internal/store"
	"github.com/roach88/affectgrid/internal/testutil"
)

// Harness holds the live components of one scenario run.
type Harness struct {
	store    *store.Store
	log      *semlog.Log
	logPath  string
	pipeline *pipeline.Pipeline
	handler  http.Handler
	seq      *testutil.Sequence
	session  string
	logger   *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Create a temporary directory with a fresh database and semantic log
//  2. Insert setup rows
//  3. Start the pipeline and build the server handler
//  4. Send flow requests in order, checking expect clauses
//  5. Stop the pipeline, collect final state and evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	dir, err := os.MkdirTemp("", "affectgrid-scenario-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scenario dir: %w", err)
	}
	defer os.RemoveAll(dir)

	h, err := newHarness(scenario, dir)
	if err != nil {
		return nil, err
	}
	defer h.close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	result := NewResult()

	if err := h.executeSetup(ctx, scenario.Setup); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}

	done := make(chan error, 1)
	go func() { done <- h.pipeline.Run(ctx) }()

	flowErr := h.executeFlow(ctx, scenario.Flow, result)

	// Drain the single writer before reading the stores.
	h.pipeline.Stop()
	if err := <-done; err != nil {
		return nil, fmt.Errorf("pipeline stopped with error: %w", err)
	}
	if flowErr != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", flowErr)
	}

	if err := h.collect(ctx, result); err != nil {
		return nil, err
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func newHarness(scenario *Scenario, dir string) (*Harness, error) {
	logger := testutil.DiscardLogger()

	st, err := store.Open(filepath.Join(dir, "affectgrid.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	h := &Harness{
		store:   st,
		seq:     testutil.NewSequence(),
		session: scenario.Session,
		logger:  logger,
	}
	if h.session == "" {
		h.session = testutil.DefaultSessionToken
	}

	policy, err := grid.ParseRangePolicy(scenario.RangePolicy)
	if err != nil {
		h.close()
		return nil, err
	}
	opts := []pipeline.Option{
		pipeline.WithRangePolicy(policy),
		pipeline.WithLogger(logger),
	}
	if scenario.Bounds != nil {
		opts = append(opts, pipeline.WithBounds(*scenario.Bounds))
	}

	if !scenario.DisableSemlog {
		format, err := semlog.ParseFormat(scenario.SemlogFormat)
		if err != nil {
			h.close()
			return nil, err
		}
		h.logPath = filepath.Join(dir, "grid_data.ttl")
		h.log, err = semlog.Open(h.logPath,
			semlog.WithFormat(format),
			semlog.WithoutSync(),
			semlog.WithLogger(logger),
		)
		if err != nil {
			h.close()
			return nil, fmt.Errorf("failed to open semantic log: %w", err)
		}
		opts = append(opts, pipeline.WithSemanticLog(h.log))
	}

	h.pipeline, err = pipeline.New(st, opts...)
	if err != nil {
		h.close()
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}

	srv, err := server.New(server.DefaultSettings(), h.pipeline,
		server.WithLogger(logger),
		server.WithTokenGenerator(testutil.NewFixedSessionGenerator(h.session)),
	)
	if err != nil {
		h.close()
		return nil, fmt.Errorf("failed to create server: %w", err)
	}
	h.handler = srv.Handler()

	return h, nil
}

func (h *Harness) close() {
	if h.log != nil {
		if err := h.log.Close(); err != nil {
			h.logger.Error("close semantic log", "error", err)
		}
	}
	if err := h.store.Close(); err != nil {
		h.logger.Error("close store", "error", err)
	}
}

// executeSetup inserts rows directly, bypassing the pipeline.
func (h *Harness) executeSetup(ctx context.Context, setup []grid.Point) error {
	for i, pt := range setup {
		if _, err := h.store.InsertCoordinate(ctx, pt.X, pt.Y); err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
	}
	return nil
}

// executeFlow sends each step through the server handler and validates its
// expect clause. Expectation mismatches are recorded on the result; only
// harness failures are returned.
func (h *Harness) executeFlow(ctx context.Context, flow []FlowStep, result *Result) error {
	for i, step := range flow {
		if step.Click != nil {
			body, err := json.Marshal(grid.DefaultViewport.ToGrid(step.Click.PX, step.Click.PY))
			if err != nil {
				return fmt.Errorf("flow[%d]: encode click: %w", i, err)
			}
			step.Body = string(body)
		}

		req := httptest.NewRequestWithContext(ctx, step.Method, step.Path, strings.NewReader(step.Body))
		if step.Body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		req.AddCookie(&http.Cookie{Name: server.DefaultCookieName, Value: h.session})

		rec := httptest.NewRecorder()
		h.handler.ServeHTTP(rec, req)

		event := TraceEvent{
			Seq:    h.seq.Next(),
			Method: step.Method,
			Path:   step.Path,
			Body:   step.Body,
			Status: rec.Code,
		}
		if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
			var body struct {
				Error string `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err == nil {
				event.Error = body.Error
			}
		}
		result.AddTrace(event)

		h.logger.Info("flow step completed", "step", i, "status", rec.Code)

		if step.Expect == nil {
			continue
		}
		if err := h.checkExpect(ctx, i, step, event, result); err != nil {
			return err
		}
	}
	return nil
}

func (h *Harness) checkExpect(ctx context.Context, i int, step FlowStep, event TraceEvent, result *Result) error {
	exp := step.Expect
	if event.Status != exp.Status {
		result.AddError(fmt.Sprintf("flow[%d]: expected status %d, got %d", i, exp.Status, event.Status))
	}
	if exp.Error != "" && event.Error != exp.Error {
		result.AddError(fmt.Sprintf("flow[%d]: expected error %q, got %q", i, exp.Error, event.Error))
	}
	if exp.Valence == "" {
		return nil
	}

	latest, found, err := h.store.LatestCoordinate(ctx)
	if err != nil {
		return fmt.Errorf("flow[%d]: read latest coordinate: %w", i, err)
	}
	if !found {
		result.AddError(fmt.Sprintf("flow[%d]: expected valence %s, but nothing was stored", i, exp.Valence))
		return nil
	}

	got := grid.Classify(latest.X)
	if h.log != nil {
		facts, err := h.readFacts()
		if err != nil {
			return fmt.Errorf("flow[%d]: %w", i, err)
		}
		got = ""
		for _, f := range facts {
			if f.CoordinateID == latest.ID {
				got = f.Valence
			}
		}
		if got == "" {
			result.AddError(fmt.Sprintf("flow[%d]: coordinate %d has no fact group", i, latest.ID))
			return nil
		}
	}
	if string(got) != exp.Valence {
		result.AddError(fmt.Sprintf("flow[%d]: expected valence %s, got %s", i, exp.Valence, got))
	}
	return nil
}

func (h *Harness) readFacts() ([]FactSummary, error) {
	data, err := os.ReadFile(h.logPath)
	if err != nil {
		return nil, fmt.Errorf("read semantic log: %w", err)
	}
	return ParseFactLog(data)
}

// collect copies the final store and log contents into the result.
func (h *Harness) collect(ctx context.Context, result *Result) error {
	coords, err := h.store.Coordinates(ctx)
	if err != nil {
		return fmt.Errorf("failed to read coordinates: %w", err)
	}
	result.Coordinates = coords

	if h.log == nil {
		return nil
	}
	data, err := os.ReadFile(h.logPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to read semantic log: %w", err)
	}
	result.SemanticLog = data

	facts, err := ParseFactLog(data)
	if err != nil {
		return fmt.Errorf("failed to parse semantic log: %w", err)
	}
	result.Facts = facts
	return nil
}
