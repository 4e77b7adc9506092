package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/affectgrid/internal/grid"
	"github.com/roach88/affectgrid/internal/semlog"
)

// CoordinateWriter persists accepted coordinates.
// Implemented by *store.Store.
type CoordinateWriter interface {
	InsertCoordinate(ctx context.Context, x, y float64) (int64, error)
}

// FactSink receives one fact group per stored coordinate.
// Implemented by *semlog.Log.
type FactSink interface {
	Append(ctx context.Context, g semlog.FactGroup) error
}

// Recorder observes pipeline outcomes. Implemented by *metrics.Recorder.
type Recorder interface {
	Accepted(v grid.Valence, d time.Duration)
	Failed(code string)
	QueueDepth(n int)
}

// Result describes a fully processed submission.
type Result struct {
	Coordinate grid.Coordinate
	Valence    grid.Valence

	// Logged is true when a fact group was appended to the semantic log.
	Logged bool
}

// Pipeline is the single-writer ingestion loop.
//
// Thread-safety model:
//   - Ingest(), Submit(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
type Pipeline struct {
	store    CoordinateWriter
	sink     FactSink
	decoder  *Decoder
	policy   grid.RangePolicy
	bounds   grid.Bounds
	recorder Recorder
	logger   *slog.Logger
	queue    *jobQueue
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSemanticLog enables step 3. Without it the pipeline only stores and
// classifies coordinates.
func WithSemanticLog(sink FactSink) Option {
	return func(p *Pipeline) {
		p.sink = sink
	}
}

// WithRangePolicy sets how out-of-range points are handled (default RangeAccept).
func WithRangePolicy(policy grid.RangePolicy) Option {
	return func(p *Pipeline) {
		p.policy = policy
	}
}

// WithBounds overrides the grid bounds used by the range policy.
func WithBounds(b grid.Bounds) Option {
	return func(p *Pipeline) {
		p.bounds = b
	}
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithLogger sets the structured logger (default slog.Default()).
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a Pipeline writing to the given store.
func New(store CoordinateWriter, opts ...Option) (*Pipeline, error) {
	if store == nil {
		return nil, fmt.Errorf("new pipeline: coordinate store is required")
	}

	decoder, err := NewDecoder()
	if err != nil {
		return nil, fmt.Errorf("new pipeline: %w", err)
	}

	p := &Pipeline{
		store:    store,
		decoder:  decoder,
		policy:   grid.RangeAccept,
		bounds:   grid.DefaultBounds,
		recorder: nopRecorder{},
		logger:   slog.Default(),
		queue:    newJobQueue(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if _, err := grid.ParseRangePolicy(string(p.policy)); err != nil {
		return nil, fmt.Errorf("new pipeline: %w", err)
	}

	return p, nil
}

// SemanticLogEnabled reports whether step 3 is configured.
func (p *Pipeline) SemanticLogEnabled() bool {
	return p.sink != nil
}

// Ingest decodes a raw request body and submits it.
func (p *Pipeline) Ingest(ctx context.Context, body []byte) (Result, error) {
	pt, err := p.decoder.Decode(body)
	if err != nil {
		p.recorder.Failed(string(CodeOf(err)))
		return Result{}, err
	}
	return p.Submit(ctx, pt)
}

// Submit applies the range policy, enqueues the point and waits for the Run
// loop to process it.
//
// If ctx ends while the point is still queued, Submit returns ctx.Err(); a
// point that was already dequeued is still processed to completion.
func (p *Pipeline) Submit(ctx context.Context, pt grid.Point) (Result, error) {
	admitted, ok := p.policy.Apply(p.bounds, pt)
	if !ok {
		err := newOutOfRangeError(pt.X, pt.Y)
		p.recorder.Failed(string(err.Code))
		return Result{}, err
	}

	j := &job{
		ctx:      ctx,
		point:    admitted,
		enqueued: time.Now(),
		reply:    make(chan reply, 1),
	}
	if !p.queue.Enqueue(j) {
		p.recorder.Failed(string(ErrCodeStopped))
		return Result{}, errStopped
	}
	p.recorder.QueueDepth(p.queue.Len())

	select {
	case r := <-j.reply:
		return r.result, r.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Run starts the single-writer loop.
// Blocks until ctx is cancelled or Stop() is called.
//
// CRITICAL: Must be called from exactly ONE goroutine.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline starting",
		"semantic_log", p.SemanticLogEnabled(),
		"range_policy", p.policy,
	)

	for {
		if j, ok := p.queue.TryDequeue(); ok {
			p.recorder.QueueDepth(p.queue.Len())
			p.handle(j)
			continue
		}

		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping: context cancelled")
			p.rejectPending(p.queue.Close())
			return ctx.Err()

		case <-p.queue.Wait():
			// The signal channel closes when the queue is closed. Remaining
			// jobs were handed back by Close, so nothing is left to drain.
			if p.queue.Closed() {
				p.logger.Info("pipeline stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop closes the queue. Pending submissions fail with PIPELINE_STOPPED and
// Run returns once the in-flight submission finishes.
func (p *Pipeline) Stop() {
	p.rejectPending(p.queue.Close())
}

func (p *Pipeline) rejectPending(pending []*job) {
	for _, j := range pending {
		p.recorder.Failed(string(ErrCodeStopped))
		j.respond(Result{}, errStopped)
	}
}

// handle processes one job and replies to its submitter.
// CRITICAL: Called only from Run() goroutine - single-writer guarantee.
func (p *Pipeline) handle(j *job) {
	// The submitter gave up before its turn; nothing has been written yet.
	if err := j.ctx.Err(); err != nil {
		p.logger.Debug("dropping abandoned submission", "x", j.point.X, "y", j.point.Y)
		j.respond(Result{}, err)
		return
	}

	// Detach from request cancellation so steps 1-3 run as a unit.
	ctx := context.WithoutCancel(j.ctx)

	res, err := p.process(ctx, j.point)
	if err != nil {
		p.recorder.Failed(string(CodeOf(err)))
	}
	// A failed log append still leaves a stored, classified row.
	if err == nil || IsLogAppendFailure(err) {
		p.recorder.Accepted(res.Valence, time.Since(j.enqueued))
	}
	j.respond(res, err)
}

// process runs the ordered ingestion steps for one point.
func (p *Pipeline) process(ctx context.Context, pt grid.Point) (Result, error) {
	// Step 1: persist.
	id, err := p.store.InsertCoordinate(ctx, pt.X, pt.Y)
	if err != nil {
		p.logger.Error("coordinate store write failed",
			"x", pt.X,
			"y", pt.Y,
			"error", err,
		)
		return Result{}, newStorageError(err)
	}

	// Step 2: classify.
	coord := grid.Coordinate{ID: id, X: pt.X, Y: pt.Y}
	res := Result{Coordinate: coord, Valence: grid.Classify(pt.X)}

	p.logger.Info("coordinate stored",
		"id", id,
		"x", pt.X,
		"y", pt.Y,
		"valence", res.Valence,
	)

	if p.sink == nil {
		return res, nil
	}

	// Step 3: record facts. No compensation on failure: the coordinate stays.
	if err := p.sink.Append(ctx, semlog.NewFactGroup(id, res.Valence, pt.Y)); err != nil {
		p.logger.Error("semantic log append failed; coordinate stored without facts",
			"id", id,
			"valence", res.Valence,
			"error", err,
		)
		return res, newLogAppendError(id, err)
	}
	res.Logged = true

	return res, nil
}

type nopRecorder struct{}

func (nopRecorder) Accepted(grid.Valence, time.Duration) {}
func (nopRecorder) Failed(string)                        {}
func (nopRecorder) QueueDepth(int)                       {}
