package harness

import (
	"github.com/roach88/affectgrid/internal/grid"
)

// TraceEvent records one request and its response.
type TraceEvent struct {
	Seq    int64  `json:"seq"`
	Method string `json:"method"`
	Path   string `json:"path"`
	Body   string `json:"body,omitempty"`
	Status int    `json:"status"`

	// Error is the error code of a JSON error response.
	Error string `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expect clause and assertion matched.
	Pass bool `json:"pass"`

	// Trace contains every request in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Coordinates is the final content of the coordinates table.
	Coordinates []grid.Coordinate `json:"coordinates"`

	// Facts summarizes the fact groups of the semantic log.
	Facts []FactSummary `json:"facts"`

	// SemanticLog is the raw semantic log, compared against golden files.
	SemanticLog []byte `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:        true,
		Trace:       []TraceEvent{},
		Errors:      []string{},
		Coordinates: []grid.Coordinate{},
		Facts:       []FactSummary{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a request to the trace.
func (r *Result) AddTrace(e TraceEvent) {
	r.Trace = append(r.Trace, e)
}

// Fact returns the fact group summary of a coordinate.
func (r *Result) Fact(id int64) (FactSummary, bool) {
	for _, f := range r.Facts {
		if f.CoordinateID == id {
			return f, true
		}
	}
	return FactSummary{}, false
}

// Coordinate returns the stored row with the given id.
func (r *Result) Coordinate(id int64) (grid.Coordinate, bool) {
	for _, c := range r.Coordinates {
		if c.ID == id {
			return c, true
		}
	}
	return grid.Coordinate{}, false
}
