package harness

import (
	"bytes"
	"fmt"
	"net/http"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/affectgrid/internal/grid"
	"github.com/roach88/affectgrid/internal/semlog"
)

// Scenario defines one end-to-end run of the affect grid.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Session is the cookie value sent with every request.
	Session string `yaml:"session,omitempty"`

	// RangePolicy selects the out-of-range handling (default accept).
	RangePolicy string `yaml:"range_policy,omitempty"`

	// SemlogFormat selects the semantic log encoding (default turtle).
	SemlogFormat string `yaml:"semlog_format,omitempty"`

	// DisableSemlog runs the pipeline without step 3.
	DisableSemlog bool `yaml:"disable_semlog,omitempty"`

	// Bounds replaces the 0-9 grid checked by the reject and clamp policies.
	Bounds *grid.Bounds `yaml:"bounds,omitempty"`

	// Setup rows are inserted straight into the store before the flow.
	// They get ids but no fact groups.
	Setup []grid.Point `yaml:"setup,omitempty"`

	// Flow contains the HTTP requests sent in order.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the final store and semantic log.
	Assertions []Assertion `yaml:"assertions"`
}

// FlowStep is one HTTP request.
type FlowStep struct {
	// Method defaults to POST.
	Method string `yaml:"method,omitempty"`

	// Path defaults to /save_coordinates.
	Path string `yaml:"path,omitempty"`

	// Body is sent verbatim, so malformed JSON can be expressed.
	Body string `yaml:"body,omitempty"`

	// Click is a canvas position in pixels. The body is built from it with
	// the grid surface's viewport.
	Click *PixelClick `yaml:"click,omitempty"`

	// Expect is validated against the response. Nil means no check.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// PixelClick is a position on the rendered canvas, origin top-left.
type PixelClick struct {
	PX float64 `yaml:"px"`
	PY float64 `yaml:"py"`
}

// ExpectClause specifies the expected response of a step.
type ExpectClause struct {
	// Status is the expected HTTP status code.
	Status int `yaml:"status"`

	// Error is the expected error code in the JSON error body.
	Error string `yaml:"error,omitempty"`

	// Valence is the expected classification of the stored coordinate.
	Valence string `yaml:"valence,omitempty"`
}

// Assertion validates the final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Count is used by row_count and fact_count.
	Count *int `yaml:"count,omitempty"`

	// ID is the coordinate id for coordinate and fact.
	ID int64 `yaml:"id,omitempty"`

	// X is checked by coordinate.
	X *float64 `yaml:"x,omitempty"`

	// Y is checked by coordinate and fact.
	Y *float64 `yaml:"y,omitempty"`

	// Valence is checked by fact.
	Valence string `yaml:"valence,omitempty"`

	// Text is searched by log_contains.
	Text string `yaml:"text,omitempty"`
}

// Assertion type constants.
const (
	AssertRowCount    = "row_count"
	AssertFactCount   = "fact_count"
	AssertCoordinate  = "coordinate"
	AssertFact        = "fact"
	AssertLogContains = "log_contains"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field checking.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	scenario.applyDefaults()
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func (s *Scenario) applyDefaults() {
	for i := range s.Flow {
		if s.Flow[i].Method == "" {
			s.Flow[i].Method = http.MethodPost
		}
		if s.Flow[i].Path == "" {
			s.Flow[i].Path = "/save_coordinates"
		}
	}
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if _, err := grid.ParseRangePolicy(s.RangePolicy); err != nil {
		return fmt.Errorf("range_policy: %w", err)
	}
	if _, err := semlog.ParseFormat(s.SemlogFormat); err != nil {
		return fmt.Errorf("semlog_format: %w", err)
	}

	if b := s.Bounds; b != nil && (b.XMin >= b.XMax || b.YMin >= b.YMax) {
		return fmt.Errorf("bounds: min must be below max on both axes")
	}

	for i, step := range s.Flow {
		if step.Click != nil && step.Body != "" {
			return fmt.Errorf("flow[%d]: body and click are mutually exclusive", i)
		}
		if step.Expect == nil {
			continue
		}
		if step.Expect.Status == 0 {
			return fmt.Errorf("flow[%d].expect: status is required", i)
		}
		if step.Expect.Valence != "" {
			if _, err := grid.ParseValence(step.Expect.Valence); err != nil {
				return fmt.Errorf("flow[%d].expect: %w", i, err)
			}
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a, s.DisableSemlog); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, semlogDisabled bool) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertRowCount, AssertFactCount:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for %s", index, a.Type)
		}
	case AssertCoordinate:
		if a.ID <= 0 {
			return fmt.Errorf("assertions[%d]: id is required for coordinate", index)
		}
		if a.X == nil && a.Y == nil {
			return fmt.Errorf("assertions[%d]: x or y is required for coordinate", index)
		}
	case AssertFact:
		if a.ID <= 0 {
			return fmt.Errorf("assertions[%d]: id is required for fact", index)
		}
		if a.Valence != "" {
			if _, err := grid.ParseValence(a.Valence); err != nil {
				return fmt.Errorf("assertions[%d]: %w", index, err)
			}
		}
	case AssertLogContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for log_contains", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	if semlogDisabled && (a.Type == AssertFact || a.Type == AssertLogContains) {
		return fmt.Errorf("assertions[%d]: %s needs the semantic log", index, a.Type)
	}
	return nil
}
