package harness

import (
	"bytes"
	"fmt"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes the request trace to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s %s -> %d", event.Seq, event.Method, event.Path, event.Body, event.Status)
			if event.Error != "" {
				fmt.Fprintf(&buf, " (%s)", event.Error)
			}
			buf.WriteString("\n")
		}
	}

	return buf.String()
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluateAssertion(result *Result, a Assertion) error {
	switch a.Type {
	case AssertRowCount:
		return assertCount(result, a.Type, len(result.Coordinates), *a.Count)
	case AssertFactCount:
		return assertCount(result, a.Type, len(result.Facts), *a.Count)
	case AssertCoordinate:
		return assertCoordinate(result, a)
	case AssertFact:
		return assertFact(result, a)
	case AssertLogContains:
		return assertLogContains(result, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertCount(result *Result, kind string, got, want int) error {
	if got == want {
		return nil
	}
	return &AssertionError{
		Type:     kind,
		Expected: fmt.Sprintf("%d", want),
		Actual:   fmt.Sprintf("%d", got),
		Trace:    result.Trace,
	}
}

// assertCoordinate checks x and y of one stored row. Floats are compared
// exactly: the store keeps the submitted values unchanged.
func assertCoordinate(result *Result, a Assertion) error {
	c, ok := result.Coordinate(a.ID)
	if !ok {
		return &AssertionError{
			Type:     AssertCoordinate,
			Expected: fmt.Sprintf("row with id %d", a.ID),
			Actual:   fmt.Sprintf("%d rows, none with that id", len(result.Coordinates)),
			Trace:    result.Trace,
		}
	}
	if (a.X != nil && c.X != *a.X) || (a.Y != nil && c.Y != *a.Y) {
		return &AssertionError{
			Type:     AssertCoordinate,
			Expected: describePoint(a.ID, a.X, a.Y),
			Actual:   c.String(),
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertFact(result *Result, a Assertion) error {
	f, ok := result.Fact(a.ID)
	if !ok {
		return &AssertionError{
			Type:     AssertFact,
			Expected: fmt.Sprintf("fact group for coordinate %d", a.ID),
			Actual:   fmt.Sprintf("%d groups, none for that coordinate", len(result.Facts)),
			Trace:    result.Trace,
		}
	}
	if a.Valence != "" && string(f.Valence) != a.Valence {
		return &AssertionError{
			Type:     AssertFact,
			Expected: fmt.Sprintf("coordinate %d valence %s", a.ID, a.Valence),
			Actual:   fmt.Sprintf("valence %s", f.Valence),
			Trace:    result.Trace,
		}
	}
	if a.Y != nil && f.Y != *a.Y {
		return &AssertionError{
			Type:     AssertFact,
			Expected: fmt.Sprintf("coordinate %d y %g", a.ID, *a.Y),
			Actual:   fmt.Sprintf("y %g", f.Y),
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertLogContains(result *Result, a Assertion) error {
	if bytes.Contains(result.SemanticLog, []byte(a.Text)) {
		return nil
	}
	return &AssertionError{
		Type:     AssertLogContains,
		Expected: fmt.Sprintf("semantic log containing %q", a.Text),
		Actual:   fmt.Sprintf("%d bytes without it", len(result.SemanticLog)),
		Trace:    result.Trace,
	}
}

func describePoint(id int64, x, y *float64) string {
	xs, ys := "*", "*"
	if x != nil {
		xs = fmt.Sprintf("%g", *x)
	}
	if y != nil {
		ys = fmt.Sprintf("%g", *y)
	}
	return fmt.Sprintf("(%s, %s) #%d", xs, ys, id)
}
