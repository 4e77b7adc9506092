package grid

import "fmt"

// Valence is the positive/negative affective quality of a grid point.
type Valence string

const (
	// ValenceNegative covers the left half of the grid (unpleasant feelings).
	ValenceNegative Valence = "Negative"
	// ValencePositive covers the right half of the grid (pleasant feelings).
	ValencePositive Valence = "Positive"
)

// ValenceThreshold bisects the horizontal axis. X values below it are
// negative, everything else is positive.
const ValenceThreshold = 5.0

// Classify maps an x coordinate to its valence.
//
// Classify is total: any float64 yields a label. NaN never compares below
// the threshold and is therefore Positive.
func Classify(x float64) Valence {
	if x < ValenceThreshold {
		return ValenceNegative
	}
	return ValencePositive
}

// ParseValence converts a label name back to a Valence.
func ParseValence(s string) (Valence, error) {
	switch Valence(s) {
	case ValenceNegative, ValencePositive:
		return Valence(s), nil
	default:
		return "", fmt.Errorf("unknown valence %q", s)
	}
}
