package grid

import "fmt"

// RangePolicy decides what happens to submissions outside DefaultBounds.
type RangePolicy string

const (
	// RangeAccept stores out-of-range points unchanged.
	RangeAccept RangePolicy = "accept"
	// RangeReject refuses out-of-range points before anything is stored.
	RangeReject RangePolicy = "reject"
	// RangeClamp moves out-of-range points onto the nearest edge.
	RangeClamp RangePolicy = "clamp"
)

// ValidRangePolicies lists the accepted policy names.
var ValidRangePolicies = []RangePolicy{RangeAccept, RangeReject, RangeClamp}

// ParseRangePolicy validates a policy name. The empty string means RangeAccept.
func ParseRangePolicy(s string) (RangePolicy, error) {
	if s == "" {
		return RangeAccept, nil
	}
	for _, p := range ValidRangePolicies {
		if RangePolicy(s) == p {
			return p, nil
		}
	}
	return "", fmt.Errorf("invalid range policy %q: must be one of %v", s, ValidRangePolicies)
}

// Apply returns the point to store and whether it is admissible under the
// policy.
func (p RangePolicy) Apply(b Bounds, pt Point) (Point, bool) {
	switch p {
	case RangeReject:
		return pt, b.Contains(pt)
	case RangeClamp:
		return b.Clamp(pt), true
	default:
		return pt, true
	}
}
