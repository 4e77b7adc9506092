package grid

import "fmt"

// Point is an unpersisted click position in grid units.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Coordinate is an accepted click persisted by the coordinate store.
// ID is zero until the store assigns one.
type Coordinate struct {
	ID int64   `json:"id" yaml:"id"`
	X  float64 `json:"x" yaml:"x"`
	Y  float64 `json:"y" yaml:"y"`
}

// Point returns the position of the coordinate without its identity.
func (c Coordinate) Point() Point {
	return Point{X: c.X, Y: c.Y}
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%g, %g) #%d", c.X, c.Y, c.ID)
}

// Bounds is a closed axis-aligned rectangle in grid units.
type Bounds struct {
	XMin float64 `json:"x_min" yaml:"x_min"`
	XMax float64 `json:"x_max" yaml:"x_max"`
	YMin float64 `json:"y_min" yaml:"y_min"`
	YMax float64 `json:"y_max" yaml:"y_max"`
}

// Declared range of both axes.
const (
	AxisMin = 0.0
	AxisMax = 9.0
)

// DefaultBounds is the grid's declared coordinate domain.
var DefaultBounds = Bounds{XMin: AxisMin, XMax: AxisMax, YMin: AxisMin, YMax: AxisMax}

// Contains reports whether p lies inside b, edges included.
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.XMin && p.X <= b.XMax && p.Y >= b.YMin && p.Y <= b.YMax
}

// Clamp returns p moved onto the nearest point of b.
func (b Bounds) Clamp(p Point) Point {
	return Point{X: clamp(p.X, b.XMin, b.XMax), Y: clamp(p.Y, b.YMin, b.YMax)}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
