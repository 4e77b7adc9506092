package grid

// Viewport maps the pixel plot area of the grid surface onto grid units.
//
// Pixel origin is the top-left corner of the plot area; grid origin is the
// bottom-left corner, so the Y axis is flipped.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Bounds Bounds  `json:"bounds"`
}

// DefaultViewport is the plot size rendered by the grid surface.
var DefaultViewport = Viewport{Width: 600, Height: 600, Bounds: DefaultBounds}

// ToGrid converts a pixel position inside the plot area to grid units.
func (v Viewport) ToGrid(px, py float64) Point {
	b := v.Bounds
	return Point{
		X: b.XMin + px/v.Width*(b.XMax-b.XMin),
		Y: b.YMax - py/v.Height*(b.YMax-b.YMin),
	}
}

// ToPixel converts a grid point to its pixel position in the plot area.
func (v Viewport) ToPixel(p Point) (px, py float64) {
	b := v.Bounds
	px = (p.X - b.XMin) / (b.XMax - b.XMin) * v.Width
	py = (b.YMax - p.Y) / (b.YMax - b.YMin) * v.Height
	return px, py
}
