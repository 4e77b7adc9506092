// Package page renders the affect grid surface served on GET /.
package page

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"math"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/affectgrid/internal/grid"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// DefaultEndpoint is the path the surface POSTs clicks to.
const DefaultEndpoint = "/save_coordinates"

// Labels are the axis titles drawn around the grid.
type Labels struct {
	Top    []string
	Bottom []string
	Left   string
	Right  string
}

// DefaultLabels are the German affect labels of the grid.
var DefaultLabels = Labels{
	Top:    []string{"Stress", "Übererregung", "Euphorie"},
	Bottom: []string{"Depression", "Schläfrigkeit", "Entspannung"},
	Left:   "Unangenehme Gefühle",
	Right:  "Angenehme Gefühle",
}

// Normalized returns a copy with every label in Unicode NFC.
// Decomposed umlauts (u + U+0308) otherwise render differently per font.
func (l Labels) Normalized() Labels {
	out := Labels{
		Top:    make([]string, len(l.Top)),
		Bottom: make([]string, len(l.Bottom)),
		Left:   norm.NFC.String(l.Left),
		Right:  norm.NFC.String(l.Right),
	}
	for i, s := range l.Top {
		out.Top[i] = norm.NFC.String(s)
	}
	for i, s := range l.Bottom {
		out.Bottom[i] = norm.NFC.String(s)
	}
	return out
}

// Data is the input of one render.
type Data struct {
	Title    string
	Endpoint string
	Viewport grid.Viewport
	Labels   Labels

	// MarkerRadius is the marker size in pixels.
	MarkerRadius float64
}

// DefaultData returns the data for the standard grid surface.
func DefaultData() Data {
	return Data{
		Title:        "Affect Grid",
		Endpoint:     DefaultEndpoint,
		Viewport:     grid.DefaultViewport,
		Labels:       DefaultLabels,
		MarkerRadius: 10,
	}
}

// GridLines are the pixel offsets of the integer grid lines.
type GridLines struct {
	// Vertical holds one canvas x offset per integer x value.
	Vertical []float64 `json:"vertical"`
	// Horizontal holds one canvas y offset per integer y value.
	Horizontal []float64 `json:"horizontal"`
}

func gridLines(v grid.Viewport) GridLines {
	b := v.Bounds
	var lines GridLines
	for x := math.Ceil(b.XMin); x <= b.XMax; x++ {
		px, _ := v.ToPixel(grid.Point{X: x, Y: b.YMin})
		lines.Vertical = append(lines.Vertical, px)
	}
	for y := math.Ceil(b.YMin); y <= b.YMax; y++ {
		_, py := v.ToPixel(grid.Point{X: b.XMin, Y: y})
		lines.Horizontal = append(lines.Horizontal, py)
	}
	return lines
}

// Renderer executes the parsed grid template.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("index.html.tmpl").Funcs(template.FuncMap{
		"gridLines": gridLines,
	}).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse page templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render writes the complete HTML document to w.
//
// The document is rendered into a buffer first so a template error never
// leaves a half-written response.
func (r *Renderer) Render(w io.Writer, d Data) error {
	if d.Viewport.Width <= 0 || d.Viewport.Height <= 0 {
		return fmt.Errorf("render page: viewport must have positive size, got %gx%g",
			d.Viewport.Width, d.Viewport.Height)
	}
	if d.Endpoint == "" {
		d.Endpoint = DefaultEndpoint
	}
	d.Labels = d.Labels.Normalized()

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, d); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}
