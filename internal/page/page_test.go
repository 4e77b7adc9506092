package page

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/affectgrid/internal/grid"
)

func render(t *testing.T, d Data) string {
	t.Helper()
	r, err := NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, d))
	return buf.String()
}

func TestRender_Default(t *testing.T) {
	html := render(t, DefaultData())

	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, `<canvas id="grid" width="600" height="600">`)
	assert.Contains(t, html, "save_coordinates")
	assert.Contains(t, html, `"x_max":9`)
	assert.Contains(t, html, "fetch(endpoint")
	assert.Contains(t, html, `"vertical":[0,`)
	assert.Contains(t, html, "canvas.clientLeft")

	for _, label := range []string{
		"Stress", "Übererregung", "Euphorie",
		"Depression", "Schläfrigkeit", "Entspannung",
		"Unangenehme Gefühle", "Angenehme Gefühle",
	} {
		assert.Contains(t, html, label)
	}
}

func TestRender_NormalizesLabels(t *testing.T) {
	d := DefaultData()
	d.Labels = Labels{
		Top:  []string{"U\u0308bererregung"},
		Left: "Unangenehme Gefu\u0308hle",
	}

	html := render(t, d)
	assert.Contains(t, html, "Übererregung")
	assert.Contains(t, html, "Unangenehme Gefühle")
	assert.NotContains(t, html, "\u0308")
}

func TestRender_EscapesTitle(t *testing.T) {
	d := DefaultData()
	d.Title = "<script>alert(1)</script>"

	html := render(t, d)
	assert.NotContains(t, html, "<title><script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestRender_DefaultsEndpoint(t *testing.T) {
	d := DefaultData()
	d.Endpoint = ""
	assert.Contains(t, render(t, d), "save_coordinates")
}

func TestRender_InvalidViewport(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	d := DefaultData()
	d.Viewport = grid.Viewport{}

	var buf bytes.Buffer
	err = r.Render(&buf, d)
	require.Error(t, err)
	assert.Zero(t, buf.Len(), "nothing is written on error")
}

func TestLabels_NormalizedDoesNotAlias(t *testing.T) {
	l := Labels{Top: []string{"a"}, Bottom: []string{"b"}}
	n := l.Normalized()
	n.Top[0] = "changed"
	assert.Equal(t, "a", l.Top[0])
}

func TestGridLines(t *testing.T) {
	lines := gridLines(grid.DefaultViewport)

	require.Len(t, lines.Vertical, 10)
	require.Len(t, lines.Horizontal, 10)

	// x grows to the right, y grows upward from the bottom edge.
	assert.Equal(t, 0.0, lines.Vertical[0])
	assert.Equal(t, 600.0, lines.Vertical[9])
	assert.Equal(t, 600.0, lines.Horizontal[0])
	assert.Equal(t, 0.0, lines.Horizontal[9])
	assert.InDelta(t, 200.0, lines.Vertical[3], 1e-9)
	assert.InDelta(t, 400.0, lines.Horizontal[3], 1e-9)
}

func TestGridLines_FractionalBounds(t *testing.T) {
	v := grid.Viewport{Width: 100, Height: 100, Bounds: grid.Bounds{XMin: 0.5, XMax: 2.5, YMin: 0, YMax: 1}}
	lines := gridLines(v)

	assert.Equal(t, []float64{25, 75}, lines.Vertical)
	assert.Equal(t, []float64{100, 0}, lines.Horizontal)
}
