package semlog

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/affectgrid/internal/grid"
)

func TestNewFactGroup(t *testing.T) {
	g := NewFactGroup(4, grid.ValenceNegative, 7.0)

	assert.Equal(t, int64(4), g.CoordinateID)
	assert.Equal(t, grid.ValenceNegative, g.Valence)
	require.Len(t, g.Triples, 3)

	isA := g.Triples[0]
	assert.Equal(t, NegativeValence, isA.Subject.IRI)
	assert.Equal(t, RDFType, isA.Predicate.IRI)
	assert.Equal(t, Valence, isA.Object.IRI)

	subClass := g.Triples[1]
	assert.Equal(t, Valence, subClass.Subject.IRI)
	assert.Equal(t, RDFSSubClassOf, subClass.Predicate.IRI)
	assert.Equal(t, ProcessProfile, subClass.Object.IRI)

	hasY := g.Triples[2]
	assert.Equal(t, NegativeValence, hasY.Subject.IRI)
	assert.Equal(t, HasYValue, hasY.Predicate.IRI)
	assert.True(t, hasY.Object.IsLiteral())
	assert.Equal(t, "7.0", hasY.Object.Literal)
	assert.Equal(t, XSDDouble, hasY.Object.Datatype)
}

func TestLabelIRI(t *testing.T) {
	assert.Equal(t, NegativeValence, LabelIRI(grid.ValenceNegative))
	assert.Equal(t, PositiveValence, LabelIRI(grid.ValencePositive))
}

func TestFormatDouble(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{7, "7.0"},
		{0, "0.0"},
		{8.5, "8.5"},
		{-2.25, "-2.25"},
		{1e21, "1e+21"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "INF"},
		{math.Inf(-1), "-INF"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDouble(tt.in), "formatDouble(%v)", tt.in)
	}
}
