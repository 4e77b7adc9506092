package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/affectgrid/internal/grid"
)

func TestParseFactLog_Turtle(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "scenarios", "golden", "two_submissions.golden"))
	require.NoError(t, err)

	facts, err := ParseFactLog(data)
	require.NoError(t, err)
	assert.Equal(t, []FactSummary{
		{CoordinateID: 1, Valence: grid.ValenceNegative, Y: 1},
		{CoordinateID: 2, Valence: grid.ValencePositive, Y: 9},
	}, facts)
}

func TestParseFactLog_NTriples(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "scenarios", "golden", "ntriples_log.golden"))
	require.NoError(t, err)

	facts, err := ParseFactLog(data)
	require.NoError(t, err)
	require.Len(t, facts, 2)
	assert.Equal(t, 4.5, facts[0].Y)
	assert.Equal(t, 2.25, facts[1].Y)
}

func TestParseFactLog_Empty(t *testing.T) {
	facts, err := ParseFactLog(nil)
	require.NoError(t, err)
	assert.Empty(t, facts)
}

func TestParseFactLog_Errors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		errMsg string
	}{
		{"y outside group", "obo:MFOEM_000208 obo:y \"1.0\"^^xsd:double .\n", "outside a group"},
		{"group without y", "# coordinate 1 valence Negative\n", "no y fact"},
		{"two y facts", "# coordinate 1 valence Negative\nobo:x obo:y \"1.0\"^^xsd:double .\nobo:x obo:y \"2.0\"^^xsd:double .\n", "two y facts"},
		{"bad valence", "# coordinate 1 valence Neutral\n", "unknown valence"},
		{"bad literal", "# coordinate 1 valence Negative\nobo:x obo:y \"abc\"^^xsd:double .\n", "y literal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFactLog([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
