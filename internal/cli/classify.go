package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/affectgrid/internal/grid"
	"github.com/roach88/affectgrid/internal/semlog"
)

// ClassifyResult is the output of the classify command.
type ClassifyResult struct {
	X       float64      `json:"x"`
	Valence grid.Valence `json:"valence"`
	IRI     string       `json:"iri"`
}

// NewClassifyCommand creates the classify command.
func NewClassifyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <x>",
		Short: "Classify an x value",
		Long: `Print the valence label a click with the given x value gets,
and the ontology term written to the semantic log for it.

Examples:
  affectgrid classify 2
  affectgrid classify 8.5 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatterFor(cmd, rootOpts)

			x, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return out.Fail(ExitCommandError, CodeInvalidArgument, fmt.Sprintf("x must be a number, got %q", args[0]), err)
			}

			v := grid.Classify(x)
			result := ClassifyResult{X: x, Valence: v, IRI: semlog.LabelIRI(v)}
			return out.Success(result, fmt.Sprintf("%s <%s>", result.Valence, result.IRI))
		},
	}
}
