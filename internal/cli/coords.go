package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/affectgrid/internal/grid"
	"github.com/roach88/affectgrid/internal/store"
)

// CoordinateRow is one stored coordinate with its classification.
type CoordinateRow struct {
	ID      int64        `json:"id"`
	X       float64      `json:"x"`
	Y       float64      `json:"y"`
	Valence grid.Valence `json:"valence"`
}

// CoordsResult is the output of the coords command.
type CoordsResult struct {
	Database    string          `json:"database"`
	Coordinates []CoordinateRow `json:"coordinates"`
	Total       int             `json:"total"`
}

// NewCoordsCommand creates the coords command.
func NewCoordsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coords",
		Short: "List stored coordinates",
		Long: `List every coordinate in the database in id order, with the
valence its x value classifies to.

The database is never created by this command.

Examples:
  affectgrid coords
  affectgrid coords --db ./grid.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCoords(rootOpts, cmd)
		},
	}

	cmd.Flags().String("db", "", "path to SQLite database (default from config)")
	return cmd
}

func runCoords(opts *RootOptions, cmd *cobra.Command) error {
	cfg, _, err := loadConfig(opts, cmd.Flags(), map[string]string{"store.path": "db"})
	if err != nil {
		return err
	}
	out := formatterFor(cmd, opts)
	path := cfg.Store.Path

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return out.Fail(ExitCommandError, CodeDatabase, fmt.Sprintf("database not found: %s", path), nil)
	}

	st, err := store.Open(path)
	if err != nil {
		return out.Fail(ExitCommandError, CodeDatabase, "failed to open database", err)
	}
	defer st.Close()

	coords, err := st.Coordinates(cmd.Context())
	if err != nil {
		return out.Fail(ExitFailure, CodeDatabase, "failed to read coordinates", err)
	}
	out.VerboseLog("read %d coordinates from %s", len(coords), path)

	result := CoordsResult{
		Database:    path,
		Coordinates: make([]CoordinateRow, 0, len(coords)),
		Total:       len(coords),
	}
	for _, c := range coords {
		result.Coordinates = append(result.Coordinates, CoordinateRow{
			ID: c.ID, X: c.X, Y: c.Y, Valence: grid.Classify(c.X),
		})
	}

	if out.JSON() {
		return out.Success(result, "")
	}
	writeCoordsText(cmd.OutOrStdout(), result)
	return nil
}

func writeCoordsText(w io.Writer, result CoordsResult) {
	if result.Total == 0 {
		fmt.Fprintln(w, "No coordinates stored.")
		return
	}
	fmt.Fprintf(w, "%6s  %8s  %8s  %s\n", "ID", "X", "Y", "VALENCE")
	for _, c := range result.Coordinates {
		fmt.Fprintf(w, "%6d  %8.3f  %8.3f  %s\n", c.ID, c.X, c.Y, c.Valence)
	}
	fmt.Fprintf(w, "\nTotal: %d\n", result.Total)
}
