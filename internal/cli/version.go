package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X ...cli.Version=v1.2.3".
var Version = "dev"

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatterFor(cmd, rootOpts)
			data := map[string]string{"version": Version, "go": runtime.Version()}
			return out.Success(data, fmt.Sprintf("affectgrid %s (%s)", Version, runtime.Version()))
		},
	}
}
