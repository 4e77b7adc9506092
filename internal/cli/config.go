package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/roach88/affectgrid/internal/config"
)

// loadConfig resolves the effective configuration for a command. keys maps
// config keys to flags of fs that may override them.
func loadConfig(opts *RootOptions, fs *pflag.FlagSet, keys map[string]string) (config.Config, string, error) {
	v := config.New()

	file, err := config.ReadFile(v, opts.ConfigFile)
	if err != nil {
		return config.Config{}, "", WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if fs != nil && len(keys) > 0 {
		if err := config.BindFlags(v, fs, keys); err != nil {
			return config.Config{}, "", WrapExitError(ExitCommandError, "failed to bind flags", err)
		}
	}

	cfg, err := config.Load(v)
	if err != nil {
		return config.Config{}, "", WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	return cfg, file, nil
}

// NewConfigCommand creates the config command group.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	cmd.AddCommand(newConfigShowCommand(rootOpts))
	return cmd
}

func newConfigShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Long: `Print the configuration serve would use after merging defaults,
the config file and AFFECTGRID_* environment variables.

Examples:
  affectgrid config show
  AFFECTGRID_SERVER_PORT=9000 affectgrid config show
  affectgrid config show --config ./deploy/affectgrid.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, file, err := loadConfig(opts, nil, nil)
			if err != nil {
				return err
			}
			out := formatterFor(cmd, opts)
			if file != "" {
				out.VerboseLog("config file: %s", file)
			}

			if out.JSON() {
				return out.Success(map[string]any{"file": file, "config": cfg}, "")
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return WrapExitError(ExitFailure, "failed to render config", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
