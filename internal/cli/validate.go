package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conveyor-ci/conveyor/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the pipeline definition for errors",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			cfg *config.File
			err error
		)
		if configPath != "" {
			cfg, err = config.Load(configPath)
		} else {
			cfg, err = config.LoadDefault()
		}
		if err != nil {
			return err
		}

		errs := config.Validate(cfg)
		if len(errs) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "pipeline %q is valid (%d steps)\n", cfg.Pipeline.Name, len(cfg.Pipeline.Steps))
			return nil
		}

		for _, e := range errs {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", e)
		}
		return fmt.Errorf("%d validation error(s)", len(errs))
	},
}
