package main

import (
	"github.com/spf13/cobra"

	"github.com/nauticalab/confly/internal/cli"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate [config|key=value]...",
	Short: "Check configurations for common mistakes",
	Long: `Check configurations for common mistakes.

Without arguments every YAML file under --config-dir is parsed and checked.
With arguments the configuration they build is resolved and checked.

This command checks for:
- Malformed YAML, duplicate keys and failed interpolation
- Keys containing dots, which dotted paths cannot reach
- Expressions left unresolved and null values (warnings)

Examples:
  confly validate
  confly validate base resnet optimizer.lr=0.01`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RunValidate(cli.ValidateOptions{
			CommonOptions: commonOptions(cmd),
			Args:          args,
		})
	},
}
