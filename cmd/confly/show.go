package main

import (
	"github.com/spf13/cobra"

	"github.com/nauticalab/confly/internal/cli"
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show [config|key=value]...",
	Short: "Print the resolved configuration",
	Long: `Print the resolved configuration as YAML.

Examples:
  confly show base resnet
  confly show base optimizer.lr=0.01 'train.epochs=${mul:2,10}'
  confly show base -- --debug`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RunShow(cli.ShowOptions{
			CommonOptions: commonOptions(cmd),
			Args:          args,
		})
	},
}
