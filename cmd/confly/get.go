package main

import (
	"github.com/spf13/cobra"

	"github.com/nauticalab/confly/internal/cli"
)

var (
	// Get command flags
	getDefault string
)

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get <key> [config|key=value]...",
	Short: "Print one value of the resolved configuration",
	Long: `Print the value at a dotted key. Strings print bare; mappings and
sequences print as YAML. A missing key is an error unless --default is given.

Examples:
  confly get optimizer.lr base
  confly get train.steps base --default 1000`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RunGet(cli.GetOptions{
			CommonOptions: commonOptions(cmd),
			Key:           args[0],
			Args:          args[1:],
			Default:       getDefault,
			HasDefault:    cmd.Flags().Changed("default"),
		})
	},
}

func init() {
	getCmd.Flags().StringVar(&getDefault, "default", "", "Value to print when the key is missing")
}
