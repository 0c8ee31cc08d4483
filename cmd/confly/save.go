package main

import (
	"github.com/spf13/cobra"

	"github.com/nauticalab/confly/internal/cli"
)

var (
	// Save command flags
	saveAll     bool
	saveWorkers int
)

// saveCmd represents the save command
var saveCmd = &cobra.Command{
	Use:   "save <output> [config|key=value]...",
	Short: "Write the resolved configuration to a file",
	Long: `Write the resolved configuration to a YAML file, creating parent
directories as needed.

With --all, output is a directory and every config file directly inside
--config-dir is resolved on its own, with the given overrides applied to each.

Examples:
  confly save runs/exp1.yml base resnet optimizer.lr=0.01
  confly save --all ./resolved seed=1`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		common := commonOptions(cmd)
		if saveAll {
			_, err := cli.RunSaveAll(cli.SaveAllOptions{
				CommonOptions: common,
				OutputDir:     args[0],
				Args:          args[1:],
				Workers:       saveWorkers,
			})
			return err
		}
		return cli.RunSave(cli.SaveOptions{
			CommonOptions: common,
			Output:        args[0],
			Args:          args[1:],
		})
	},
}

func init() {
	saveCmd.Flags().BoolVar(&saveAll, "all", false, "Resolve every top-level config into the output directory")
	saveCmd.Flags().IntVar(&saveWorkers, "workers", 4, "Number of configs resolved at once with --all")
}
