package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nauticalab/confly/internal/cli"
	"github.com/nauticalab/confly/internal/logging"
)

var (
	// Global flags (available to all commands)
	verbose   bool
	configDir string
	strict    bool

	logger *zap.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "confly",
	Short: "Load, merge and resolve YAML configurations for ML experiments",
	Long: `confly builds a configuration from YAML files and command-line overrides.

Arguments name config files (resolved against --config-dir, ".yml" added when
missing) or override values with dotted keys. Files are deep-merged in order,
then overrides are applied, then ${op:arg} expressions are resolved:

  ${cfg:name}        include another config
  ${env:VAR,default} read an environment variable
  ${var:dotted.key}  reference another value
  ${git:short}       repository facts (commit, short, branch, tag, tags, dirty)
  ${mul:a,b}         arithmetic (add, sub, mul, div, floordiv, mod, pow, ...)

Flag-style overrides ("--debug" for debug=true) must follow "--".

Environment: CONFLY_CONFIG_DIR, CONFLY_EXTENSION, CONFLY_STRICT, CONFLY_GIT_DIR.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New(verbose)
		return err
	},
}

func init() {
	// Global flags available to all subcommands
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Directory config names are resolved against (default \".\")")
	rootCmd.PersistentFlags().BoolVar(&strict, "strict", false, "Fail when an override changes the type of a value")

	// Add subcommands to root
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}

// commonOptions collects the global flags.
func commonOptions(cmd *cobra.Command) cli.CommonOptions {
	return cli.CommonOptions{
		ConfigDir: configDir,
		Strict:    strict,
		Verbose:   verbose,
		Logger:    logger,
		Out:       cmd.OutOrStdout(),
	}
}
