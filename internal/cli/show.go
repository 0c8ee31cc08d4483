package cli

import (
	"fmt"

	"github.com/nauticalab/confly/pkg/config"
)

// ShowOptions holds configuration for the show command
type ShowOptions struct {
	CommonOptions
	Args []string
}

// RunShow prints the resolved configuration as YAML.
func RunShow(opts ShowOptions) error {
	cfg, err := opts.build(opts.Args)
	if err != nil {
		return err
	}
	if err := config.Encode(opts.out(), cfg); err != nil {
		return fmt.Errorf("failed to print configuration: %w", err)
	}
	return nil
}
