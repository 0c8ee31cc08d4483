// Package cli implements the confly commands. Each Run function builds a
// configuration the way the command line describes it and writes its
// result to Out; cobra wiring lives in cmd/confly.
package cli

import (
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/nauticalab/confly/pkg/config"
)

// CommonOptions holds the flags shared by every command
type CommonOptions struct {
	ConfigDir string
	Strict    bool
	Verbose   bool

	// Logger receives debug and warning output; nil discards it.
	Logger *zap.Logger
	// Out receives command output; nil means os.Stdout.
	Out io.Writer
}

func (o CommonOptions) out() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}

func (o CommonOptions) newLoader() (*config.Loader, error) {
	return config.NewLoader(
		config.Options{ConfigDir: o.ConfigDir, Strict: o.Strict},
		config.WithLogger(o.Logger),
	)
}

// build runs the full pipeline on command-line args.
func (o CommonOptions) build(args []string) (*config.Node, error) {
	l, err := o.newLoader()
	if err != nil {
		return nil, err
	}
	return l.Build("", args)
}
