package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/nauticalab/confly/internal/git"
)

// Loader builds configurations from named files, overrides and
// interpolation. A Loader holds no per-build state and may be reused.
type Loader struct {
	opts    Options
	log     *zap.Logger
	merger  *Merger
	gitInfo func(path string) (*git.Info, error)
}

// LoaderOption customises a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger. Loads are logged at debug level and override
// type mismatches at warn level.
func WithLogger(logger *zap.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.log = logger
		}
	}
}

// NewLoader resolves opts (see ResolveOptions) and returns a Loader.
func NewLoader(opts Options, options ...LoaderOption) (*Loader, error) {
	resolved, err := ResolveOptions(opts)
	if err != nil {
		return nil, err
	}

	l := &Loader{
		opts:    resolved,
		log:     zap.NewNop(),
		gitInfo: git.GetInfo,
	}
	for _, o := range options {
		o(l)
	}
	l.merger = &Merger{Strict: resolved.Strict, Logger: l.log}
	return l, nil
}

// Build loads a configuration the way a command line describes it:
//
//  1. args are split into config names, key=value overrides and --flags;
//     config, when not empty, is the first name;
//  2. the named files are included and deep-merged in order, with only
//     ${cfg:...} resolved;
//  3. overrides are merged;
//  4. every remaining expression is resolved.
//
// Overrides therefore see ${var:...} targets only after they are applied,
// and may themselves hold expressions.
func Build(config string, args ...string) (*Node, error) {
	l, err := NewLoader(Options{})
	if err != nil {
		return nil, err
	}
	return l.Build(config, args)
}

// Options returns the resolved options.
func (l *Loader) Options() Options {
	return l.opts
}

// Merger returns the merger configured from the options.
func (l *Loader) Merger() *Merger {
	return l.merger
}

// Build runs the full pipeline; see the package-level Build.
func (l *Loader) Build(config string, args []string) (*Node, error) {
	names, overrides, err := ParseArgs(args)
	if err != nil {
		return nil, err
	}
	if config != "" {
		names = append([]string{config}, names...)
	}

	root := NewNode()
	if len(names) > 0 {
		v, err := newResolver(l, opCfg).include(strings.Join(names, ","), "")
		if err != nil {
			return nil, fmt.Errorf("failed to load configs %s: %w", strings.Join(names, ", "), err)
		}
		if root, err = asRoot(v, l.resolveName(names[0]), 0); err != nil {
			return nil, err
		}
	}

	root, err = l.merger.Merge(root, overrides...)
	if err != nil {
		return nil, fmt.Errorf("failed to apply overrides: %w", err)
	}

	if err := newResolver(l).resolveTree(root); err != nil {
		return nil, err
	}

	l.log.Debug("built configuration",
		zap.Strings("configs", names),
		zap.Int("overrides", len(overrides)),
		zap.Int("keys", root.Len()),
	)
	return root, nil
}

// LoadFile loads a single named config without interpolation.
func (l *Loader) LoadFile(name string) (*Node, error) {
	path := l.resolveName(name)
	n, err := Load(path)
	if err != nil {
		return nil, err
	}
	l.log.Debug("loaded config file", zap.String("path", path), zap.Int("keys", n.Len()))
	return n, nil
}

// resolveName maps a config name to a file path: names without a YAML
// extension get Options.Extension and relative names are joined to
// ConfigDir.
func (l *Loader) resolveName(name string) string {
	path := name
	switch filepath.Ext(path) {
	case ".yml", ".yaml":
	default:
		path += l.opts.Extension
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.opts.ConfigDir, path)
	}
	return path
}

// readValue loads any YAML value from path, not only mappings.
func (l *Loader) readValue(path string) (any, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
		}
		return nil, fmt.Errorf("failed to stat config file %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	l.log.Debug("including config file", zap.String("path", path))
	return decodeValue(data, path)
}
