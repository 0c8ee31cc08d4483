package config

import (
	"errors"
	"fmt"
	"strings"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// EnvPrefix prefixes every environment variable read into Options.
const EnvPrefix = "CONFLY_"

// Options controls where configs are found and how overrides are checked.
type Options struct {
	// ConfigDir is the directory config names are resolved against.
	// Env: CONFLY_CONFIG_DIR
	ConfigDir string `env:"CONFIG_DIR" validate:"omitempty,dir"`

	// Extension is appended to config names that carry neither ".yml" nor
	// ".yaml".
	// Env: CONFLY_EXTENSION
	Extension string `env:"EXTENSION" validate:"omitempty,oneof=.yml .yaml"`

	// Strict turns override type mismatches into errors instead of warnings.
	// Env: CONFLY_STRICT
	Strict bool `env:"STRICT"`

	// GitDir is the path whose repository answers ${git:...}. Defaults to
	// ConfigDir.
	// Env: CONFLY_GIT_DIR
	GitDir string `env:"GIT_DIR" validate:"omitempty,dir"`
}

// Package-level validator used by Options.Validate.
var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
}

// DefaultOptions returns the options used when nothing else is set.
func DefaultOptions() Options {
	return Options{
		ConfigDir: ".",
		Extension: ".yml",
	}
}

// OptionsFromEnv reads CONFLY_* environment variables.
func OptionsFromEnv() (Options, error) {
	var opts Options
	if err := env.ParseWithOptions(&opts, env.Options{Prefix: EnvPrefix}); err != nil {
		return Options{}, fmt.Errorf("%w: failed to read environment: %w", ErrInvalidOptions, err)
	}
	return opts, nil
}

// ResolveOptions layers explicit values over CONFLY_* environment variables
// over defaults, then validates the result. Only non-zero fields take
// precedence, so an explicit Strict=false does not override CONFLY_STRICT.
func ResolveOptions(explicit Options) (Options, error) {
	fromEnv, err := OptionsFromEnv()
	if err != nil {
		return Options{}, err
	}

	resolved := explicit
	for _, layer := range []Options{fromEnv, DefaultOptions()} {
		if err := mergo.Merge(&resolved, layer); err != nil {
			return Options{}, fmt.Errorf("%w: failed to merge options: %w", ErrInvalidOptions, err)
		}
	}
	if resolved.GitDir == "" {
		resolved.GitDir = resolved.ConfigDir
	}

	if err := resolved.Validate(); err != nil {
		return Options{}, err
	}
	return resolved, nil
}

// Validate checks field constraints.
func (o Options) Validate() error {
	err := validate.Struct(o)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidOptions, strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "dir":
		return fmt.Sprintf("%s: %q is not an existing directory", fe.Field(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s: %q must be one of [%s]", fe.Field(), fe.Value(), fe.Param())
	}
	return fmt.Sprintf("%s: failed %q check", fe.Field(), fe.Tag())
}
