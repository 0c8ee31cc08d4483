package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nauticalab/confly/pkg/config"
)

// GetOptions holds configuration for the get command
type GetOptions struct {
	CommonOptions
	Key  string
	Args []string

	// Default is printed when Key is missing and HasDefault is set.
	Default    string
	HasDefault bool
}

// RunGet prints the value at a dotted key. Strings print bare, mappings and
// sequences print as YAML.
func RunGet(opts GetOptions) error {
	cfg, err := opts.build(opts.Args)
	if err != nil {
		return err
	}

	value, err := cfg.Get(opts.Key)
	if err != nil {
		if opts.HasDefault && errors.Is(err, config.ErrKeyNotFound) {
			_, err = fmt.Fprintln(opts.out(), opts.Default)
			return err
		}
		return err
	}

	text, err := formatValue(value)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(opts.out(), text)
	return err
}

func formatValue(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "null", nil
	case string:
		return t, nil
	case bool:
		return strconv.FormatBool(t), nil
	case int:
		return strconv.Itoa(t), nil
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64), nil
	case *config.Node:
		data, err := config.Marshal(t)
		if err != nil {
			return "", err
		}
		return strings.TrimSuffix(string(data), "\n"), nil
	}

	var b strings.Builder
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to encode value: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}
