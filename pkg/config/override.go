package config

import (
	"fmt"
	"strings"
)

// Override replaces the value at a dotted Path.
//
// Text holds the raw command-line form when the override was parsed from an
// argument. It lets "5" stay a string when the existing leaf is a string.
type Override struct {
	Path  string
	Value any
	Text  string
}

// ParseOverride parses "key.path=value". The value is read as a YAML
// scalar or flow collection ("5" -> 5, "[1, 2]" -> []any{1, 2}); anything
// else, or anything holding a ${...} expression, stays a string.
func ParseOverride(arg string) (Override, error) {
	key, text, ok := strings.Cut(arg, "=")
	if !ok {
		return Override{}, fmt.Errorf("%w: override %q must have the form key=value", ErrInvalidArg, arg)
	}
	key = strings.TrimPrefix(strings.TrimSpace(key), "--")
	if _, err := splitPath(key); err != nil {
		return Override{}, fmt.Errorf("%w: override %q has an invalid key", ErrInvalidArg, arg)
	}
	return Override{Path: key, Value: inferValue(text), Text: text}, nil
}

// ParseArgs splits command-line style arguments into config names and
// overrides:
//
//	model.lr=0.1   -> override
//	--debug        -> override debug=true
//	experiment     -> config name
func ParseArgs(args []string) (configs []string, overrides []Override, err error) {
	for _, arg := range args {
		switch {
		case strings.Contains(arg, "="):
			ov, err := ParseOverride(arg)
			if err != nil {
				return nil, nil, err
			}
			overrides = append(overrides, ov)
		case strings.HasPrefix(arg, "--"):
			key := strings.TrimPrefix(arg, "--")
			if _, err := splitPath(key); err != nil {
				return nil, nil, fmt.Errorf("%w: flag %q has an invalid key", ErrInvalidArg, arg)
			}
			overrides = append(overrides, Override{Path: key, Value: true})
		case strings.TrimSpace(arg) == "":
			continue
		default:
			configs = append(configs, arg)
		}
	}
	return configs, overrides, nil
}

// inferValue resolves override text the way a YAML plain value would be.
func inferValue(text string) any {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || hasExpression(trimmed) {
		return text
	}

	v, err := decodeValue([]byte(trimmed), "override")
	if err != nil {
		return text
	}
	switch v.(type) {
	case *Node:
		if !strings.HasPrefix(trimmed, "{") {
			return text
		}
	case []any:
		if !strings.HasPrefix(trimmed, "[") {
			return text
		}
	case nil:
		switch trimmed {
		case "null", "Null", "NULL", "~":
			return nil
		}
		return text
	}
	return v
}
