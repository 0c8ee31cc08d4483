// Package validation checks configuration trees for problems that the
// loader accepts but that usually point at a mistake: keys that dotted
// paths cannot reach, expressions nobody resolved and values left null.
package validation

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/nauticalab/confly/pkg/config"
)

// Issue categories.
const (
	TypeInvalid    = "invalid"
	TypeDottedKey  = "dotted_key"
	TypeEmptyKey   = "empty_key"
	TypeUnresolved = "unresolved"
	TypeNull       = "null"
	TypeFragment   = "fragment"
	TypeEmpty      = "empty"
)

// Validator checks configurations found through a loader.
type Validator struct {
	loader *config.Loader
}

// ValidationResult contains all validation results
type ValidationResult struct {
	// Errors is a list of fatal validation errors
	Errors []ValidationError
	// Warnings is a list of non-fatal validation warnings
	Warnings []ValidationWarning
	// IsValid indicates if the validation passed (no errors)
	IsValid bool
}

// ValidationError represents a validation failure
type ValidationError struct {
	// Type is the category of error (e.g., "invalid", "dotted_key")
	Type string
	// Path is the dotted path of the offending value, if any
	Path string
	// Message is a human-readable error description
	Message string
	// FilePath is the configuration file causing the error, if known
	FilePath string
}

// ValidationWarning represents a non-fatal validation issue
type ValidationWarning struct {
	Type     string
	Path     string
	Message  string
	FilePath string
}

// NewValidator creates a validator that loads configs through l.
func NewValidator(l *config.Loader) *Validator {
	return &Validator{loader: l}
}

func newResult() *ValidationResult {
	return &ValidationResult{
		Errors:   []ValidationError{},
		Warnings: []ValidationWarning{},
		IsValid:  true,
	}
}

func (r *ValidationResult) addError(e ValidationError) {
	r.Errors = append(r.Errors, e)
	r.IsValid = false
}

func (r *ValidationResult) addWarning(w ValidationWarning) {
	r.Warnings = append(r.Warnings, w)
}

// ValidateBuild builds a configuration from config and args, as the show
// command would, and checks the resolved tree. A failed build is reported
// as an "invalid" error rather than returned.
func (v *Validator) ValidateBuild(name string, args []string) *ValidationResult {
	result := newResult()

	cfg, err := v.loader.Build(name, args)
	if err != nil {
		result.addError(ValidationError{
			Type:     TypeInvalid,
			Message:  err.Error(),
			FilePath: failedFile(err),
		})
		return result
	}

	checkTree(result, cfg, "", true)
	return result
}

// ValidateAll parses every YAML file under the config directory without
// interpolation and checks its keys. Files whose top level is not a mapping
// can only be included, so they are reported as warnings.
func (v *Validator) ValidateAll() (*ValidationResult, error) {
	dir := v.loader.Options().ConfigDir
	files, err := findConfigFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan config directory %s: %w", dir, err)
	}

	result := newResult()
	if len(files) == 0 {
		result.addWarning(ValidationWarning{
			Type:    TypeEmpty,
			Message: fmt.Sprintf("no configuration files found in %s", dir),
		})
		return result, nil
	}

	for _, rel := range files {
		path := filepath.Join(dir, rel)
		cfg, err := v.loader.LoadFile(rel)
		switch {
		case errors.Is(err, config.ErrNotMapping):
			result.addWarning(ValidationWarning{
				Type:     TypeFragment,
				Message:  fmt.Sprintf("%s is not a mapping and can only be included", rel),
				FilePath: path,
			})
			continue
		case err != nil:
			result.addError(ValidationError{Type: TypeInvalid, Message: err.Error(), FilePath: path})
			continue
		}

		checkTree(result, cfg, path, false)
	}
	return result, nil
}

// Check validates an already built tree. Unresolved expressions are
// reported as warnings.
func Check(cfg *config.Node) *ValidationResult {
	result := newResult()
	checkTree(result, cfg, "", true)
	return result
}

func checkTree(result *ValidationResult, cfg *config.Node, file string, resolved bool) {
	var walk func(v any, path string)
	walk = func(v any, path string) {
		switch t := v.(type) {
		case *config.Node:
			for _, k := range t.Keys() {
				child := joinPath(path, k)
				switch {
				case strings.TrimSpace(k) == "":
					result.addError(ValidationError{
						Type:     TypeEmptyKey,
						Path:     path,
						Message:  fmt.Sprintf("empty key under %s", displayPath(path)),
						FilePath: file,
					})
				case strings.Contains(k, "."):
					result.addError(ValidationError{
						Type:     TypeDottedKey,
						Path:     child,
						Message:  fmt.Sprintf("key %q contains a dot and cannot be reached by a dotted path", k),
						FilePath: file,
					})
				}
				value, _ := t.Lookup(k)
				walk(value, child)
			}
		case []any:
			for i, e := range t {
				walk(e, joinPath(path, strconv.Itoa(i)))
			}
		case string:
			if resolved && config.ContainsExpression(t) {
				result.addWarning(ValidationWarning{
					Type:     TypeUnresolved,
					Path:     path,
					Message:  fmt.Sprintf("%s holds an unresolved expression %q", path, t),
					FilePath: file,
				})
			}
		case nil:
			result.addWarning(ValidationWarning{
				Type:     TypeNull,
				Path:     path,
				Message:  fmt.Sprintf("%s is null", path),
				FilePath: file,
			})
		}
	}
	walk(cfg, "")
}

// findConfigFiles returns YAML files under dir, relative to it and sorted.
func findConfigFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Skip hidden directories such as .git
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		switch filepath.Ext(path) {
		case ".yml", ".yaml":
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// failedFile extracts the file named by a parse error, if any.
func failedFile(err error) string {
	var pe *config.ParseError
	if errors.As(err, &pe) {
		return pe.File
	}
	return ""
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func displayPath(path string) string {
	if path == "" {
		return "the root"
	}
	return path
}
