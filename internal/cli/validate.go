package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nauticalab/confly/internal/validation"
)

// ErrValidationFailed is returned when validation finds errors. The
// details have already been printed.
var ErrValidationFailed = errors.New("validation failed")

// ValidateOptions holds configuration for the validate command
type ValidateOptions struct {
	CommonOptions
	// Args selects what to validate: empty checks every file in the config
	// directory, otherwise the configuration they build is checked.
	Args []string
}

// RunValidate validates configurations and prints the results.
func RunValidate(opts ValidateOptions) error {
	l, err := opts.newLoader()
	if err != nil {
		return err
	}
	validator := validation.NewValidator(l)
	out := opts.out()

	var result *validation.ValidationResult
	target := ""
	if len(opts.Args) == 0 {
		fmt.Fprintf(out, "🔍 Validating all configurations in %s...\n", l.Options().ConfigDir)
		result, err = validator.ValidateAll()
		if err != nil {
			return err
		}
	} else {
		target = strings.Join(opts.Args, " ")
		fmt.Fprintf(out, "🔍 Validating configuration: %s\n", target)
		result = validator.ValidateBuild("", opts.Args)
	}

	printValidationResult(out, result, target, opts.Verbose)
	if !result.IsValid {
		return ErrValidationFailed
	}
	return nil
}

// printValidationResult prints the validation results in a user-friendly format
func printValidationResult(out io.Writer, result *validation.ValidationResult, target string, verbose bool) {
	// Print warnings first
	for _, warning := range result.Warnings {
		fmt.Fprintf(out, "⚠️  Warning: %s\n", warning.Message)
		if warning.FilePath != "" && verbose {
			fmt.Fprintf(out, "   File: %s\n", warning.FilePath)
		}
	}

	for _, err := range result.Errors {
		switch err.Type {
		case validation.TypeDottedKey, validation.TypeEmptyKey:
			fmt.Fprintf(out, "❌ Invalid Key: %s\n", err.Message)
		case validation.TypeInvalid:
			fmt.Fprintf(out, "❌ Configuration Error: %s\n", err.Message)
		default:
			fmt.Fprintf(out, "❌ Error: %s\n", err.Message)
		}
		if verbose && err.FilePath != "" {
			fmt.Fprintf(out, "   File: %s\n", err.FilePath)
		}
	}

	// Print summary
	switch {
	case len(result.Errors) == 0 && len(result.Warnings) == 0:
		if target != "" {
			fmt.Fprintf(out, "✅ Configuration %s is valid!\n", target)
		} else {
			fmt.Fprintln(out, "✅ All configurations are valid!")
		}
	case result.IsValid:
		if target != "" {
			fmt.Fprintf(out, "✅ Configuration %s is valid (%d warnings)\n", target, len(result.Warnings))
		} else {
			fmt.Fprintf(out, "✅ All configurations are valid (%d warnings)\n", len(result.Warnings))
		}
	default:
		fmt.Fprintf(out, "❌ Validation failed with %d errors and %d warnings\n", len(result.Errors), len(result.Warnings))

		fmt.Fprintln(out, "\n💡 Suggestions:")
		hasKeyErrors := false
		for _, err := range result.Errors {
			if (err.Type == validation.TypeDottedKey || err.Type == validation.TypeEmptyKey) && !hasKeyErrors {
				fmt.Fprintln(out, "   • Nest keys instead of writing dots in them (a: {b: 1}, not \"a.b\": 1)")
				hasKeyErrors = true
			}
		}
		fmt.Fprintln(out, "   • Run with -v to see which file each problem comes from")
	}
}
