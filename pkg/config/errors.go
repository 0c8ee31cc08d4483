package config

import (
	"errors"
	"fmt"
)

// Sentinel errors. Every error returned by this package wraps one of these,
// so callers can branch with errors.Is.
var (
	ErrNotFound       = errors.New("configuration file not found")
	ErrParse          = errors.New("failed to parse configuration")
	ErrKeyNotFound    = errors.New("key not found")
	ErrTypeMismatch   = errors.New("type mismatch")
	ErrPathConflict   = errors.New("path conflict")
	ErrInterpolation  = errors.New("interpolation failed")
	ErrInvalidArg     = errors.New("invalid argument")
	ErrInvalidOptions = errors.New("invalid options")

	// ErrNotMapping is wrapped by the *ParseError returned when a document
	// used as a whole configuration is not a mapping.
	ErrNotMapping = errors.New("document is not a mapping")
)

// ParseError reports a malformed document. Line is 1-based and zero when
// the position is unknown.
type ParseError struct {
	File string
	Line int
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	loc := e.File
	if loc == "" {
		loc = "<input>"
	}
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, e.Line)
	}
	return fmt.Sprintf("failed to parse YAML in %s: %s", loc, e.Msg)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// KeyError reports a dotted path that does not resolve. Segment is the first
// path element that was missing.
type KeyError struct {
	Path    string
	Segment string
}

func (e *KeyError) Error() string {
	if e.Segment == "" || e.Segment == e.Path {
		return fmt.Sprintf("key not found: %q", e.Path)
	}
	return fmt.Sprintf("key not found: %q (missing %q)", e.Path, e.Segment)
}

func (e *KeyError) Is(target error) bool { return target == ErrKeyNotFound }

// TypeMismatchError reports a value whose kind does not match what was
// expected at Path.
type TypeMismatchError struct {
	Path string
	Want string
	Got  string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch at %q: expected %s, got %s", e.Path, e.Want, e.Got)
}

func (e *TypeMismatchError) Is(target error) bool { return target == ErrTypeMismatch }

// PathConflictError reports an override path that runs through a scalar.
type PathConflictError struct {
	Path    string
	Segment string
	Kind    string
}

func (e *PathConflictError) Error() string {
	return fmt.Sprintf("cannot set %q: %q holds a %s, not a mapping", e.Path, e.Segment, e.Kind)
}

func (e *PathConflictError) Is(target error) bool { return target == ErrPathConflict }

// InterpolationError reports a failed ${op:arg} expression.
type InterpolationError struct {
	Expr string
	Path string
	Err  error
}

func (e *InterpolationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("interpolation of %s at %q failed: %v", e.Expr, e.Path, e.Err)
	}
	return fmt.Sprintf("interpolation of %s failed: %v", e.Expr, e.Err)
}

func (e *InterpolationError) Unwrap() error { return e.Err }

func (e *InterpolationError) Is(target error) bool { return target == ErrInterpolation }
