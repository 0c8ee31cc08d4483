package config

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numberRe matches decimal integers and floats with an optional exponent.
// Examples: "3", "-2", "0.5", ".5", "1e-3". Hex, inf and nan are excluded.
var numberRe = regexp.MustCompile(`^[-+]?(?:[0-9]+(?:\.[0-9]*)?|\.[0-9]+)(?:[eE][-+]?[0-9]+)?$`)

// maxExactInt is the largest magnitude a float64 holds without losing
// integer precision.
const maxExactInt = 1 << 53

// coerceNumeric turns numeric strings into int or float64. Floats with no
// fractional part become ints ("2.0" -> 2). Anything else is returned as is.
func coerceNumeric(s string) any {
	t := strings.TrimSpace(s)
	if !numberRe.MatchString(t) {
		return s
	}
	if i, err := strconv.Atoi(t); err == nil {
		return i
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return s
	}
	return collapseFloat(f)
}

// collapseFloat returns f as an int when it is integral and exactly
// representable.
func collapseFloat(f float64) any {
	if f == math.Trunc(f) && math.Abs(f) < maxExactInt {
		return int(f)
	}
	return f
}

// parseNumber reads a numeric math argument.
func parseNumber(s string) (any, bool) {
	t := strings.TrimSpace(s)
	if !numberRe.MatchString(t) {
		return nil, false
	}
	if i, err := strconv.Atoi(t); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return nil, false
	}
	return f, true
}

// spliceString renders a resolved value for insertion into a larger string.
func spliceString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case int:
		return strconv.Itoa(t), true
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	case nil:
		return "null", true
	}
	return "", false
}
