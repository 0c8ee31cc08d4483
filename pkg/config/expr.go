package config

import "strings"

// expression is one ${op:arg} occurrence inside a string. start and end are
// byte offsets of "${" and one past the closing "}".
type expression struct {
	start int
	end   int
	op    string
	arg   string
}

func (e expression) String() string {
	return "${" + e.op + ":" + e.arg + "}"
}

// findExpression returns the first well-formed expression at or after from.
// The op is a word ([A-Za-z0-9_]+); the arg may hold nested braces, which
// must balance. Malformed candidates are skipped and stay literal text.
func findExpression(s string, from int) (expression, bool) {
	for from < len(s) {
		idx := strings.Index(s[from:], "${")
		if idx < 0 {
			return expression{}, false
		}
		start := from + idx
		if e, ok := scanExpression(s, start); ok {
			return e, true
		}
		from = start + 2
	}
	return expression{}, false
}

func scanExpression(s string, start int) (expression, bool) {
	i := start + 2
	opStart := i
	for i < len(s) && isWordByte(s[i]) {
		i++
	}
	if i == opStart {
		return expression{}, false
	}
	op := s[opStart:i]

	i = skipSpaces(s, i)
	if i >= len(s) || s[i] != ':' {
		return expression{}, false
	}
	i = skipSpaces(s, i+1)

	argStart := i
	depth := 1
	for ; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return expression{
					start: start,
					end:   i + 1,
					op:    op,
					arg:   strings.TrimRight(s[argStart:i], " \t"),
				}, true
			}
		}
	}
	return expression{}, false
}

// ContainsExpression reports whether s holds a well-formed ${op:arg}
// expression. After a build this means the op was not recognised.
func ContainsExpression(s string) bool {
	return hasExpression(s)
}

// hasExpression reports whether s holds at least one well-formed expression.
func hasExpression(s string) bool {
	_, ok := findExpression(s, 0)
	return ok
}

func isWordByte(c byte) bool {
	return c == '_' ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}

func skipSpaces(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}
