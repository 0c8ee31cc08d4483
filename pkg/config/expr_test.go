package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindExpression(t *testing.T) {
	cases := []struct {
		name  string
		input string
		found bool
		op    string
		arg   string
		span  [2]int
	}{
		{"whole string", "${var:a.b}", true, "var", "a.b", [2]int{0, 10}},
		{"embedded", "run_${var:name}_v1", true, "var", "name", [2]int{4, 15}},
		{"nested braces", "${mul:${var:lr},2}", true, "mul", "${var:lr},2", [2]int{0, 18}},
		{"spaces around colon", "${env : HOME }", true, "env", "HOME", [2]int{0, 14}},
		{"skips malformed", "${} ${:x} ${cfg:m}", true, "cfg", "m", [2]int{10, 18}},
		{"unbalanced", "${var:a", false, "", "", [2]int{}},
		{"no expression", "plain $HOME {x}", false, "", "", [2]int{}},
		{"op must be a word", "${a-b:c}", false, "", "", [2]int{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e, ok := findExpression(tc.input, 0)
			assert.Equal(t, tc.found, ok)
			if !tc.found {
				return
			}
			assert.Equal(t, tc.op, e.op)
			assert.Equal(t, tc.arg, e.arg)
			assert.Equal(t, tc.span, [2]int{e.start, e.end})
		})
	}
}

func TestFindExpressionFrom(t *testing.T) {
	s := "${a:1}-${b:2}"
	first, ok := findExpression(s, 0)
	assert.True(t, ok)
	second, ok := findExpression(s, first.end)
	assert.True(t, ok)
	assert.Equal(t, "b", second.op)
	_, ok = findExpression(s, second.end)
	assert.False(t, ok)

	assert.Equal(t, "${mul:2,3}", expression{op: "mul", arg: "2,3"}.String())
	assert.True(t, hasExpression("x ${git:short}"))
	assert.False(t, hasExpression("x $git:short"))
}
