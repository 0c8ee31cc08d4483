package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOverride(t *testing.T) {
	cases := []struct {
		arg  string
		path string
		want any
	}{
		{"model.lr=0.1", "model.lr", 0.1},
		{"train.epochs=10", "train.epochs", 10},
		{"debug=true", "debug", true},
		{"name=resnet", "name", "resnet"},
		{"--name=vit", "name", "vit"},
		{"head=null", "head", nil},
		{"head=~", "head", nil},
		{"empty=", "empty", ""},
		{"quoted=\"5\"", "quoted", "5"},
		{"layers=[1, 2]", "layers", []any{1, 2}},
		{"expr=${mul:2,3}", "expr", "${mul:2,3}"},
		{"url=a=b", "url", "a=b"},
		{"colon=a: b", "colon", "a: b"},
		{"item=- x", "item", "- x"},
	}
	for _, tc := range cases {
		t.Run(tc.arg, func(t *testing.T) {
			ov, err := ParseOverride(tc.arg)
			require.NoError(t, err)
			assert.Equal(t, tc.path, ov.Path)
			assert.Equal(t, tc.want, ov.Value)
		})
	}

	t.Run("inline mapping", func(t *testing.T) {
		ov, err := ParseOverride("opt={name: sgd, lr: 0.1}")
		require.NoError(t, err)
		node, ok := ov.Value.(*Node)
		require.True(t, ok)
		assert.Equal(t, []string{"name", "lr"}, node.Keys())
	})

	for _, bad := range []string{"noequals", "=5", "a..b=1", "--=1"} {
		t.Run("invalid "+bad, func(t *testing.T) {
			_, err := ParseOverride(bad)
			assert.ErrorIs(t, err, ErrInvalidArg)
		})
	}
}

func TestParseArgs(t *testing.T) {
	configs, overrides, err := ParseArgs([]string{
		"resnet",
		"optimizer.lr=0.01",
		"",
		"--debug",
		"large",
		"--train.epochs=5",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"resnet", "large"}, configs)

	require.Len(t, overrides, 3)
	assert.Equal(t, Override{Path: "optimizer.lr", Value: 0.01, Text: "0.01"}, overrides[0])
	assert.Equal(t, Override{Path: "debug", Value: true}, overrides[1])
	assert.Equal(t, Override{Path: "train.epochs", Value: 5, Text: "5"}, overrides[2])

	_, _, err = ParseArgs([]string{"--"})
	assert.ErrorIs(t, err, ErrInvalidArg)
}
