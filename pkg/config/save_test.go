package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveRoundTrip(t *testing.T) {
	orig := mustLoad(t, `name: resnet
version: "2"
depth: 18
lr: 1.0
dropout: 0.25
pretrained: false
head: null
layers: [64, 128]
optimizer:
  betas: [0.9, 0.999]
  name: adam
`)

	path := filepath.Join(t.TempDir(), "out", "resolved.yml")
	require.NoError(t, Save(orig, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "version: \"2\"")
	assert.Contains(t, text, "lr: 1.0")
	assert.Contains(t, text, "head: null")
	assert.Contains(t, text, "optimizer:\n  betas:\n")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.True(t, orig.Equal(loaded))
	assert.Equal(t, orig.Keys(), loaded.Keys())

	opt, err := loaded.GetNode("optimizer")
	require.NoError(t, err)
	assert.Equal(t, []string{"betas", "name"}, opt.Keys())
}

func TestMarshal(t *testing.T) {
	n := NewNode()
	require.NoError(t, n.Set("b", 1))
	require.NoError(t, n.Set("a", "10"))
	require.NoError(t, n.Set("c", map[string]any{}))

	data, err := Marshal(n)
	require.NoError(t, err)
	assert.Equal(t, "b: 1\na: \"10\"\nc: {}\n", string(data))
}
