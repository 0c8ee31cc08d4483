package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMerge(t *testing.T) {
	cases := []struct {
		name      string
		base      string
		overrides []Override
		want      map[string]any
	}{
		{
			name:      "leaf replaced and siblings kept",
			base:      "a:\n  b: 1\n  c: 2\n",
			overrides: []Override{{Path: "a.b", Value: 5}},
			want:      map[string]any{"a": map[string]any{"b": 5, "c": 2}},
		},
		{
			name:      "missing intermediates created",
			base:      "a: 1\n",
			overrides: []Override{{Path: "x.y.z", Value: "v"}},
			want:      map[string]any{"a": 1, "x": map[string]any{"y": map[string]any{"z": "v"}}},
		},
		{
			name:      "mapping value merged deeply",
			base:      "opt:\n  name: adam\n  lr: 0.1\n",
			overrides: []Override{{Path: "opt", Value: map[string]any{"lr": 0.5}}},
			want:      map[string]any{"opt": map[string]any{"name": "adam", "lr": 0.5}},
		},
		{
			name:      "sequence replaced whole",
			base:      "layers: [1, 2, 3]\n",
			overrides: []Override{{Path: "layers", Value: []any{4}}},
			want:      map[string]any{"layers": []any{4}},
		},
		{
			name:      "sequence element by index",
			base:      "layers:\n  - units: 64\n  - units: 128\n",
			overrides: []Override{{Path: "layers.1.units", Value: 256}},
			want:      map[string]any{"layers": []any{map[string]any{"units": 64}, map[string]any{"units": 256}}},
		},
		{
			name:      "null intermediate becomes a mapping",
			base:      "head: null\n",
			overrides: []Override{{Path: "head.units", Value: 10}},
			want:      map[string]any{"head": map[string]any{"units": 10}},
		},
		{
			name:      "null replaces a value",
			base:      "a: 1\n",
			overrides: []Override{{Path: "a", Value: nil}},
			want:      map[string]any{"a": nil},
		},
		{
			name:      "int widens into a float leaf",
			base:      "lr: 0.1\n",
			overrides: []Override{{Path: "lr", Value: 1}},
			want:      map[string]any{"lr": 1.0},
		},
		{
			name: "later overrides win",
			base: "a: 1\n",
			overrides: []Override{
				{Path: "a", Value: 2},
				{Path: "a", Value: 3},
			},
			want: map[string]any{"a": 3},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			base := mustLoad(t, tc.base)
			got, err := Merge(base, tc.overrides...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.ToMap())
		})
	}
}

func TestMergeLeavesBaseUntouched(t *testing.T) {
	base := mustLoad(t, "a:\n  b: 1\n  c: [1, 2]\n")
	before := base.ToMap()

	_, err := Merge(base,
		Override{Path: "a.b", Value: 2},
		Override{Path: "a.c.0", Value: 9},
		Override{Path: "a.d", Value: map[string]any{"e": 1}},
	)
	require.NoError(t, err)
	assert.Equal(t, before, base.ToMap())
}

func TestMergeKeepsSiblingKeys(t *testing.T) {
	base := mustLoad(t, `model:
  encoder:
    depth: 12
    width: 768
  decoder:
    depth: 6
train:
  epochs: 10
`)
	merged, err := Merge(base, Override{Path: "model.encoder.depth", Value: 24})
	require.NoError(t, err)

	var changed []string
	require.NoError(t, base.Walk(func(path string, value any) error {
		got, err := merged.Get(path)
		require.NoError(t, err)
		if got != value {
			changed = append(changed, path)
		}
		return nil
	}))
	assert.Equal(t, []string{"model.encoder.depth"}, changed)
	assert.Equal(t, base.Keys(), merged.Keys())
}

func TestMergePathConflict(t *testing.T) {
	base := mustLoad(t, "a: 1\nlist: [1, 2]\n")

	_, err := Merge(base, Override{Path: "a.b", Value: 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPathConflict)

	var pc *PathConflictError
	require.True(t, errors.As(err, &pc))
	assert.Equal(t, "a.b", pc.Path)
	assert.Equal(t, "a", pc.Segment)
	assert.Equal(t, "int", pc.Kind)

	_, err = Merge(base, Override{Path: "list.0.x", Value: 2})
	assert.ErrorIs(t, err, ErrPathConflict)

	_, err = Merge(base, Override{Path: "list.7", Value: 2})
	assert.ErrorIs(t, err, ErrKeyNotFound)

	_, err = Merge(base, Override{Path: "a..b", Value: 2})
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMergeTypeMismatch(t *testing.T) {
	base := mustLoad(t, "epochs: 10\nopt:\n  name: adam\n")

	t.Run("lenient logs and takes the override", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		m := &Merger{Logger: zap.New(core)}

		got, err := m.Merge(base, Override{Path: "epochs", Value: "ten"})
		require.NoError(t, err)
		assert.Equal(t, "ten", got.GetOr("epochs", nil))

		entries := logs.FilterMessage("override type does not match existing value").All()
		require.Len(t, entries, 1)
		fields := entries[0].ContextMap()
		assert.Equal(t, "epochs", fields["path"])
		assert.Equal(t, "int", fields["existing"])
		assert.Equal(t, "string", fields["override"])
	})

	t.Run("strict fails", func(t *testing.T) {
		m := &Merger{Strict: true}

		_, err := m.Merge(base, Override{Path: "epochs", Value: 0.5})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTypeMismatch)

		var tm *TypeMismatchError
		require.True(t, errors.As(err, &tm))
		assert.Equal(t, "epochs", tm.Path)
		assert.Equal(t, "int", tm.Want)
		assert.Equal(t, "float", tm.Got)

		// A scalar cannot replace a mapping
		_, err = m.Merge(base, Override{Path: "opt", Value: 1})
		assert.ErrorIs(t, err, ErrTypeMismatch)
	})

	t.Run("strict allows compatible kinds", func(t *testing.T) {
		m := &Merger{Strict: true}
		got, err := m.Merge(base,
			Override{Path: "epochs", Value: 20},
			Override{Path: "opt.name", Value: "sgd"},
			Override{Path: "opt.momentum", Value: 0.9},
			Override{Path: "epochs", Value: "${mul:2,10}"},
		)
		require.NoError(t, err)
		assert.Equal(t, "${mul:2,10}", got.GetOr("epochs", nil))
		assert.Equal(t, "sgd", got.GetOr("opt.name", nil))
	})
}

func TestMergeTextKeepsStringLeaves(t *testing.T) {
	base := mustLoad(t, "version: \"1\"\nname: resnet\n")

	ov, err := ParseOverride("version=2")
	require.NoError(t, err)
	assert.Equal(t, 2, ov.Value)

	m := &Merger{Strict: true}
	got, err := m.Merge(base, ov)
	require.NoError(t, err)
	assert.Equal(t, "2", got.GetOr("version", nil))

	ov, err = ParseOverride("name=true")
	require.NoError(t, err)
	got, err = m.Merge(base, ov)
	require.NoError(t, err)
	assert.Equal(t, "true", got.GetOr("name", nil))
}

func TestMergeOntoExpressionLeaf(t *testing.T) {
	base := mustLoad(t, "batch: ${mul:2,16}\nlr: ${env:LR,0.1}\ntags: ${var:defaults.tags}\n")

	var args []Override
	for _, arg := range []string{"batch=64", "lr=0.01", "tags=[a, b]"} {
		ov, err := ParseOverride(arg)
		require.NoError(t, err)
		args = append(args, ov)
	}

	m := &Merger{Strict: true}
	got, err := m.Merge(base, args...)
	require.NoError(t, err)
	assert.Equal(t, 64, got.GetOr("batch", nil))
	assert.Equal(t, 0.01, got.GetOr("lr", nil))
	assert.Equal(t, []any{"a", "b"}, got.GetOr("tags", nil))
}

func TestMergeMap(t *testing.T) {
	base := mustLoad(t, "a:\n  b: 1\n")

	got, err := MergeMap(base, map[string]any{
		"a.b": 2,
		"a":   map[string]any{"c": 3},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": map[string]any{"b": 2, "c": 3}}, got.ToMap())
}

func TestMergeNodes(t *testing.T) {
	base := mustLoad(t, "model:\n  name: resnet\n  depth: 18\ndata: cifar\n")
	over := mustLoad(t, "model:\n  depth: 50\n  width: 2\nseed: 1\n")

	got, err := MergeNodes(base, over)
	require.NoError(t, err)
	assert.Equal(t, []string{"model", "data", "seed"}, got.Keys())

	model, err := got.GetNode("model")
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "depth", "width"}, model.Keys())
	assert.Equal(t, 50, model.GetOr("depth", nil))

	// Inputs are untouched
	assert.Equal(t, 18, base.GetOr("model.depth", nil))
	assert.False(t, base.Has("seed"))

	strict := &Merger{Strict: true}
	_, err = strict.MergeNodes(base, mustLoad(t, "model: 1\n"))
	assert.ErrorIs(t, err, ErrTypeMismatch)
}
