package config

import (
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Merger applies overrides onto configuration trees.
//
// Mappings merge key by key (deep merge); every other value replaces what
// was there. When an override's kind differs from the existing leaf the
// Merger either logs a warning and takes the override (the default) or,
// with Strict set, fails with a *TypeMismatchError.
type Merger struct {
	Strict bool
	Logger *zap.Logger
}

// Merge applies overrides to a copy of base using a lenient Merger.
func Merge(base *Node, overrides ...Override) (*Node, error) {
	return (&Merger{}).Merge(base, overrides...)
}

// MergeMap applies a mapping of dotted paths to values onto a copy of base
// using a lenient Merger.
func MergeMap(base *Node, overrides map[string]any) (*Node, error) {
	return (&Merger{}).MergeMap(base, overrides)
}

// MergeNodes deep-merges over onto a copy of base using a lenient Merger.
func MergeNodes(base, over *Node) (*Node, error) {
	return (&Merger{}).MergeNodes(base, over)
}

func (m *Merger) logger() *zap.Logger {
	if m.Logger == nil {
		return zap.NewNop()
	}
	return m.Logger
}

// Merge applies overrides in order to a copy of base; later overrides win.
// base is left untouched.
func (m *Merger) Merge(base *Node, overrides ...Override) (*Node, error) {
	out := base.Clone()
	if out == nil {
		out = NewNode()
	}
	for _, ov := range overrides {
		if err := m.apply(out, ov); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// MergeMap applies overrides keyed by dotted path. Keys are applied in
// lexical order, so "a" lands before "a.b".
func (m *Merger) MergeMap(base *Node, overrides map[string]any) (*Node, error) {
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	list := make([]Override, 0, len(keys))
	for _, k := range keys {
		list = append(list, Override{Path: k, Value: overrides[k]})
	}
	return m.Merge(base, list...)
}

// MergeNodes deep-merges over onto a copy of base.
func (m *Merger) MergeNodes(base, over *Node) (*Node, error) {
	out := base.Clone()
	if out == nil {
		out = NewNode()
	}
	if err := m.mergeInto(out, over.Clone(), ""); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *Merger) apply(root *Node, ov Override) error {
	segments, err := splitPath(ov.Path)
	if err != nil {
		return err
	}
	value, err := normalizeValue(ov.Value)
	if err != nil {
		return err
	}
	value = cloneValue(value)

	var parent any = root
	for i, seg := range segments[:len(segments)-1] {
		at := strings.Join(segments[:i+1], ".")
		switch p := parent.(type) {
		case *Node:
			child, ok := p.Lookup(seg)
			if !ok || child == nil {
				created := NewNode()
				p.put(seg, created)
				parent = created
				continue
			}
			if !isContainer(child) {
				return &PathConflictError{Path: ov.Path, Segment: at, Kind: kindOf(child)}
			}
			parent = child
		case []any:
			idx, ok := sequenceIndex(seg, len(p))
			if !ok {
				return &KeyError{Path: ov.Path, Segment: at}
			}
			if p[idx] == nil {
				created := NewNode()
				p[idx] = created
				parent = created
				continue
			}
			if !isContainer(p[idx]) {
				return &PathConflictError{Path: ov.Path, Segment: at, Kind: kindOf(p[idx])}
			}
			parent = p[idx]
		}
	}

	last := segments[len(segments)-1]
	switch p := parent.(type) {
	case *Node:
		existing, ok := p.Lookup(last)
		nv, err := m.combine(ov.Path, existing, ok, value, ov.Text)
		if err != nil {
			return err
		}
		p.put(last, nv)
	case []any:
		idx, ok := sequenceIndex(last, len(p))
		if !ok {
			return &KeyError{Path: ov.Path, Segment: ov.Path}
		}
		nv, err := m.combine(ov.Path, p[idx], true, value, ov.Text)
		if err != nil {
			return err
		}
		p[idx] = nv
	}

	m.logger().Debug("applied override", zap.String("path", ov.Path), zap.String("kind", kindOf(value)))
	return nil
}

func (m *Merger) mergeInto(dst, src *Node, prefix string) error {
	if src == nil {
		return nil
	}
	for _, k := range src.keys {
		existing, ok := dst.Lookup(k)
		nv, err := m.combine(joinPath(prefix, k), existing, ok, src.values[k], "")
		if err != nil {
			return err
		}
		dst.put(k, nv)
	}
	return nil
}

// combine decides what ends up at path when value meets existing. text is
// the raw command-line form of value, if any, and is preferred when the
// existing leaf is a string.
func (m *Merger) combine(path string, existing any, exists bool, value any, text string) (any, error) {
	if !exists || existing == nil || value == nil {
		return value, nil
	}
	// Expressions are typed once they are interpolated, on either side.
	if s, ok := value.(string); ok && hasExpression(s) {
		return value, nil
	}
	if s, ok := existing.(string); ok && hasExpression(s) {
		return value, nil
	}

	switch e := existing.(type) {
	case *Node:
		if over, ok := value.(*Node); ok {
			if err := m.mergeInto(e, over, path); err != nil {
				return nil, err
			}
			return e, nil
		}
	case string:
		if _, ok := value.(string); ok {
			return value, nil
		}
		if text != "" {
			return text, nil
		}
	case int:
		if _, ok := value.(int); ok {
			return value, nil
		}
	case float64:
		switch v := value.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		}
	case bool:
		if _, ok := value.(bool); ok {
			return value, nil
		}
	case []any:
		if _, ok := value.([]any); ok {
			return value, nil
		}
	}

	mismatch := &TypeMismatchError{Path: path, Want: kindOf(existing), Got: kindOf(value)}
	if m.Strict {
		return nil, mismatch
	}
	m.logger().Warn("override type does not match existing value",
		zap.String("path", path),
		zap.String("existing", mismatch.Want),
		zap.String("override", mismatch.Got),
	)
	return value, nil
}

func isContainer(v any) bool {
	switch v.(type) {
	case *Node, []any:
		return true
	}
	return false
}

func sequenceIndex(seg string, length int) (int, bool) {
	idx, err := strconv.Atoi(seg)
	if err != nil || idx < 0 || idx >= length {
		return 0, false
	}
	return idx, true
}
