package config

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Node is an ordered configuration mapping. Values are one of string, int,
// float64, bool, nil, []any or *Node. Keys keep document order.
//
// The zero value is an empty, usable Node.
type Node struct {
	keys   []string
	values map[string]any
}

// NewNode returns an empty Node.
func NewNode() *Node {
	return &Node{values: make(map[string]any)}
}

// FromMap builds a Node from a plain Go map. Keys are inserted in lexical
// order since map iteration carries none.
func FromMap(m map[string]any) (*Node, error) {
	n := NewNode()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := n.Set(k, m[k]); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// Len returns the number of keys at this level.
func (n *Node) Len() int {
	if n == nil {
		return 0
	}
	return len(n.keys)
}

// Keys returns the keys at this level in order.
func (n *Node) Keys() []string {
	if n == nil {
		return nil
	}
	out := make([]string, len(n.keys))
	copy(out, n.keys)
	return out
}

// Lookup returns the direct child stored under key.
func (n *Node) Lookup(key string) (any, bool) {
	if n == nil || n.values == nil {
		return nil, false
	}
	v, ok := n.values[key]
	return v, ok
}

// Set stores value under the direct child key, replacing any previous value
// in place. Maps, slices and sized numeric types are normalised first.
func (n *Node) Set(key string, value any) error {
	v, err := normalizeValue(value)
	if err != nil {
		return fmt.Errorf("failed to set %q: %w", key, err)
	}
	n.put(key, v)
	return nil
}

func (n *Node) put(key string, v any) {
	if n.values == nil {
		n.values = make(map[string]any)
	}
	if _, exists := n.values[key]; !exists {
		n.keys = append(n.keys, key)
	}
	n.values[key] = v
}

// Delete removes the direct child key and reports whether it was present.
func (n *Node) Delete(key string) bool {
	if n == nil || n.values == nil {
		return false
	}
	if _, ok := n.values[key]; !ok {
		return false
	}
	delete(n.values, key)
	for i, k := range n.keys {
		if k == key {
			n.keys = append(n.keys[:i], n.keys[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the value at a dotted path such as "model.layers.0.units".
// Integer segments index into sequences.
func (n *Node) Get(path string) (any, error) {
	segments, err := splitPath(path)
	if err != nil {
		return nil, err
	}

	var current any = n
	for i, seg := range segments {
		switch c := current.(type) {
		case *Node:
			v, ok := c.Lookup(seg)
			if !ok {
				return nil, &KeyError{Path: path, Segment: strings.Join(segments[:i+1], ".")}
			}
			current = v
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(c) {
				return nil, &KeyError{Path: path, Segment: strings.Join(segments[:i+1], ".")}
			}
			current = c[idx]
		default:
			return nil, &KeyError{Path: path, Segment: strings.Join(segments[:i+1], ".")}
		}
	}
	return current, nil
}

// GetOr returns the value at path, or def when the path is absent.
func (n *Node) GetOr(path string, def any) any {
	v, err := n.Get(path)
	if err != nil {
		return def
	}
	return v
}

// Has reports whether path resolves.
func (n *Node) Has(path string) bool {
	_, err := n.Get(path)
	return err == nil
}

// GetString returns the string at path.
func (n *Node) GetString(path string) (string, error) {
	v, err := n.Get(path)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", &TypeMismatchError{Path: path, Want: kindString, Got: kindOf(v)}
	}
	return s, nil
}

// GetInt returns the integer at path.
func (n *Node) GetInt(path string) (int, error) {
	v, err := n.Get(path)
	if err != nil {
		return 0, err
	}
	i, ok := v.(int)
	if !ok {
		return 0, &TypeMismatchError{Path: path, Want: kindInt, Got: kindOf(v)}
	}
	return i, nil
}

// GetFloat returns the number at path. Integers are widened.
func (n *Node) GetFloat(path string) (float64, error) {
	v, err := n.Get(path)
	if err != nil {
		return 0, err
	}
	switch f := v.(type) {
	case float64:
		return f, nil
	case int:
		return float64(f), nil
	}
	return 0, &TypeMismatchError{Path: path, Want: kindFloat, Got: kindOf(v)}
}

// GetBool returns the boolean at path.
func (n *Node) GetBool(path string) (bool, error) {
	v, err := n.Get(path)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, &TypeMismatchError{Path: path, Want: kindBool, Got: kindOf(v)}
	}
	return b, nil
}

// GetSlice returns the sequence at path.
func (n *Node) GetSlice(path string) ([]any, error) {
	v, err := n.Get(path)
	if err != nil {
		return nil, err
	}
	s, ok := v.([]any)
	if !ok {
		return nil, &TypeMismatchError{Path: path, Want: kindSequence, Got: kindOf(v)}
	}
	return s, nil
}

// GetNode returns the mapping at path.
func (n *Node) GetNode(path string) (*Node, error) {
	v, err := n.Get(path)
	if err != nil {
		return nil, err
	}
	sub, ok := v.(*Node)
	if !ok {
		return nil, &TypeMismatchError{Path: path, Want: kindMapping, Got: kindOf(v)}
	}
	return sub, nil
}

// Clone returns a deep copy.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{
		keys:   make([]string, len(n.keys)),
		values: make(map[string]any, len(n.values)),
	}
	copy(out.keys, n.keys)
	for k, v := range n.values {
		out.values[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case *Node:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// ToMap converts the tree into plain maps and slices.
func (n *Node) ToMap() map[string]any {
	if n == nil {
		return nil
	}
	out := make(map[string]any, len(n.keys))
	for _, k := range n.keys {
		out[k] = plainValue(n.values[k])
	}
	return out
}

func plainValue(v any) any {
	switch t := v.(type) {
	case *Node:
		return t.ToMap()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plainValue(e)
		}
		return out
	default:
		return v
	}
}

// Equal reports whether both trees hold the same keys and values,
// ignoring key order.
func (n *Node) Equal(other *Node) bool {
	return reflect.DeepEqual(n.ToMap(), other.ToMap())
}

// Walk visits every leaf (scalar or sequence element) in document order.
// Returning an error stops the walk.
func (n *Node) Walk(fn func(path string, value any) error) error {
	return walkValue("", n, fn)
}

func walkValue(prefix string, v any, fn func(string, any) error) error {
	switch t := v.(type) {
	case *Node:
		if t == nil {
			return nil
		}
		for _, k := range t.keys {
			if err := walkValue(joinPath(prefix, k), t.values[k], fn); err != nil {
				return err
			}
		}
		return nil
	case []any:
		for i, e := range t {
			if err := walkValue(joinPath(prefix, strconv.Itoa(i)), e, fn); err != nil {
				return err
			}
		}
		return nil
	default:
		return fn(prefix, v)
	}
}

// Decode unmarshals the tree into target using its yaml struct tags.
func (n *Node) Decode(target any) error {
	if err := toYAML(n).Decode(target); err != nil {
		return fmt.Errorf("failed to decode configuration: %w", err)
	}
	return nil
}

// MarshalYAML implements yaml.Marshaler, keeping key order.
func (n *Node) MarshalYAML() (any, error) {
	return toYAML(n), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	v, err := fromYAML(value, "")
	if err != nil {
		return err
	}
	root, err := asRoot(v, "", value.Line)
	if err != nil {
		return err
	}
	*n = *root
	return nil
}

// ============================================================================
// Value normalisation and YAML conversion
// ============================================================================

const (
	kindString   = "string"
	kindInt      = "int"
	kindFloat    = "float"
	kindBool     = "bool"
	kindNull     = "null"
	kindSequence = "sequence"
	kindMapping  = "mapping"
)

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return kindNull
	case string:
		return kindString
	case int:
		return kindInt
	case float64:
		return kindFloat
	case bool:
		return kindBool
	case []any:
		return kindSequence
	case *Node:
		return kindMapping
	default:
		return fmt.Sprintf("%T", v)
	}
}

// normalizeValue converts arbitrary Go values into the closed set of types
// a Node stores.
func normalizeValue(value any) (any, error) {
	switch v := value.(type) {
	case nil, string, bool, int, float64:
		return v, nil
	case *Node:
		if v == nil {
			return nil, nil
		}
		return v, nil
	case map[string]any:
		return FromMap(v)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			ne, err := normalizeValue(e)
			if err != nil {
				return nil, err
			}
			out[i] = ne
		}
		return out, nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return float64(u), nil
		}
		return int(u), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			ne, err := normalizeValue(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = ne
		}
		return out, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("unsupported map key type %s", rv.Type().Key())
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		return FromMap(m)
	case reflect.Pointer:
		if rv.IsNil() {
			return nil, nil
		}
		return normalizeValue(rv.Elem().Interface())
	}
	return nil, fmt.Errorf("unsupported value type %T", value)
}

func toYAML(v any) *yaml.Node {
	switch t := v.(type) {
	case *Node:
		out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		if t == nil {
			return out
		}
		for _, k := range t.keys {
			out.Content = append(out.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				toYAML(t.values[k]),
			)
		}
		return out
	case []any:
		out := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range t {
			out.Content = append(out.Content, toYAML(e))
		}
		return out
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: t}
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(t)}
	case int:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(t)}
	case float64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: formatFloat(t)}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fmt.Sprint(t)}
	}
}

// formatFloat renders f so that it resolves back to a YAML float, never an
// int: 2.0 is written as "2.0", not "2".
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	case math.IsNaN(f):
		return ".nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}

// fromYAML converts a decoded yaml.Node into Node values. Anchors, aliases
// and "<<" merge keys are resolved; duplicate keys are rejected.
func fromYAML(n *yaml.Node, file string) (any, error) {
	c := &converter{file: file}
	return c.convert(n)
}

// converter expands a yaml.Node tree. Decoding into yaml.Node bypasses
// yaml.v3's alias limit, so the same ratio check is applied here.
type converter struct {
	file string
	// decoded counts every value produced, aliased those produced while
	// expanding an alias.
	decoded   int
	aliased   int
	aliasDeep int
}

// allowedAliasRatio matches the limit yaml.v3 applies when decoding into
// Go values: small documents may alias freely, large ones may not.
func allowedAliasRatio(decoded int) float64 {
	switch {
	case decoded <= 400000:
		return 0.99
	case decoded >= 4000000:
		return 0.10
	}
	return 0.99 - 0.89*(float64(decoded-400000)/3600000)
}

func (c *converter) count(n *yaml.Node) error {
	c.decoded++
	if c.aliasDeep > 0 {
		c.aliased++
	}
	if c.aliased > 100 && c.decoded > 1000 &&
		float64(c.aliased)/float64(c.decoded) > allowedAliasRatio(c.decoded) {
		return &ParseError{File: c.file, Line: n.Line, Msg: "document contains excessive aliasing"}
	}
	return nil
}

func (c *converter) expandAlias(n *yaml.Node) (any, error) {
	c.aliasDeep++
	defer func() { c.aliasDeep-- }()
	return c.convert(n)
}

func (c *converter) convert(n *yaml.Node) (any, error) {
	if err := c.count(n); err != nil {
		return nil, err
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return c.convert(n.Content[0])

	case yaml.AliasNode:
		return c.expandAlias(n.Alias)

	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, &ParseError{File: c.file, Line: n.Line, Msg: err.Error(), Err: err}
		}
		return normalizeValue(v)

	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, e := range n.Content {
			v, err := c.convert(e)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil

	case yaml.MappingNode:
		return c.mapping(n)
	}
	return nil, &ParseError{File: c.file, Line: n.Line, Msg: fmt.Sprintf("unsupported YAML node kind %d", n.Kind)}
}

func (c *converter) mapping(n *yaml.Node) (*Node, error) {
	out := NewNode()
	explicit := make(map[string]bool)

	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, valNode := n.Content[i], n.Content[i+1]
		if keyNode.Kind == yaml.AliasNode {
			keyNode = keyNode.Alias
		}

		if keyNode.Kind == yaml.ScalarNode && keyNode.ShortTag() == "!!merge" {
			if err := c.applyMergeKey(out, explicit, valNode); err != nil {
				return nil, err
			}
			continue
		}

		if keyNode.Kind != yaml.ScalarNode {
			return nil, &ParseError{File: c.file, Line: keyNode.Line, Msg: "mapping keys must be scalars"}
		}
		key := keyNode.Value
		if explicit[key] {
			return nil, &ParseError{File: c.file, Line: keyNode.Line, Msg: fmt.Sprintf("duplicate key %q", key)}
		}
		explicit[key] = true

		v, err := c.convert(valNode)
		if err != nil {
			return nil, err
		}
		out.put(key, v)
	}
	return out, nil
}

// applyMergeKey copies keys from the "<<" sources that are not already
// present. Earlier sources win; explicit keys that follow still override.
func (c *converter) applyMergeKey(out *Node, explicit map[string]bool, valNode *yaml.Node) error {
	var sources []*yaml.Node
	target := valNode
	if target.Kind == yaml.AliasNode {
		target = target.Alias
		c.aliasDeep++
		defer func() { c.aliasDeep-- }()
	}
	switch target.Kind {
	case yaml.MappingNode:
		sources = append(sources, target)
	case yaml.SequenceNode:
		sources = append(sources, target.Content...)
	default:
		return &ParseError{File: c.file, Line: valNode.Line, Msg: "merge key value must be a mapping or a sequence of mappings"}
	}

	for _, src := range sources {
		v, err := c.convert(src)
		if err != nil {
			return err
		}
		m, ok := v.(*Node)
		if !ok {
			return &ParseError{File: c.file, Line: src.Line, Msg: "merge key sources must be mappings"}
		}
		for _, k := range m.keys {
			if _, exists := out.values[k]; exists || explicit[k] {
				continue
			}
			out.put(k, m.values[k])
		}
	}
	return nil
}

// asRoot checks that a decoded document is a mapping.
func asRoot(v any, file string, line int) (*Node, error) {
	switch t := v.(type) {
	case nil:
		return NewNode(), nil
	case *Node:
		return t, nil
	}
	return nil, &ParseError{
		File: file,
		Line: line,
		Msg:  fmt.Sprintf("top-level document must be a mapping, got %s", kindOf(v)),
		Err:  ErrNotMapping,
	}
}

// ============================================================================
// Dotted paths
// ============================================================================

func splitPath(path string) ([]string, error) {
	if path == "" {
		return nil, &KeyError{Path: path}
	}
	segments := strings.Split(path, ".")
	for _, s := range segments {
		if s == "" {
			return nil, &KeyError{Path: path, Segment: path}
		}
	}
	return segments, nil
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
