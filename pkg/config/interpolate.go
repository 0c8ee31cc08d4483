package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/nauticalab/confly/internal/git"
)

const (
	opCfg = "cfg"
	opEnv = "env"
	opVar = "var"
	opGit = "git"
)

// resolver evaluates ${op:arg} expressions over one build. It is not safe
// for concurrent use; every build gets its own.
type resolver struct {
	loader *Loader
	root   *Node

	// only restricts evaluation to the listed ops; nil means all ops.
	only map[string]bool

	resolving map[string]bool
	including []string

	gitInfo *git.Info
	gitErr  error
	gitRead bool
}

func newResolver(l *Loader, only ...string) *resolver {
	r := &resolver{loader: l, resolving: make(map[string]bool)}
	if len(only) > 0 {
		r.only = make(map[string]bool, len(only))
		for _, op := range only {
			r.only[op] = true
		}
	}
	return r
}

func (r *resolver) active(op string) bool {
	if r.only != nil && !r.only[op] {
		return false
	}
	switch op {
	case opCfg, opEnv, opVar, opGit:
		return true
	}
	return isMathOp(op)
}

// resolveTree interpolates every string leaf of root in place.
func (r *resolver) resolveTree(root *Node) error {
	r.root = root
	_, err := r.resolveValue(root, "")
	return err
}

// resolveValue interpolates v. Containers are rewritten in place and
// returned; strings return their resolved value.
func (r *resolver) resolveValue(v any, path string) (any, error) {
	switch t := v.(type) {
	case *Node:
		for _, k := range t.keys {
			nv, err := r.resolveValue(t.values[k], joinPath(path, k))
			if err != nil {
				return nil, err
			}
			t.values[k] = nv
		}
		return t, nil
	case []any:
		for i, e := range t {
			nv, err := r.resolveValue(e, joinPath(path, fmt.Sprint(i)))
			if err != nil {
				return nil, err
			}
			t[i] = nv
		}
		return t, nil
	case string:
		return r.resolveLeaf(t, path)
	default:
		return v, nil
	}
}

func (r *resolver) resolveLeaf(s, path string) (any, error) {
	if !hasExpression(s) {
		return s, nil
	}
	if path != "" {
		if r.resolving[path] {
			return nil, &InterpolationError{Expr: s, Path: path, Err: fmt.Errorf("reference cycle through %q", path)}
		}
		r.resolving[path] = true
		defer delete(r.resolving, path)
	}
	return r.interpolateString(s, path)
}

// interpolateString resolves the expressions in s. A string that is exactly
// one expression takes the result's type; otherwise results are spliced in
// as text and the outcome is coerced to a number when it looks like one.
func (r *resolver) interpolateString(s, path string) (any, error) {
	e, ok := findExpression(s, 0)
	if !ok {
		return s, nil
	}

	if e.start == 0 && e.end == len(s) {
		v, handled, err := r.evaluate(e, path)
		if err != nil {
			return nil, err
		}
		if !handled {
			return s, nil
		}
		return v, nil
	}

	var b strings.Builder
	pos, changed := 0, false
	for {
		e, ok := findExpression(s, pos)
		if !ok {
			break
		}
		b.WriteString(s[pos:e.start])
		v, handled, err := r.evaluate(e, path)
		if err != nil {
			return nil, err
		}
		if !handled {
			b.WriteString(s[e.start:e.end])
		} else {
			text, ok := spliceString(v)
			if !ok {
				return nil, &InterpolationError{Expr: e.String(), Path: path, Err: fmt.Errorf("cannot embed a %s in a string", kindOf(v))}
			}
			b.WriteString(text)
			changed = true
		}
		pos = e.end
	}
	b.WriteString(s[pos:])

	if !changed {
		return s, nil
	}
	return coerceNumeric(b.String()), nil
}

// evaluate runs one expression. handled is false for unknown or inactive
// ops, which stay literal.
func (r *resolver) evaluate(e expression, path string) (any, bool, error) {
	if !r.active(e.op) {
		return nil, false, nil
	}

	arg, err := r.interpolateArg(e.arg, path)
	if err != nil {
		return nil, false, err
	}

	var v any
	switch e.op {
	case opCfg:
		v, err = r.include(arg, path)
	case opEnv:
		v, err = r.env(arg)
	case opVar:
		v, err = r.reference(arg)
	case opGit:
		v, err = r.git(arg)
	default:
		v, err = evalMath(e.op, arg)
	}
	if err != nil {
		if ie, ok := err.(*InterpolationError); ok {
			return nil, false, ie
		}
		return nil, false, &InterpolationError{Expr: e.String(), Path: path, Err: err}
	}
	return v, true, nil
}

// interpolateArg resolves nested expressions inside an argument.
func (r *resolver) interpolateArg(arg, path string) (string, error) {
	if !hasExpression(arg) {
		return arg, nil
	}
	v, err := r.interpolateString(arg, path)
	if err != nil {
		return "", err
	}
	text, ok := spliceString(v)
	if !ok {
		return "", &InterpolationError{Expr: arg, Path: path, Err: fmt.Errorf("argument resolved to a %s", kindOf(v))}
	}
	return text, nil
}

// include loads the comma-separated config names and deep-merges them in
// order. Each file is interpolated with the ops active in this build.
func (r *resolver) include(arg, path string) (any, error) {
	var names []string
	for _, n := range strings.Split(arg, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no config names given")
	}

	var merged *Node
	for _, name := range names {
		v, err := r.includeOne(name, path)
		if err != nil {
			return nil, err
		}
		if len(names) == 1 {
			return v, nil
		}
		node, ok := v.(*Node)
		if !ok {
			return nil, fmt.Errorf("config %q is a %s; only mappings can be combined", name, kindOf(v))
		}
		if merged == nil {
			merged = node
			continue
		}
		if merged, err = r.loader.merger.MergeNodes(merged, node); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

func (r *resolver) includeOne(name, path string) (any, error) {
	file := r.loader.resolveName(name)
	for _, f := range r.including {
		if f == file {
			return nil, fmt.Errorf("include cycle: %s -> %s", strings.Join(r.including, " -> "), file)
		}
	}

	v, err := r.loader.readValue(file)
	if err != nil {
		return nil, err
	}

	r.including = append(r.including, file)
	defer func() { r.including = r.including[:len(r.including)-1] }()

	// Included content is not part of the tree until it is returned, so
	// reference-cycle tracking does not apply to it.
	saved := r.resolving
	r.resolving = make(map[string]bool)
	defer func() { r.resolving = saved }()

	return r.resolveValue(v, "")
}

func (r *resolver) env(arg string) (any, error) {
	name, def, hasDefault := strings.Cut(arg, ",")
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("empty environment variable name")
	}
	value, ok := os.LookupEnv(name)
	if !ok {
		if !hasDefault {
			return nil, fmt.Errorf("environment variable %s is not set", name)
		}
		value = strings.TrimSpace(def)
	}
	return coerceNumeric(value), nil
}

// reference returns a copy of the value at a dotted path of the tree being
// built, resolving it first.
func (r *resolver) reference(arg string) (any, error) {
	path := strings.TrimSpace(arg)
	if r.root == nil {
		return nil, fmt.Errorf("no configuration to reference %q in", path)
	}
	v, err := r.root.Get(path)
	if err != nil {
		return nil, err
	}

	resolved, err := r.resolveValue(v, path)
	if err != nil {
		return nil, err
	}
	if _, isString := v.(string); isString {
		setPath(r.root, path, resolved)
	}
	return cloneValue(resolved), nil
}

func (r *resolver) git(arg string) (any, error) {
	if !r.gitRead {
		r.gitInfo, r.gitErr = r.loader.gitInfo(r.loader.opts.GitDir)
		r.gitRead = true
	}
	if r.gitErr != nil {
		return nil, r.gitErr
	}

	info := r.gitInfo
	switch strings.TrimSpace(arg) {
	case "commit":
		return info.CommitHash, nil
	case "short":
		return info.ShortHash(), nil
	case "branch":
		return info.Branch, nil
	case "tag":
		if len(info.Tags) == 0 {
			return "", nil
		}
		return info.Tags[0], nil
	case "tags":
		tags := make([]any, len(info.Tags))
		for i, t := range info.Tags {
			tags[i] = t
		}
		return tags, nil
	case "dirty":
		return info.IsDirty, nil
	}
	return nil, fmt.Errorf("unknown git field %q (want commit, short, branch, tag, tags or dirty)", arg)
}

// setPath replaces the value at an existing dotted path.
func setPath(root *Node, path string, v any) {
	segments, err := splitPath(path)
	if err != nil {
		return
	}
	parentPath := strings.Join(segments[:len(segments)-1], ".")
	last := segments[len(segments)-1]

	var parent any = root
	if parentPath != "" {
		if parent, err = root.Get(parentPath); err != nil {
			return
		}
	}
	switch p := parent.(type) {
	case *Node:
		p.put(last, v)
	case []any:
		if idx, ok := sequenceIndex(last, len(p)); ok {
			p[idx] = v
		}
	}
}
