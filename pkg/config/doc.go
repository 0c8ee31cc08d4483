// Package config loads YAML configuration for machine learning projects,
// merges it with overrides and resolves interpolation expressions. The
// result is an ordered tree with dotted-path access.
//
// # Basic Usage
//
// [Load] reads one YAML file into a [Node]:
//
//	cfg, err := config.Load("configs/base.yml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	lr, err := cfg.GetFloat("optimizer.lr")
//
// [Node.GetOr] is the only accessor that falls back silently:
//
//	epochs := cfg.GetOr("train.epochs", 10)
//
// A subtree can be decoded into a struct:
//
//	var opt struct {
//	    Name string  `yaml:"name"`
//	    LR   float64 `yaml:"lr"`
//	}
//	sub, _ := cfg.GetNode("optimizer")
//	err = sub.Decode(&opt)
//
// # Overrides
//
// [Merge] applies dotted-path overrides to a copy of a tree. Mappings are
// merged key by key and intermediate mappings are created as needed:
//
//	base:     {a: {b: 1, c: 2}}
//	override: a.b=5, x.y.z=v
//	result:   {a: {b: 5, c: 2}, x: {y: {z: v}}}
//
// Overrides parsed from text ([ParseOverride], [ParseArgs]) resolve like
// YAML plain values and are coerced to the type of the leaf they replace.
// A mismatch is logged, or rejected when [Merger.Strict] is set.
//
// # Interpolation
//
// [Loader.Build] resolves expressions of the form ${op:arg}:
//
//	${cfg:model,data}        include and deep-merge model.yml and data.yml
//	${env:DATA_DIR,/data}    environment variable with optional default
//	${var:train.batch_size}  another value of the same configuration
//	${git:short}             commit, short, branch, tag, tags or dirty
//	${mul:${var:lr},0.1}     add sub mul truediv div floordiv mod pow min max sqrt abs
//
// A string made of a single expression takes the result's type; otherwise
// results are spliced in as text. Unknown ops are left untouched.
//
// The pipeline mirrors a command line:
//
//	l, _ := config.NewLoader(config.Options{ConfigDir: "configs"})
//	cfg, err := l.Build("base", os.Args[1:]) // e.g. resnet optimizer.lr=0.01 --debug
//
// # Errors
//
// Every error wraps one of [ErrNotFound], [ErrParse], [ErrKeyNotFound],
// [ErrTypeMismatch], [ErrPathConflict], [ErrInterpolation], [ErrInvalidArg]
// or [ErrInvalidOptions].
package config
