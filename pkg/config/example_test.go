package config_test

import (
	"fmt"
	"log"
	"os"

	"github.com/nauticalab/confly/pkg/config"
)

// ExampleLoader_Build shows the command-line style pipeline: a base config,
// a second config merged on top, and a dotted override.
func ExampleLoader_Build() {
	loader, err := config.NewLoader(config.Options{ConfigDir: "testdata"})
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := loader.Build("base", []string{"large", "optimizer.name=sgd"})
	if err != nil {
		log.Fatal(err)
	}

	depth, _ := cfg.GetInt("model.depth")
	name, _ := cfg.GetString("model.name")
	opt, _ := cfg.GetString("optimizer.name")
	warmup, _ := cfg.GetFloat("optimizer.warmup_lr")
	run, _ := cfg.GetString("train.run_name")

	fmt.Printf("Model: %s-%d\n", name, depth)
	fmt.Printf("Optimizer: %s\n", opt)
	fmt.Printf("Warmup LR: %v\n", warmup)
	fmt.Printf("Run: %s\n", run)

	// Output:
	// Model: resnet-50
	// Optimizer: sgd
	// Warmup LR: 0.005
	// Run: baseline_bs256
}

// ExampleMerge applies dotted overrides. Sibling keys survive and missing
// intermediate mappings are created.
func ExampleMerge() {
	base, err := config.LoadBytes([]byte("a:\n  b: 1\n  c: 2\n"), "base")
	if err != nil {
		log.Fatal(err)
	}

	merged, err := config.Merge(base,
		config.Override{Path: "a.b", Value: 5},
		config.Override{Path: "x.y.z", Value: "v"},
	)
	if err != nil {
		log.Fatal(err)
	}

	if err := config.Encode(os.Stdout, merged); err != nil {
		log.Fatal(err)
	}

	// Output:
	// a:
	//   b: 5
	//   c: 2
	// x:
	//   y:
	//     z: v
}
