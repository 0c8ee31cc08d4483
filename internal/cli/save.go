package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/nauticalab/confly/pkg/config"
)

// SaveOptions holds configuration for the save command
type SaveOptions struct {
	CommonOptions
	Output string
	Args   []string
}

// SaveAllOptions holds configuration for save --all
type SaveAllOptions struct {
	CommonOptions
	OutputDir string
	// Args are overrides applied to every config. Config names are not
	// allowed here.
	Args []string
	// Workers defaults to 4.
	Workers int
}

// saveJob represents one config to resolve
type saveJob struct {
	Name string
	File string
}

// SaveResult represents the outcome of resolving one config
type SaveResult struct {
	Name     string
	Output   string
	Success  bool
	Error    error
	Duration time.Duration
}

// RunSave resolves the configuration and writes it to opts.Output.
func RunSave(opts SaveOptions) error {
	cfg, err := opts.build(opts.Args)
	if err != nil {
		return err
	}
	if err := config.Save(cfg, opts.Output); err != nil {
		return err
	}
	fmt.Fprintf(opts.out(), "✅ Saved configuration to %s\n", opts.Output)
	return nil
}

// RunSaveAll resolves every top-level config in the config directory and
// writes each to OutputDir under its own name. Configs are built
// concurrently; all failures are reported together.
func RunSaveAll(opts SaveAllOptions) ([]SaveResult, error) {
	l, err := opts.newLoader()
	if err != nil {
		return nil, err
	}

	names, _, err := config.ParseArgs(opts.Args)
	if err != nil {
		return nil, err
	}
	if len(names) > 0 {
		return nil, fmt.Errorf("%w: save --all takes only overrides, got config names %s",
			config.ErrInvalidArg, strings.Join(names, ", "))
	}

	configs, err := findTopLevelConfigs(l.Options().ConfigDir)
	if err != nil {
		return nil, err
	}
	out := opts.out()
	if len(configs) == 0 {
		fmt.Fprintf(out, "No configs found in %s\n", l.Options().ConfigDir)
		return nil, nil
	}
	fmt.Fprintf(out, "Found %d configs to resolve.\n", len(configs))

	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}
	jobs := make(chan saveJob, len(configs))
	results := make(chan SaveResult, len(configs))
	for i := 0; i < workers; i++ {
		go saveWorker(l, jobs, results, opts.Args, opts.OutputDir)
	}
	for _, file := range configs {
		ext := filepath.Ext(file)
		jobs <- saveJob{Name: strings.TrimSuffix(file, ext), File: file}
	}
	close(jobs)

	collected := make([]SaveResult, 0, len(configs))
	var failures int
	for i := 0; i < len(configs); i++ {
		result := <-results
		collected = append(collected, result)
		if result.Success {
			fmt.Fprintf(out, "[%d/%d] ✅ %s (%.1fs)\n", i+1, len(configs), result.Name, result.Duration.Seconds())
		} else {
			failures++
			fmt.Fprintf(out, "[%d/%d] ❌ %s (%.1fs): %v\n", i+1, len(configs), result.Name, result.Duration.Seconds(), result.Error)
		}
	}
	sort.Slice(collected, func(i, j int) bool { return collected[i].Name < collected[j].Name })

	fmt.Fprintf(out, "\n🎉 Saved %d of %d configs to %s\n", len(configs)-failures, len(configs), opts.OutputDir)
	if failures > 0 {
		return collected, fmt.Errorf("failed to resolve %d of %d configs", failures, len(configs))
	}
	return collected, nil
}

func saveWorker(l *config.Loader, jobs <-chan saveJob, results chan<- SaveResult, args []string, outputDir string) {
	for job := range jobs {
		start := time.Now()
		output := filepath.Join(outputDir, job.Name+".yml")
		err := saveOne(l, job.File, args, output)
		results <- SaveResult{
			Name:     job.Name,
			Output:   output,
			Success:  err == nil,
			Error:    err,
			Duration: time.Since(start),
		}
	}
}

func saveOne(l *config.Loader, name string, args []string, output string) error {
	cfg, err := l.Build(name, args)
	if err != nil {
		return err
	}
	return config.Save(cfg, output)
}

// findTopLevelConfigs lists the YAML files directly inside dir, skipping
// those whose document is not a mapping. Unreadable files are kept so the
// build reports them.
func findTopLevelConfigs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yml" && ext != ".yaml" {
			continue
		}
		if _, err := config.Load(filepath.Join(dir, entry.Name())); errors.Is(err, config.ErrNotMapping) {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}
