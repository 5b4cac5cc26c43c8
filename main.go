// doks keeps documentation files synchronized with Kotlin source code.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/RBusarow/Doks/internal/config"
	"github.com/RBusarow/Doks/internal/discover"
	"github.com/RBusarow/Doks/internal/engine"
	"github.com/RBusarow/Doks/internal/extract"
	"github.com/RBusarow/Doks/internal/model"
	"github.com/RBusarow/Doks/internal/resolve"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 && args[0] == "init" {
		return runInit(args[1:], stdout, stderr)
	}

	fs := flag.NewFlagSet("doks", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		cfgPath     string
		fix         bool
		samplesOut  string
		samplesIn   string
		showVersion bool
	)

	fs.StringVar(&cfgPath, "c", config.DefaultFileName, "config file path, relative to the repo root")
	fs.StringVar(&cfgPath, "config", config.DefaultFileName, "config file path, relative to the repo root")
	fs.BoolVar(&fix, "fix", false, "rewrite stale documents in place instead of failing")
	fs.StringVar(&samplesOut, "samples-out", "", "write the resolved sample mapping to this JSON file")
	fs.StringVar(&samplesIn, "samples-in", "", "reuse a sample mapping from this JSON file instead of parsing sources")
	fs.BoolVar(&showVersion, "V", false, "show version and exit")
	fs.BoolVar(&showVersion, "version", false, "show version and exit")

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}

	if showVersion {
		_, _ = fmt.Fprintf(stdout, "doks %s\n", version)
		return nil
	}

	root := "."
	if fs.NArg() > 0 {
		root = fs.Arg(0)
	}

	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving root: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("root path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: not a directory", root)
	}

	if !filepath.IsAbs(cfgPath) {
		cfgPath = filepath.Join(root, cfgPath)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	rules, err := cfg.CompiledRules()
	if err != nil {
		return err
	}

	samples, err := loadSamples(root, cfg, samplesIn, stderr)
	if err != nil {
		return err
	}

	if samplesOut != "" {
		if err := writeSamples(samplesOut, samples); err != nil {
			return err
		}
	}

	eng, err := engine.New(rules, samples)
	if err != nil {
		return err
	}

	docs, err := discover.Docs(root, cfg.Docs.Paths, cfg.Docs.Extensions)
	if err != nil {
		return fmt.Errorf("discovering documents: %w", err)
	}
	if len(docs) == 0 {
		return fmt.Errorf("no documents found")
	}

	results := syncDocsConcurrent(root, docs, eng)

	var stale int
	var errs []error
	for _, r := range results {
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		if !r.result.Changed {
			continue
		}
		stale++
		if fix {
			path := filepath.Join(root, r.path)
			if err := os.WriteFile(path, []byte(r.result.NewText), 0o644); err != nil {
				errs = append(errs, fmt.Errorf("writing %s: %w", r.path, err))
				continue
			}
			_, _ = fmt.Fprintf(stderr, "fixed %s\n", r.path)
		} else {
			printDiff(stdout, r.path, r.result)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	if stale > 0 && !fix {
		return fmt.Errorf("%d document(s) out of date (run doks --fix)", stale)
	}
	return nil
}

// loadSamples either decodes a previously persisted sample mapping or parses
// the source tree and extracts every configured sample.
func loadSamples(root string, cfg *config.Config, samplesIn string, stderr io.Writer) (model.SampleMap, error) {
	if samplesIn != "" {
		f, err := os.Open(samplesIn)
		if err != nil {
			return nil, fmt.Errorf("reading samples: %w", err)
		}
		defer f.Close()
		return model.DecodeSamples(f)
	}

	requests := cfg.Requests()
	if len(requests) == 0 {
		return model.SampleMap{}, nil
	}

	entries, err := discover.Sources(root, cfg.Source.Roots)
	if err != nil {
		return nil, fmt.Errorf("discovering sources: %w", err)
	}

	var files []resolve.SourceFile
	for _, e := range entries {
		content, err := os.ReadFile(filepath.Join(root, e.Path))
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Warning: failed to read %s: %v\n", e.Path, err)
			continue
		}
		files = append(files, resolve.SourceFile{Path: e.Path, Content: content})
	}

	wanted := make([]string, 0, len(requests))
	for _, req := range requests {
		wanted = append(wanted, req.FqName)
	}

	idx, parseErr := resolve.Resolve(files, wanted)
	defer idx.Close()

	samples, sampleErr := extract.BuildSamples(idx, requests)
	if err := errors.Join(parseErr, sampleErr); err != nil {
		return nil, err
	}
	return samples, nil
}

func writeSamples(path string, samples model.SampleMap) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing samples: %w", err)
	}
	defer f.Close()
	if err := model.EncodeSamples(f, samples); err != nil {
		return fmt.Errorf("writing samples: %w", err)
	}
	return nil
}

type docResult struct {
	path   string
	result model.SyncResult
	err    error
}

// syncDocsConcurrent runs one sync pass per document on a worker pool. The
// engine is read-only and shared by every worker.
func syncDocsConcurrent(root string, docs []string, eng *engine.Engine) []docResult {
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > len(docs) {
		numWorkers = len(docs)
	}

	work := make(chan int, len(docs))
	results := make([]docResult, len(docs))

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range work {
				path := docs[idx]
				content, err := os.ReadFile(filepath.Join(root, path))
				if err != nil {
					results[idx] = docResult{path: path, err: fmt.Errorf("reading %s: %w", path, err)}
					continue
				}
				results[idx] = docResult{path: path, result: eng.Run(string(content))}
			}
		}()
	}

	for i := range docs {
		work <- i
	}
	close(work)
	wg.Wait()

	return results
}

// printDiff writes a unified diff of one stale document.
func printDiff(w io.Writer, path string, res model.SyncResult) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(res.OriginalText),
		B:        difflib.SplitLines(res.NewText),
		FromFile: path,
		ToFile:   path + " (synced)",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		text = fmt.Sprintf("(diff unavailable: %v)\n", err)
	}
	_, _ = fmt.Fprint(w, text)
}

// flagsWithValue lists flags that take a value argument.
var flagsWithValue = map[string]bool{
	"-c": true, "--c": true,
	"-config": true, "--config": true,
	"-samples-out": true, "--samples-out": true,
	"-samples-in": true, "--samples-in": true,
}

// reorderArgs moves positional arguments after all flags so Go's flag package
// can parse them correctly (it stops at the first non-flag arg).
func reorderArgs(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if len(args[i]) > 0 && args[i][0] == '-' {
			flags = append(flags, args[i])
			if flagsWithValue[args[i]] && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, args[i])
		}
	}
	return append(flags, positional...)
}
