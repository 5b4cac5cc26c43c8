package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/RBusarow/Doks/internal/config"
)

// runInit implements the `doks init` subcommand, which writes a starter
// doks.yml config file.
func runInit(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("doks init", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		force  bool
		dryRun bool
	)
	fs.BoolVar(&force, "force", false, "overwrite an existing config file")
	fs.BoolVar(&dryRun, "dry-run", false, "print the config instead of writing it")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: doks init [flags] [path-to-doks.yml]

Write a starter doks.yml describing where sources and documents live, which
code samples to extract, and the rewrite rules that keep them in sync.

path-to-doks.yml defaults to ./%s.

Flags:
`, config.DefaultFileName)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if dryRun {
		_, _ = fmt.Fprint(stdout, starterConfig)
		return nil
	}

	path := config.DefaultFileName
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	if err := os.WriteFile(path, []byte(starterConfig), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(stderr, "wrote %s\n", path)
	return nil
}

const starterConfig = `# doks keeps documentation in sync with Kotlin source code.
#
# Run "doks" to check that docs are current, "doks --fix" to rewrite them.

source:
  # Directories to scan for .kt/.kts files, relative to the repo root.
  roots:
    - src

docs:
  # Directories to scan for documentation, relative to the repo root.
  paths:
    - docs
  extensions:
    - .md

# Code samples extracted from source, referenced by rules as {{sample:<id>}}.
samples:
  - id: 1
    name: com.example.Foo.bar
    bodyOnly: true

# Rewrite rules, applied in order. Patterns use Go regexp syntax; replacements
# may use group references ($1) and sample tokens.
rules:
  - name: foo-bar-usage
    pattern: '(?s)<!--doks foo-bar-->.*?<!--doks end-->'
    replacement: "<!--doks foo-bar-->\n` + "```" + `kotlin\n{{sample:1}}\n` + "```" + `\n<!--doks end-->"
`
