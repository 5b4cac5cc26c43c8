// Package config loads and validates the doks.yml configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/RBusarow/Doks/internal/engine"
	"github.com/RBusarow/Doks/internal/model"
)

// DefaultFileName is the config file doks looks for at the repo root.
const DefaultFileName = "doks.yml"

// Config is the parsed doks.yml.
type Config struct {
	Source  Source   `yaml:"source"`
	Docs    Docs     `yaml:"docs"`
	Samples []Sample `yaml:"samples"`
	Rules   []Rule   `yaml:"rules"`
}

// Source configures where Kotlin sources are discovered.
type Source struct {
	// Roots are directories relative to the repo root. Defaults to ["."].
	Roots []string `yaml:"roots"`
}

// Docs configures which documentation files are synced.
type Docs struct {
	// Paths are directories relative to the repo root. Defaults to ["."].
	Paths []string `yaml:"paths"`
	// Extensions defaults to [".md", ".mdx"].
	Extensions []string `yaml:"extensions"`
}

// Sample declares one code sample to extract, addressed by rules as
// {{sample:<id>}}.
type Sample struct {
	ID       int    `yaml:"id"`
	Name     string `yaml:"name"`
	BodyOnly bool   `yaml:"bodyOnly"`
}

// Rule declares one rewrite rule. Rules apply in declaration order.
type Rule struct {
	Name        string `yaml:"name"`
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
}

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if len(c.Source.Roots) == 0 {
		c.Source.Roots = []string{"."}
	}
	if len(c.Docs.Paths) == 0 {
		c.Docs.Paths = []string{"."}
	}
	if len(c.Docs.Extensions) == 0 {
		c.Docs.Extensions = []string{".md", ".mdx"}
	}
}

func (c *Config) validate() error {
	var errs []error

	ruleNames := make(map[string]struct{}, len(c.Rules))
	for _, r := range c.Rules {
		if r.Name == "" {
			errs = append(errs, errors.New("rule with empty name"))
			continue
		}
		if _, dup := ruleNames[r.Name]; dup {
			errs = append(errs, fmt.Errorf("duplicate rule name %q", r.Name))
		}
		ruleNames[r.Name] = struct{}{}
		if _, err := regexp.Compile(r.Pattern); err != nil {
			errs = append(errs, fmt.Errorf("rule %q: invalid pattern: %w", r.Name, err))
		}
	}

	sampleIDs := make(map[int]struct{}, len(c.Samples))
	for _, s := range c.Samples {
		if s.ID <= 0 {
			errs = append(errs, fmt.Errorf("sample %q: id must be positive, got %d", s.Name, s.ID))
		}
		if _, dup := sampleIDs[s.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate sample id %d", s.ID))
		}
		sampleIDs[s.ID] = struct{}{}
		if s.Name == "" {
			errs = append(errs, fmt.Errorf("sample %d: empty name", s.ID))
		}
	}

	return errors.Join(errs...)
}

// Requests returns the configured samples as resolver requests keyed by id.
func (c *Config) Requests() map[int]model.SampleRequest {
	reqs := make(map[int]model.SampleRequest, len(c.Samples))
	for _, s := range c.Samples {
		reqs[s.ID] = model.SampleRequest{FqName: s.Name, BodyOnly: s.BodyOnly}
	}
	return reqs
}

// CompiledRules returns the rule set in declaration order with patterns
// compiled. Load has already validated the patterns.
func (c *Config) CompiledRules() ([]engine.Rule, error) {
	rules := make([]engine.Rule, 0, len(c.Rules))
	for _, r := range c.Rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", r.Name, err)
		}
		rules = append(rules, engine.Rule{Name: r.Name, Pattern: re, Template: r.Replacement})
	}
	return rules, nil
}
