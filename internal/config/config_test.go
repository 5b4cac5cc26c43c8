package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RBusarow/Doks/internal/model"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doks.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validConfig = `
source:
  roots:
    - src
docs:
  paths:
    - docs
samples:
  - id: 1
    name: com.example.Foo.bar
    bodyOnly: true
rules:
  - name: usage
    pattern: '(?s)<!--start-->.*<!--end-->'
    replacement: "<!--start-->{{sample:1}}<!--end-->"
  - name: version
    pattern: 'v\d+'
    replacement: v2
`

func TestLoadValid(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, []string{"src"}, cfg.Source.Roots)
	assert.Equal(t, []string{"docs"}, cfg.Docs.Paths)
	assert.Equal(t, []string{".md", ".mdx"}, cfg.Docs.Extensions, "extensions default applies")

	require.Len(t, cfg.Samples, 1)
	assert.Equal(t, 1, cfg.Samples[0].ID)
	assert.True(t, cfg.Samples[0].BodyOnly)

	// Rule order is declaration order.
	require.Len(t, cfg.Rules, 2)
	assert.Equal(t, "usage", cfg.Rules[0].Name)
	assert.Equal(t, "version", cfg.Rules[1].Name)
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, "rules:\n  - name: r\n    pattern: a\n    replacement: b\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"."}, cfg.Source.Roots)
	assert.Equal(t, []string{"."}, cfg.Docs.Paths)
	assert.Equal(t, []string{".md", ".mdx"}, cfg.Docs.Extensions)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestLoadUnknownFieldRejected(t *testing.T) {
	t.Parallel()

	_, err := Load(writeConfig(t, "rulez:\n  - name: r\n"))
	assert.Error(t, err)
}

func TestValidateDuplicateRuleName(t *testing.T) {
	t.Parallel()

	_, err := Load(writeConfig(t, `
rules:
  - name: dup
    pattern: a
    replacement: x
  - name: dup
    pattern: b
    replacement: y
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate rule name")
}

func TestValidateBadPattern(t *testing.T) {
	t.Parallel()

	_, err := Load(writeConfig(t, `
rules:
  - name: broken
    pattern: '(['
    replacement: x
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid pattern")
}

func TestValidateErrorsCollected(t *testing.T) {
	t.Parallel()

	// A bad pattern and a bad sample id are both reported.
	_, err := Load(writeConfig(t, `
samples:
  - id: 0
    name: Foo
rules:
  - name: broken
    pattern: '(['
    replacement: x
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid pattern")
	assert.Contains(t, err.Error(), "id must be positive")
}

func TestValidateDuplicateSampleID(t *testing.T) {
	t.Parallel()

	_, err := Load(writeConfig(t, `
samples:
  - id: 3
    name: Foo
  - id: 3
    name: Bar
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate sample id 3")
}

func TestRequests(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	reqs := cfg.Requests()
	assert.Equal(t, map[int]model.SampleRequest{
		1: {FqName: "com.example.Foo.bar", BodyOnly: true},
	}, reqs)
}

func TestCompiledRules(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	rules, err := cfg.CompiledRules()
	require.NoError(t, err)
	require.Len(t, rules, 2)

	assert.Equal(t, "usage", rules[0].Name)
	assert.True(t, rules[0].Pattern.MatchString("<!--start-->x<!--end-->"))
	assert.Equal(t, "<!--start-->{{sample:1}}<!--end-->", rules[0].Template)
}
