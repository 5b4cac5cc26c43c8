// Package engine applies regex rewrite rules, with interpolated code
// samples, to documentation text.
package engine

import (
	"errors"
	"sort"

	"github.com/RBusarow/Doks/internal/model"
)

// Engine holds a fixed, ordered rule set with all sample tokens already
// resolved. An Engine is read-only after construction and safe for
// concurrent use across documents.
type Engine struct {
	rules    []Rule
	resolved []string // one resolved template per rule, same order
}

// New resolves every rule's template against the sample mapping. Unresolved
// or malformed sample tokens are fatal for their rule; errors across the
// whole rule set are collected and joined rather than stopping at the first.
func New(rules []Rule, samples model.SampleMap) (*Engine, error) {
	e := &Engine{
		rules:    rules,
		resolved: make([]string, len(rules)),
	}
	var errs []error
	for i, r := range rules {
		tmpl, err := resolveTemplate(r, samples)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		e.resolved[i] = tmpl
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return e, nil
}

// Apply runs every rule against the document and returns one outcome per
// rule, in rule order. All matching happens against the original document
// text; no rule sees the output of another. Replacement text is computed
// even when it equals the matched text, so no-op detection stays with the
// caller.
func (e *Engine) Apply(doc string) []model.RuleOutcome {
	outcomes := make([]model.RuleOutcome, 0, len(e.rules))
	for i, r := range e.rules {
		tmpl := e.resolved[i]

		var reps []model.Replacement
		for _, m := range r.Pattern.FindAllStringSubmatchIndex(doc, -1) {
			text := string(r.Pattern.ExpandString(nil, tmpl, doc, m))
			reps = append(reps, model.Replacement{Start: m[0], End: m[1], Text: text})
		}

		outcomes = append(outcomes, model.RuleOutcome{
			RuleName:     r.Name,
			Matched:      len(reps) > 0,
			Replacements: reps,
		})
	}
	return outcomes
}

// Run is one full sync pass over one document: apply every rule, then splice
// the replacements into the new text. Pure function, no I/O.
func (e *Engine) Run(doc string) model.SyncResult {
	outcomes := e.Apply(doc)

	var all []model.Replacement
	for _, o := range outcomes {
		all = append(all, o.Replacements...)
	}

	// Splice in descending start order so earlier replacements never
	// invalidate later spans' offsets.
	sort.Slice(all, func(i, j int) bool {
		if all[i].Start != all[j].Start {
			return all[i].Start > all[j].Start
		}
		return all[i].End > all[j].End
	})

	// Spans from different rules may overlap; a span crossing into an
	// already-spliced region is skipped, since its offsets no longer
	// describe the text they were computed against.
	newText := doc
	applied := len(doc)
	for _, rep := range all {
		if rep.End > applied {
			continue
		}
		newText = newText[:rep.Start] + rep.Text + newText[rep.End:]
		applied = rep.Start
	}

	return model.SyncResult{
		OriginalText: doc,
		NewText:      newText,
		Changed:      newText != doc,
		Outcomes:     outcomes,
	}
}
