// Package model defines core data structures for doks.
package model

import (
	"encoding/json"
	"io"
)

// SampleRequest identifies a single named declaration and whether only its
// body is wanted. It is comparable and safe to use as a map key.
type SampleRequest struct {
	FqName   string `json:"fqName"`
	BodyOnly bool   `json:"bodyOnly,omitempty"`
}

// SampleResult is the resolved text for one SampleRequest.
type SampleResult struct {
	Request SampleRequest `json:"request"`
	Content string        `json:"content"`
}

// SampleMap maps configured sample ids to their resolved results. It is the
// intermediate artifact between a parse phase and a sync phase and may be
// persisted as JSON in between.
type SampleMap map[int]SampleResult

// EncodeSamples writes m as indented JSON.
func EncodeSamples(w io.Writer, m SampleMap) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

// DecodeSamples reads a SampleMap previously written by EncodeSamples.
func DecodeSamples(r io.Reader) (SampleMap, error) {
	var m SampleMap
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

// Replacement is one span of a document to be replaced with new text.
// Start and End are byte offsets into the original document.
type Replacement struct {
	Start int
	End   int
	Text  string
}

// RuleOutcome records what a single rule did to a single document.
type RuleOutcome struct {
	RuleName     string
	Matched      bool
	Replacements []Replacement
}

// SyncResult is the outcome of one sync pass over one document.
type SyncResult struct {
	OriginalText string
	NewText      string
	Changed      bool
	Outcomes     []RuleOutcome
}
