package engine

import "fmt"

// UnresolvedSampleTokenError reports a rule template referencing a sample id
// with no corresponding result. Fatal for that rule.
type UnresolvedSampleTokenError struct {
	Rule string
	ID   int
}

func (e *UnresolvedSampleTokenError) Error() string {
	return fmt.Sprintf("rule %q references sample %d, which was not resolved", e.Rule, e.ID)
}

// MalformedSampleTokenError reports a rule template containing a sample token
// delimiter that cannot be unambiguously parsed.
type MalformedSampleTokenError struct {
	Rule  string
	Token string
}

func (e *MalformedSampleTokenError) Error() string {
	return fmt.Sprintf("rule %q contains a malformed sample token near %q", e.Rule, e.Token)
}
