package resolve

import "fmt"

// ParseError reports a source file that could not be parsed. It is fatal for
// that file only; other files in the same pass still resolve.
type ParseError struct {
	File string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: source file could not be parsed", e.File)
}

// NotFoundError reports a requested fully-qualified name with no matching
// declaration anywhere in the resolved source set.
type NotFoundError struct {
	FqName string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no declaration found for %q", e.FqName)
}
