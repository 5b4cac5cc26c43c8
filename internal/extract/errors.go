package extract

import (
	"fmt"

	"github.com/RBusarow/Doks/internal/resolve"
)

// UnsupportedKindError reports extraction attempted on a declaration kind
// outside {class, property, function}.
type UnsupportedKindError struct {
	FqName string
	Kind   resolve.Kind
}

func (e *UnsupportedKindError) Error() string {
	return fmt.Sprintf("%s: cannot extract a sample from a %s declaration", e.FqName, e.Kind)
}

// MissingInitializerError reports a body-only request against a property
// with no initializer.
type MissingInitializerError struct {
	FqName string
}

func (e *MissingInitializerError) Error() string {
	return fmt.Sprintf("%s: property has no initializer", e.FqName)
}

// UnsupportedInitializerError reports a body-only request against a property
// whose initializer is not a string literal.
type UnsupportedInitializerError struct {
	FqName string
}

func (e *UnsupportedInitializerError) Error() string {
	return fmt.Sprintf("%s: property initializer is not a string literal", e.FqName)
}

// MissingBlockBodyError reports a body-only request against a function with
// an expression body instead of a block body.
type MissingBlockBodyError struct {
	FqName string
}

func (e *MissingBlockBodyError) Error() string {
	return fmt.Sprintf("%s: function has no block body", e.FqName)
}
