package contract

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a field-level validation failure.
type Kind string

const (
	// MissingRequiredField: a mandatory field is absent and has no default.
	MissingRequiredField Kind = "missing_required_field"
	// TypeMismatch: the value's shape does not match the declared type.
	TypeMismatch Kind = "type_mismatch"
	// EnumViolation: the value is not one of the declared literals.
	EnumViolation Kind = "enum_violation"
	// PatternViolation: the string does not satisfy the declared format.
	PatternViolation Kind = "pattern_violation"
	// FixedValueViolation: a pinned field carries a different value.
	FixedValueViolation Kind = "fixed_value_violation"
)

// Sentinels matched by errors.Is against a *FieldError of the same kind.
var (
	ErrMissingRequiredField = errors.New("missing required field")
	ErrTypeMismatch         = errors.New("type mismatch")
	ErrEnumViolation        = errors.New("enum violation")
	ErrPatternViolation     = errors.New("pattern violation")
	ErrFixedValueViolation  = errors.New("fixed value violation")
)

func (k Kind) sentinel() error {
	switch k {
	case MissingRequiredField:
		return ErrMissingRequiredField
	case TypeMismatch:
		return ErrTypeMismatch
	case EnumViolation:
		return ErrEnumViolation
	case PatternViolation:
		return ErrPatternViolation
	case FixedValueViolation:
		return ErrFixedValueViolation
	}
	return nil
}

// FieldError describes a single failure at a dotted path from the document
// root, e.g. "schema[2].properties[0].logicalType".
type FieldError struct {
	Kind    Kind
	Path    string
	Message string
}

func (e *FieldError) Error() string {
	path := e.Path
	if path == "" {
		path = "<root>"
	}
	return fmt.Sprintf("%s: %s: %s", path, e.Kind, e.Message)
}

// Unwrap exposes the sentinel for the error's kind.
func (e *FieldError) Unwrap() error { return e.Kind.sentinel() }

// ValidationError aggregates every FieldError found in one document, in
// discovery order. A document with any FieldError is rejected as a whole.
type ValidationError struct {
	Fields []*FieldError
}

func (e *ValidationError) Error() string {
	switch len(e.Fields) {
	case 0:
		return "contract: validation failed"
	case 1:
		return "contract: validation failed: " + e.Fields[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "contract: validation failed with %d errors:", len(e.Fields))
	for _, f := range e.Fields {
		b.WriteString("\n  ")
		b.WriteString(f.Error())
	}
	return b.String()
}

// Unwrap lets errors.Is and errors.As reach the individual field errors.
func (e *ValidationError) Unwrap() []error {
	out := make([]error, len(e.Fields))
	for i, f := range e.Fields {
		out[i] = f
	}
	return out
}

// Has reports whether a field error of kind k exists at path.
func (e *ValidationError) Has(k Kind, path string) bool {
	for _, f := range e.Fields {
		if f.Kind == k && f.Path == path {
			return true
		}
	}
	return false
}

// FieldErrors returns the field errors carried by err, or nil when err is not
// a validation failure.
func FieldErrors(err error) []*FieldError {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	var fe *FieldError
	if errors.As(err, &fe) {
		return []*FieldError{fe}
	}
	return nil
}
