package patchfmt

import "errors"

// Kind is a stable category for programmatic error handling.
//
// Callers should branch on Kind (and Field for corruption) rather than
// matching error strings; Error() text is for humans and may evolve.
type Kind string

const (
	// KindCorrupt marks structural damage: a truncated or inconsistent
	// byte stream. Field names the wire field that could not be read.
	KindCorrupt Kind = "Corrupt"

	// KindUnsupportedVersion marks a versioned container whose version
	// code this build does not understand.
	KindUnsupportedVersion Kind = "UnsupportedVersion"
)

// Error is the package's structured error type.
type Error struct {
	Kind    Kind
	Field   string // wire field at fault, e.g. "forward delta length"
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// IsKind reports whether err is (or wraps) a *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// FieldOf returns the wire field named by a corruption error, or "" when
// err carries no field information.
func FieldOf(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Field
}

func corrupt(field, msg string) error {
	return &Error{Kind: KindCorrupt, Field: field, Message: msg}
}
