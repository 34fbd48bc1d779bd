package token

import "fmt"

// Kind classifies a validation failure.
type Kind int

const (
	KindMalformed Kind = iota + 1
	KindBadSignature
	KindExpired
	KindNotYetValid
)

func (k Kind) String() string {
	switch k {
	case KindMalformed:
		return "malformed"
	case KindBadSignature:
		return "bad_signature"
	case KindExpired:
		return "expired"
	case KindNotYetValid:
		return "not_yet_valid"
	default:
		return "unknown"
	}
}

// Error is returned by Validator.Validate.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "token: " + e.Kind.String()
	}
	return fmt.Sprintf("token: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrMalformed    = &Error{Kind: KindMalformed}
	ErrBadSignature = &Error{Kind: KindBadSignature}
	ErrExpired      = &Error{Kind: KindExpired}
	ErrNotYetValid  = &Error{Kind: KindNotYetValid}
)

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}
