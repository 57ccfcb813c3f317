package decode

import (
	"errors"
	"fmt"
)

// Kind classifies why a decode failed.
type Kind int

const (
	// KindMissingField means a required key is absent.
	KindMissingField Kind = iota + 1
	// KindTypeMismatch means a key is present but holds the wrong JSON type.
	KindTypeMismatch
	// KindNested means a nested value (object element, array item) failed to decode.
	KindNested
	// KindInvalidValue means a key has the right type but a value outside its domain,
	// e.g. "type" other than "request".
	KindInvalidValue
	// KindUnsupported means no decoder is registered for the command.
	KindUnsupported
)

func (k Kind) String() string {
	switch k {
	case KindMissingField:
		return "MissingField"
	case KindTypeMismatch:
		return "TypeMismatch"
	case KindNested:
		return "NestedDecodeFailure"
	case KindInvalidValue:
		return "InvalidValue"
	case KindUnsupported:
		return "Unsupported"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// DecodeError is returned by every decoder in this module.
// Field names the key (or indexed element, e.g. "breakpoints[2]") the failure is about.
// Expected holds the expected JSON type for TypeMismatch and the expected value for
// InvalidValue. Err is only set for KindNested.
type DecodeError struct {
	Kind     Kind
	Field    string
	Expected string
	Err      error
}

func (e *DecodeError) Error() string {
	switch e.Kind {
	case KindMissingField:
		return fmt.Sprintf("missing required field %q", e.Field)
	case KindTypeMismatch:
		return fmt.Sprintf("field %q: expected %s", e.Field, e.Expected)
	case KindNested:
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	case KindInvalidValue:
		return fmt.Sprintf("field %q: expected %q", e.Field, e.Expected)
	case KindUnsupported:
		return fmt.Sprintf("unsupported command %q", e.Field)
	default:
		return fmt.Sprintf("decode %s: %s", e.Field, e.Kind)
	}
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// MissingField builds a KindMissingField error.
func MissingField(name string) *DecodeError {
	return &DecodeError{Kind: KindMissingField, Field: name}
}

// TypeMismatch builds a KindTypeMismatch error.
func TypeMismatch(name, expectedType string) *DecodeError {
	return &DecodeError{Kind: KindTypeMismatch, Field: name, Expected: expectedType}
}

// NestedDecodeFailure wraps the failure of a nested decoder under name.
func NestedDecodeFailure(name string, inner error) *DecodeError {
	return &DecodeError{Kind: KindNested, Field: name, Err: inner}
}

// InvalidValue builds a KindInvalidValue error.
func InvalidValue(name, expected string) *DecodeError {
	return &DecodeError{Kind: KindInvalidValue, Field: name, Expected: expected}
}

// Unsupported reports a command with no registered decoder.
func Unsupported(command string) *DecodeError {
	return &DecodeError{Kind: KindUnsupported, Field: command}
}

// AsDecodeError returns the outermost DecodeError in err's chain.
func AsDecodeError(err error) (*DecodeError, bool) {
	var de *DecodeError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Innermost follows NestedDecodeFailure links down to the originating error.
func Innermost(err error) *DecodeError {
	de, ok := AsDecodeError(err)
	if !ok {
		return nil
	}
	for de.Kind == KindNested {
		inner, ok := AsDecodeError(de.Err)
		if !ok {
			break
		}
		de = inner
	}
	return de
}

// Path renders the dotted field path of a nested failure,
// e.g. "breakpoints[1].line" for a failure inside setBreakpoints arguments.
func Path(err error) string {
	de, ok := AsDecodeError(err)
	if !ok {
		return ""
	}
	path := de.Field
	for de.Kind == KindNested {
		inner, ok := AsDecodeError(de.Err)
		if !ok {
			break
		}
		if inner.Kind != KindUnsupported {
			path += "." + inner.Field
		}
		de = inner
	}
	return path
}
