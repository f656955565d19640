package kubeyaml

import (
	"fmt"
	"reflect"
)

// UnresolvedIdentityError reports a document whose apiVersion/kind pair is
// missing or has no registered type.
type UnresolvedIdentityError struct {
	// Key is the identity key derived from the document, possibly with an
	// empty segment when apiVersion or kind was absent.
	Key string
	// Ordinal is the document's 1-based position in the stream.
	Ordinal int
}

func (e *UnresolvedIdentityError) Error() string {
	return fmt.Sprintf("kubeyaml: no type registered for %q (document %d)", e.Key, e.Ordinal)
}

// DuplicateKeyError reports a key that appears twice within one mapping.
// It is returned in strict mode only; lenient mode keeps the last value.
type DuplicateKeyError struct {
	Key     string
	Ordinal int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("kubeyaml: duplicate key %q (document %d)", e.Key, e.Ordinal)
}

// UnknownFieldError reports a field present in the text but absent from
// the target type. It is returned in strict mode only.
type UnknownFieldError struct {
	Field   string
	Type    reflect.Type
	Ordinal int
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("kubeyaml: unknown field %q in %s (document %d)", e.Field, e.Type, e.Ordinal)
}

// ScalarError reports a scalar whose raw text could not be interpreted for
// its target type.
type ScalarError struct {
	Type    reflect.Type
	Raw     string
	Ordinal int
	Err     error
}

func (e *ScalarError) Error() string {
	msg := fmt.Sprintf("kubeyaml: cannot decode %q into %s (document %d)", e.Raw, e.Type, e.Ordinal)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ScalarError) Unwrap() error { return e.Err }

// StreamError reports a violation of the document stream grammar.
type StreamError struct {
	// Ordinal is the 1-based position of the document being read when the
	// grammar violation surfaced.
	Ordinal int
	Err     error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("kubeyaml: malformed stream at document %d: %v", e.Ordinal, e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }

// RegistryError reports two descriptors claiming the same identity key at
// registry build time.
type RegistryError struct {
	Key string
}

func (e *RegistryError) Error() string {
	return fmt.Sprintf("kubeyaml: conflicting registration for identity key %q", e.Key)
}
