package kubeyaml

import (
	"fmt"
	"reflect"
)

// Option configures a single decode call.
type Option func(*options) error

type options struct {
	strict   bool
	maxDepth int
	types    map[string]reflect.Type
}

func (o *options) apply(opts []Option) error {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return err
		}
	}
	return nil
}

// Strict returns an Option that makes decoding reject duplicate keys and
// fields not present in the target type. The default is lenient: duplicate
// keys keep their last value and unmatched fields are ignored.
func Strict() Option {
	return func(o *options) error {
		o.strict = true
		return nil
	}
}

// MaxDepth returns an Option that sets the maximum nesting depth the
// decoder will follow into a document before giving up. The default is
// 1000.
//
// The depth n must be a positive integer.
func MaxDepth(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return fmt.Errorf("kubeyaml: max depth must be a positive integer")
		}
		o.maxDepth = n
		return nil
	}
}

// WithTypes returns an Option that overlays the base type registry with
// caller-supplied identity key to type entries for the duration of one
// call. Caller entries take precedence over the base registry; the base
// registry is never modified.
func WithTypes(types map[string]reflect.Type) Option {
	return func(o *options) error {
		if len(types) == 0 {
			return nil
		}
		if o.types == nil {
			o.types = make(map[string]reflect.Type, len(types))
		}
		for k, t := range types {
			o.types[k] = t
		}
		return nil
	}
}
