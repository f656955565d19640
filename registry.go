package kubeyaml

import (
	"reflect"

	"github.com/KimNorgaard/go-kubeyaml/apis"
)

// Registry maps identity keys to the Go types documents of that kind
// decode into. A Registry is immutable once built; per-call overrides are
// layered on top at lookup time without touching the base mapping.
type Registry struct {
	types map[string]reflect.Type
}

// NewRegistry builds a registry from a descriptor list. Two descriptors
// sharing one identity key are a build error, not a silent overwrite: the
// returned RegistryError names the colliding key.
func NewRegistry(descs []apis.Descriptor) (*Registry, error) {
	types := make(map[string]reflect.Type, len(descs))
	for _, d := range descs {
		key := d.String()
		if _, ok := types[key]; ok {
			return nil, &RegistryError{Key: key}
		}
		types[key] = d.Type
	}
	return &Registry{types: types}, nil
}

// Resolve looks up the type for an identity key. The override map, when
// non-nil, is consulted entry-by-entry before the base registry.
func (r *Registry) Resolve(key string, override map[string]reflect.Type) (reflect.Type, bool) {
	if t, ok := override[key]; ok {
		return t, true
	}
	t, ok := r.types[key]
	return t, ok
}

// Len returns the number of registered identity keys.
func (r *Registry) Len() int { return len(r.types) }
