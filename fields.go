package kubeyaml

import (
	"reflect"
	"strings"
	"sync"
	"unicode"
)

// A field describes one serializable struct field: the wire name resolved
// from its JSON tag (or derived from the Go name), the index path to reach
// it through embedded structs, and its omitempty flag.
type field struct {
	name      string
	idx       []int
	typ       reflect.Type
	omitEmpty bool
}

// fieldTable holds a struct type's fields keyed by wire name, plus the
// declaration-order list used for deterministic encoding.
type fieldTable struct {
	byName map[string]*field
	list   []*field
}

// fieldTables caches one fieldTable per struct type for the process
// lifetime. Tables for all registry value types are built up front, before
// the first builder configuration exists; types reached only through a
// per-call override are filled in lazily.
var fieldTables sync.Map // map[reflect.Type]*fieldTable

// typeFields returns the cached field table for a struct type, building
// and caching it on first use.
func typeFields(t reflect.Type) *fieldTable {
	if ft, ok := fieldTables.Load(t); ok {
		return ft.(*fieldTable)
	}

	ft := &fieldTable{byName: make(map[string]*field)}
	var walk func(t reflect.Type, idx []int)
	walk = func(t reflect.Type, idx []int) {
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			tag := sf.Tag.Get("json")
			if tag == "-" {
				continue
			}
			name, opts := parseTag(tag)
			fidx := append(append([]int(nil), idx...), i)

			// Embedded structs without an explicit tag name are flattened
			// into the parent, matching encoding/json's inline behavior.
			if sf.Anonymous && name == "" && sf.Type.Kind() == reflect.Struct {
				walk(sf.Type, fidx)
				continue
			}
			if !sf.IsExported() {
				continue
			}
			if name == "" {
				name = lowerCamel(sf.Name)
			}
			if _, ok := ft.byName[name]; ok {
				// First registration in walk order wins; the model types
				// never declare colliding names.
				continue
			}
			f := &field{name: name, idx: fidx, typ: sf.Type, omitEmpty: opts["omitempty"]}
			ft.byName[name] = f
			ft.list = append(ft.list, f)
		}
	}
	walk(t, nil)

	fieldTables.Store(t, ft)
	return ft
}

// parseTag splits a json struct tag into its name and options.
func parseTag(tag string) (string, map[string]bool) {
	parts := strings.Split(tag, ",")
	name := parts[0]
	options := make(map[string]bool)
	for _, part := range parts[1:] {
		options[strings.TrimSpace(part)] = true
	}
	return name, options
}

// lowerCamel derives the default wire name from a Go field name: the
// leading run of capitals is lowercased, keeping the capital that starts
// the next word. "APIVersion" becomes "apiVersion", "TTL" becomes "ttl".
func lowerCamel(s string) string {
	rs := []rune(s)
	for i := 0; i < len(rs) && unicode.IsUpper(rs[i]); i++ {
		if i > 0 && i+1 < len(rs) && unicode.IsLower(rs[i+1]) {
			break
		}
		rs[i] = unicode.ToLower(rs[i])
	}
	return string(rs)
}

// warmFields builds the field tables for every struct type reachable from
// the registry's value types. Building them here, once, keeps the decode
// and encode paths free of first-use reflection cost and upholds the rule
// that alias resolution happens before the first builder is constructed.
func warmFields(r *Registry, convs []converter) {
	seen := make(map[reflect.Type]bool)
	for _, t := range r.types {
		warmType(t, convs, seen)
	}
}

func warmType(t reflect.Type, convs []converter, seen map[reflect.Type]bool) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if seen[t] {
		return
	}
	seen[t] = true

	switch t.Kind() {
	case reflect.Struct:
		// Converter-governed types are opaque scalars; their internals are
		// never walked by the codec.
		for _, c := range convs {
			if c.accepts(t) {
				return
			}
		}
		ft := typeFields(t)
		for _, f := range ft.list {
			warmType(f.typ, convs, seen)
		}
	case reflect.Slice, reflect.Array, reflect.Map:
		warmType(t.Elem(), convs, seen)
	}
}
