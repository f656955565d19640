// Package apis holds the resource model types known to the codec, plus the
// descriptor list the codec's type registry is seeded from.
//
// Model fields carry JSON struct tags only. The codec derives the YAML
// field names from these tags, so the types here stay byte-compatible with
// their JSON wire form without a second set of tags.
package apis

import "reflect"

// GroupVersionKind identifies a resource shape. The zero Group means the
// legacy core group.
type GroupVersionKind struct {
	Group   string
	Version string
	Kind    string
}

// String returns the identity key for the kind: "group/version/kind", with
// the group segment and its separator omitted for the core group. The same
// string is produced by joining a document's apiVersion and kind fields, so
// registry lookups are exact string matches with no normalization.
func (gvk GroupVersionKind) String() string {
	if gvk.Group == "" {
		return gvk.Version + "/" + gvk.Kind
	}
	return gvk.Group + "/" + gvk.Version + "/" + gvk.Kind
}

// Descriptor associates an identity key with the Go type a document of
// that kind decodes into.
type Descriptor struct {
	GroupVersionKind
	Type reflect.Type
}
