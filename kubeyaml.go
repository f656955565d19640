package kubeyaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"reflect"

	"gopkg.in/yaml.v3"
)

// Decode parses a single document into a value of type T. The target type
// is supplied by the caller, so no identity resolution takes place; the
// document's apiVersion and kind fields, when present, decode like any
// other fields.
func Decode[T any](data []byte, opts ...Option) (T, error) {
	var out T
	err := DecodeInto(data, &out, opts...)
	return out, err
}

// DecodeInto parses a single document into the value pointed to by v. An
// empty source leaves v untouched.
func DecodeInto(data []byte, v any, opts ...Option) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("kubeyaml: DecodeInto(non-pointer %T or nil)", v)
	}
	o := options{maxDepth: defaultMaxDepth}
	if err := o.apply(opts); err != nil {
		return err
	}

	bs := builders()
	bs.decodeMu.Lock()
	defer bs.decodeMu.Unlock()

	var n yaml.Node
	err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&n)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return &StreamError{Ordinal: 1, Err: err}
	}
	root := documentRoot(&n)
	if isNullNode(root) {
		return nil
	}
	ds := &decodeState{b: bs.decoder(o.strict), doc: 1, depth: o.maxDepth}
	return ds.mapNode(root, rv.Elem())
}

// DecodeAll parses a multi-document stream, resolving each document's
// target type from its apiVersion/kind fields. The result holds pointers
// to the resolved types, one per non-empty document, in input order.
//
// Decoding is all-or-nothing: any unresolvable identity, grammar
// violation, or mapping failure aborts the whole call with no partial
// results. Reordering or dropping a single malformed document would be
// unsafe for the configuration streams this codec exists for.
func DecodeAll(data []byte, opts ...Option) ([]any, error) {
	o := options{maxDepth: defaultMaxDepth}
	if err := o.apply(opts); err != nil {
		return nil, err
	}

	bs := builders()
	bs.decodeMu.Lock()
	defer bs.decodeMu.Unlock()

	types, err := identityPass(bs, data, o.types)
	if err != nil {
		return nil, err
	}
	return typedPass(bs.decoder(o.strict), data, types, o.maxDepth)
}

// Encode renders a single value as one YAML document. A nil value (or a
// value that serializes to null) encodes to empty output.
func Encode(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}

	bs := builders()
	bs.encodeMu.Lock()
	defer bs.encodeMu.Unlock()

	es := &encodeState{b: bs.encode}
	node, err := es.marshalValue(reflect.ValueOf(v))
	if err != nil {
		return nil, err
	}
	if isNullNode(node) {
		return nil, nil
	}
	return encodeDocument(node)
}

// EncodeAll renders a sequence of values as a YAML stream. Each non-nil
// value becomes a document framed by an explicit "---" start and "..."
// end marker; nil entries are skipped entirely rather than emitted as
// empty documents. A nil or empty input encodes to empty output.
func EncodeAll(values []any) ([]byte, error) {
	if len(values) == 0 {
		return nil, nil
	}

	bs := builders()
	bs.encodeMu.Lock()
	defer bs.encodeMu.Unlock()

	es := &encodeState{b: bs.encode}
	var buf bytes.Buffer
	for _, v := range values {
		if v == nil {
			continue
		}
		node, err := es.marshalValue(reflect.ValueOf(v))
		if err != nil {
			return nil, err
		}
		if isNullNode(node) {
			continue
		}
		doc, err := encodeDocument(node)
		if err != nil {
			return nil, err
		}
		buf.WriteString("---\n")
		buf.Write(doc)
		buf.WriteString("...\n")
	}
	return buf.Bytes(), nil
}
