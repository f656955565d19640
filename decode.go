package kubeyaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultMaxDepth = 1000

// decodeState maps parsed nodes onto Go values for one document.
type decodeState struct {
	b     *builder
	doc   int // 1-based ordinal of the document being decoded
	depth int // remaining recursion budget, counted down by mapNode
}

// identityPass is the first of the two passes over a multi-document
// source: it reads every document just far enough to derive its identity
// key and resolve the target type. The returned list holds one type per
// non-empty document, in stream order.
func identityPass(bs *builderSet, data []byte, override map[string]reflect.Type) ([]reflect.Type, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var types []reflect.Type
	doc := 0
	for {
		var n yaml.Node
		err := dec.Decode(&n)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &StreamError{Ordinal: doc + 1, Err: err}
		}
		doc++
		root := documentRoot(&n)
		if isNullNode(root) {
			continue
		}
		ds := &decodeState{b: bs.lenient, doc: doc, depth: defaultMaxDepth}
		key, ok, err := ds.identityKey(root)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &UnresolvedIdentityError{Key: key, Ordinal: doc}
		}
		t, found := bs.registry.Resolve(key, override)
		if !found {
			return nil, &UnresolvedIdentityError{Key: key, Ordinal: doc}
		}
		types = append(types, t)
	}
	return types, nil
}

// identityKey derives "apiVersion/kind" from a document's top-level
// mapping. Merge keys are expanded first, so identity fields inherited
// through an anchor are honored.
func (ds *decodeState) identityKey(root *yaml.Node) (string, bool, error) {
	root = resolveAlias(root)
	if root == nil || root.Kind != yaml.MappingNode {
		return "", false, nil
	}
	pairs, err := ds.mappingPairs(root)
	if err != nil {
		return "", false, err
	}
	var apiVersion, kind string
	for _, p := range pairs {
		v := resolveAlias(p.val)
		if v == nil || v.Kind != yaml.ScalarNode {
			continue
		}
		switch p.key.Value {
		case "apiVersion":
			apiVersion = v.Value
		case "kind":
			kind = v.Value
		}
	}
	key := apiVersion + "/" + kind
	return key, apiVersion != "" && kind != "", nil
}

// typedPass is the second pass: it re-reads the source from the start and
// decodes each document into the type recorded for it by the identity
// pass. Results are pointers to the resolved types, in input order.
func typedPass(b *builder, data []byte, types []reflect.Type, maxDepth int) ([]any, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	out := make([]any, 0, len(types))
	doc := 0
	for {
		var n yaml.Node
		err := dec.Decode(&n)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &StreamError{Ordinal: doc + 1, Err: err}
		}
		doc++
		root := documentRoot(&n)
		if isNullNode(root) {
			continue
		}
		if len(out) >= len(types) {
			// Both passes read the same bytes; a length mismatch means the
			// source changed between passes, which callers must not do.
			return nil, &StreamError{Ordinal: doc, Err: fmt.Errorf("document count changed between passes")}
		}
		t := types[len(out)]
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		pv := reflect.New(t)
		ds := &decodeState{b: b, doc: doc, depth: maxDepth}
		if err := ds.mapNode(root, pv.Elem()); err != nil {
			return nil, err
		}
		out = append(out, pv.Interface())
	}
	return out, nil
}

// documentRoot unwraps a decoded document node to its content.
func documentRoot(n *yaml.Node) *yaml.Node {
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return nil
		}
		return n.Content[0]
	}
	if n.Kind == 0 {
		return nil
	}
	return n
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func isNullNode(n *yaml.Node) bool {
	return n == nil || n.Kind == 0 || n.Tag == "!!null"
}

func (ds *decodeState) mapNode(n *yaml.Node, rv reflect.Value) error {
	ds.depth--
	if ds.depth <= 0 {
		return &StreamError{Ordinal: ds.doc, Err: errors.New("reached max recursion depth")}
	}
	defer func() { ds.depth++ }()

	n = resolveAlias(n)
	if n != nil && n.Kind == yaml.DocumentNode {
		return ds.mapNode(documentRoot(n), rv)
	}
	if isNullNode(n) {
		if rv.CanSet() {
			rv.Set(reflect.Zero(rv.Type()))
		}
		return nil
	}

	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		rv = rv.Elem()
	}

	if c := ds.b.converterFor(rv.Type()); c != nil {
		v, err := c.decode(n, ds.doc)
		if err != nil {
			return err
		}
		if !v.IsValid() {
			// Absent scalar: the destination stays (or becomes) zero.
			rv.Set(reflect.Zero(rv.Type()))
			return nil
		}
		rv.Set(v)
		return nil
	}

	if rv.Kind() == reflect.Interface {
		if rv.NumMethod() != 0 {
			return fmt.Errorf("kubeyaml: cannot unmarshal into non-empty interface %s", rv.Type())
		}
		return ds.mapInterface(n, rv)
	}
	if !rv.CanSet() {
		return fmt.Errorf("kubeyaml: cannot set value of type %s", rv.Type())
	}

	switch n.Kind {
	case yaml.ScalarNode:
		return ds.mapScalar(n, rv)
	case yaml.SequenceNode:
		switch rv.Kind() {
		case reflect.Slice:
			return ds.mapSlice(n, rv)
		case reflect.Array:
			return ds.mapArray(n, rv)
		default:
			return fmt.Errorf("kubeyaml: cannot unmarshal sequence into Go value of type %s", rv.Type())
		}
	case yaml.MappingNode:
		switch rv.Kind() {
		case reflect.Struct:
			return ds.mapStruct(n, rv)
		case reflect.Map:
			return ds.mapMap(n, rv)
		default:
			return fmt.Errorf("kubeyaml: cannot unmarshal mapping into Go value of type %s", rv.Type())
		}
	default:
		return fmt.Errorf("kubeyaml: unsupported node kind %d", n.Kind)
	}
}

func (ds *decodeState) mapScalar(n *yaml.Node, rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.String:
		rv.SetString(n.Value)
		return nil
	case reflect.Bool:
		b, err := strconv.ParseBool(n.Value)
		if err != nil {
			return &ScalarError{Type: rv.Type(), Raw: n.Value, Ordinal: ds.doc, Err: err}
		}
		rv.SetBool(b)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(n.Value, 10, 64)
		if err != nil {
			return &ScalarError{Type: rv.Type(), Raw: n.Value, Ordinal: ds.doc, Err: err}
		}
		if rv.OverflowInt(i) {
			return &ScalarError{Type: rv.Type(), Raw: n.Value, Ordinal: ds.doc, Err: fmt.Errorf("value overflows %s", rv.Type())}
		}
		rv.SetInt(i)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u, err := strconv.ParseUint(n.Value, 10, 64)
		if err != nil {
			return &ScalarError{Type: rv.Type(), Raw: n.Value, Ordinal: ds.doc, Err: err}
		}
		if rv.OverflowUint(u) {
			return &ScalarError{Type: rv.Type(), Raw: n.Value, Ordinal: ds.doc, Err: fmt.Errorf("value overflows %s", rv.Type())}
		}
		rv.SetUint(u)
		return nil
	case reflect.Float32, reflect.Float64:
		f, err := parseFloat(n.Value)
		if err != nil {
			return &ScalarError{Type: rv.Type(), Raw: n.Value, Ordinal: ds.doc, Err: err}
		}
		if rv.OverflowFloat(f) {
			return &ScalarError{Type: rv.Type(), Raw: n.Value, Ordinal: ds.doc, Err: fmt.Errorf("value overflows %s", rv.Type())}
		}
		rv.SetFloat(f)
		return nil
	default:
		return fmt.Errorf("kubeyaml: cannot unmarshal scalar into Go value of type %s", rv.Type())
	}
}

// parseFloat accepts the YAML spellings of the special values on top of
// the usual numeric forms.
func parseFloat(s string) (float64, error) {
	switch strings.ToLower(s) {
	case ".nan":
		return math.NaN(), nil
	case ".inf", "+.inf":
		return math.Inf(1), nil
	case "-.inf":
		return math.Inf(-1), nil
	}
	return strconv.ParseFloat(s, 64)
}

func (ds *decodeState) mapSlice(n *yaml.Node, rv reflect.Value) error {
	out := reflect.MakeSlice(rv.Type(), len(n.Content), len(n.Content))
	for i, elem := range n.Content {
		if err := ds.mapNode(elem, out.Index(i)); err != nil {
			return err
		}
	}
	rv.Set(out)
	return nil
}

func (ds *decodeState) mapArray(n *yaml.Node, rv reflect.Value) error {
	if rv.Len() != len(n.Content) {
		return fmt.Errorf("kubeyaml: cannot unmarshal sequence of length %d into Go array of length %d", len(n.Content), rv.Len())
	}
	for i, elem := range n.Content {
		if err := ds.mapNode(elem, rv.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

// nodePair is one key/value entry of a mapping after merge expansion.
type nodePair struct {
	key *yaml.Node
	val *yaml.Node
}

// mappingPairs flattens a mapping node into an ordered pair list. Merge
// keys ("<<") are expanded per the YAML merge convention: explicit keys
// win over merged ones, and earlier merge sources win over later ones.
// Explicit duplicates are a DuplicateKeyError in strict mode; in lenient
// mode the last value wins.
func (ds *decodeState) mappingPairs(n *yaml.Node) ([]nodePair, error) {
	pairs := make([]nodePair, 0, len(n.Content)/2)
	index := make(map[string]int, len(n.Content)/2)
	var merges []*yaml.Node

	for i := 0; i+1 < len(n.Content); i += 2 {
		k := resolveAlias(n.Content[i])
		v := n.Content[i+1]
		if k.Tag == "!!merge" {
			merges = append(merges, v)
			continue
		}
		if j, ok := index[k.Value]; ok {
			if ds.b.strict {
				return nil, &DuplicateKeyError{Key: k.Value, Ordinal: ds.doc}
			}
			pairs[j].val = v
			continue
		}
		index[k.Value] = len(pairs)
		pairs = append(pairs, nodePair{key: k, val: v})
	}

	for _, m := range merges {
		for _, src := range mergeSources(m) {
			src = resolveAlias(src)
			if src == nil || src.Kind != yaml.MappingNode {
				return nil, &StreamError{Ordinal: ds.doc, Err: fmt.Errorf("merge value is not a mapping")}
			}
			sub, err := ds.mappingPairs(src)
			if err != nil {
				return nil, err
			}
			for _, p := range sub {
				if _, ok := index[p.key.Value]; ok {
					continue
				}
				index[p.key.Value] = len(pairs)
				pairs = append(pairs, p)
			}
		}
	}
	return pairs, nil
}

func mergeSources(v *yaml.Node) []*yaml.Node {
	v = resolveAlias(v)
	if v != nil && v.Kind == yaml.SequenceNode {
		return v.Content
	}
	return []*yaml.Node{v}
}

func (ds *decodeState) mapStruct(n *yaml.Node, rv reflect.Value) error {
	ft := typeFields(rv.Type())
	pairs, err := ds.mappingPairs(n)
	if err != nil {
		return err
	}
	for _, p := range pairs {
		f, ok := ft.byName[p.key.Value]
		if !ok {
			if ds.b.strict {
				return &UnknownFieldError{Field: p.key.Value, Type: rv.Type(), Ordinal: ds.doc}
			}
			continue
		}
		fv := rv.FieldByIndex(f.idx)
		if !fv.IsValid() || !fv.CanSet() {
			continue
		}
		if err := ds.mapNode(p.val, fv); err != nil {
			return err
		}
	}
	return nil
}

func (ds *decodeState) mapMap(n *yaml.Node, rv reflect.Value) error {
	mt := rv.Type()
	if mt.Key().Kind() != reflect.String {
		return fmt.Errorf("kubeyaml: cannot unmarshal mapping into map with non-string key type %s", mt.Key())
	}
	pairs, err := ds.mappingPairs(n)
	if err != nil {
		return err
	}
	if rv.IsNil() {
		rv.Set(reflect.MakeMapWithSize(mt, len(pairs)))
	}
	elemType := mt.Elem()
	for _, p := range pairs {
		ev := reflect.New(elemType).Elem()
		if err := ds.mapNode(p.val, ev); err != nil {
			return err
		}
		rv.SetMapIndex(reflect.ValueOf(p.key.Value).Convert(mt.Key()), ev)
	}
	return nil
}

// mapInterface materializes a node into the natural Go shape for an empty
// interface destination.
func (ds *decodeState) mapInterface(n *yaml.Node, rv reflect.Value) error {
	var concrete reflect.Value
	switch n.Kind {
	case yaml.MappingNode:
		var m map[string]any
		concrete = reflect.ValueOf(&m).Elem()
	case yaml.SequenceNode:
		var s []any
		concrete = reflect.ValueOf(&s).Elem()
	case yaml.ScalarNode:
		switch n.Tag {
		case "!!bool":
			var b bool
			concrete = reflect.ValueOf(&b).Elem()
		case "!!int":
			if _, err := strconv.ParseInt(n.Value, 10, 64); err != nil {
				// Out of int64 range; carry the literal text instead.
				var s string
				concrete = reflect.ValueOf(&s).Elem()
			} else {
				var i int64
				concrete = reflect.ValueOf(&i).Elem()
			}
		case "!!float":
			var f float64
			concrete = reflect.ValueOf(&f).Elem()
		default:
			var s string
			concrete = reflect.ValueOf(&s).Elem()
		}
	default:
		return fmt.Errorf("kubeyaml: cannot determine concrete type for interface for node kind %d", n.Kind)
	}
	if err := ds.mapNode(n, concrete); err != nil {
		return err
	}
	rv.Set(concrete)
	return nil
}
