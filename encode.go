package kubeyaml

import (
	"bytes"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const encodeIndent = 2

// encodeState builds fresh node trees from Go values. Every node is
// constructed per value, so the output can never contain anchors or
// aliases even when one object instance appears multiple times.
type encodeState struct {
	b *builder
}

func (es *encodeState) marshalValue(v reflect.Value) (*yaml.Node, error) {
	if !v.IsValid() {
		return nullNode(), nil
	}
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nullNode(), nil
		}
		v = v.Elem()
	}

	if c := es.b.converterFor(v.Type()); c != nil {
		return c.encode(v)
	}

	switch v.Kind() {
	case reflect.String:
		return stringNode(v.String()), nil
	case reflect.Bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v.Bool())}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(v.Int(), 10)}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatUint(v.Uint(), 10)}, nil
	case reflect.Float32, reflect.Float64:
		bits := 64
		if v.Kind() == reflect.Float32 {
			bits = 32
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: formatFloat(v.Float(), bits)}, nil
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return nullNode(), nil
		}
		return es.marshalSequence(v)
	case reflect.Map:
		if v.IsNil() {
			return nullNode(), nil
		}
		return es.marshalMap(v)
	case reflect.Struct:
		return es.marshalStruct(v)
	default:
		return nil, fmt.Errorf("kubeyaml: unsupported type for encoding: %s", v.Type())
	}
}

func (es *encodeState) marshalSequence(v reflect.Value) (*yaml.Node, error) {
	n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for i := 0; i < v.Len(); i++ {
		elem, err := es.marshalValue(v.Index(i))
		if err != nil {
			return nil, err
		}
		n.Content = append(n.Content, elem)
	}
	return n, nil
}

// marshalMap emits map entries in sorted key order so output is stable
// across runs. Null-valued entries are omitted like null fields.
func (es *encodeState) marshalMap(v reflect.Value) (*yaml.Node, error) {
	if v.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("kubeyaml: map key type must be a string, got %s", v.Type().Key())
	}
	keys := make([]string, 0, v.Len())
	for _, k := range v.MapKeys() {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)

	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	keyType := v.Type().Key()
	for _, k := range keys {
		val, err := es.marshalValue(v.MapIndex(reflect.ValueOf(k).Convert(keyType)))
		if err != nil {
			return nil, err
		}
		if isNullNode(val) {
			continue
		}
		n.Content = append(n.Content, stringNode(k), val)
	}
	return n, nil
}

// marshalStruct emits fields in declaration order under their resolved
// wire names. Null-valued fields are dropped entirely, and fields tagged
// omitempty are dropped when empty.
func (es *encodeState) marshalStruct(v reflect.Value) (*yaml.Node, error) {
	ft := typeFields(v.Type())
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, f := range ft.list {
		fv := v.FieldByIndex(f.idx)
		if f.omitEmpty && isEmptyValue(fv) {
			continue
		}
		val, err := es.marshalValue(fv)
		if err != nil {
			return nil, err
		}
		if isNullNode(val) {
			continue
		}
		n.Content = append(n.Content, stringNode(f.name), val)
	}
	return n, nil
}

// isEmptyValue reports whether the value v is empty for omitempty.
func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Pointer:
		return v.IsNil()
	case reflect.Struct:
		return v.IsZero()
	}
	return false
}

func nullNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}

// stringNode builds a string scalar, force-quoting text that a reader
// could otherwise take for a number, boolean, or null keyword. The YAML
// 1.1 boolean spellings are included because downstream consumers still
// parse them.
func stringNode(s string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	if ambiguousScalar(s) {
		n.Style = yaml.DoubleQuotedStyle
	}
	return n
}

func ambiguousScalar(s string) bool {
	if s == "" {
		return true
	}
	switch strings.ToLower(s) {
	case "null", "~", "true", "false", "yes", "no", "on", "off", "y", "n":
		return true
	case ".inf", "+.inf", "-.inf", ".nan":
		return true
	}
	return looksLikeNumber(s)
}

// looksLikeNumber matches the number spellings a YAML reader resolves,
// not Go's: strconv also accepts "nan", "inf", "infinity", and hex
// floats, all of which YAML reads as plain strings that must not be
// quoted.
func looksLikeNumber(s string) bool {
	if s[0] == '+' || s[0] == '-' {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	if len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X") {
		_, err := strconv.ParseUint(s[2:], 16, 64)
		return err == nil
	}
	if len(s) > 2 && (s[:2] == "0o" || s[:2] == "0O") {
		_, err := strconv.ParseUint(s[2:], 8, 64)
		return err == nil
	}
	mantissa, exponent := s, ""
	hasExp := false
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		mantissa, exponent, hasExp = s[:i], s[i+1:], true
	}
	intPart, fracPart := mantissa, ""
	if i := strings.IndexByte(mantissa, '.'); i >= 0 {
		intPart, fracPart = mantissa[:i], mantissa[i+1:]
	}
	if intPart == "" && fracPart == "" {
		return false
	}
	if !allDigits(intPart) || !allDigits(fracPart) {
		return false
	}
	if hasExp {
		if exponent != "" && (exponent[0] == '+' || exponent[0] == '-') {
			exponent = exponent[1:]
		}
		if exponent == "" || !allDigits(exponent) {
			return false
		}
	}
	return true
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// formatFloat renders floats the way downstream YAML consumers expect:
// the special values use their YAML spellings instead of Go's Inf/NaN
// tokens, and integral values keep a trailing ".0" so they stay floats on
// the next read.
func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, bits)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// encodeDocument renders one node tree as a YAML document.
func encodeDocument(node *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(encodeIndent)
	if err := enc.Encode(node); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
