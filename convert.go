package kubeyaml

import (
	"fmt"
	"reflect"
	"strconv"

	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/api/resource"
	"k8s.io/apimachinery/pkg/util/intstr"
)

// A converter handles one scalar shape the generic node mapper cannot
// express: a value whose wire form is disambiguated by lexical inspection
// rather than by the target type alone.
type converter interface {
	// accepts reports whether this converter governs the given type.
	accepts(t reflect.Type) bool
	// decode interprets a node for the governed type. Returning an invalid
	// reflect.Value means the scalar was absent: the caller zeroes the
	// destination. doc is the document ordinal for error context.
	decode(n *yaml.Node, doc int) (reflect.Value, error)
	// encode renders a value of the governed type as a fresh node.
	encode(v reflect.Value) (*yaml.Node, error)
}

var (
	intOrStringType = reflect.TypeOf(intstr.IntOrString{})
	quantityType    = reflect.TypeOf(resource.Quantity{})
	byteSliceType   = reflect.TypeOf([]byte(nil))
)

// intOrStringConverter maps intstr.IntOrString. The representation is
// chosen by inspecting the scalar: an unquoted integer literal produces
// the int form, anything else the string form. It never fails on scalar
// text; the fallback is always the string form.
type intOrStringConverter struct{}

func (intOrStringConverter) accepts(t reflect.Type) bool { return t == intOrStringType }

func (intOrStringConverter) decode(n *yaml.Node, doc int) (reflect.Value, error) {
	if n.Kind != yaml.ScalarNode {
		return reflect.Value{}, &ScalarError{
			Type:    intOrStringType,
			Raw:     n.Value,
			Ordinal: doc,
			Err:     fmt.Errorf("expected a scalar"),
		}
	}
	if n.Tag != "!!str" {
		if i, err := strconv.ParseInt(n.Value, 10, 32); err == nil {
			return reflect.ValueOf(intstr.FromInt32(int32(i))), nil
		}
	}
	return reflect.ValueOf(intstr.FromString(n.Value)), nil
}

func (intOrStringConverter) encode(v reflect.Value) (*yaml.Node, error) {
	is := v.Interface().(intstr.IntOrString)
	if is.Type == intstr.Int {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(is.IntValue())}, nil
	}
	return stringNode(is.StrVal), nil
}

// byteSliceConverter maps []byte as the direct UTF-8 text of the scalar,
// not a binary-safe encoding. An empty or null scalar decodes to an absent
// value rather than a zero-length slice.
type byteSliceConverter struct{}

func (byteSliceConverter) accepts(t reflect.Type) bool { return t == byteSliceType }

func (byteSliceConverter) decode(n *yaml.Node, doc int) (reflect.Value, error) {
	if n.Kind != yaml.ScalarNode {
		return reflect.Value{}, &ScalarError{
			Type:    byteSliceType,
			Raw:     n.Value,
			Ordinal: doc,
			Err:     fmt.Errorf("expected a scalar"),
		}
	}
	if n.Tag == "!!null" || n.Value == "" {
		return reflect.Value{}, nil
	}
	return reflect.ValueOf([]byte(n.Value)), nil
}

func (byteSliceConverter) encode(v reflect.Value) (*yaml.Node, error) {
	if v.IsNil() || v.Len() == 0 {
		return nullNode(), nil
	}
	return stringNode(string(v.Bytes())), nil
}

// quantityConverter maps resource.Quantity as an opaque formatted string.
// Parsing and formatting are entirely the quantity type's business; the
// codec only carries the text.
type quantityConverter struct{}

func (quantityConverter) accepts(t reflect.Type) bool { return t == quantityType }

func (quantityConverter) decode(n *yaml.Node, doc int) (reflect.Value, error) {
	if n.Kind != yaml.ScalarNode {
		return reflect.Value{}, &ScalarError{
			Type:    quantityType,
			Raw:     n.Value,
			Ordinal: doc,
			Err:     fmt.Errorf("expected a scalar"),
		}
	}
	if n.Tag == "!!null" || n.Value == "" {
		return reflect.Value{}, nil
	}
	q, err := resource.ParseQuantity(n.Value)
	if err != nil {
		return reflect.Value{}, &ScalarError{Type: quantityType, Raw: n.Value, Ordinal: doc, Err: err}
	}
	return reflect.ValueOf(q), nil
}

func (quantityConverter) encode(v reflect.Value) (*yaml.Node, error) {
	q := v.Interface().(resource.Quantity)
	return stringNode(q.String()), nil
}
