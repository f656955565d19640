/*
Package kubeyaml reads and writes YAML streams of cluster resource
documents whose concrete Go type is declared inside each document by its
apiVersion and kind fields.

The package offers two decoding entry points depending on what the caller
knows up front:

1. Decoding a document of a known type

When the target type is known, Decode (or DecodeInto) maps a single
document directly, the same way encoding/json's Unmarshal does:

	pod, err := kubeyaml.Decode[apis.Pod](data)
	if err != nil {
		// handle error
	}

2. Decoding a stream of self-describing documents

DecodeAll reads a whole multi-document stream and resolves each document's
type from its apiVersion/kind pair against the registered model types:

	objs, err := kubeyaml.DecodeAll(data)
	if err != nil {
		// handle error
	}
	for _, obj := range objs {
		switch o := obj.(type) {
		case *apis.Pod:
			// ...
		}
	}

Because the underlying parser is a forward-only cursor and a document's
type lives inside the document itself, DecodeAll makes two passes over the
source: one to resolve every document's type, one to decode each document
into its resolved type. A stream either decodes completely or not at all.

Decoding is lenient by default: fields present in the text but absent from
the target type are ignored, and duplicate keys keep their last value. The
Strict option rejects both with errors naming the offending key and the
document's position in the stream.

Model types carry JSON struct tags only; the codec translates each field's
JSON name to its YAML name, falling back to a lower-camel-case rendering of
the Go field name when no tag is present. Encoding omits null fields,
force-quotes strings that would otherwise be misread as numbers, booleans,
or nulls, and never emits anchors or aliases.

The int-or-string, quantity, and byte-slice scalar shapes used by resource
models are handled by built-in converters: intstr.IntOrString preserves
whichever representation the text carried, resource.Quantity round-trips as
its canonical formatted string, and []byte round-trips as the raw text of
the scalar rather than a binary-safe encoding.
*/
package kubeyaml
