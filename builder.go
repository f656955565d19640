package kubeyaml

import (
	"reflect"
	"sync"

	"github.com/KimNorgaard/go-kubeyaml/apis"
)

// builder is one immutable decode or encode configuration: a mode plus the
// converter set. One builder exists per (mode, direction) combination for
// the process lifetime; they are never rebuilt per call.
type builder struct {
	strict bool
	convs  []converter
}

func (b *builder) converterFor(t reflect.Type) converter {
	for _, c := range b.convs {
		if c.accepts(t) {
			return c
		}
	}
	return nil
}

// builderSet is the process-wide builder cache. The underlying parse and
// emit state is not reentrant-safe during an active read or write, so one
// mutex serializes all decode operations and a second serializes all
// encode operations. Decode and encode never contend with each other.
type builderSet struct {
	decodeMu sync.Mutex
	encodeMu sync.Mutex

	registry *Registry
	strict   *builder
	lenient  *builder
	encode   *builder
}

var (
	buildersOnce sync.Once
	sharedSet    *builderSet
)

// builders returns the shared builder cache, constructing it on first use.
// Construction seeds the registry from the generated descriptor list and
// warms the field tables for every registered type before any builder is
// handed out.
func builders() *builderSet {
	buildersOnce.Do(func() {
		reg, err := NewRegistry(apis.Descriptors())
		if err != nil {
			// The descriptor list is generated; a collision in it is a
			// generator bug, not a runtime condition.
			panic(err.Error())
		}
		convs := []converter{
			intOrStringConverter{},
			byteSliceConverter{},
			quantityConverter{},
		}
		warmFields(reg, convs)
		sharedSet = &builderSet{
			registry: reg,
			strict:   &builder{strict: true, convs: convs},
			lenient:  &builder{convs: convs},
			encode:   &builder{convs: convs},
		}
	})
	return sharedSet
}

func (bs *builderSet) decoder(strict bool) *builder {
	if strict {
		return bs.strict
	}
	return bs.lenient
}
