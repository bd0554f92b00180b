package compiler

import (
	"math"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/sghaida/microkernel/di"
)

// referenceTag is the CBOR tag number carrying a di.Reference.
const referenceTag = 28011

// encMode uses Core Deterministic Encoding (RFC 8949 §4.2), so the same
// container always produces the same bytes. Timestamps are written as tag 0
// strings and decode back to time.Time.
var encMode cbor.EncMode

// decMode decodes untyped maps as map[string]any, matching what the YAML
// loader produces.
var decMode cbor.DecMode

func init() {
	tags := cbor.NewTagSet()
	err := tags.Add(
		cbor.TagOptions{EncTag: cbor.EncTagRequired, DecTag: cbor.DecTagRequired},
		reflect.TypeOf(di.Reference{}),
		referenceTag,
	)
	if err != nil {
		panic("compiler: CBOR tag registration failed: " + err.Error())
	}

	opts := cbor.CoreDetEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	opts.TimeTag = cbor.EncTagRequired
	encMode, err = opts.EncModeWithTags(tags)
	if err != nil {
		panic("compiler: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecModeWithTags(tags)
	if err != nil {
		panic("compiler: CBOR decoder initialization failed: " + err.Error())
	}
}

// normalize maps CBOR integers back to int so restored parameters compare
// equal to freshly loaded ones.
func normalize(v any) any {
	switch t := v.(type) {
	case uint64:
		if t <= math.MaxInt {
			return int(t)
		}
		return t
	case int64:
		if t >= math.MinInt && t <= math.MaxInt {
			return int(t)
		}
		return t
	case []any:
		for i := range t {
			t[i] = normalize(t[i])
		}
		return t
	case map[string]any:
		for k := range t {
			t[k] = normalize(t[k])
		}
		return t
	default:
		return v
	}
}
