package codec

import (
	"math"
	"reflect"

	"github.com/cimcore/cim/cimerrors"
)

// rejectSpecialFloats walks v and fails if any float32/float64 field is
// NaN or ±Inf, enforcing the DAG-CBOR determinism requirement (spec
// §4.B): "no undefined/NaN/±infinity floats". encoding libraries happily
// round-trip these values; canonical encodings must not, since a NaN's
// bit pattern is not unique and would break the determinism contract.
func rejectSpecialFloats(v any) error {
	return walkFloats(reflect.ValueOf(v), 0)
}

const maxFloatCheckDepth = 32

func walkFloats(val reflect.Value, depth int) error {
	if depth > maxFloatCheckDepth || !val.IsValid() {
		return nil
	}

	switch val.Kind() {
	case reflect.Float32, reflect.Float64:
		f := val.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return cimerrors.New(cimerrors.CanonicalizationError, "NaN and infinite floats are not permitted in canonical encoding")
		}
	case reflect.Ptr, reflect.Interface:
		if val.IsNil() {
			return nil
		}
		return walkFloats(val.Elem(), depth+1)
	case reflect.Slice, reflect.Array:
		for i := 0; i < val.Len(); i++ {
			if err := walkFloats(val.Index(i), depth+1); err != nil {
				return err
			}
		}
	case reflect.Map:
		iter := val.MapRange()
		for iter.Next() {
			if err := walkFloats(iter.Value(), depth+1); err != nil {
				return err
			}
		}
	case reflect.Struct:
		for i := 0; i < val.NumField(); i++ {
			if !val.Field(i).CanInterface() {
				continue
			}
			if err := walkFloats(val.Field(i), depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}
