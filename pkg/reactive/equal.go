package reactive

import (
	"math"
	"reflect"
)

// SameValue reports whether a and b are the same value.
//
// Comparable values compare with ==, except that NaN equals NaN. Maps,
// slices, funcs and channels compare by identity (same backing pointer, and
// for slices the same length), never by content.
func SameValue(a, b any) bool {
	switch av := a.(type) {
	case float64:
		if bv, ok := b.(float64); ok {
			return av == bv || (math.IsNaN(av) && math.IsNaN(bv))
		}
		return false
	case float32:
		if bv, ok := b.(float32); ok {
			return av == bv || (av != av && bv != bv)
		}
		return false
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if !vb.IsValid() || va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Map, reflect.Func, reflect.Chan, reflect.Pointer, reflect.UnsafePointer:
		return va.UnsafePointer() == vb.UnsafePointer()
	case reflect.Slice:
		return va.UnsafePointer() == vb.UnsafePointer() && va.Len() == vb.Len()
	}
	if va.Comparable() && vb.Comparable() {
		return a == b
	}
	return false
}

// HasChanged is the negation of SameValue.
func HasChanged(value, old any) bool {
	return !SameValue(value, old)
}
