// Package metadata holds the key/value data attached to scenarios, option
// combinations and steps.
//
// Keys are plain strings. Truthiness follows the rule used by conditions
// throughout the engine: only a missing key, nil and false are falsy. Zero
// numbers and empty strings are truthy.
package metadata

import (
	"reflect"
	"sort"
)

// Metadata maps keys to arbitrary values.
type Metadata map[string]any

// Get returns the value stored under key, or nil.
func (m Metadata) Get(key string) any {
	if m == nil {
		return nil
	}
	return m[key]
}

// Has reports whether key is present, even with a nil value.
func (m Metadata) Has(key string) bool {
	if m == nil {
		return false
	}
	_, ok := m[key]
	return ok
}

// Truthy reports whether the value under key is truthy.
func (m Metadata) Truthy(key string) bool {
	return Truthy(m.Get(key))
}

// Clone returns a shallow copy. A nil receiver yields an empty map.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Keys returns the keys in sorted order.
func (m Metadata) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Merge layers the given maps left to right; later layers win on conflict.
// The result is always a fresh map.
func Merge(layers ...Metadata) Metadata {
	size := 0
	for _, l := range layers {
		size += len(l)
	}
	out := make(Metadata, size)
	for _, l := range layers {
		for k, v := range l {
			out[k] = v
		}
	}
	return out
}

// Truthy reports whether v counts as true. Only nil and false are falsy.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return !rv.IsNil()
	}
	return true
}

// Equal compares two metadata values. Numbers of different Go types are
// compared by value so that data decoded from YAML (int) matches data
// declared in code (int64, float64). Two integers compare exactly; floats
// are only involved when one side is a float.
func Equal(a, b any) bool {
	if na, ok := asNumber(a); ok {
		if nb, ok := asNumber(b); ok {
			return na.equal(nb)
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

// Contains reports whether list holds an element Equal to v. The second
// result is false when list is not a slice or array.
func Contains(list any, v any) (found bool, isList bool) {
	if list == nil {
		return false, false
	}
	rv := reflect.ValueOf(list)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return false, false
	}
	for i := 0; i < rv.Len(); i++ {
		if Equal(rv.Index(i).Interface(), v) {
			return true, true
		}
	}
	return false, true
}

// ToMetadata converts map-like values into Metadata. The second result is
// false when v is not a map with string keys.
func ToMetadata(v any) (Metadata, bool) {
	switch t := v.(type) {
	case Metadata:
		return t, true
	case map[string]any:
		return Metadata(t), true
	case nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(Metadata, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

type numberKind int

const (
	signedNumber numberKind = iota
	unsignedNumber
	floatNumber
)

type number struct {
	kind numberKind
	i    int64
	u    uint64
	f    float64
}

func asNumber(v any) (number, bool) {
	switch n := v.(type) {
	case int:
		return number{kind: signedNumber, i: int64(n)}, true
	case int8:
		return number{kind: signedNumber, i: int64(n)}, true
	case int16:
		return number{kind: signedNumber, i: int64(n)}, true
	case int32:
		return number{kind: signedNumber, i: int64(n)}, true
	case int64:
		return number{kind: signedNumber, i: n}, true
	case uint:
		return number{kind: unsignedNumber, u: uint64(n)}, true
	case uint8:
		return number{kind: unsignedNumber, u: uint64(n)}, true
	case uint16:
		return number{kind: unsignedNumber, u: uint64(n)}, true
	case uint32:
		return number{kind: unsignedNumber, u: uint64(n)}, true
	case uint64:
		return number{kind: unsignedNumber, u: n}, true
	case float32:
		return number{kind: floatNumber, f: float64(n)}, true
	case float64:
		return number{kind: floatNumber, f: n}, true
	}
	return number{}, false
}

func (n number) float() float64 {
	switch n.kind {
	case signedNumber:
		return float64(n.i)
	case unsignedNumber:
		return float64(n.u)
	}
	return n.f
}

func (n number) equal(o number) bool {
	switch {
	case n.kind == floatNumber || o.kind == floatNumber:
		return n.float() == o.float()
	case n.kind == o.kind && n.kind == signedNumber:
		return n.i == o.i
	case n.kind == o.kind:
		return n.u == o.u
	case n.kind == signedNumber:
		return n.i >= 0 && uint64(n.i) == o.u
	default:
		return o.i >= 0 && uint64(o.i) == n.u
	}
}
