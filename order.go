package datatable

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"
)

// Comparator orders two field values, returning a negative number when a
// sorts before b, zero when they tie, and a positive number otherwise.
type Comparator func(a, b any) int

// ComputeOrder returns the display order of data as indices into data. Rows
// are ordered by the group key (ascending) when groupKey is non-empty, then by
// the sort column in the direction of spec. Ties keep their original relative
// order. data itself is never reordered.
func ComputeOrder[T any](data []T, groupKey string, spec *SortSpec, acc Accessor[T], compare Comparator) []int {
	idx := make([]int, len(data))
	for i := range idx {
		idx[i] = i
	}
	if len(data) < 2 || (groupKey == "" && spec == nil) {
		return idx
	}
	if acc == nil {
		acc = ReflectAccessor[T]{}
	}
	if compare == nil {
		compare = CompareValues
	}

	// Extract keys once so the comparator sees plain values.
	var groups, keys []any
	if groupKey != "" {
		groups = make([]any, len(data))
		for i := range data {
			groups[i] = acc.Value(data[i], groupKey)
		}
	}
	if spec != nil {
		keys = make([]any, len(data))
		for i := range data {
			keys[i] = acc.Value(data[i], spec.Column)
		}
	}
	desc := spec != nil && spec.Order == Descending

	slices.SortStableFunc(idx, func(a, b int) int {
		if groups != nil {
			if c := compare(groups[a], groups[b]); c != 0 {
				return c
			}
		}
		if keys != nil {
			c := compare(keys[a], keys[b])
			if desc {
				return -c
			}
			return c
		}
		return 0
	})
	return idx
}

// Orderer computes display orders and remembers the most recent one. A call
// whose data (same backing array and length), group key and sort spec all
// match the previous call returns the previous result without recomputing.
//
// The returned slice is shared between calls and must not be modified.
type Orderer[T any] struct {
	acc     Accessor[T]
	compare Comparator

	valid    bool
	data     *T
	length   int
	groupKey string
	spec     *SortSpec
	result   []int

	computations int
}

// NewOrderer returns an Orderer using acc for field access and compare for
// value ordering. Nil arguments select [ReflectAccessor] and [CompareValues].
func NewOrderer[T any](acc Accessor[T], compare Comparator) *Orderer[T] {
	if acc == nil {
		acc = ReflectAccessor[T]{}
	}
	if compare == nil {
		compare = CompareValues
	}
	return &Orderer[T]{acc: acc, compare: compare}
}

// Order returns the display order for data, reusing the previous result when
// the inputs are unchanged.
func (o *Orderer[T]) Order(data []T, groupKey string, spec *SortSpec) []int {
	if o.Cached(data, groupKey, spec) {
		return o.result
	}
	o.result = ComputeOrder(data, groupKey, spec, o.acc, o.compare)
	o.valid = true
	o.data = firstElem(data)
	o.length = len(data)
	o.groupKey = groupKey
	if spec != nil {
		s := *spec
		o.spec = &s
	} else {
		o.spec = nil
	}
	o.computations++
	return o.result
}

// Cached reports whether Order would return the remembered result.
func (o *Orderer[T]) Cached(data []T, groupKey string, spec *SortSpec) bool {
	return o.valid &&
		o.data == firstElem(data) &&
		o.length == len(data) &&
		o.groupKey == groupKey &&
		sameSpec(o.spec, spec)
}

// firstElem identifies the backing array of data for the memo check.
func firstElem[T any](data []T) *T {
	if len(data) == 0 {
		return nil
	}
	return &data[0]
}

// Computations returns how many times an order was actually computed.
func (o *Orderer[T]) Computations() int { return o.computations }

// Reset forgets the remembered result.
func (o *Orderer[T]) Reset() {
	o.valid = false
	o.data = nil
	o.result = nil
	o.spec = nil
}

// CompareValues is the default Comparator. Nil sorts first. Numbers compare
// numerically across integer and float kinds, strings lexically, false before
// true, times chronologically. Values of unrelated types are ordered by kind
// and then by their formatted text.
func CompareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			return compareBool(x, y)
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	}
	if c, ok := compareNumbers(a, b); ok {
		return c
	}
	if sa, ok := a.(fmt.Stringer); ok {
		if sb, ok := b.(fmt.Stringer); ok {
			return strings.Compare(sa.String(), sb.String())
		}
	}
	if ra, rb := rank(a), rank(b); ra != rb {
		return cmp.Compare(ra, rb)
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

type numClass int

const (
	notNumber numClass = iota
	signedNumber
	unsignedNumber
	floatNumber
)

func classify(k reflect.Kind) numClass {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return signedNumber
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return unsignedNumber
	case reflect.Float32, reflect.Float64:
		return floatNumber
	default:
		return notNumber
	}
}

// compareNumbers orders two numeric values. Integers compare exactly, even
// past the 53 bits a float64 holds; a float on either side compares as
// float64.
func compareNumbers(a, b any) (int, bool) {
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	ca, cb := classify(ra.Kind()), classify(rb.Kind())
	switch {
	case ca == notNumber || cb == notNumber:
		return 0, false
	case ca == signedNumber && cb == signedNumber:
		return cmp.Compare(ra.Int(), rb.Int()), true
	case ca == unsignedNumber && cb == unsignedNumber:
		return cmp.Compare(ra.Uint(), rb.Uint()), true
	case ca == signedNumber && cb == unsignedNumber:
		return compareSignedUnsigned(ra.Int(), rb.Uint()), true
	case ca == unsignedNumber && cb == signedNumber:
		return -compareSignedUnsigned(rb.Int(), ra.Uint()), true
	}
	fa, _ := toFloat(a)
	fb, _ := toFloat(b)
	return cmp.Compare(fa, fb), true
}

func compareSignedUnsigned(i int64, u uint64) int {
	if i < 0 {
		return -1
	}
	return cmp.Compare(uint64(i), u)
}

func toFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

// rank groups unrelated value types: booleans, numbers, strings, then the rest.
func rank(v any) int {
	if _, ok := v.(bool); ok {
		return 0
	}
	if _, ok := toFloat(v); ok {
		return 1
	}
	if _, ok := v.(string); ok {
		return 2
	}
	return 3
}
