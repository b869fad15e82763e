package datatable

import (
	"reflect"
	"slices"
	"sync"
)

// Accessor reads named fields from records of type T.
type Accessor[T any] interface {
	// Keys lists the field names of record, in display order.
	Keys(record T) []string
	// Value returns the value stored under key, or nil when absent.
	Value(record T, key string) any
}

// Fielder lets a record list its own field names.
type Fielder interface {
	Fields() []string
}

// Valuer lets a record look up its own fields.
type Valuer interface {
	Value(key string) any
}

// Fields returns an Accessor with a fixed key list and a lookup function.
func Fields[T any](keys []string, value func(record T, key string) any) Accessor[T] {
	return fieldsAccessor[T]{keys: slices.Clone(keys), value: value}
}

type fieldsAccessor[T any] struct {
	keys  []string
	value func(T, string) any
}

func (a fieldsAccessor[T]) Keys(T) []string { return slices.Clone(a.keys) }

func (a fieldsAccessor[T]) Value(record T, key string) any { return a.value(record, key) }

// ReflectAccessor is the default Accessor. Records implementing [Fielder] or
// [Valuer] are asked directly. Otherwise structs expose their exported fields
// in declaration order (renamed with a `table:"name"` tag, skipped with
// `table:"-"`) and maps with string keys expose their keys in sorted order.
type ReflectAccessor[T any] struct{}

func (ReflectAccessor[T]) Keys(record T) []string {
	if f, ok := any(record).(Fielder); ok {
		return f.Fields()
	}
	v := indirect(reflect.ValueOf(record))
	switch v.Kind() {
	case reflect.Struct:
		fields := structFields(v.Type())
		keys := make([]string, len(fields))
		for i, f := range fields {
			keys[i] = f.name
		}
		return keys
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil
		}
		keys := make([]string, 0, v.Len())
		for _, k := range v.MapKeys() {
			keys = append(keys, k.String())
		}
		slices.Sort(keys)
		return keys
	default:
		return nil
	}
}

func (ReflectAccessor[T]) Value(record T, key string) any {
	if vr, ok := any(record).(Valuer); ok {
		return vr.Value(key)
	}
	v := indirect(reflect.ValueOf(record))
	switch v.Kind() {
	case reflect.Struct:
		for _, f := range structFields(v.Type()) {
			if f.name == key {
				fv, err := v.FieldByIndexErr(f.index)
				if err != nil {
					return nil
				}
				return fv.Interface()
			}
		}
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil
		}
		mv := v.MapIndex(reflect.ValueOf(key).Convert(v.Type().Key()))
		if mv.IsValid() {
			return mv.Interface()
		}
	}
	return nil
}

func indirect(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

type structField struct {
	name  string
	index []int
}

var fieldCache sync.Map // reflect.Type -> []structField

func structFields(t reflect.Type) []structField {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.([]structField)
	}
	var fields []structField
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("table"); ok {
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}
		fields = append(fields, structField{name: name, index: f.Index})
	}
	fieldCache.Store(t, fields)
	return fields
}
