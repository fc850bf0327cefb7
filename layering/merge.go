// Package layering resolves a value from a stack of partial layers ordered
// strongest first, the way an ancestor chain supplies attributes a node does
// not set itself.
package layering

import "reflect"

// MergeLayers composes layers ordered from strongest to weakest. Struct
// fields merge one by one and maps merge key by key. Every other value is
// atomic: it comes whole from the strongest layer where it is not the zero
// value, so a nil pointer or an empty string falls through to weaker layers.
// The result never aliases the inputs.
func MergeLayers[T any](layers ...T) T {
	var zero T
	if len(layers) == 0 {
		return zero
	}

	merged := cloneValue(reflect.ValueOf(&layers[len(layers)-1]).Elem())
	for i := len(layers) - 2; i >= 0; i-- {
		merged = mergeValue(reflect.ValueOf(&layers[i]).Elem(), merged)
	}

	result := reflect.New(reflect.TypeOf(&zero).Elem()).Elem()
	result.Set(merged)
	return result.Interface().(T)
}

func mergeValue(strong, weak reflect.Value) reflect.Value {
	switch strong.Kind() {
	case reflect.Struct:
		result := reflect.New(strong.Type()).Elem()
		result.Set(strong)
		for i := 0; i < strong.NumField(); i++ {
			field := result.Field(i)
			if !field.CanSet() {
				continue
			}
			field.Set(mergeValue(strong.Field(i), weak.Field(i)))
		}
		return result
	case reflect.Map:
		if strong.IsNil() {
			return cloneValue(weak)
		}
		if weak.IsNil() {
			return cloneValue(strong)
		}
		result := reflect.MakeMapWithSize(strong.Type(), strong.Len()+weak.Len())
		iter := weak.MapRange()
		for iter.Next() {
			result.SetMapIndex(iter.Key(), cloneValue(iter.Value()))
		}
		iter = strong.MapRange()
		for iter.Next() {
			key := iter.Key()
			if existing := result.MapIndex(key); existing.IsValid() {
				result.SetMapIndex(key, mergeValue(iter.Value(), existing))
				continue
			}
			result.SetMapIndex(key, cloneValue(iter.Value()))
		}
		return result
	default:
		if strong.IsZero() {
			return cloneValue(weak)
		}
		return cloneValue(strong)
	}
}

func cloneValue(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		clone := reflect.New(v.Type().Elem())
		clone.Elem().Set(cloneValue(v.Elem()))
		return clone
	case reflect.Interface:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		clone := reflect.New(v.Type()).Elem()
		clone.Set(cloneValue(v.Elem()))
		return clone
	case reflect.Struct:
		clone := reflect.New(v.Type()).Elem()
		clone.Set(v)
		for i := 0; i < v.NumField(); i++ {
			field := clone.Field(i)
			if !field.CanSet() {
				continue
			}
			field.Set(cloneValue(v.Field(i)))
		}
		return clone
	case reflect.Map:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		clone := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			clone.SetMapIndex(iter.Key(), cloneValue(iter.Value()))
		}
		return clone
	case reflect.Slice:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		clone := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			clone.Index(i).Set(cloneValue(v.Index(i)))
		}
		return clone
	default:
		return v
	}
}
