package debugs

import (
	"fmt"
	"math"
	"reflect"

	"github.com/reusee/starlarkutil"
	"github.com/reusee/taijs/taivm"
	"go.starlark.net/starlark"
)

// toStarlarkValue converts script and host values for the tap repl.
// Integral script numbers become ints so they can index lists.
// Script functions become their printed form, and cyclic references become "<cycle>".
func toStarlarkValue(v any) starlark.Value {
	c := &starlarkConverter{
		seen: make(map[any]bool),
	}
	return c.convert(v)
}

type starlarkConverter struct {
	seen map[any]bool
}

const maxSafeInteger = 1<<53 - 1

func scriptNumber(f float64) starlark.Value {
	if f == math.Trunc(f) && math.Abs(f) <= maxSafeInteger {
		return starlark.MakeInt64(int64(f))
	}
	return starlark.Float(f)
}

func (c *starlarkConverter) convert(v any) starlark.Value {
	switch v := v.(type) {

	case nil, taivm.UndefinedType, taivm.NullType:
		return starlark.None

	case starlark.Value:
		return v

	case float64:
		return scriptNumber(v)

	case *taivm.Array:
		if c.seen[v] {
			return starlark.String("<cycle>")
		}
		c.seen[v] = true
		defer delete(c.seen, v)
		elems := make([]starlark.Value, len(v.Elements))
		for i, elem := range v.Elements {
			elems[i] = c.convert(elem)
		}
		return starlark.NewList(elems)

	case *taivm.Object:
		if c.seen[v] {
			return starlark.String("<cycle>")
		}
		c.seen[v] = true
		defer delete(c.seen, v)
		d := starlark.NewDict(v.Len())
		for _, key := range v.Keys {
			d.SetKey(starlark.String(key), c.convert(v.Fields[key]))
		}
		return d

	case taivm.Callable:
		return starlark.String(fmt.Sprint(v))

	case []byte:
		return starlark.Bytes(v)

	}

	return c.convertReflect(reflect.ValueOf(v))
}

func (c *starlarkConverter) convertReflect(value reflect.Value) starlark.Value {
	switch value.Kind() {

	case reflect.Bool:
		return starlark.Bool(value.Bool())

	case reflect.String:
		return starlark.String(value.String())

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return starlark.MakeInt64(value.Int())

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return starlark.MakeUint64(value.Uint())

	case reflect.Float32, reflect.Float64:
		return starlark.Float(value.Float())

	case reflect.Slice, reflect.Array:
		elems := make([]starlark.Value, value.Len())
		for i := range elems {
			elems[i] = c.convert(value.Index(i).Interface())
		}
		return starlark.NewList(elems)

	case reflect.Map:
		d := starlark.NewDict(value.Len())
		iter := value.MapRange()
		for iter.Next() {
			d.SetKey(
				c.convert(iter.Key().Interface()),
				c.convert(iter.Value().Interface()),
			)
		}
		return d

	case reflect.Struct:
		typ := value.Type()
		d := starlark.NewDict(value.NumField())
		for i := range value.NumField() {
			field := typ.Field(i)
			if !field.IsExported() {
				continue
			}
			d.SetKey(
				starlark.String(field.Name),
				c.convert(value.Field(i).Interface()),
			)
		}
		return d

	case reflect.Pointer, reflect.Interface:
		if value.IsNil() {
			return starlark.None
		}
		return c.convert(value.Elem().Interface())

	case reflect.Func:
		return starlarkutil.MakeFunc("", value.Interface())

	}

	panic(fmt.Errorf("unsupported type for starlark: %v", value.Type()))
}
