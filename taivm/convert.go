package taivm

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"strings"
)

// Get reads a global binding and converts it to T.
// For T = any the value is converted with ToGo.
func Get[T any](vm *VM, name string) (ret T, err error) {
	val, ok := vm.Get(name)
	if !ok {
		return ret, &TypeConversionError{
			Name:   name,
			Target: reflect.TypeFor[T]().String(),
			Reason: "not defined",
		}
	}
	if reflect.TypeFor[T]() != anyType {
		if v, ok := val.(T); ok {
			return v, nil
		}
	}
	if err := vm.decode(name, val, reflect.ValueOf(&ret).Elem()); err != nil {
		return ret, err
	}
	return ret, nil
}

// Decode converts a script value into the value pointed to by target.
func (v *VM) Decode(val any, target any) error {
	ptr := reflect.ValueOf(target)
	if ptr.Kind() != reflect.Pointer || ptr.IsNil() {
		return fmt.Errorf("decode target must be a non-nil pointer, got %T", target)
	}
	return v.decode("value", val, ptr.Elem())
}

var (
	errorType = reflect.TypeFor[error]()
	anyType   = reflect.TypeFor[any]()
)

func (v *VM) decode(name string, val any, target reflect.Value) error {
	t := target.Type()
	fail := func(reason string) error {
		return &TypeConversionError{
			Name:   name,
			Value:  val,
			Target: t.String(),
			Reason: reason,
		}
	}

	if val == nil {
		val = Undefined
	}
	if t == anyType {
		if g := ToGo(val); g == nil {
			target.SetZero()
		} else {
			target.Set(reflect.ValueOf(g))
		}
		return nil
	}
	if rv := reflect.ValueOf(val); rv.Type().AssignableTo(t) {
		target.Set(rv)
		return nil
	}

	switch t.Kind() {

	case reflect.Pointer:
		if isNullish(val) {
			target.SetZero()
			return nil
		}
		elem := reflect.New(t.Elem())
		if err := v.decode(name, val, elem.Elem()); err != nil {
			return err
		}
		target.Set(elem)
		return nil

	case reflect.Bool:
		b, ok := val.(bool)
		if !ok {
			return fail("")
		}
		target.SetBool(b)
		return nil

	case reflect.String:
		s, ok := val.(string)
		if !ok {
			return fail("")
		}
		target.SetString(s)
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f, ok := number(val)
		if !ok {
			return fail("")
		}
		if f != math.Trunc(f) {
			return fail(fmt.Sprintf("%s is not an integer", FormatNumber(f)))
		}
		if math.Abs(f) >= 1<<63 || target.OverflowInt(int64(f)) {
			return fail(fmt.Sprintf("%s overflows", FormatNumber(f)))
		}
		target.SetInt(int64(f))
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		f, ok := number(val)
		if !ok {
			return fail("")
		}
		if f != math.Trunc(f) || f < 0 {
			return fail(fmt.Sprintf("%s is not an unsigned integer", FormatNumber(f)))
		}
		if f >= 1<<64 || target.OverflowUint(uint64(f)) {
			return fail(fmt.Sprintf("%s overflows", FormatNumber(f)))
		}
		target.SetUint(uint64(f))
		return nil

	case reflect.Float32, reflect.Float64:
		f, ok := number(val)
		if !ok {
			return fail("")
		}
		target.SetFloat(f)
		return nil

	case reflect.Slice:
		arr, ok := val.(*Array)
		if !ok {
			return fail("")
		}
		slice := reflect.MakeSlice(t, arr.Len(), arr.Len())
		for i, elem := range arr.Elements {
			if err := v.decode(fmt.Sprintf("%s[%d]", name, i), elem, slice.Index(i)); err != nil {
				return err
			}
		}
		target.Set(slice)
		return nil

	case reflect.Array:
		arr, ok := val.(*Array)
		if !ok {
			return fail("")
		}
		if arr.Len() != t.Len() {
			return fail(fmt.Sprintf("length %d", arr.Len()))
		}
		for i, elem := range arr.Elements {
			if err := v.decode(fmt.Sprintf("%s[%d]", name, i), elem, target.Index(i)); err != nil {
				return err
			}
		}
		return nil

	case reflect.Map:
		obj, ok := val.(*Object)
		if !ok {
			return fail("")
		}
		if t.Key().Kind() != reflect.String {
			return fail("map key must be string")
		}
		m := reflect.MakeMapWithSize(t, obj.Len())
		for _, key := range obj.Keys {
			elem := reflect.New(t.Elem()).Elem()
			if err := v.decode(name+"."+key, obj.Fields[key], elem); err != nil {
				return err
			}
			m.SetMapIndex(reflect.ValueOf(key).Convert(t.Key()), elem)
		}
		target.Set(m)
		return nil

	case reflect.Struct:
		obj, ok := val.(*Object)
		if !ok {
			return fail("")
		}
		for i := range t.NumField() {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			key, ok := fieldKey(obj, field)
			if !ok {
				continue
			}
			if err := v.decode(name+"."+key, obj.Fields[key], target.Field(i)); err != nil {
				return err
			}
		}
		return nil

	case reflect.Func:
		if KindOf(val) != KindFunction {
			return fail("")
		}
		target.Set(v.makeFunc(name, val, t))
		return nil

	}

	return fail("unsupported target type")
}

func fieldKey(obj *Object, field reflect.StructField) (string, bool) {
	if tag, ok := field.Tag.Lookup("js"); ok {
		name, _, _ := strings.Cut(tag, ",")
		if name == "-" {
			return "", false
		}
		if name != "" {
			_, ok := obj.Fields[name]
			return name, ok
		}
	}
	if _, ok := obj.Fields[field.Name]; ok {
		return field.Name, true
	}
	for _, key := range obj.Keys {
		if strings.EqualFold(key, field.Name) {
			return key, true
		}
	}
	return "", false
}

// makeFunc wraps a script callable as a Go function.
// If the Go function's last result is error, call failures are returned there; otherwise they panic.
func (v *VM) makeFunc(name string, callee any, t reflect.Type) reflect.Value {
	return reflect.MakeFunc(t, func(args []reflect.Value) []reflect.Value {
		numOut := t.NumOut()
		results := make([]reflect.Value, numOut)
		for i := range numOut {
			results[i] = reflect.New(t.Out(i)).Elem()
		}
		hasErr := numOut > 0 && t.Out(numOut-1) == errorType
		fail := func(err error) []reflect.Value {
			if !hasErr {
				panic(err)
			}
			results[numOut-1] = reflect.ValueOf(&err).Elem()
			return results
		}

		callArgs := make([]any, len(args))
		for i, arg := range args {
			val, err := FromGo(arg.Interface())
			if err != nil {
				return fail(err)
			}
			callArgs[i] = val
		}
		res, err := v.Invoke(callee, Undefined, callArgs...)
		if err != nil {
			return fail(err)
		}

		outs := numOut
		if hasErr {
			outs--
		}
		switch outs {
		case 0:
		case 1:
			if err := v.decode(name+"()", res, results[0]); err != nil {
				return fail(err)
			}
		default:
			arr, ok := res.(*Array)
			if !ok || arr.Len() < outs {
				return fail(fmt.Errorf("%s must return an array of %d values", name, outs))
			}
			for i := range outs {
				if err := v.decode(fmt.Sprintf("%s()[%d]", name, i), arr.Elements[i], results[i]); err != nil {
					return fail(err)
				}
			}
		}
		return results
	})
}

// FromGo converts a host value to a script value.
func FromGo(val any) (any, error) {
	switch val := val.(type) {
	case nil:
		return Null, nil
	case UndefinedType, NullType, *Object, *Array, *Closure, string, bool, float64:
		return val, nil
	case Callable:
		return val, nil
	}
	if f, ok := number(val); ok {
		return f, nil
	}

	rv := reflect.ValueOf(val)
	switch rv.Kind() {

	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil

	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Null, nil
		}
		arr := &Array{
			Elements: make([]any, rv.Len()),
		}
		for i := range rv.Len() {
			elem, err := FromGo(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			arr.Elements[i] = elem
		}
		return arr, nil

	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("map key must be string, got %v", rv.Type().Key())
		}
		if rv.IsNil() {
			return Null, nil
		}
		keys := rv.MapKeys()
		strs := make([]string, len(keys))
		for i, key := range keys {
			strs[i] = key.String()
		}
		slices.Sort(strs)
		obj := NewObject()
		for _, key := range strs {
			elem, err := FromGo(rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key())).Interface())
			if err != nil {
				return nil, err
			}
			obj.Set(key, elem)
		}
		return obj, nil

	case reflect.Struct:
		obj := NewObject()
		t := rv.Type()
		for i := range t.NumField() {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			name := field.Name
			if tag, ok := field.Tag.Lookup("js"); ok {
				tagName, _, _ := strings.Cut(tag, ",")
				if tagName == "-" {
					continue
				}
				if tagName != "" {
					name = tagName
				}
			}
			elem, err := FromGo(rv.Field(i).Interface())
			if err != nil {
				return nil, err
			}
			obj.Set(name, elem)
		}
		return obj, nil

	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null, nil
		}
		return FromGo(rv.Elem().Interface())

	case reflect.Func:
		return &NativeFunc{
			Name:    rv.Type().String(),
			NumArgs: -1,
			Func: func(vm *VM, args []any) (any, error) {
				return vm.callGoFunc(rv, args)
			},
		}, nil

	}

	return nil, fmt.Errorf("unsupported host type: %T", val)
}

func (v *VM) callGoFunc(fn reflect.Value, args []any) (any, error) {
	t := fn.Type()
	fixed := t.NumIn()
	if t.IsVariadic() {
		fixed--
	}
	in := make([]reflect.Value, fixed, max(fixed, len(args)))
	for i := range in {
		in[i] = reflect.New(t.In(i)).Elem()
		if i < len(args) {
			if err := v.decode(fmt.Sprintf("argument %d", i), args[i], in[i]); err != nil {
				return nil, err
			}
		}
	}
	if t.IsVariadic() {
		elemType := t.In(fixed).Elem()
		for i := fixed; i < len(args); i++ {
			elem := reflect.New(elemType).Elem()
			if err := v.decode(fmt.Sprintf("argument %d", i), args[i], elem); err != nil {
				return nil, err
			}
			in = append(in, elem)
		}
	}
	outs := fn.Call(in)
	if n := len(outs); n > 0 && t.Out(n-1) == errorType {
		if err, _ := outs[n-1].Interface().(error); err != nil {
			return nil, err
		}
		outs = outs[:n-1]
	}
	switch len(outs) {
	case 0:
		return Undefined, nil
	case 1:
		return FromGo(outs[0].Interface())
	}
	arr := &Array{}
	for _, out := range outs {
		val, err := FromGo(out.Interface())
		if err != nil {
			return nil, err
		}
		arr.Elements = append(arr.Elements, val)
	}
	return arr, nil
}

// ToGo converts a script value to plain host values:
// float64, string, bool, nil, []any and map[string]any.
// Callables are returned unchanged.
func ToGo(val any) any {
	switch val := val.(type) {
	case nil, UndefinedType, NullType:
		return nil
	case *Array:
		ret := make([]any, len(val.Elements))
		for i, elem := range val.Elements {
			ret[i] = ToGo(elem)
		}
		return ret
	case *Object:
		ret := make(map[string]any, val.Len())
		for _, key := range val.Keys {
			ret[key] = ToGo(val.Fields[key])
		}
		return ret
	}
	if f, ok := number(val); ok {
		return f
	}
	return val
}
