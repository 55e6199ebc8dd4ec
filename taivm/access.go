package taivm

import (
	"fmt"
	"unicode/utf8"
)

// GetMember implements target[key] and target.key.
func (v *VM) GetMember(target any, key any) (any, error) {
	switch t := target.(type) {

	case nil, UndefinedType, NullType:
		return nil, fmt.Errorf("cannot read property %s of %s", describe(key), ToString(target))

	case *Object:
		name := ToString(key)
		if val, ok := t.Get(name); ok {
			return val, nil
		}
		return v.methodValue(KindObject, t, name), nil

	case *Array:
		if idx, ok := arrayIndex(key); ok {
			return t.Get(idx), nil
		}
		name := ToString(key)
		if name == "length" {
			return float64(t.Len()), nil
		}
		return v.methodValue(KindArray, t, name), nil

	case string:
		if idx, ok := arrayIndex(key); ok {
			runes := []rune(t)
			if idx >= len(runes) {
				return Undefined, nil
			}
			return string(runes[idx]), nil
		}
		name := ToString(key)
		if name == "length" {
			return float64(utf8.RuneCountInString(t)), nil
		}
		return v.methodValue(KindString, t, name), nil

	case *NativeFunc:
		name := ToString(key)
		if t.Props != nil {
			if val, ok := t.Props.Get(name); ok {
				return val, nil
			}
		}
		if name == "name" {
			return t.Name, nil
		}
		return v.methodValue(KindFunction, t, name), nil

	case *Closure:
		name := ToString(key)
		switch name {
		case "name":
			return t.Fun.Name, nil
		case "length":
			return float64(t.Fun.NumParams), nil
		}
		return v.methodValue(KindFunction, t, name), nil

	}

	return v.methodValue(KindOf(target), target, ToString(key)), nil
}

func (v *VM) methodValue(kind Kind, receiver any, name string) any {
	if m, ok := v.method(kind, name); ok {
		return &BoundMethod{
			Receiver: receiver,
			Method:   m,
		}
	}
	return Undefined
}

// SetMember implements target[key] = val and target.key = val.
func (v *VM) SetMember(target any, key any, val any) error {
	switch t := target.(type) {

	case nil, UndefinedType, NullType:
		return fmt.Errorf("cannot set property %s of %s", describe(key), ToString(target))

	case *Object:
		t.Set(ToString(key), val)
		return nil

	case *Array:
		if idx, ok := arrayIndex(key); ok {
			if idx >= t.Len() {
				if err := v.CheckArrayLength(idx + 1); err != nil {
					return err
				}
			}
			t.Set(idx, val)
			return nil
		}
		if ToString(key) == "length" {
			n, ok := arrayIndex(ToNumber(val))
			if !ok {
				return fmt.Errorf("invalid array length: %s", ToString(val))
			}
			if err := v.CheckArrayLength(n); err != nil {
				return err
			}
			t.SetLength(n)
			return nil
		}
		return fmt.Errorf("invalid array index: %s", describe(key))

	case *NativeFunc:
		if t.Props == nil {
			t.Props = NewObject()
		}
		t.Props.Set(ToString(key), val)
		return nil

	}

	return fmt.Errorf("cannot set property %s of %s", describe(key), TypeOf(target))
}
