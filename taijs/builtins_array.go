package taijs

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/reusee/taijs/taivm"
)

func registerArray(vm *taivm.VM) {
	array := native("Array", 0, func(vm *taivm.VM, args []any) (any, error) {
		if len(args) == 1 {
			if n, ok := args[0].(float64); ok {
				if n < 0 || n != math.Trunc(n) || n > math.MaxInt32 {
					return nil, fmt.Errorf("invalid array length: %s", taivm.FormatNumber(n))
				}
				if err := vm.CheckArrayLength(int(n)); err != nil {
					return nil, err
				}
				arr := taivm.NewArray()
				arr.SetLength(int(n))
				return arr, nil
			}
		}
		return taivm.NewArray(args...), nil
	})
	array.Props = taivm.NewObject()
	array.Props.Set("isArray", native("isArray", 1, func(vm *taivm.VM, args []any) (any, error) {
		_, ok := args[0].(*taivm.Array)
		return ok, nil
	}))
	vm.Def("Array", array)

	method := func(name string, numArgs int, fn func(vm *taivm.VM, arr *taivm.Array, args []any) (any, error)) {
		vm.DefMethod(taivm.KindArray, name, native(name, numArgs+1, func(vm *taivm.VM, args []any) (any, error) {
			return fn(vm, args[0].(*taivm.Array), args[1:])
		}))
	}

	method("push", 0, func(vm *taivm.VM, arr *taivm.Array, args []any) (any, error) {
		if err := vm.CheckArrayLength(arr.Len() + len(args)); err != nil {
			return nil, err
		}
		arr.Elements = append(arr.Elements, args...)
		return float64(arr.Len()), nil
	})

	method("pop", 0, func(vm *taivm.VM, arr *taivm.Array, args []any) (any, error) {
		n := arr.Len()
		if n == 0 {
			return taivm.Undefined, nil
		}
		last := arr.Elements[n-1]
		arr.SetLength(n - 1)
		return last, nil
	})

	method("shift", 0, func(vm *taivm.VM, arr *taivm.Array, args []any) (any, error) {
		if arr.Len() == 0 {
			return taivm.Undefined, nil
		}
		first := arr.Elements[0]
		arr.Elements = slices.Delete(arr.Elements, 0, 1)
		return first, nil
	})

	method("unshift", 0, func(vm *taivm.VM, arr *taivm.Array, args []any) (any, error) {
		arr.Elements = slices.Insert(arr.Elements, 0, args...)
		return float64(arr.Len()), nil
	})

	method("indexOf", 1, func(vm *taivm.VM, arr *taivm.Array, args []any) (any, error) {
		for i, elem := range arr.Elements {
			if taivm.StrictEqual(elem, args[0]) {
				return float64(i), nil
			}
		}
		return -1.0, nil
	})

	method("includes", 1, func(vm *taivm.VM, arr *taivm.Array, args []any) (any, error) {
		for _, elem := range arr.Elements {
			if taivm.StrictEqual(elem, args[0]) {
				return true, nil
			}
		}
		return false, nil
	})

	method("join", 0, func(vm *taivm.VM, arr *taivm.Array, args []any) (any, error) {
		sep := ","
		if s := arg(args, 0); s != taivm.Undefined {
			sep = taivm.ToString(s)
		}
		parts := make([]string, arr.Len())
		for i, elem := range arr.Elements {
			switch elem.(type) {
			case taivm.UndefinedType, taivm.NullType:
			default:
				parts[i] = taivm.ToString(elem)
			}
		}
		return strings.Join(parts, sep), nil
	})

	method("slice", 0, func(vm *taivm.VM, arr *taivm.Array, args []any) (any, error) {
		start, end := sliceBounds(arr.Len(), arg(args, 0), arg(args, 1))
		return taivm.NewArray(slices.Clone(arr.Elements[start:end])...), nil
	})

	method("concat", 0, func(vm *taivm.VM, arr *taivm.Array, args []any) (any, error) {
		elems := slices.Clone(arr.Elements)
		for _, a := range args {
			if other, ok := a.(*taivm.Array); ok {
				elems = append(elems, other.Elements...)
			} else {
				elems = append(elems, a)
			}
		}
		return taivm.NewArray(elems...), nil
	})

	method("reverse", 0, func(vm *taivm.VM, arr *taivm.Array, args []any) (any, error) {
		slices.Reverse(arr.Elements)
		return arr, nil
	})

	method("forEach", 1, func(vm *taivm.VM, arr *taivm.Array, args []any) (any, error) {
		for i := 0; i < arr.Len(); i++ {
			if _, err := vm.Invoke(args[0], taivm.Undefined, arr.Get(i), float64(i), arr); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})

	method("map", 1, func(vm *taivm.VM, arr *taivm.Array, args []any) (any, error) {
		ret := make([]any, 0, arr.Len())
		for i := 0; i < arr.Len(); i++ {
			v, err := vm.Invoke(args[0], taivm.Undefined, arr.Get(i), float64(i), arr)
			if err != nil {
				return nil, err
			}
			ret = append(ret, v)
		}
		return taivm.NewArray(ret...), nil
	})

	method("filter", 1, func(vm *taivm.VM, arr *taivm.Array, args []any) (any, error) {
		var ret []any
		for i := 0; i < arr.Len(); i++ {
			elem := arr.Get(i)
			v, err := vm.Invoke(args[0], taivm.Undefined, elem, float64(i), arr)
			if err != nil {
				return nil, err
			}
			if taivm.Truthy(v) {
				ret = append(ret, elem)
			}
		}
		return taivm.NewArray(ret...), nil
	})

	method("reduce", 1, func(vm *taivm.VM, arr *taivm.Array, args []any) (any, error) {
		i := 0
		var acc any
		if len(args) > 1 {
			acc = args[1]
		} else {
			if arr.Len() == 0 {
				return nil, fmt.Errorf("reduce of empty array with no initial value")
			}
			acc = arr.Get(0)
			i = 1
		}
		for ; i < arr.Len(); i++ {
			v, err := vm.Invoke(args[0], taivm.Undefined, acc, arr.Get(i), float64(i), arr)
			if err != nil {
				return nil, err
			}
			acc = v
		}
		return acc, nil
	})
}

// sliceBounds resolves slice(start, end) arguments, counting negatives from the end.
func sliceBounds(n int, startArg any, endArg any) (int, int) {
	clamp := func(v any, def int) int {
		if v == taivm.Undefined {
			return def
		}
		f := taivm.ToNumber(v)
		if math.IsNaN(f) {
			return 0
		}
		i := int(math.Trunc(math.Max(math.Min(f, float64(n)), float64(-n))))
		if i < 0 {
			i += n
		}
		return i
	}
	start := clamp(startArg, 0)
	end := clamp(endArg, n)
	if end < start {
		end = start
	}
	return start, end
}
