package taijs

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/reusee/taijs/interop"
	"github.com/reusee/taijs/taivm"
)

func native(name string, numArgs int, fn func(vm *taivm.VM, args []any) (any, error)) *taivm.NativeFunc {
	return &taivm.NativeFunc{
		Name:    name,
		NumArgs: numArgs,
		Func:    fn,
	}
}

func arg(args []any, i int) any {
	if i < len(args) {
		return args[i]
	}
	return taivm.Undefined
}

func registerBuiltins(vm *taivm.VM) {
	start := time.Now()

	vm.Def("Ticks", native("Ticks", 0, func(vm *taivm.VM, args []any) (any, error) {
		return float64(time.Since(start).Milliseconds()), nil
	}))

	vm.Def("print", native("print", 0, func(vm *taivm.VM, args []any) (any, error) {
		vm.Print(joinArgs(args))
		return nil, nil
	}))

	console := taivm.NewObject()
	console.Set("log", native("log", 0, func(vm *taivm.VM, args []any) (any, error) {
		vm.Print(joinArgs(args))
		return nil, nil
	}))
	vm.Def("console", console)

	vm.Def("String", native("String", 0, func(vm *taivm.VM, args []any) (any, error) {
		if len(args) == 0 {
			return "", nil
		}
		return taivm.ToString(args[0]), nil
	}))

	vm.Def("Number", native("Number", 0, func(vm *taivm.VM, args []any) (any, error) {
		if len(args) == 0 {
			return 0.0, nil
		}
		return taivm.ToNumber(args[0]), nil
	}))

	vm.Def("Boolean", native("Boolean", 0, func(vm *taivm.VM, args []any) (any, error) {
		return taivm.Truthy(arg(args, 0)), nil
	}))

	vm.Def("isNaN", native("isNaN", 1, func(vm *taivm.VM, args []any) (any, error) {
		return math.IsNaN(taivm.ToNumber(args[0])), nil
	}))

	vm.Def("parseInt", native("parseInt", 1, func(vm *taivm.VM, args []any) (any, error) {
		return parseInt(taivm.ToString(args[0]), arg(args, 1)), nil
	}))

	vm.Def("parseFloat", native("parseFloat", 1, func(vm *taivm.VM, args []any) (any, error) {
		return parseFloat(taivm.ToString(args[0])), nil
	}))

	registerObject(vm)
	registerArray(vm)
	registerString(vm)
	registerMath(vm)
	registerJSON(vm)
}

func joinArgs(args []any) string {
	var b strings.Builder
	for i, a := range args {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(inspect(a))
	}
	return b.String()
}

// inspect formats a value for print output.
func inspect(v any) string {
	switch v := v.(type) {
	case *taivm.Object, *taivm.Array:
		if bs, err := interop.MarshalJSON(v); err == nil {
			return string(bs)
		}
	}
	return taivm.ToString(v)
}

func parseInt(s string, radixArg any) float64 {
	s = strings.TrimSpace(s)
	radix := 10
	if radixArg != taivm.Undefined {
		radix = int(taivm.ToNumber(radixArg))
	}
	sign := 1.0
	if strings.HasPrefix(s, "-") {
		sign = -1
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	if (radix == 16 || radix == 0) && (strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")) {
		s = s[2:]
		radix = 16
	}
	if radix == 0 {
		radix = 10
	}
	if radix < 2 || radix > 36 {
		return math.NaN()
	}
	end := 0
	for end < len(s) {
		d := digitValue(s[end])
		if d < 0 || d >= radix {
			break
		}
		end++
	}
	if end == 0 {
		return math.NaN()
	}
	n, err := strconv.ParseInt(s[:end], radix, 64)
	if err != nil {
		return math.NaN()
	}
	return sign * float64(n)
}

func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	}
	return -1
}

func parseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	// longest valid prefix
	for end := len(s); end > 0; end-- {
		if f, err := strconv.ParseFloat(s[:end], 64); err == nil {
			if strings.ContainsAny(s[:end], "xXpP_") || strings.EqualFold(s[:end], "inf") || strings.EqualFold(s[:end], "nan") {
				continue
			}
			return f
		}
	}
	if strings.HasPrefix(s, "Infinity") {
		return math.Inf(1)
	}
	if strings.HasPrefix(s, "-Infinity") {
		return math.Inf(-1)
	}
	return math.NaN()
}

func registerObject(vm *taivm.VM) {
	object := native("Object", 0, func(vm *taivm.VM, args []any) (any, error) {
		if obj, ok := arg(args, 0).(*taivm.Object); ok {
			return obj, nil
		}
		return taivm.NewObject(), nil
	})
	object.Props = taivm.NewObject()

	object.Props.Set("keys", native("keys", 1, func(vm *taivm.VM, args []any) (any, error) {
		switch o := args[0].(type) {
		case *taivm.Object:
			keys := make([]any, 0, o.Len())
			for _, k := range o.Keys {
				keys = append(keys, k)
			}
			return taivm.NewArray(keys...), nil
		case *taivm.Array:
			keys := make([]any, 0, o.Len())
			for i := range o.Len() {
				keys = append(keys, strconv.Itoa(i))
			}
			return taivm.NewArray(keys...), nil
		}
		return nil, fmt.Errorf("Object.keys called on %s", taivm.TypeOf(args[0]))
	}))

	object.Props.Set("values", native("values", 1, func(vm *taivm.VM, args []any) (any, error) {
		switch o := args[0].(type) {
		case *taivm.Object:
			values := make([]any, 0, o.Len())
			for _, k := range o.Keys {
				v, _ := o.Get(k)
				values = append(values, v)
			}
			return taivm.NewArray(values...), nil
		case *taivm.Array:
			return taivm.NewArray(o.Elements...), nil
		}
		return nil, fmt.Errorf("Object.values called on %s", taivm.TypeOf(args[0]))
	}))

	vm.Def("Object", object)

	vm.DefMethod(taivm.KindObject, "hasOwnProperty", native("hasOwnProperty", 2, func(vm *taivm.VM, args []any) (any, error) {
		obj := args[0].(*taivm.Object)
		_, ok := obj.Get(taivm.ToString(args[1]))
		return ok, nil
	}))
}

func registerMath(vm *taivm.VM) {
	m := taivm.NewObject()
	m.Set("PI", math.Pi)
	m.Set("E", math.E)

	unary := func(name string, fn func(float64) float64) {
		m.Set(name, native(name, 1, func(vm *taivm.VM, args []any) (any, error) {
			return fn(taivm.ToNumber(args[0])), nil
		}))
	}
	unary("floor", math.Floor)
	unary("ceil", math.Ceil)
	unary("abs", math.Abs)
	unary("sqrt", math.Sqrt)
	unary("trunc", math.Trunc)
	unary("log", math.Log)
	unary("exp", math.Exp)
	unary("sin", math.Sin)
	unary("cos", math.Cos)
	unary("round", func(f float64) float64 {
		return math.Floor(f + 0.5)
	})

	m.Set("pow", native("pow", 2, func(vm *taivm.VM, args []any) (any, error) {
		return math.Pow(taivm.ToNumber(args[0]), taivm.ToNumber(args[1])), nil
	}))

	m.Set("max", native("max", 0, func(vm *taivm.VM, args []any) (any, error) {
		ret := math.Inf(-1)
		for _, a := range args {
			f := taivm.ToNumber(a)
			if math.IsNaN(f) {
				return f, nil
			}
			ret = math.Max(ret, f)
		}
		return ret, nil
	}))

	m.Set("min", native("min", 0, func(vm *taivm.VM, args []any) (any, error) {
		ret := math.Inf(1)
		for _, a := range args {
			f := taivm.ToNumber(a)
			if math.IsNaN(f) {
				return f, nil
			}
			ret = math.Min(ret, f)
		}
		return ret, nil
	}))

	m.Set("random", native("random", 0, func(vm *taivm.VM, args []any) (any, error) {
		return rand.Float64(), nil
	}))

	vm.Def("Math", m)
}

func registerJSON(vm *taivm.VM) {
	j := taivm.NewObject()

	j.Set("stringify", native("stringify", 1, func(vm *taivm.VM, args []any) (any, error) {
		if args[0] == taivm.Undefined {
			return taivm.Undefined, nil
		}
		indent := ""
		switch space := arg(args, 2).(type) {
		case float64:
			if space >= 1 {
				indent = strings.Repeat(" ", int(min(space, 10)))
			}
		case string:
			indent = space[:min(len(space), 10)]
		}
		bs, err := interop.MarshalJSONIndent(args[0], indent)
		if err != nil {
			return nil, err
		}
		return string(bs), nil
	}))

	j.Set("parse", native("parse", 1, func(vm *taivm.VM, args []any) (any, error) {
		s, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("JSON.parse expects a string, got %s", taivm.TypeOf(args[0]))
		}
		return interop.UnmarshalJSON([]byte(s))
	}))

	vm.Def("JSON", j)
}
