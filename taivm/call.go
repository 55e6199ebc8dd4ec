package taivm

import (
	"fmt"
	"slices"
)

// callValue calls callee with the argc values on top of the stack.
// Everything from base up is replaced by the result.
func (v *VM) callValue(callee any, this any, base int, argc int, construct bool) error {
	switch fn := callee.(type) {

	case *Closure:
		return v.callClosure(fn, this, base, argc, construct, false)

	case Callable:
		args := slices.Clone(v.OperandStack[v.SP-argc : v.SP])
		res, err := v.callNative(fn, args)
		if err != nil {
			return err
		}
		v.drop(v.SP - base)
		v.push(res)
		return nil

	}

	return fmt.Errorf("%s is not a function", describe(callee))
}

func (v *VM) callNative(fn Callable, args []any) (any, error) {
	if n := fn.Arity(); n > 0 && len(args) < n {
		return nil, fmt.Errorf("%s expects at least %d arguments, got %d", describe(fn), n, len(args))
	}
	res, err := fn.Call(v, args)
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = Undefined
	}
	return res, nil
}

func (v *VM) callClosure(fn *Closure, this any, base int, argc int, construct bool, host bool) error {
	if len(v.CallStack) >= v.MaxCallDepth {
		return errStackOverflow
	}

	env := fn.Env.NewChild()
	args := v.OperandStack[v.SP-argc : v.SP]
	for i, name := range fn.Fun.ParamNames {
		if i < len(args) {
			env.Def(name, args[i])
		} else {
			env.Def(name, Undefined)
		}
	}

	v.CallStack = append(v.CallStack, Frame{
		Fun:       v.CurrentFun,
		ReturnIP:  v.IP,
		Env:       v.Scope,
		BaseSP:    base,
		This:      v.This,
		Callee:    v.Callee,
		Construct: construct,
		Host:      host,
	})
	v.drop(v.SP - base)

	v.CurrentFun = fn.Fun
	v.IP = 0
	v.Scope = env
	v.This = this
	v.Callee = fn
	v.debugLog("call %s", describe(fn))
	return nil
}

func (v *VM) doReturn(val any) (signal, error) {
	n := len(v.CallStack)
	if n == 0 {
		v.drop(v.SP)
		return sigDone, nil
	}
	frame := v.CallStack[n-1]
	v.CallStack = v.CallStack[:n-1]

	if frame.Construct {
		switch val.(type) {
		case *Object, *Array:
		default:
			val = v.This
		}
	}
	v.debugLog("return from %s", v.CurrentFun.Name)

	v.CurrentFun = frame.Fun
	v.IP = frame.ReturnIP
	v.Scope = frame.Env
	v.This = frame.This
	v.Callee = frame.Callee
	v.drop(v.SP - frame.BaseSP)
	v.push(val)

	if frame.Host {
		return sigHostReturn, nil
	}
	return sigNone, nil
}

// Invoke calls a script or host callable from host code, including from inside a native
// function. Breakpoints reached during the call are not honored.
func (v *VM) Invoke(callee any, this any, args ...any) (any, error) {
	switch fn := callee.(type) {

	case *Closure:
		base := v.SP
		v.push(fn)
		for _, arg := range args {
			v.push(arg)
		}
		if err := v.callClosure(fn, this, base, len(args), false, true); err != nil {
			v.drop(v.SP - base)
			return nil, err
		}
		for {
			sig, err := v.execOne()
			if err != nil {
				return nil, v.fault(err)
			}
			switch sig {
			case sigHostReturn:
				return v.pop(), nil
			case sigDone:
				return nil, fmt.Errorf("unexpected end of program in call to %s", describe(fn))
			}
		}

	case Callable:
		return v.callNative(fn, args)

	}

	return nil, fmt.Errorf("%s is not a function", describe(callee))
}

func describe(v any) string {
	switch v := v.(type) {
	case *Closure:
		if v.Fun.Name != "" {
			return v.Fun.Name
		}
		return "<anonymous>"
	case *NativeFunc:
		return v.Name
	case string:
		return fmt.Sprintf("%q", v)
	}
	return ToString(v)
}
