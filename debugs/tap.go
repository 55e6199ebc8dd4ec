package debugs

import (
	"context"
	"fmt"
	"strings"

	"github.com/reusee/starlarkutil"
	"github.com/reusee/taijs/logs"
	"github.com/reusee/taijs/taivm"
	"go.starlark.net/repl"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Tap opens a starlark repl over a paused vm.
// Script globals are bound by name, and these helpers are added:
// source() for the pending statement, where() for the location,
// stack() for the call stack, get(name) for a fresh global value,
// and step() to run one statement.
type Tap func(ctx context.Context, what string, vm *taivm.VM)

func (Module) Tap(
	logger logs.Logger,
) Tap {
	return func(ctx context.Context, what string, vm *taivm.VM) {
		logger.InfoContext(ctx, "tap: "+what,
			"globals", vm.GlobalNames(),
			"state", vm.State().String(),
		)
		defer func() {
			logger.InfoContext(ctx, "tap end: "+what)
		}()

		thread := &starlark.Thread{
			Name: "repl",
		}
		repl.REPLOptions(&syntax.FileOptions{
			Set:             true,
			While:           true,
			TopLevelControl: true,
		}, thread, Globals(vm))
	}
}

// Globals returns the starlark bindings of a vm.
func Globals(vm *taivm.VM) starlark.StringDict {
	ret := make(starlark.StringDict)
	for _, name := range vm.GlobalNames() {
		if strings.ContainsRune(name, '$') {
			continue
		}
		value, _ := vm.Get(name)
		ret[name] = toStarlarkValue(value)
	}

	ret["source"] = starlarkutil.MakeFunc("source", func() string {
		return vm.PendingSource()
	})
	ret["where"] = starlarkutil.MakeFunc("where", func() string {
		loc := vm.Location()
		return fmt.Sprintf("%s:%d:%d", loc.Function, loc.Line, loc.Column)
	})
	ret["stack"] = starlarkutil.MakeFunc("stack", func() string {
		var b strings.Builder
		for _, frame := range vm.CallStackInfo() {
			fmt.Fprintf(&b, "%s:%d:%d %s\n", frame.Function, frame.Line, frame.Column, frame.Source)
		}
		return b.String()
	})
	ret["get"] = starlark.NewBuiltin("get", func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var name string
		if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &name); err != nil {
			return nil, err
		}
		value, ok := vm.Get(name)
		if !ok {
			return starlark.None, nil
		}
		return toStarlarkValue(value), nil
	})
	ret["step"] = starlark.NewBuiltin("step", func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 0); err != nil {
			return nil, err
		}
		if err := vm.Step(); err != nil {
			return nil, err
		}
		return starlark.String(vm.PendingSource()), nil
	})

	return ret
}

// Watch evaluates a starlark expression against the current vm globals.
func Watch(vm *taivm.VM, expr string) (starlark.Value, error) {
	thread := &starlark.Thread{
		Name: "watch",
	}
	return starlark.EvalOptions(
		&syntax.FileOptions{},
		thread,
		"<watch>",
		expr,
		Globals(vm),
	)
}
