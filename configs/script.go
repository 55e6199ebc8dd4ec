package configs

import (
	"fmt"
	"reflect"

	"github.com/reusee/dscope"
	"github.com/reusee/taijs/taivm"
)

// ScriptFork forks scope with every Configurable value defined as a global of vm.
func ScriptFork(scope dscope.Scope, vm *taivm.VM) (ret dscope.Scope, err error) {
	var defs []any
	for t := range scope.AllTypes() {
		if !t.Implements(configurableType) {
			continue
		}
		name := reflect.Zero(t).Interface().(Configurable).ConfigName()
		val, ok := vm.Get(name)
		if !ok || val == taivm.Undefined {
			continue
		}
		ptr := reflect.New(t)
		if err := vm.Decode(val, ptr.Interface()); err != nil {
			return scope, fmt.Errorf("config %s: %w", name, err)
		}
		defs = append(defs, ptr.Interface())
	}
	if len(defs) == 0 {
		return scope, nil
	}
	return scope.Fork(defs...), nil
}
