package interop

import (
	"github.com/reusee/taijs/taivm"
)

// Globals collects the global bindings of vm into an object, in name order.
// Functions and names rejected by keep are left out.
func Globals(vm *taivm.VM, keep func(name string) bool) *taivm.Object {
	obj := taivm.NewObject()
	for _, name := range vm.GlobalNames() {
		if keep != nil && !keep(name) {
			continue
		}
		val, _ := vm.Get(name)
		if skipped(val) {
			continue
		}
		obj.Set(name, val)
	}
	return obj
}
