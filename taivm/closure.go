package taivm

type Closure struct {
	Fun *Function
	Env *Env
}

var _ Callable = new(Closure)

func (c *Closure) Arity() int {
	return c.Fun.NumParams
}

func (c *Closure) Call(vm *VM, args []any) (any, error) {
	return vm.Invoke(c, Undefined, args...)
}

func (c *Closure) String() string {
	if c.Fun.Name == "" {
		return "[Function (anonymous)]"
	}
	return "[Function: " + c.Fun.Name + "]"
}
