package taivm

type Env struct {
	Parent *Env
	Vars   map[string]any
}

func (e *Env) Get(name string) (any, bool) {
	if v, ok := e.Vars[name]; ok {
		return v, true
	}
	if e.Parent != nil {
		return e.Parent.Get(name)
	}
	return nil, false
}

func (e *Env) Def(name string, val any) {
	if e.Vars == nil {
		e.Vars = make(map[string]any)
	}
	e.Vars[name] = val
}

// Declare binds name to Undefined unless it is already bound in this env.
func (e *Env) Declare(name string) {
	if _, ok := e.Vars[name]; ok {
		return
	}
	e.Def(name, Undefined)
}

func (e *Env) Set(name string, val any) bool {
	if _, ok := e.Vars[name]; ok {
		e.Vars[name] = val
		return true
	}
	if e.Parent != nil {
		return e.Parent.Set(name, val)
	}
	return false
}

// Up returns the env depth levels above e.
func (e *Env) Up(depth int) *Env {
	for ; depth > 0 && e != nil; depth-- {
		e = e.Parent
	}
	return e
}

func (e *Env) NewChild() *Env {
	return &Env{
		Parent: e,
	}
}
