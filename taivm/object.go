package taivm

// Object is a string-keyed mapping that keeps insertion order.
type Object struct {
	Keys   []string
	Fields map[string]any
	// Internal holds host data that scripts cannot see.
	Internal any
}

func NewObject() *Object {
	return &Object{
		Fields: make(map[string]any),
	}
}

func (o *Object) Get(key string) (any, bool) {
	v, ok := o.Fields[key]
	return v, ok
}

func (o *Object) Set(key string, val any) {
	if o.Fields == nil {
		o.Fields = make(map[string]any)
	}
	if _, ok := o.Fields[key]; !ok {
		o.Keys = append(o.Keys, key)
	}
	o.Fields[key] = val
}

func (o *Object) Delete(key string) bool {
	if _, ok := o.Fields[key]; !ok {
		return false
	}
	delete(o.Fields, key)
	for i, k := range o.Keys {
		if k == key {
			o.Keys = append(o.Keys[:i], o.Keys[i+1:]...)
			break
		}
	}
	return true
}

func (o *Object) Len() int {
	return len(o.Keys)
}

type Array struct {
	Elements []any
}

func NewArray(elems ...any) *Array {
	return &Array{
		Elements: elems,
	}
}

// Get returns Undefined for indexes out of range.
func (a *Array) Get(idx int) any {
	if idx < 0 || idx >= len(a.Elements) {
		return Undefined
	}
	return a.Elements[idx]
}

// Set grows the array with Undefined when idx is past the end.
func (a *Array) Set(idx int, val any) {
	for len(a.Elements) <= idx {
		a.Elements = append(a.Elements, Undefined)
	}
	a.Elements[idx] = val
}

func (a *Array) SetLength(n int) {
	if n < len(a.Elements) {
		clear(a.Elements[n:])
		a.Elements = a.Elements[:n]
		return
	}
	for len(a.Elements) < n {
		a.Elements = append(a.Elements, Undefined)
	}
}

func (a *Array) Len() int {
	return len(a.Elements)
}
