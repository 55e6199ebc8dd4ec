package cmds

// Var defines name taking one argument, and name+"." resetting it to zero.
func Var[T any](name string, desc string) *T {
	var value T
	Define(name, Func(func(v T) {
		value = v
	}).Desc(desc))
	Define(name+".", Func(func() {
		var zero T
		value = zero
	}).Desc("reset "+name).Hide())
	return &value
}

// Switch defines name setting a flag, and "!"+name clearing it.
func Switch(name string, desc string) *bool {
	var value bool
	Define(name, Func(func() {
		value = true
	}).Desc(desc))
	Define("!"+name, Func(func() {
		value = false
	}).Desc("unset "+name).Hide())
	return &value
}

// Collect defines name appending its argument on each occurrence.
func Collect[T any](name string, desc string) *[]T {
	var value []T
	Define(name, Func(func(v T) {
		value = append(value, v)
	}).Desc(desc+" (repeatable)"))
	return &value
}
