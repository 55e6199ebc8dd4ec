package taijs

import (
	"fmt"
	"io"
	"strings"

	"github.com/reusee/taijs/taivm"
	"github.com/reusee/taijs/vars"
)

// NewVM compiles source and returns a ready VM with builtins and options applied.
func NewVM(name string, source io.Reader, options *Options) (*taivm.VM, error) {
	src, err := io.ReadAll(source)
	if err != nil {
		return nil, err
	}
	program, err := CompileProgram(name, string(src))
	if err != nil {
		return nil, err
	}

	vm := taivm.NewVM(program)
	registerBuiltins(vm)
	opts := vars.DerefOrZero(options)
	if err := opts.apply(vm); err != nil {
		return nil, err
	}
	return vm, nil
}

// Compile returns a ready VM; nothing is executed.
func Compile(name string, source string) (*taivm.VM, error) {
	return NewVM(name, strings.NewReader(source), nil)
}

// Init compiles source and runs it to completion. Breakpoints do not stop it.
func Init(name string, source string) (*taivm.VM, error) {
	vm, err := Compile(name, source)
	if err != nil {
		return nil, err
	}
	if err := vm.RunToCompletion(); err != nil {
		return vm, err
	}
	return vm, nil
}

// Eval compiles source as a new program sharing the globals of vm, and runs it to completion.
func Eval(vm *taivm.VM, source string) error {
	program, err := CompileProgram(fmt.Sprintf("%s<eval>", vm.Program.Name), source)
	if err != nil {
		return err
	}
	sub := vm.Fork(program)
	return sub.RunToCompletion()
}
