package taijs

import (
	"io"
	"log/slog"

	"github.com/reusee/taijs/taivm"
)

type Options struct {
	Stdout  io.Writer // if nil, default to os.Stdout
	Logger  *slog.Logger
	Globals map[string]any
	// MaxCallDepth bounds nested calls; zero means taivm.DefaultMaxCallDepth.
	MaxCallDepth int
	// MaxArrayLength bounds array growth from scripts; zero means taivm.DefaultMaxArrayLength.
	MaxArrayLength int
	// Trace logs every statement during debug runs.
	Trace      bool
	OnDebugLog func(string)
}

func (o *Options) apply(vm *taivm.VM) error {
	if o.Stdout != nil {
		vm.Stdout = o.Stdout
	}
	if o.Logger != nil {
		vm.Logger = o.Logger
	}
	if o.MaxCallDepth > 0 {
		vm.MaxCallDepth = o.MaxCallDepth
	}
	if o.MaxArrayLength > 0 {
		vm.MaxArrayLength = o.MaxArrayLength
	}
	vm.Trace = o.Trace
	if o.OnDebugLog != nil {
		vm.OnDebugLog = o.OnDebugLog
	}
	for name, val := range o.Globals {
		converted, err := taivm.FromGo(val)
		if err != nil {
			return err
		}
		vm.Def(name, converted)
	}
	return nil
}
