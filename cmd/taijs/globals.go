package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/reusee/taijs/interop"
	"github.com/reusee/taijs/taijs"
	"github.com/reusee/taijs/taivm"
	"github.com/samber/lo"
)

// names defined by the runtime itself
var builtinNames = sync.OnceValue(func() map[string]bool {
	vm, err := taijs.Compile("", "")
	if err != nil {
		panic(err)
	}
	return lo.SliceToMap(vm.GlobalNames(), func(name string) (string, bool) {
		return name, true
	})
})

func writeGlobals(w io.Writer, vm *taivm.VM, format string) error {
	builtins := builtinNames()
	globals := interop.Globals(vm, func(name string) bool {
		return !builtins[name]
	})

	var (
		content []byte
		err     error
	)
	switch strings.ToLower(format) {
	case "json":
		content, err = interop.MarshalJSONIndent(globals, "  ")
		content = append(content, '\n')
	case "yaml", "yml":
		content, err = interop.MarshalYAML(globals)
	case "toml":
		content, err = interop.MarshalTOML(globals)
	default:
		return fmt.Errorf("unknown globals format: %s", format)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(content)
	return err
}
