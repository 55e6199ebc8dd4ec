package taijs

import (
	"bytes"
	"fmt"
	"os"

	"github.com/reusee/dscope"
	"github.com/reusee/taijs/configs"
	"github.com/reusee/taijs/logs"
	"github.com/reusee/taijs/modes"
	"github.com/reusee/taijs/taiconfigs"
	"github.com/reusee/taijs/taivm"
)

type Module struct {
	dscope.Module
	Configs taiconfigs.Module
}

func (Module) Options(
	maxCallDepth taiconfigs.MaxCallDepth,
	trace taiconfigs.Trace,
	globals taiconfigs.Globals,
	logger logs.Logger,
	sink logs.DebugLogSink,
	output modes.ScriptOutput,
) *Options {
	return &Options{
		Stdout:       output,
		Logger:       logger,
		Globals:      globals,
		MaxCallDepth: int(maxCallDepth),
		Trace:        bool(trace),
		OnDebugLog:   sink,
	}
}

// ForkConfigScripts runs the config scripts in one vm, later scripts overriding earlier ones,
// and forks scope with the configurable values they define.
func ForkConfigScripts(scope dscope.Scope) (dscope.Scope, error) {
	scripts := dscope.Get[taiconfigs.ConfigScripts](scope)
	if len(scripts) == 0 {
		return scope, nil
	}
	options := dscope.Get[*Options](scope)
	logger := dscope.Get[logs.Logger](scope)

	var vm *taivm.VM
	for _, path := range scripts {
		content, err := os.ReadFile(path)
		if err != nil {
			return scope, fmt.Errorf("read config script: %w", err)
		}
		logger.Info("config script",
			"path", path,
		)
		if vm == nil {
			vm, err = NewVM(path, bytes.NewReader(content), options)
			if err != nil {
				return scope, err
			}
			err = vm.RunToCompletion()
		} else {
			err = Eval(vm, string(content))
		}
		if err != nil {
			return scope, fmt.Errorf("config script %s: %w", path, err)
		}
	}

	return configs.ScriptFork(scope, vm)
}
