package main

import (
	"github.com/reusee/taijs/cmds"
)

var (
	files []string

	debugMode     = cmds.Switch("-debug", "run in debug mode, debug log to stderr")
	stepMode      = cmds.Switch("-step", "step through statements interactively")
	tapBreakpoint = cmds.Switch("-tap", "open a starlark repl at breakpoints")
	decompileOnly = cmds.Switch("-decompile", "print the compiled program instead of running it")
	showStats     = cmds.Switch("-stats", "print program and timing statistics")
	dumpGlobals   = cmds.Var[string]("-globals", "dump globals after the run: json, yaml or toml")
	evalSource    = cmds.Collect[string]("-eval", "run source text")
	jobs          = cmds.Var[int]("-jobs", "number of files to run concurrently")
)

func init() {
	cmds.Positional(func(arg string) error {
		files = append(files, arg)
		return nil
	})
}
