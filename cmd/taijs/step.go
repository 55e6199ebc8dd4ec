package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/reusee/taijs/debugs"
	"github.com/reusee/taijs/taivm"
)

const stepHelp = `enter  step to the next statement
c      continue to the next breakpoint
g      print globals
bt     print the call stack
p EXPR evaluate a starlark expression over globals
tap    open a starlark repl
q      quit
`

func historyFile(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, name)
}

func stepInteractive(ctx context.Context, vm *taivm.VM, tap debugs.Tap) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:      "step> ",
		HistoryFile: historyFile(".taijs_step_history"),
	})
	if err != nil {
		return wrap(err)
	}
	defer rl.Close()

	out := rl.Stderr()
	// stop at the first statement
	if err := vm.Step(); err != nil {
		return err
	}

	for {
		switch vm.State() {
		case taivm.StateCompleted:
			fmt.Fprintln(out, "completed")
			return nil
		case taivm.StateFaulted:
			return vm.Err()
		}

		loc := vm.Location()
		fmt.Fprintf(out, "%s:%d:%d\t%s\n", loc.Function, loc.Line, loc.Column, vm.PendingSource())

		line, err := rl.Readline()
		if err != nil { // Ctrl-C or Ctrl-D
			return nil
		}
		line = strings.TrimSpace(line)

		switch {

		case line == "":
			if err := vm.Step(); err != nil {
				return err
			}

		case line == "c":
			if err := vm.ContinueInDebug(); err != nil {
				return err
			}

		case line == "g":
			if err := writeGlobals(out, vm, "json"); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}

		case line == "bt":
			stack := vm.CallStackInfo()
			for i := len(stack) - 1; i >= 0; i-- {
				fmt.Fprintf(out, "  %s\n", stack[i])
			}

		case strings.HasPrefix(line, "p "):
			value, err := debugs.Watch(vm, strings.TrimSpace(line[2:]))
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			fmt.Fprintln(out, value)

		case line == "tap":
			tap(ctx, "step", vm)

		case line == "q":
			return nil

		default:
			fmt.Fprint(out, stepHelp)

		}
	}
}
