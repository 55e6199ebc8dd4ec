package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/reusee/taijs/taijs"
	"github.com/reusee/taijs/taivm"
)

func runREPL(ctx context.Context, options *taijs.Options) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:      "> ",
		HistoryFile: historyFile(".taijs_history"),
	})
	if err != nil {
		return wrap(err)
	}
	defer rl.Close()

	vm, err := taijs.NewVM("repl", strings.NewReader(""), options)
	if err != nil {
		return err
	}
	if err := vm.RunToCompletion(); err != nil {
		return err
	}

	for {
		line, err := rl.Readline()
		if err != nil { // Ctrl-C or Ctrl-D
			return nil
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := evalLine(vm, line); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
}

// evalLine prints the value of expression lines and runs other lines as statements.
func evalLine(vm *taivm.VM, line string) error {
	err := taijs.Eval(vm, "print("+strings.TrimSuffix(strings.TrimSpace(line), ";")+")")
	var (
		lexErr     *taijs.LexError
		parseErr   *taijs.ParseError
		compileErr *taijs.CompileError
	)
	if errors.As(err, &lexErr) || errors.As(err, &parseErr) || errors.As(err, &compileErr) {
		// not an expression
		return taijs.Eval(vm, line)
	}
	return err
}
