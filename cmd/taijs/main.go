package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/reusee/dscope"
	"github.com/reusee/taijs/cmds"
	"github.com/reusee/taijs/debugs"
	"github.com/reusee/taijs/logs"
	"github.com/reusee/taijs/modes"
	"github.com/reusee/taijs/syncs"
	"github.com/reusee/taijs/taijs"
	"github.com/reusee/taijs/taivm"
)

func main() {
	cmds.Execute(os.Args[1:])
	ctx := context.Background()

	scope := dscope.New(
		new(Module),
		modes.ForProduction(),
	)
	scope, err := taijs.ForkConfigScripts(scope)
	if err != nil {
		exit(err)
	}

	scope.Call(func(
		logger logs.Logger,
		options *taijs.Options,
		newSpan logs.NewSpan,
		tap debugs.Tap,
	) {
		if *debugMode {
			options.OnDebugLog = func(s string) {
				fmt.Fprintln(os.Stderr, s)
			}
		}

		r := &runner{
			logger:  logger,
			options: options,
			newSpan: newSpan,
			tap:     tap,
		}

		if len(files) == 0 && len(*evalSource) == 0 {
			if isTerminal(os.Stdin) {
				if err := runREPL(ctx, options); err != nil {
					exit(err)
				}
				return
			}
			if err := r.run(ctx, "<stdin>", os.Stdin); err != nil {
				exit(err)
			}
			return
		}

		for i, src := range *evalSource {
			name := fmt.Sprintf("<eval %d>", i)
			if err := r.run(ctx, name, strings.NewReader(src)); err != nil {
				exit(err)
			}
		}

		if err := r.runFiles(ctx, files); err != nil {
			exit(err)
		}
	})
}

// runFiles runs each file in its own vm, up to -jobs at a time.
func (r *runner) runFiles(ctx context.Context, paths []string) error {
	if *jobs <= 1 || *stepMode || *tapBreakpoint {
		for _, path := range paths {
			if err := r.runFile(ctx, path); err != nil {
				return err
			}
		}
		return nil
	}

	sem := syncs.NewSemaphore(*jobs)
	errs := make([]error, len(paths))
	var wg sync.WaitGroup
	for i, path := range paths {
		if err := sem.Acquire(ctx); err != nil {
			return err
		}
		wg.Go(func() {
			defer sem.Release()
			if err := r.runFile(ctx, path); err != nil {
				errs[i] = fmt.Errorf("%s: %w", path, err)
			}
		})
	}
	wg.Wait()
	return errors.Join(errs...)
}

type runner struct {
	logger  logs.Logger
	options *taijs.Options
	newSpan logs.NewSpan
	tap     debugs.Tap
}

func (r *runner) runFile(ctx context.Context, path string) (err error) {
	f, err := os.Open(path)
	if err != nil {
		return wrap(err)
	}
	defer f.Close()
	return r.run(ctx, path, f)
}

func (r *runner) run(ctx context.Context, name string, source io.Reader) (err error) {
	ctx, _ = r.newSpan(ctx, "", "script", name)
	defer func() {
		if err != nil {
			err = logs.WrapSpan(ctx, err)
		}
	}()

	begin := time.Now()
	vm, err := taijs.NewVM(name, source, r.options)
	if err != nil {
		return err
	}
	vm.Logger = logs.ForVM(ctx, r.logger, vm.ID)
	compiled := time.Since(begin)

	if *decompileOnly {
		_, err := io.WriteString(os.Stdout, vm.Decompile())
		return err
	}

	vm.Logger.InfoContext(ctx, "run",
		"name", name,
	)

	switch {

	case *stepMode:
		if !isTerminal(os.Stdin) {
			return errors.New("-step requires an interactive terminal")
		}
		err = stepInteractive(ctx, vm, r.tap)

	case *debugMode || *tapBreakpoint:
		for intr, e := range vm.RunInDebug {
			if e != nil {
				err = e
				break
			}
			if intr != nil && *tapBreakpoint {
				r.tap(ctx, fmt.Sprintf("breakpoint at %s", vm.PendingSource()), vm)
			}
		}

	default:
		err = vm.RunToCompletion()

	}
	if err != nil {
		return err
	}

	if *showStats {
		printStats(vm, compiled, time.Since(begin))
	}
	if *dumpGlobals != "" {
		if err := writeGlobals(os.Stdout, vm, *dumpGlobals); err != nil {
			return err
		}
	}

	return nil
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func exit(err error) {
	var runtimeErr *taivm.RuntimeError
	if errors.As(err, &runtimeErr) {
		fmt.Fprintf(os.Stderr, "%v\n%s", runtimeErr, runtimeErr.StackTrace())
	} else {
		fmt.Fprintf(os.Stderr, "%v\n", wrap(err))
	}
	os.Exit(1)
}
