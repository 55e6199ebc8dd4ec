package taijs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/reusee/dscope"
	"github.com/reusee/taijs/configs"
	"github.com/reusee/taijs/modes"
	"github.com/reusee/taijs/taiconfigs"
	"github.com/reusee/taijs/taivm"
)

func TestModuleOptions(t *testing.T) {
	dir := t.TempDir()
	cuePath := filepath.Join(dir, "taijs.cue")
	if err := os.WriteFile(cuePath, []byte(`
max_call_depth: 3
globals: {
	greeting: "hello"
}
`), 0o644); err != nil {
		t.Fatal(err)
	}

	dscope.New(
		new(Module),
		modes.ForTest(t),
	).Fork(
		dscope.Provide(configs.NewLoader([]string{cuePath}, "")),
	).Call(func(
		options *Options,
	) {
		if options.MaxCallDepth != 3 {
			t.Fatalf("got %d", options.MaxCallDepth)
		}
		if options.Stdout == nil {
			t.Fatal("expected test output")
		}

		vm, err := NewVM("test", strings.NewReader(`
			var s = greeting + " world";
			function f() { return f(); }
		`), options)
		if err != nil {
			t.Fatal(err)
		}
		if err := vm.RunToCompletion(); err != nil {
			t.Fatal(err)
		}
		check(t, vm, "s", "hello world")

		err = Eval(vm, `f();`)
		if err == nil || !strings.Contains(err.Error(), "maximum call stack size exceeded") {
			t.Fatalf("got %v", err)
		}
	})
}

func TestForkConfigScripts(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.js")
	if err := os.WriteFile(first, []byte(`
		var MaxCallDepth = 7;
		var Trace = false;
	`), 0o644); err != nil {
		t.Fatal(err)
	}
	second := filepath.Join(dir, "b.js")
	if err := os.WriteFile(second, []byte(`
		Trace = MaxCallDepth > 5;
	`), 0o644); err != nil {
		t.Fatal(err)
	}

	scope := dscope.New(
		new(Module),
		modes.ForTest(t),
	).Fork(
		dscope.Provide(configs.NewLoader(nil, "")),
		dscope.Provide(taiconfigs.ConfigScripts{first, second}),
	)
	scope, err := ForkConfigScripts(scope)
	if err != nil {
		t.Fatal(err)
	}
	if d := dscope.Get[taiconfigs.MaxCallDepth](scope); d != 7 {
		t.Fatalf("got %d", d)
	}
	if !dscope.Get[taiconfigs.Trace](scope) {
		t.Fatal("expected trace")
	}
	options := dscope.Get[*Options](scope)
	if options.MaxCallDepth != 7 || !options.Trace {
		t.Fatalf("got %+v", options)
	}

	// config script faults are reported with their path
	bad := filepath.Join(dir, "bad.js")
	if err := os.WriteFile(bad, []byte(`var x = nope;`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = ForkConfigScripts(scope.Fork(
		dscope.Provide(taiconfigs.ConfigScripts{bad}),
	))
	var runtimeErr *taivm.RuntimeError
	if err == nil || !strings.Contains(err.Error(), bad) || !errors.As(err, &runtimeErr) {
		t.Fatalf("got %v", err)
	}
}
