package debugs

import (
	"strings"
	"testing"

	"github.com/reusee/dscope"
	"github.com/reusee/taijs/taijs"
	"go.starlark.net/starlark"
)

func TestTap(t *testing.T) {
	vm, err := taijs.Compile("test", `var foo = 42; debugger; foo = 1;`)
	if err != nil {
		t.Fatal(err)
	}
	if err := vm.Continue(); err != nil {
		t.Fatal(err)
	}
	dscope.New(
		new(Module),
	).Call(func(
		tap Tap,
	) {
		tap(t.Context(), "test", vm)
	})
}

func TestWatch(t *testing.T) {
	vm, err := taijs.Compile("test", `
var foo = 42;
var names = ["a", "b"];
debugger;
foo = 1;
`)
	if err != nil {
		t.Fatal(err)
	}
	if err := vm.Continue(); err != nil {
		t.Fatal(err)
	}

	value, err := Watch(vm, "foo + len(names)")
	if err != nil {
		t.Fatal(err)
	}
	if eq, _ := starlark.Equal(value, starlark.MakeInt(44)); !eq {
		t.Fatalf("got %v", value)
	}

	value, err = Watch(vm, "source()")
	if err != nil {
		t.Fatal(err)
	}
	if value != starlark.String("foo = 1") {
		t.Fatalf("got %v", value)
	}

	value, err = Watch(vm, "where()")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(value.(starlark.String)), "main:") {
		t.Fatalf("got %v", value)
	}

	value, err = Watch(vm, "step()")
	if err != nil {
		t.Fatal(err)
	}
	if value != starlark.String("") {
		t.Fatalf("got %v", value)
	}
	value, err = Watch(vm, "get('foo')")
	if err != nil {
		t.Fatal(err)
	}
	if eq, _ := starlark.Equal(value, starlark.MakeInt(1)); !eq {
		t.Fatalf("got %v", value)
	}

	if _, err := Watch(vm, "nope"); err == nil {
		t.Fatal("expected error")
	}
}
