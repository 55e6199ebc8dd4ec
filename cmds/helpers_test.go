package cmds

import (
	"slices"
	"strings"
	"testing"
)

func TestVar(t *testing.T) {
	a := Var[int]("foo", "foo value")
	b := Var[string]("bar", "bar value")
	GlobalExecutor.MustExecute([]string{
		"foo", "42",
		"bar", "bar",
	})
	if *a != 42 {
		t.Fatal()
	}
	if *b != "bar" {
		t.Fatal()
	}
	GlobalExecutor.MustExecute([]string{
		"foo.",
	})
	if *a != 0 {
		t.Fatal()
	}
}

func TestSwitch(t *testing.T) {
	foo := Switch("TestSwitch", "a switch")
	GlobalExecutor.MustExecute([]string{
		"TestSwitch",
	})
	if !*foo {
		t.Fatal()
	}
	GlobalExecutor.MustExecute([]string{
		"!TestSwitch",
	})
	if *foo {
		t.Fatal()
	}
}

func TestCollect(t *testing.T) {
	list := Collect[string]("TestCollect", "a list")
	GlobalExecutor.MustExecute([]string{
		"TestCollect", "a",
		"TestCollect", "b",
	})
	if !slices.Equal(*list, []string{"a", "b"}) {
		t.Fatalf("got %v", *list)
	}
}

func TestTypedVar(t *testing.T) {
	type Foo string
	v := Var[Foo]("TestTypedVar", "typed")
	GlobalExecutor.MustExecute([]string{
		"TestTypedVar", "bar",
	})
	if *v != "bar" {
		t.Fatal()
	}
}

func TestHelperUsage(t *testing.T) {
	Var[int]("TestHelperUsage", "helper value")
	buf := new(strings.Builder)
	GlobalExecutor.WriteUsage(buf)
	if !strings.Contains(buf.String(), "helper value") {
		t.Fatalf("got\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "TestHelperUsage.") {
		t.Fatalf("reset command listed:\n%s", buf.String())
	}
}
