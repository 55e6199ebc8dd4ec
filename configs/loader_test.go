package configs

import (
	"errors"
	"fmt"
	"testing"
)

var testSchema = `
max_call_depth?: int & >0
trace?: bool
globals?: {
	name?: string
	ports?: [...int]
}
`

func TestLoaderAssignFirst(t *testing.T) {
	loader := NewLoader([]string{"test.cue"}, testSchema)

	var name string
	err := loader.AssignFirst("globals.name", &name)
	if err != nil {
		t.Fatal(err)
	}
	if name != "bar" {
		t.Fatalf("got %q", name)
	}

	var ports []int
	err = loader.AssignFirst("globals.ports", &ports)
	if err != nil {
		t.Fatal(err)
	}
	if str := fmt.Sprintf("%v", ports); str != "[1 2 3]" {
		t.Fatalf("got %s", str)
	}

	err = loader.AssignFirst("not", &ports)
	if !errors.Is(err, ErrValueNotFound) {
		t.Fatalf("got %v", err)
	}

}

func TestLoaderIterCueValues(t *testing.T) {
	loader := NewLoader([]string{
		"test.cue",
		"test2.cue",
	}, testSchema)

	var depths []int
	for value, err := range loader.IterCueValues("max_call_depth") {
		if err != nil {
			t.Fatal(err)
		}
		var n int
		if err := value.Decode(&n); err != nil {
			t.Fatal(err)
		}
		depths = append(depths, n)
	}
	if str := fmt.Sprintf("%v", depths); str != "[100 200]" {
		t.Fatalf("got %q", str)
	}

	var names []string
	for name := range All[string](loader, "globals.name") {
		names = append(names, name)
	}
	if str := fmt.Sprintf("%v", names); str != "[bar foo]" {
		t.Fatalf("got %q", str)
	}

	// trace is only in the first file
	if !First[bool](loader, "trace") {
		t.Fatal()
	}

}

func TestUnknownField(t *testing.T) {
	loader := NewLoader([]string{
		"bad.cue",
	}, testSchema)
	var str string
	err := loader.AssignFirst("unknown_field", &str)
	if err == nil {
		t.Fatal("should error")
	}
	t.Logf("%v", err)
}

func TestMissingFile(t *testing.T) {
	loader := NewLoader([]string{"not-exists.cue"}, testSchema)
	var n int
	if err := loader.AssignFirst("max_call_depth", &n); err == nil {
		t.Fatal("should error")
	}
}
