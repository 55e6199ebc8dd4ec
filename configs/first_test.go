package configs

import (
	"strings"
	"testing"
)

func TestFirst(t *testing.T) {
	loader := NewLoader([]string{"test.cue", "test2.cue"}, testSchema)

	depth := First[int](loader, "max_call_depth")
	if depth != 100 {
		t.Fatalf("got %v", depth)
	}

	// absent values decode to zero
	if v := First[string](loader, "globals.missing"); v != "" {
		t.Fatalf("got %q", v)
	}

}

func TestOrigin(t *testing.T) {
	loader := NewLoader([]string{"test.cue", "test2.cue"}, testSchema)
	if path, ok := loader.Origin("max_call_depth"); !ok || path != "test.cue" {
		t.Fatalf("got %q", path)
	}
	if _, ok := loader.Origin("globals.missing"); ok {
		t.Fatal()
	}
}

func TestFirstInvalid(t *testing.T) {
	loader := NewLoader([]string{"test.cue"}, testSchema)
	defer func() {
		p := recover()
		if p == nil {
			t.Fatal("should panic")
		}
		if err, ok := p.(error); !ok || !strings.Contains(err.Error(), "config globals.name") {
			t.Fatalf("got %v", p)
		}
	}()
	First[int](loader, "globals.name")
}
