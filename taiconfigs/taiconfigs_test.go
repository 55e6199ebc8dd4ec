package taiconfigs

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/reusee/dscope"
	"github.com/reusee/taijs/configs"
	"github.com/reusee/taijs/taivm"
)

func writeFile(t *testing.T, dir string, name string, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSchema(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.cue", `
max_call_depth: 10
trace: true
globals: { a: 1 }
scripts: ["x.js"]
`)
	bad := writeFile(t, dir, "bad.cue", `max_tokens: 10`)

	loader := configs.NewLoader([]string{good}, schema)
	if configs.First[int](loader, "max_call_depth") != 10 {
		t.Fatal()
	}

	loader = configs.NewLoader([]string{bad}, schema)
	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("expected validation failure")
			}
		}()
		configs.First[int](loader, "max_call_depth")
	}()
}

func TestModuleValues(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.cue", `
max_call_depth: 10
globals: { name: "a", only_a: "x" }
scripts: ["one.js"]
`)
	b := writeFile(t, dir, "b.cue", `
max_call_depth: 20
trace: true
globals: { name: "b" }
scripts: ["two.js"]
`)

	dscope.New(
		new(Module),
	).Fork(
		dscope.Provide(configs.NewLoader([]string{a, b}, schema)),
	).Call(func(
		depth MaxCallDepth,
		trace Trace,
		globals Globals,
		scripts ConfigScripts,
	) {
		if depth != 10 {
			t.Fatalf("got %d", depth)
		}
		if !trace {
			t.Fatal("expected trace")
		}
		if globals["name"] != "a" || globals["only_a"] != "x" {
			t.Fatalf("got %v", globals)
		}
		if len(scripts) < 2 || !slices.Equal(scripts[:2], []string{"one.js", "two.js"}) {
			t.Fatalf("got %v", scripts)
		}
	})

	dscope.New(
		new(Module),
	).Fork(
		dscope.Provide(configs.NewLoader(nil, schema)),
	).Call(func(
		depth MaxCallDepth,
	) {
		if depth != taivm.DefaultMaxCallDepth {
			t.Fatalf("got %d", depth)
		}
	})
}

func TestSearchPaths(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := writeFile(t, dir, ".taijs.cue", ``)
	paths := SearchPaths("taijs.cue", ".taijs.cue")
	if len(paths) == 0 || paths[0] != path {
		t.Fatalf("got %v", paths)
	}
}
