package interop

import (
	"errors"
	"testing"

	"github.com/reusee/taijs/taivm"
)

func TestMarshalJSON(t *testing.T) {
	obj := taivm.NewObject()
	obj.Set("z", 1.0)
	obj.Set("a", taivm.NewArray("x", taivm.Undefined, true, taivm.Null))
	obj.Set("skip", taivm.Undefined)
	obj.Set("fn", &taivm.NativeFunc{Name: "fn"})
	obj.Set("n", 1.5)

	bs, err := MarshalJSON(obj)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(bs); got != `{"z":1,"a":["x",null,true,null],"n":1.5}` {
		t.Fatalf("got %s", got)
	}

	bs, err = MarshalJSONIndent(taivm.NewArray(1.0, taivm.NewObject()), "  ")
	if err != nil {
		t.Fatal(err)
	}
	if got := string(bs); got != "[\n  1,\n  {}\n]" {
		t.Fatalf("got %q", got)
	}
}

func TestMarshalJSONCyclic(t *testing.T) {
	arr := taivm.NewArray()
	arr.Elements = append(arr.Elements, arr)
	if _, err := MarshalJSON(arr); !errors.Is(err, ErrCyclic) {
		t.Fatalf("got %v", err)
	}

	// shared but acyclic
	shared := taivm.NewObject()
	if _, err := MarshalJSON(taivm.NewArray(shared, shared)); err != nil {
		t.Fatal(err)
	}
}

func TestUnmarshalJSON(t *testing.T) {
	v, err := UnmarshalJSON([]byte(`{"b": [1, "two", null, false], "a": {"c": 3}}`))
	if err != nil {
		t.Fatal(err)
	}
	obj, ok := v.(*taivm.Object)
	if !ok {
		t.Fatalf("got %T", v)
	}
	if len(obj.Keys) != 2 || obj.Keys[0] != "b" || obj.Keys[1] != "a" {
		t.Fatalf("got %v", obj.Keys)
	}
	b, _ := obj.Get("b")
	if taivm.ToString(b) != "1,two,,false" {
		t.Fatalf("got %v", taivm.ToString(b))
	}

	for _, bad := range []string{`{`, `[1,]`, `1 2`, ``} {
		if _, err := UnmarshalJSON([]byte(bad)); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
