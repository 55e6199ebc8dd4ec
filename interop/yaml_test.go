package interop

import (
	"strings"
	"testing"

	"github.com/reusee/taijs/taivm"
)

func TestMarshalYAML(t *testing.T) {
	obj := taivm.NewObject()
	obj.Set("name", "foo")
	obj.Set("count", 3.0)
	obj.Set("ratio", 0.5)
	obj.Set("tags", taivm.NewArray("a", "b"))
	obj.Set("none", taivm.Null)

	bs, err := MarshalYAML(obj)
	if err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		"name: foo",
		"count: 3",
		"ratio: 0.5",
		"tags:",
		"    - a",
		"    - b",
		"none: null",
		"",
	}, "\n")
	if got := string(bs); got != want {
		t.Fatalf("got %q", got)
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	v, err := UnmarshalYAML([]byte("z: 1\na:\n  - x\n  - true\n  - ~\nref: &r {k: v}\nalias: *r\n"))
	if err != nil {
		t.Fatal(err)
	}
	obj := v.(*taivm.Object)
	if strings.Join(obj.Keys, ",") != "z,a,ref,alias" {
		t.Fatalf("got %v", obj.Keys)
	}
	z, _ := obj.Get("z")
	if z != 1.0 {
		t.Fatalf("got %#v", z)
	}
	a, _ := obj.Get("a")
	if taivm.ToString(a) != "x,true," {
		t.Fatalf("got %v", taivm.ToString(a))
	}
	alias, _ := obj.Get("alias")
	k, _ := alias.(*taivm.Object).Get("k")
	if k != "v" {
		t.Fatalf("got %v", k)
	}

	bs, err := MarshalJSON(v)
	if err != nil {
		t.Fatal(err)
	}
	if string(bs) != `{"z":1,"a":["x",true,null],"ref":{"k":"v"},"alias":{"k":"v"}}` {
		t.Fatalf("got %s", bs)
	}
}

func TestMarshalTOML(t *testing.T) {
	obj := taivm.NewObject()
	obj.Set("name", "foo")
	obj.Set("none", taivm.Null)
	obj.Set("fn", &taivm.NativeFunc{Name: "fn"})
	bs, err := MarshalTOML(obj)
	if err != nil {
		t.Fatal(err)
	}
	got := string(bs)
	if !strings.Contains(got, "name = ") || !strings.Contains(got, "foo") ||
		strings.Contains(got, "none") || strings.Contains(got, "fn") {
		t.Fatalf("got %q", got)
	}
	if _, err := MarshalTOML(taivm.NewArray()); err == nil {
		t.Fatal("expected error")
	}
}
