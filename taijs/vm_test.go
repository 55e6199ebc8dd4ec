package taijs

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/reusee/taijs/taivm"
)

func run(t *testing.T, src string) *taivm.VM {
	t.Helper()
	vm, err := Compile("test", src)
	if err != nil {
		t.Fatal(err)
	}
	if err := vm.Program.Verify(); err != nil {
		t.Fatal(err)
	}
	for _, err := range vm.Run {
		if err != nil {
			t.Fatalf("runtime error: %v", err)
		}
	}
	return vm
}

func check(t *testing.T, vm *taivm.VM, name string, want any) {
	t.Helper()
	if val, ok := vm.Get(name); !ok {
		t.Errorf("%s not found", name)
	} else if !taivm.StrictEqual(val, want) {
		t.Errorf("%s = %v (%T), want %v (%T)", name, val, val, want, want)
	}
}

func TestVarDeclarations(t *testing.T) {
	vm := run(t, `
		var a = 1, b = a + 1, c = "x" + b;
		var d;
		var e = 1, f, g = e;
	`)
	check(t, vm, "a", 1.0)
	check(t, vm, "b", 2.0)
	check(t, vm, "c", "x2")
	check(t, vm, "d", taivm.Undefined)
	check(t, vm, "f", taivm.Undefined)
	check(t, vm, "g", 1.0)
}

func TestEquality(t *testing.T) {
	vm, err := NewVM("test", strings.NewReader(`
		var a = 1;
		var c = a;
		var eq = a == c;
		var hostEq = h == a;
		var strNum = 1 == "1";
		var boolNum = true == 1;
		var nullish = null == undefined;
		var strict = null === undefined;
		var strs = "a" === "a";
	`), &Options{
		Globals: map[string]any{
			"h": int64(1),
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := vm.RunToCompletion(); err != nil {
		t.Fatal(err)
	}
	check(t, vm, "eq", true)
	check(t, vm, "hostEq", true)
	check(t, vm, "strNum", false)
	check(t, vm, "boolNum", false)
	check(t, vm, "nullish", true)
	check(t, vm, "strict", false)
	check(t, vm, "strs", true)

	a, err := taivm.Get[int](vm, "a")
	if err != nil {
		t.Fatal(err)
	}
	c, _ := vm.Get("c")
	if !taivm.Equal(a, c) {
		t.Fatalf("%v != %v", a, c)
	}
}

func TestCompoundAssignment(t *testing.T) {
	vm := run(t, `
		var a = [1, 2, 3];
		a[1] *= 2;
		a[1] /= 2;
		a[1] += 2;
		a[1] -= 2;
		a[1] **= 2;
		var a1 = a[1];
		var sum = a[0] + a[a[0]] + a[2];

		var n = 7;
		n %= 4;
		n <<= 2;
		n |= 1;
		var s = "a";
		s += "b";
	`)
	check(t, vm, "a1", 4.0)
	check(t, vm, "sum", 8.0)
	check(t, vm, "n", 13.0)
	check(t, vm, "s", "ab")
}

func TestUpdateExpressions(t *testing.T) {
	vm := run(t, `
		var p = 5;
		var q = p++;
		var r = ++p;
		var d = 3;
		d--;
		var m = {v: 1};
		var mv = m.v++;
		var mAfter = m.v;
		var arr = [1];
		var pre = ++arr[0];
		var post = arr[0]--;
		var arrAfter = arr[0];
		var str = "5";
		str++;
	`)
	check(t, vm, "q", 5.0)
	check(t, vm, "r", 7.0)
	check(t, vm, "p", 7.0)
	check(t, vm, "d", 2.0)
	check(t, vm, "mv", 1.0)
	check(t, vm, "mAfter", 2.0)
	check(t, vm, "pre", 2.0)
	check(t, vm, "post", 2.0)
	check(t, vm, "arrAfter", 1.0)
	check(t, vm, "str", 6.0)
}

func TestArrayGrowth(t *testing.T) {
	vm := run(t, `
		var a = [];
		a[2] = 1;
		var len = a.length;
		var mid = a[1];
		var far = a[100];
	`)
	check(t, vm, "len", 3.0)
	check(t, vm, "mid", taivm.Undefined)
	check(t, vm, "far", taivm.Undefined)
}

func TestArrayBuiltins(t *testing.T) {
	vm := run(t, `
		var a = new Array(1, 2, 3);
		var l1 = a.length;
		var p = a.pop();
		var l2 = a.length;
		a.push('x');
		var l3 = a.length;
		var last = a[2];

		var sized = Array(4).length;
		var isArr = Array.isArray(a);
		var mapped = [1, 2, 3].map(function(x) { return x * 2; }).join("-");
		var filtered = [1, 2, 3, 4].filter(function(x) { return x % 2 == 0; }).length;
		var total = [1, 2, 3].reduce(function(acc, x) { return acc + x; }, 10);
		var idx = [5, 6].indexOf(6);
		var sliced = [1, 2, 3, 4].slice(1, -1).join();
		var shifted = [9, 8].shift();
		var keys = Object.keys({b: 1, a: 2}).join();
		var visited = 0;
		[1, 2].forEach(function(x, i) { visited += x + i; });
	`)
	check(t, vm, "l1", 3.0)
	check(t, vm, "p", 3.0)
	check(t, vm, "l2", 2.0)
	check(t, vm, "l3", 3.0)
	check(t, vm, "last", "x")
	check(t, vm, "sized", 4.0)
	check(t, vm, "isArr", true)
	check(t, vm, "mapped", "2-4-6")
	check(t, vm, "filtered", 2.0)
	check(t, vm, "total", 16.0)
	check(t, vm, "idx", 1.0)
	check(t, vm, "sliced", "2,3")
	check(t, vm, "shifted", 9.0)
	check(t, vm, "keys", "b,a")
	check(t, vm, "visited", 4.0)
}

func TestNestedMemberWrite(t *testing.T) {
	vm := run(t, `
		var o1 = {
			o2: [0, 1, 2, { o4: { x: 99, y: 1 } }],
			z: 5,
		};
		o1.o2[3].o4.x += 1;
		var x = o1.o2[3].o4.x;
		var y = o1.o2[3].o4.y;
		var len = o1.o2.length;
		var z = o1.z;
		var first = o1["o2"][0];
	`)
	check(t, vm, "x", 100.0)
	check(t, vm, "y", 1.0)
	check(t, vm, "len", 4.0)
	check(t, vm, "z", 5.0)
	check(t, vm, "first", 0.0)
}

func TestClosures(t *testing.T) {
	vm := run(t, `
		function counter() {
			var n = 0;
			return function() {
				n += 1;
				return n;
			};
		}
		var c = counter();
		c();
		c();
		var r = c();
		var d = counter();
		var r2 = d();

		function outer(a) {
			function mid(b) {
				return function(c) {
					return a + b + c;
				};
			}
			return mid(2);
		}
		var f = outer(1);
		var r3 = f(3);

		var shadow = 1;
		function useShadow(shadow) {
			return shadow;
		}
		var r4 = useShadow(2);
	`)
	check(t, vm, "r", 3.0)
	check(t, vm, "r2", 1.0)
	check(t, vm, "r3", 6.0)
	check(t, vm, "r4", 2.0)
	check(t, vm, "shadow", 1.0)
}

func TestFunctionEquality(t *testing.T) {
	vm := run(t, `
		function f() {}
		var g = f;
		var h = f;
		var same = g == h;
		var notTrue = g == true;
		var notFalse = g === false;
		var other = f == function() {};
	`)
	check(t, vm, "same", true)
	check(t, vm, "notTrue", false)
	check(t, vm, "notFalse", false)
	check(t, vm, "other", false)

	g, _ := vm.Get("g")
	h, _ := vm.Get("h")
	if !taivm.Equal(g, h) || taivm.Equal(g, true) {
		t.Fatal()
	}
}

func TestComments(t *testing.T) {
	withComments := `
		// it's a "comment" with an @ sign
		var a = 1; /* multi
		line ' " @ comment */ var b = 2; // trailing 'quote
		/**/ var c = a + b; /* a // b */
		var s = "// not a comment";
	`
	stripped := `
		var a = 1;
		var b = 2;
		var c = a + b;
		var s = "// not a comment";
	`
	for _, src := range []string{withComments, stripped} {
		vm := run(t, src)
		check(t, vm, "c", 3.0)
		check(t, vm, "s", "// not a comment")
	}
}

func TestControlFlow(t *testing.T) {
	vm := run(t, `
		var s = 0;
		for (var i = 0; i < 10; i++) {
			if (i % 2 == 0) continue;
			if (i > 7) break;
			s += i;
		}

		var j = 0;
		do {
			j++;
		} while (j < 5);

		var k = 10;
		while (k > 0) k -= 3;

		var w = 0;
		while (true) {
			w++;
			if (w == 3) {
				break;
			} else {
				continue;
			}
		}

		var count = 0;
		for (;;) {
			if (++count >= 4) break;
		}

		var t1 = typeof undefinedThing;
		var t2 = typeof s;
		var t3 = typeof function() {};
		var t4 = typeof null;
		var and = 0 && fail();
		var or = 1 || fail();
		var chained = null || "" || "x";
		var tern = s > 10 ? "big" : "small";
		var neg = -s;
		var not = !s;
		var bits = ~5 & 0xff;
		var ushr = -1 >>> 28;
		var seq = (1, 2, 3);
		var cmp = "a" < "b";
	`)
	check(t, vm, "s", 16.0)
	check(t, vm, "i", 9.0)
	check(t, vm, "j", 5.0)
	check(t, vm, "k", -2.0)
	check(t, vm, "w", 3.0)
	check(t, vm, "count", 4.0)
	check(t, vm, "t1", "undefined")
	check(t, vm, "t2", "number")
	check(t, vm, "t3", "function")
	check(t, vm, "t4", "object")
	check(t, vm, "and", 0.0)
	check(t, vm, "or", 1.0)
	check(t, vm, "chained", "x")
	check(t, vm, "tern", "big")
	check(t, vm, "neg", -16.0)
	check(t, vm, "not", false)
	check(t, vm, "bits", 250.0)
	check(t, vm, "ushr", 15.0)
	check(t, vm, "seq", 3.0)
	check(t, vm, "cmp", true)
}

func TestHoisting(t *testing.T) {
	vm := run(t, `
		var r = g();
		function g() {
			return 1;
		}
		function h() {
			var x = y();
			function y() {
				return 2;
			}
			return x;
		}
		var r2 = h();
		var before = typeof later;
		var later = 1;
		function inner() {
			v = 3;
			var v;
			return v;
		}
		var r3 = inner();
	`)
	check(t, vm, "r", 1.0)
	check(t, vm, "r2", 2.0)
	check(t, vm, "before", "undefined")
	check(t, vm, "r3", 3.0)
	if _, ok := vm.Get("v"); ok {
		t.Fatal("local leaked to globals")
	}
}

func TestThisAndNew(t *testing.T) {
	vm := run(t, `
		function Point(x, y) {
			this.x = x;
			this.y = y;
		}
		var p = new Point(1, 2);
		var px = p.x;
		var py = p.y;

		function Boxed() {
			this.ignored = true;
			return {boxed: true};
		}
		var b = new Boxed().boxed;

		var obj = {
			n: 2,
			get: function() {
				return this.n;
			},
		};
		var got = obj.get();
		var viaIndex = obj["get"]();
		var o = new Object();
		o.k = 1;
		var hasK = o.hasOwnProperty("k");
	`)
	check(t, vm, "px", 1.0)
	check(t, vm, "py", 2.0)
	check(t, vm, "b", true)
	check(t, vm, "got", 2.0)
	check(t, vm, "viaIndex", 2.0)
	check(t, vm, "hasK", true)
}

func TestNamedFunctionExpression(t *testing.T) {
	vm := run(t, `
		var fact = function f(n) {
			return n <= 1 ? 1 : n * f(n - 1);
		};
		var r = fact(5);
		var named = fact.name;
		var anon = function() {};
		var inferred = anon.name;
		var hasF = typeof f;
	`)
	check(t, vm, "r", 120.0)
	check(t, vm, "named", "f")
	check(t, vm, "inferred", "anon")
	check(t, vm, "hasF", "undefined")
}

func TestStrings(t *testing.T) {
	vm := run(t, `
		var upper = "Hello".toUpperCase();
		var lower = "ÄB".toLowerCase();
		var parts = "a,b,c".split(",").length;
		var ch = "abc".charAt(1);
		var len = "héllo".length;
		var idx = "abc"[2];
		var sub = "hello".substring(1, 3);
		var sl = "hello".slice(-3);
		var replaced = "hello world".replace(new RegExp("o", "g"), "0");
		var replacedOnce = "aaa".replace("a", "b");
		var matched = new RegExp("^a+$").test("aaa");
		var groups = "key=value".match(new RegExp("(\\w+)=(\\w+)"))[2];
		var noMatch = "abc".match("x");
		var found = "abcabc".search("ca");
		var trimmed = "  x ".trim();
		var num = "3" * "4";
		var concat = "3" + 4;
		var parsed = parseInt("42px") + parseFloat("1.5e1x");
		var hex = parseInt("ff", 16);
	`)
	check(t, vm, "upper", "HELLO")
	check(t, vm, "lower", "äb")
	check(t, vm, "parts", 3.0)
	check(t, vm, "ch", "b")
	check(t, vm, "len", 5.0)
	check(t, vm, "idx", "c")
	check(t, vm, "sub", "el")
	check(t, vm, "sl", "llo")
	check(t, vm, "replaced", "hell0 w0rld")
	check(t, vm, "replacedOnce", "baa")
	check(t, vm, "matched", true)
	check(t, vm, "groups", "value")
	check(t, vm, "noMatch", taivm.Null)
	check(t, vm, "found", 2.0)
	check(t, vm, "trimmed", "x")
	check(t, vm, "num", 12.0)
	check(t, vm, "concat", "34")
	check(t, vm, "parsed", 57.0)
	check(t, vm, "hex", 255.0)
}

func TestJSON(t *testing.T) {
	vm := run(t, `
		var s = JSON.stringify({b: 1, a: [true, null, "q"]});
		var o = JSON.parse('{"x": [1, 2], "y": {"z": "w"}}');
		var x1 = o.x[1];
		var z = o.y.z;
		var keys = Object.keys(o).join();
	`)
	check(t, vm, "s", `{"b":1,"a":[true,null,"q"]}`)
	check(t, vm, "x1", 2.0)
	check(t, vm, "z", "w")
	check(t, vm, "keys", "x,y")
}

func TestPrint(t *testing.T) {
	buf := new(bytes.Buffer)
	vm, err := NewVM("test", strings.NewReader(`
		print("a", 1, [1, 2]);
		console.log({a: 1}, undefined);
	`), &Options{
		Stdout: buf,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := vm.RunToCompletion(); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "a 1 [1,2]\n{\"a\":1} undefined\n" {
		t.Fatalf("got %q", got)
	}
}

func TestHostFunctions(t *testing.T) {
	var logged []string
	vm, err := NewVM("test", strings.NewReader(`
		var r = add(1, 2);
		log("x=" + r);
		var cfg = config.name;
	`), &Options{
		Globals: map[string]any{
			"add": func(a, b int) int {
				return a + b
			},
			"log": func(s string) {
				logged = append(logged, s)
			},
			"config": map[string]any{
				"name": "foo",
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := vm.RunToCompletion(); err != nil {
		t.Fatal(err)
	}
	check(t, vm, "r", 3.0)
	check(t, vm, "cfg", "foo")
	if len(logged) != 1 || logged[0] != "x=3" {
		t.Fatalf("got %v", logged)
	}
}

func TestGetGlobalVar(t *testing.T) {
	vm := run(t, `
		var n = 42;
		var s = "str";
		var list = [1, 2, 3];
		var obj = {name: "x", tags: ["a"]};
		function double(x) { return x * 2; }
	`)

	if n, err := taivm.Get[int](vm, "n"); err != nil || n != 42 {
		t.Fatalf("got %v %v", n, err)
	}
	if s, err := taivm.Get[string](vm, "s"); err != nil || s != "str" {
		t.Fatalf("got %v %v", s, err)
	}
	if l, err := taivm.Get[[]int](vm, "list"); err != nil || len(l) != 3 || l[2] != 3 {
		t.Fatalf("got %v %v", l, err)
	}
	type Obj struct {
		Name string
		Tags []string
	}
	if o, err := taivm.Get[Obj](vm, "obj"); err != nil || o.Name != "x" || o.Tags[0] != "a" {
		t.Fatalf("got %+v %v", o, err)
	}
	double, err := taivm.Get[func(int) int](vm, "double")
	if err != nil {
		t.Fatal(err)
	}
	if double(21) != 42 {
		t.Fatal()
	}

	var convErr *taivm.TypeConversionError
	if _, err := taivm.Get[int](vm, "s"); !errors.As(err, &convErr) {
		t.Fatalf("got %v", err)
	}
	if _, err := taivm.Get[int](vm, "missing"); !errors.As(err, &convErr) {
		t.Fatalf("got %v", err)
	}
}

func TestIsolation(t *testing.T) {
	src := `var a = 1; a = a + 1;`
	vm1 := run(t, src)
	vm2, err := Compile("test", src)
	if err != nil {
		t.Fatal(err)
	}
	vm1.Def("only1", 1.0)
	if _, ok := vm2.Get("only1"); ok {
		t.Fatal("globals shared")
	}
	if _, ok := vm2.Get("a"); ok {
		t.Fatal("globals shared")
	}
	if err := vm2.RunToCompletion(); err != nil {
		t.Fatal(err)
	}
	check(t, vm1, "a", 2.0)
	check(t, vm2, "a", 2.0)
	vm2.Set("a", 5.0)
	check(t, vm1, "a", 2.0)
}

func TestInitAndEval(t *testing.T) {
	vm, err := Init("test", `debugger; var a = 1;`)
	if err != nil {
		t.Fatal(err)
	}
	check(t, vm, "a", 1.0)
	if vm.State() != taivm.StateCompleted {
		t.Fatalf("got %v", vm.State())
	}

	if err := Eval(vm, `var b = a + 1; a = 10;`); err != nil {
		t.Fatal(err)
	}
	check(t, vm, "b", 2.0)
	check(t, vm, "a", 10.0)

	if _, err := Init("test", `undefinedFunc();`); err == nil {
		t.Fatal("expected error")
	}
}

func TestRuntimeErrors(t *testing.T) {
	vm, err := Compile("test", "var a = 1;\nvar b = a.foo.bar;")
	if err != nil {
		t.Fatal(err)
	}
	err = vm.RunToCompletion()
	var runtimeErr *taivm.RuntimeError
	if !errors.As(err, &runtimeErr) {
		t.Fatalf("got %v", err)
	}
	if runtimeErr.Source != "a.foo.bar" {
		t.Fatalf("got %q", runtimeErr.Source)
	}
	if runtimeErr.Line != 2 || runtimeErr.Column != 9 {
		t.Fatalf("got %d:%d", runtimeErr.Line, runtimeErr.Column)
	}
	if !strings.Contains(runtimeErr.Message, `cannot read property "bar" of undefined`) {
		t.Fatalf("got %q", runtimeErr.Message)
	}
	if vm.State() != taivm.StateFaulted {
		t.Fatalf("got %v", vm.State())
	}
	// terminal
	if err2 := vm.RunToCompletion(); err2 != err {
		t.Fatalf("got %v", err2)
	}
	if err2 := vm.Step(); err2 != err {
		t.Fatalf("got %v", err2)
	}

	testCases := []struct {
		src  string
		want string
	}{
		{`var x = 1; x();`, "is not a function"},
		{`var y = notDefined + 1;`, "notDefined is not defined"},
		{`null.x = 1;`, "cannot set property"},
		{`function f() { return f(); } f();`, "maximum call stack size exceeded"},
		{`[1, 2].map(3);`, "is not a function"},
		{`new RegExp("(");`, "invalid regular expression"},
	}
	for _, tc := range testCases {
		_, err := Init("test", tc.src)
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: got %v", tc.src, err)
		}
	}
}

func TestCallStackInError(t *testing.T) {
	vm, err := Compile("test", `
function inner() {
	return missing;
}
function outer() {
	return inner();
}
outer();
`)
	if err != nil {
		t.Fatal(err)
	}
	err = vm.RunToCompletion()
	var runtimeErr *taivm.RuntimeError
	if !errors.As(err, &runtimeErr) {
		t.Fatalf("got %v", err)
	}
	if len(runtimeErr.Stack) != 3 {
		t.Fatalf("got %v", runtimeErr.Stack)
	}
	if runtimeErr.Stack[0].Function != "main" ||
		runtimeErr.Stack[1].Function != "outer" ||
		runtimeErr.Stack[2].Function != "inner" {
		t.Fatalf("got %v", runtimeErr.Stack)
	}
	if runtimeErr.Function != "inner" || runtimeErr.Source != "missing" {
		t.Fatalf("got %+v", runtimeErr)
	}
	if !strings.Contains(runtimeErr.StackTrace(), "outer:6:") {
		t.Fatalf("got %s", runtimeErr.StackTrace())
	}
}

func TestMaxCallDepthOption(t *testing.T) {
	vm, err := NewVM("test", strings.NewReader(`
		function depth(n) {
			return n == 0 ? 0 : 1 + depth(n - 1);
		}
		var r = depth(50);
	`), &Options{
		MaxCallDepth: 10,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := vm.RunToCompletion(); err == nil || !strings.Contains(err.Error(), "maximum call stack size exceeded") {
		t.Fatalf("got %v", err)
	}
}

func TestJSONIndent(t *testing.T) {
	vm := run(t, `
		var negative = JSON.stringify({a: 1}, null, -1);
		var two = JSON.stringify({a: 1}, null, 2);
		var huge = JSON.stringify([1], null, 1e300);
		var nan = JSON.stringify([1], null, 0 / 0);
		var str = JSON.stringify([1], null, "--------------------");
	`)
	check(t, vm, "negative", `{"a":1}`)
	check(t, vm, "two", "{\n  \"a\": 1\n}")
	check(t, vm, "huge", "[\n          1\n]")
	check(t, vm, "nan", "[1]")
	check(t, vm, "str", "[\n----------1\n]")
}

func TestArrayLengthLimit(t *testing.T) {
	for _, src := range []string{
		`var a = []; a[2147483647] = 1;`,
		`var a = []; a[16777216] = 1;`,
		`var a = []; a.length = 2e9;`,
		`var a = new Array(2e9);`,
	} {
		_, err := Init("test", src)
		var runtimeErr *taivm.RuntimeError
		if !errors.As(err, &runtimeErr) || !strings.Contains(runtimeErr.Message, "exceeds limit") {
			t.Fatalf("%s: got %v", src, err)
		}
	}

	vm, err := NewVM("test", strings.NewReader(`
		var a = [1, 2, 3];
		a[3] = 4;
		var ok = a.length;
		a.push(5);
	`), &Options{
		MaxArrayLength: 4,
	})
	if err != nil {
		t.Fatal(err)
	}
	err = vm.RunToCompletion()
	if err == nil || !strings.Contains(err.Error(), "array length 5 exceeds limit 4") {
		t.Fatalf("got %v", err)
	}
	check(t, vm, "ok", 4.0)
}

func TestRegExpObject(t *testing.T) {
	vm := run(t, `
		var re = new RegExp("b+", "g");
		var fake = {source: "b+", flags: "g", global: true};
		var r1 = "abbcb".replace(re, "x");
		var r2 = "abbcb".replace(fake, "x");
		var src = re.source;
	`)
	check(t, vm, "r1", "axcx")
	check(t, vm, "r2", "abbcb")
	check(t, vm, "src", "b+")
	re, _ := vm.Get("re")
	if re.(*taivm.Object).Internal == nil {
		t.Fatal("expected compiled pattern")
	}
	if _, ok := re.(*taivm.Object).Get("Internal"); ok {
		t.Fatal("internal data is visible")
	}
}

func TestEvalSourceSpans(t *testing.T) {
	vm := run(t, "var pad = 1;\nfunction f() {\n  return missing + 1;\n}\nfunction g() {\n  debugger;\n  return 2;\n}\n")

	err := Eval(vm, "var q = [1, 2, 3, 4, 5, 6, 7, 8, 9]; f()")
	var runtimeErr *taivm.RuntimeError
	if !errors.As(err, &runtimeErr) {
		t.Fatalf("got %v", err)
	}
	if runtimeErr.Source != "missing" || runtimeErr.Line != 3 || runtimeErr.Column != 10 {
		t.Fatalf("got %q %d:%d", runtimeErr.Source, runtimeErr.Line, runtimeErr.Column)
	}
	if len(runtimeErr.Stack) != 2 || runtimeErr.Stack[0].Source != "f()" || runtimeErr.Stack[1].Function != "f" {
		t.Fatalf("got %+v", runtimeErr.Stack)
	}

	program, err := CompileProgram("eval", "var r = [0, 0, 0, 0].length + g();")
	if err != nil {
		t.Fatal(err)
	}
	sub := vm.Fork(program)
	if err := sub.Continue(); err != nil {
		t.Fatal(err)
	}
	if src := sub.PendingSource(); src != "return 2" {
		t.Fatalf("got %q", src)
	}
	if loc := sub.Location(); loc.Function != "g" || loc.Line != 7 || loc.Column != 3 {
		t.Fatalf("got %+v", loc)
	}
	stack := sub.CallStackInfo()
	if len(stack) != 2 || stack[0].Source != "g()" || stack[1].Source != "return 2" {
		t.Fatalf("got %+v", stack)
	}
	if err := sub.Continue(); err != nil {
		t.Fatal(err)
	}
	check(t, vm, "r", 6.0)
}
