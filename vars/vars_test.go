package vars

import "testing"

func TestStrToBool(t *testing.T) {
	for str, want := range map[string]bool{
		"true":  true,
		" Yes ": true,
		"1":     true,
		"on":    true,
		"":      false,
		"0":     false,
		"no":    false,
		"maybe": false,
	} {
		if got := StrToBool(str); got != want {
			t.Fatalf("%q: got %v", str, got)
		}
	}
}

func TestFirstNonZero(t *testing.T) {
	if v := FirstNonZero(0, 3, 4); v != 3 {
		t.Fatalf("got %d", v)
	}
	if v := FirstNonZero("", ""); v != "" {
		t.Fatalf("got %q", v)
	}
}

func TestDerefOrZero(t *testing.T) {
	if v := DerefOrZero[int](nil); v != 0 {
		t.Fatalf("got %d", v)
	}
	n := 42
	if v := DerefOrZero(&n); v != 42 {
		t.Fatalf("got %d", v)
	}
}
