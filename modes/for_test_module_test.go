package modes

import (
	"testing"

	"github.com/reusee/dscope"
)

func TestForTest(t *testing.T) {
	dscope.New(ForTest(t)).Call(func(
		t *testing.T,
		mode Mode,
		output ScriptOutput,
	) {
		if mode != ModeDevelopment {
			t.Fatal()
		}
		if mode.String() != "development" {
			t.Fatalf("got %s", mode)
		}
		if output == nil {
			t.Fatal()
		}
		if _, err := output.Write([]byte("script output\n")); err != nil {
			t.Fatal(err)
		}
	})
}
