package modes

import (
	"os"
	"testing"

	"github.com/reusee/dscope"
)

func TestModuleForProduction(t *testing.T) {
	dscope.New(new(ModuleForProduction)).Call(func(
		pt *testing.T,
		mode Mode,
		output ScriptOutput,
	) {
		if pt != nil {
			t.Fatal()
		}
		if mode != ModeProduction || mode.String() != "production" {
			t.Fatalf("got %s", mode)
		}
		if output != ScriptOutput(os.Stdout) {
			t.Fatal()
		}
	})
}
