package taiconfigs

import (
	"os"

	"github.com/reusee/taijs/cmds"
	"github.com/reusee/taijs/configs"
	"github.com/reusee/taijs/vars"
)

type Trace bool

var _ configs.Configurable = Trace(false)

func (Trace) ConfigName() string {
	return "Trace"
}

var traceFlag = cmds.Switch("-trace", "log every statement in debug runs")

func (Module) Trace(
	loader configs.Loader,
) Trace {
	return Trace(*traceFlag ||
		vars.StrToBool(os.Getenv("TAIJS_TRACE")) ||
		configs.First[bool](loader, "trace"))
}
