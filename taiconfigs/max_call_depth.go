package taiconfigs

import (
	"github.com/reusee/taijs/cmds"
	"github.com/reusee/taijs/configs"
	"github.com/reusee/taijs/logs"
	"github.com/reusee/taijs/taivm"
	"github.com/reusee/taijs/vars"
)

type MaxCallDepth int

var _ configs.Configurable = MaxCallDepth(0)

func (MaxCallDepth) ConfigName() string {
	return "MaxCallDepth"
}

var maxCallDepthFlag = cmds.Var[int]("-max-call-depth", "maximum nested script calls")

func (Module) MaxCallDepth(
	loader configs.Loader,
	logger logs.Logger,
) MaxCallDepth {
	if path, ok := loader.Origin("max_call_depth"); ok && *maxCallDepthFlag == 0 {
		logger.Debug("max call depth from config",
			"path", path,
		)
	}
	return MaxCallDepth(vars.FirstNonZero(
		*maxCallDepthFlag,
		configs.First[int](loader, "max_call_depth"),
		taivm.DefaultMaxCallDepth,
	))
}
