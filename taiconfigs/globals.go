package taiconfigs

import (
	"github.com/reusee/taijs/configs"
)

// Globals are host values defined in the global env before a script runs.
type Globals map[string]any

func (Module) Globals(
	loader configs.Loader,
) Globals {
	ret := make(Globals)
	// earlier files win
	for globals := range configs.All[map[string]any](loader, "globals") {
		for name, value := range globals {
			if _, ok := ret[name]; !ok {
				ret[name] = value
			}
		}
	}
	return ret
}

// ConfigScripts are paths of config scripts, run in order before the main script.
type ConfigScripts []string

func (Module) ConfigScripts(
	loader configs.Loader,
) ConfigScripts {
	var paths []string
	for list := range configs.All[[]string](loader, "scripts") {
		paths = append(paths, list...)
	}
	// least specific first, so later scripts override earlier ones
	found := SearchPaths("taijs.config.js", ".taijs.config.js")
	for i := len(found) - 1; i >= 0; i-- {
		paths = append(paths, found[i])
	}
	return paths
}
