package taiconfigs

import (
	_ "embed"
	"os"
	"path/filepath"

	"github.com/reusee/taijs/cmds"
	"github.com/reusee/taijs/configs"
	"github.com/reusee/taijs/logs"
)

//go:embed schema.cue
var schema string

var configFiles = cmds.Collect[string]("-config", "load a cue config file")

// SearchPaths returns existing files named one of filenames, most specific directory first:
// the working directory, the user config dir, then /etc.
func SearchPaths(filenames ...string) (paths []string) {
	var dirs []string
	if workingDir, err := os.Getwd(); err == nil {
		dirs = append(dirs, workingDir)
	}
	if configDir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, configDir)
	}
	dirs = append(dirs, "/etc")
	for _, dir := range dirs {
		for _, filename := range filenames {
			path := filepath.Join(dir, filename)
			if _, err := os.Stat(path); err == nil {
				paths = append(paths, path)
			}
		}
	}
	return
}

func (Module) ConfigsLoader(
	logger logs.Logger,
) configs.Loader {

	// explicit files take precedence
	paths := append([]string(nil), *configFiles...)
	paths = append(paths, SearchPaths("taijs.cue", ".taijs.cue")...)

	if len(paths) > 0 {
		logger.Info("config file",
			"paths", paths,
		)
	}

	return configs.NewLoader(paths, schema)
}
