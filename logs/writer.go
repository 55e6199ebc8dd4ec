package logs

import (
	"io"
	"os"

	"github.com/reusee/taijs/cmds"
)

type Writer io.Writer

var logFile = cmds.Var[string]("-log-file", "append logs to a file instead of stderr")

func (Module) Writer() Writer {
	if *logFile == "" {
		return os.Stderr
	}
	f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		// unwritable log files fall back to stderr
		return os.Stderr
	}
	return f
}
