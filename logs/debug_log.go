package logs

import (
	"context"
	"log/slog"
)

// DebugLogSink receives diagnostic text of debug runs.
type DebugLogSink func(string)

func (Module) DebugLogSink(
	logger Logger,
) DebugLogSink {
	return func(msg string) {
		logger.Debug(msg, "source", "script")
	}
}

// ForVM returns a logger tagging records with the VM id.
func ForVM(ctx context.Context, logger Logger, vmID string) Logger {
	if v := ctx.Value(SpanKey); v != nil {
		return logger.With(
			slog.String("vm", vmID),
			slog.Any("span", v),
		)
	}
	return logger.With(slog.String("vm", vmID))
}
