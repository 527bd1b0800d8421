package gate

import (
	"context"
	"log/slog"
)

// LogNavigator навигатор серверной стороны. Переход выполняет клиент по Route и
// Params из Decision, здесь он только фиксируется в логе.
type LogNavigator struct {
	log *slog.Logger
}

// NewLogNavigator создаёт LogNavigator.
func NewLogNavigator(log *slog.Logger) *LogNavigator {
	return &LogNavigator{log: log}
}

func (n *LogNavigator) Navigate(ctx context.Context, route string, params map[string]string) {
	n.log.DebugContext(ctx, "navigate to upgrade surface",
		slog.String("route", route),
		slog.String("feature", params["feature"]),
	)
}
