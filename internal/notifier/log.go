package notifier

import (
	"log/slog"

	"github.com/alirezadp10/ezapply/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes cycle summaries to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each cycle via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// NotifyCycle logs the cycle's counters. Returns nil (stdout logging does
// not fail).
func (n *LogNotifier) NotifyCycle(summary model.CycleSummary) error {
	n.logger.Info("cycle finished",
		"searched", summary.Searched,
		"applied", summary.Applied,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"duration", summary.Duration.String(),
	)
	return nil
}
