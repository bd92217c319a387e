// Package notify provides a log-backed Notifier for headless runs.
// Dashboard frontends supply their own implementation; this one keeps
// session services usable from the CLI and worker processes.
package notify

import (
	"log/slog"

	"github.com/markprompt/markprompt-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.Notifier = (*LogNotifier)(nil)

// LogNotifier writes notifications to a structured logger
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a new LogNotifier
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With("component", "notifier")}
}

// Success reports a completed operation
func (n *LogNotifier) Success(message string) {
	n.logger.Info(message, "kind", "success")
}

// Error reports a failed operation
func (n *LogNotifier) Error(message string) {
	n.logger.Error(message, "kind", "error")
}

// Info reports a neutral outcome
func (n *LogNotifier) Info(message string) {
	n.logger.Info(message, "kind", "info")
}
