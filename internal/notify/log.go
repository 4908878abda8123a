package notify

import (
	"context"

	"zenremind/internal/logger"
)

// LogNotifier writes notifications to the log. Used when no Telegram
// credentials are configured.
type LogNotifier struct {
	log logger.Logger
}

func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (l *LogNotifier) Send(_ context.Context, id string, n Notification) error {
	l.log.Info("reminder notification",
		logger.String("id", id),
		logger.String("title", n.Title),
		logger.String("message", n.Message))
	return nil
}
