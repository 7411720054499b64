package notify

import (
	"context"

	"github.com/goliatone/go-postpress/internal/logging"
	"github.com/goliatone/go-postpress/pkg/interfaces"
)

// LogNotifier records publish events in the log and does nothing else.
type LogNotifier struct {
	logger interfaces.Logger
}

// NewLogNotifier returns a notifier writing to logger.
func NewLogNotifier(logger interfaces.Logger) *LogNotifier {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, event interfaces.PublishEvent) error {
	n.logger.Info("notify.published",
		"publish_id", event.ID,
		"title", event.Title,
		"slug", event.Slug,
		"url", event.URL,
		"files", event.Files,
	)
	return nil
}
