package interfaces

import (
	"context"
	"time"
)

// PublishEvent describes a successful publish. Files are paths relative to the
// storage root so notifiers can stage exactly what changed.
type PublishEvent struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	URL         string    `json:"url"`
	Files       []string  `json:"files"`
	PublishedAt time.Time `json:"published_at"`
}

// PublishNotifier is told about every successful publish. The pipeline never
// observes the returned error beyond logging it.
type PublishNotifier interface {
	Notify(ctx context.Context, event PublishEvent) error
}

// PublishNotifierFunc adapts a function into a PublishNotifier.
type PublishNotifierFunc func(ctx context.Context, event PublishEvent) error

// Notify implements PublishNotifier.
func (f PublishNotifierFunc) Notify(ctx context.Context, event PublishEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}
