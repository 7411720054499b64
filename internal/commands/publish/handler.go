package publishcmd

import (
	"context"
	"strconv"

	"github.com/goliatone/go-postpress/internal/commands"
	"github.com/goliatone/go-postpress/internal/logging"
	"github.com/goliatone/go-postpress/internal/publish"
	"github.com/goliatone/go-postpress/pkg/interfaces"
)

// Publisher is the publish pipeline the handler drives.
type Publisher interface {
	Publish(ctx context.Context, req publish.Request) (*publish.Result, error)
}

// PublishPostHandler runs PublishPostCommand through the shared command handler.
type PublishPostHandler struct {
	inner *commands.Handler[PublishPostCommand]
}

// NewPublishPostHandler wires a handler to service. The handler does not
// apply a timeout: a publish that has started is always carried through.
func NewPublishPostHandler(service Publisher, logger interfaces.Logger, opts ...commands.HandlerOption[PublishPostCommand]) *PublishPostHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg PublishPostCommand) error {
		result, err := service.Publish(context.WithoutCancel(ctx), msg.Request())
		if err != nil {
			return err
		}
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Result: result,
			Metadata: map[string]any{
				"operation": "publish",
				"slug":      result.Post.Slug,
				"template":  strconv.Itoa(result.Template.ID()),
			},
		})
		return nil
	}

	handlerOpts := []commands.HandlerOption[PublishPostCommand]{
		commands.WithLogger[PublishPostCommand](baseLogger),
		commands.WithOperation[PublishPostCommand]("publish.post"),
		commands.WithTimeout[PublishPostCommand](0),
		commands.WithMessageFields(func(msg PublishPostCommand) map[string]any {
			fields := map[string]any{}
			if msg.Template != "" {
				fields["template_requested"] = msg.Template
			}
			if len(msg.Attachments) > 0 {
				fields["attachments"] = len(msg.Attachments)
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[PublishPostCommand](nil)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &PublishPostHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[PublishPostCommand].
func (h *PublishPostHandler) Execute(ctx context.Context, msg PublishPostCommand) error {
	return h.inner.Execute(ctx, msg)
}

func invokeCallback(cb ResultCallback, envelope ResultEnvelope) {
	if cb != nil {
		cb(envelope)
	}
}
