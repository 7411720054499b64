package postpress

import (
	"context"
	"net/http"

	publishcmd "github.com/goliatone/go-postpress/internal/commands/publish"
	"github.com/goliatone/go-postpress/internal/di"
	"github.com/goliatone/go-postpress/internal/media"
	"github.com/goliatone/go-postpress/internal/posts"
	"github.com/goliatone/go-postpress/internal/publish"
	"github.com/goliatone/go-postpress/pkg/interfaces"
)

// PublishRequest exports the publish pipeline input.
type PublishRequest = publish.Request

// PublishResult exports the publish pipeline output.
type PublishResult = publish.Result

// PublishPostCommand exports the command accepted by the publish handler.
type PublishPostCommand = publishcmd.PublishPostCommand

// Attachment exports an uploaded image bound to a post field.
type Attachment = media.Attachment

// Post exports a post index record.
type Post = posts.Post

// Template exports the page template selector.
type Template = posts.Template

// PublishEvent exports the payload handed to notifiers.
type PublishEvent = interfaces.PublishEvent

// PublishNotifier exports the notifier contract.
type PublishNotifier = interfaces.PublishNotifier

// ErrorKind exports the publish error classification.
type ErrorKind = posts.Kind

const (
	ErrorKindValidation   = posts.KindValidation
	ErrorKindConflict     = posts.KindConflict
	ErrorKindStorage      = posts.KindStorage
	ErrorKindCorruptIndex = posts.KindCorruptIndex
)

// Module represents the top level publishing runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Publish runs a post through the pipeline.
func (m *Module) Publish(ctx context.Context, req PublishRequest) (*PublishResult, error) {
	return m.container.PublishService().Publish(ctx, req)
}

// Execute runs cmd through the command handler, which validates it first.
func (m *Module) Execute(ctx context.Context, cmd PublishPostCommand) error {
	return m.container.PublishHandler().Execute(ctx, cmd)
}

// Handler returns the HTTP handler serving the blog routes.
func (m *Module) Handler() (http.Handler, error) {
	return m.container.Handler()
}

// Close waits for pending notifications and releases resources.
func (m *Module) Close(ctx context.Context) error {
	if m == nil {
		return nil
	}
	return m.container.Close(ctx)
}

// ErrorKindOf classifies an error returned by Publish or Execute.
func ErrorKindOf(err error) ErrorKind {
	return posts.KindOf(err)
}
