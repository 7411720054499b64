package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	publishcmd "github.com/goliatone/go-postpress/internal/commands/publish"
	"github.com/goliatone/go-postpress/internal/logging"
	"github.com/goliatone/go-postpress/pkg/interfaces"
)

const defaultMaxUploadBytes int64 = 10 << 20

// PublishExecutor runs a publish command.
type PublishExecutor interface {
	Execute(ctx context.Context, msg publishcmd.PublishPostCommand) error
}

// BlogAPI registers the blog publishing endpoints.
type BlogAPI struct {
	basePath  string
	publisher PublishExecutor
	metrics   http.Handler
	logger    interfaces.Logger
	maxUpload int64
	now       func() time.Time
}

// Option mutates the BlogAPI configuration.
type Option func(*BlogAPI)

// NewBlogAPI constructs a BlogAPI instance.
func NewBlogAPI(opts ...Option) *BlogAPI {
	api := &BlogAPI{
		logger:    logging.NoOp(),
		maxUpload: defaultMaxUploadBytes,
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// WithPublisher wires the publish command handler.
func WithPublisher(publisher PublishExecutor) Option {
	return func(api *BlogAPI) {
		api.publisher = publisher
	}
}

// WithBasePath mounts the routes below path.
func WithBasePath(path string) Option {
	return func(api *BlogAPI) {
		api.basePath = strings.TrimSpace(path)
	}
}

// WithMetricsHandler exposes handler at /metrics.
func WithMetricsHandler(handler http.Handler) Option {
	return func(api *BlogAPI) {
		api.metrics = handler
	}
}

// WithLogger sets the request logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(api *BlogAPI) {
		if logger != nil {
			api.logger = logger
		}
	}
}

// WithMaxUploadBytes caps the request body size of a publish.
func WithMaxUploadBytes(limit int64) Option {
	return func(api *BlogAPI) {
		if limit > 0 {
			api.maxUpload = limit
		}
	}
}

// WithClock overrides the time reported by the health endpoint.
func WithClock(now func() time.Time) Option {
	return func(api *BlogAPI) {
		if now != nil {
			api.now = now
		}
	}
}

// Register mounts the routes on mux.
func (api *BlogAPI) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if api == nil {
		return fmt.Errorf("http: blog api is nil")
	}
	if api.publisher == nil {
		return fmt.Errorf("http: publisher is required")
	}

	mux.HandleFunc("POST "+joinPath(api.basePath, "blog/create"), api.handleCreate)
	mux.HandleFunc("GET "+joinPath(api.basePath, "health"), api.handleHealth)
	if api.metrics != nil {
		mux.Handle("GET "+joinPath(api.basePath, "metrics"), api.metrics)
	}
	return nil
}

func (api *BlogAPI) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   api.now().UTC().Format(time.RFC3339),
	})
}
