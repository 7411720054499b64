package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-postpress/pkg/interfaces"
)

const (
	rootModule    = "postpress"
	publishModule = "postpress.publish"
	postsModule   = "postpress.posts"
	notifyModule  = "postpress.notify"
	httpModule    = "postpress.http"
)

const (
	fieldPublishID = "publish_id"
	fieldSlug      = "slug"
	fieldTemplate  = "template"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The module identifier is
// attached as a structured field so entries can be filtered per subsystem.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// PublishLogger returns the logger namespace reserved for the publish pipeline.
func PublishLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, publishModule)
}

// PostsLogger returns the logger namespace reserved for the post index store.
func PostsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, postsModule)
}

// NotifyLogger returns the logger namespace reserved for publish notifiers.
func NotifyLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, notifyModule)
}

// HTTPLogger returns the logger namespace reserved for the HTTP adapter.
func HTTPLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, httpModule)
}

// WithPublishContext enriches the logger with the publish identifier, slug and
// template of an in-flight publish. Empty values are skipped.
func WithPublishContext(logger interfaces.Logger, publishID, slug, template string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(publishID); trimmed != "" {
		fields[fieldPublishID] = trimmed
	}
	if trimmed := strings.TrimSpace(slug); trimmed != "" {
		fields[fieldSlug] = trimmed
	}
	if trimmed := strings.TrimSpace(template); trimmed != "" {
		fields[fieldTemplate] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
