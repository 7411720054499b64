package di

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/spf13/afero"

	"github.com/goliatone/go-postpress/internal/adapters/storage"
	"github.com/goliatone/go-postpress/internal/commands"
	publishcmd "github.com/goliatone/go-postpress/internal/commands/publish"
	httpapi "github.com/goliatone/go-postpress/internal/http"
	"github.com/goliatone/go-postpress/internal/logging"
	"github.com/goliatone/go-postpress/internal/logging/console"
	"github.com/goliatone/go-postpress/internal/logging/gologger"
	"github.com/goliatone/go-postpress/internal/markdown"
	"github.com/goliatone/go-postpress/internal/media"
	"github.com/goliatone/go-postpress/internal/metrics"
	"github.com/goliatone/go-postpress/internal/notify"
	"github.com/goliatone/go-postpress/internal/posts"
	"github.com/goliatone/go-postpress/internal/publish"
	"github.com/goliatone/go-postpress/internal/runtimeconfig"
	"github.com/goliatone/go-postpress/pkg/interfaces"
)

// Container wires the publish pipeline from a runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	fs             afero.Fs
	loggerProvider interfaces.LoggerProvider
	notifier       interfaces.PublishNotifier
	notifierSet    bool
	clock          func() time.Time
	metrics        *metrics.Metrics

	storage    *storage.Filesystem
	index      *posts.IndexStore
	parser     interfaces.MarkdownParser
	media      media.Service
	dispatcher *notify.Dispatcher

	publishSvc     *publish.Service
	publishHandler *publishcmd.PublishPostHandler
	blogAPI        *httpapi.BlogAPI
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithFilesystem replaces the OS filesystem the site is written to.
func WithFilesystem(fs afero.Fs) Option {
	return func(c *Container) {
		c.fs = fs
	}
}

// WithLoggerProvider overrides the provider selected by Logging.Provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithNotifier overrides the notifier selected by Notify.Provider. A nil
// notifier disables notifications.
func WithNotifier(notifier interfaces.PublishNotifier) Option {
	return func(c *Container) {
		c.notifier = notifier
		c.notifierSet = true
	}
}

// WithClock overrides the time source used for dates and upload names.
func WithClock(now func() time.Time) Option {
	return func(c *Container) {
		c.clock = now
	}
}

// WithMetrics reuses an existing collector set.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Container) {
		c.metrics = m
	}
}

// NewContainer validates cfg and builds every service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		Config: cfg,
		clock:  time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.fs == nil {
		c.fs = afero.NewOsFs()
	}
	if c.clock == nil {
		c.clock = time.Now
	}
	if c.metrics == nil {
		c.metrics = metrics.New()
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	if err := c.configureNotifier(); err != nil {
		return nil, err
	}
	c.configureServices()
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    c.Config.Logging.Format,
			AddSource: c.Config.Logging.AddSource,
			Focus:     c.Config.Logging.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		opts := console.Options{TimeFunc: c.clock}
		if level, ok := console.ParseLevel(c.Config.Logging.Level); ok {
			opts.MinLevel = &level
		}
		c.loggerProvider = console.NewProvider(opts)
	}
	return nil
}

func (c *Container) configureNotifier() error {
	notifyLogger := logging.NotifyLogger(c.loggerProvider)
	if !c.notifierSet {
		notifier, err := notify.FromConfig(c.Config.Notify, c.Config.Storage.Root, notifyLogger)
		if err != nil {
			return err
		}
		c.notifier = notifier
	}

	c.dispatcher = notify.NewDispatcher(c.notifier,
		notify.WithTimeout(c.Config.Notify.Timeout),
		notify.WithLogger(notifyLogger),
		notify.WithResultHook(c.metrics.ObserveNotify),
	)
	notifyLogger.Debug("notify.configured", "provider", c.Config.Notify.Provider, "enabled", c.notifier != nil)
	return nil
}

func (c *Container) configureServices() {
	cfg := c.Config

	c.storage = storage.NewFilesystem(c.fs, cfg.Storage.Root)
	c.index = posts.NewIndexStore(c.storage, cfg.Storage.IndexPath,
		posts.WithIndexLogger(logging.PostsLogger(c.loggerProvider)),
		posts.WithCorruptionHook(c.metrics.ObserveCorruptIndex),
	)
	c.parser = markdown.NewGoldmarkParser(interfaces.ParseOptions{
		Extensions: cfg.Markdown.Extensions,
		HardWraps:  cfg.Markdown.HardWraps,
		SafeMode:   cfg.Markdown.SafeMode,
	})
	c.media = media.NewService(c.storage,
		media.WithDirectory(cfg.Storage.ImagesDir),
		media.WithURLPrefix(cfg.Storage.ImagesURLPrefix),
		media.WithClock(c.clock),
		media.WithLogger(logging.ModuleLogger(c.loggerProvider, "postpress.media")),
	)

	c.publishSvc = publish.NewService(PublishConfig(cfg), c.index, c.storage, c.parser,
		publish.WithLogger(logging.PublishLogger(c.loggerProvider)),
		publish.WithClock(c.clock),
		publish.WithDispatcher(c.dispatcher),
		publish.WithObserver(c.metrics),
		publish.WithMedia(c.media),
	)
	c.publishHandler = publishcmd.NewPublishPostHandler(c.publishSvc,
		commands.CommandLogger(c.loggerProvider, "publish"))

	apiOpts := []httpapi.Option{
		httpapi.WithPublisher(c.publishHandler),
		httpapi.WithLogger(logging.HTTPLogger(c.loggerProvider)),
		httpapi.WithMaxUploadBytes(cfg.Server.MaxUploadBytes),
		httpapi.WithClock(c.clock),
	}
	if cfg.Server.MetricsEnabled {
		apiOpts = append(apiOpts, httpapi.WithMetricsHandler(c.metrics.Handler()))
	}
	c.blogAPI = httpapi.NewBlogAPI(apiOpts...)
}

// PublishConfig projects the runtime configuration onto the publish service.
func PublishConfig(cfg runtimeconfig.Config) publish.Config {
	files := publish.DefaultTemplateFiles()
	for tpl, name := range map[posts.Template]string{
		posts.TemplatePrimary:   cfg.Templates.Primary,
		posts.TemplateSecondary: cfg.Templates.Secondary,
		posts.TemplateTertiary:  cfg.Templates.Tertiary,
	} {
		if name != "" {
			files[tpl] = name
		}
	}
	return publish.Config{
		SiteURL:         cfg.Site.URL,
		SiteTitle:       cfg.Site.Title,
		SiteDescription: cfg.Site.Description,
		FeedEnabled:     cfg.Site.FeedEnabled,
		PostsDir:        cfg.Storage.PostsDir,
		PostsURLPrefix:  cfg.Storage.PostsURLPrefix,
		TemplatesDir:    cfg.Storage.TemplatesDir,
		TemplateFiles:   files,
		SitemapPath:     cfg.Storage.SitemapPath,
		FeedPath:        cfg.Storage.FeedPath,
		DefaultAuthor:   cfg.Defaults.Author,
		DefaultCover:    cfg.Defaults.Cover,
	}
}

// LoggerProvider returns the configured logger provider.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Metrics returns the prometheus collectors.
func (c *Container) Metrics() *metrics.Metrics {
	return c.metrics
}

// PublishService returns the publish pipeline.
func (c *Container) PublishService() *publish.Service {
	return c.publishSvc
}

// PublishHandler returns the command handler wrapping the publish pipeline.
func (c *Container) PublishHandler() *publishcmd.PublishPostHandler {
	return c.publishHandler
}

// BlogAPI returns the HTTP adapter.
func (c *Container) BlogAPI() *httpapi.BlogAPI {
	return c.blogAPI
}

// Dispatcher returns the background notification dispatcher.
func (c *Container) Dispatcher() *notify.Dispatcher {
	return c.dispatcher
}

// Handler builds a mux with every HTTP route registered.
func (c *Container) Handler() (http.Handler, error) {
	mux := http.NewServeMux()
	if err := c.blogAPI.Register(mux); err != nil {
		return nil, err
	}
	return mux, nil
}

// SubscribeCommands registers the publish handler with the go-command
// dispatcher and returns the matching unsubscribe func.
func (c *Container) SubscribeCommands() func() {
	sub := dispatcher.SubscribeCommand(c.publishHandler)
	return sub.Unsubscribe
}

// Close drains pending notifications and releases notifier resources.
func (c *Container) Close(ctx context.Context) error {
	if c == nil {
		return nil
	}
	err := c.dispatcher.Close(ctx)
	if closer, ok := c.notifier.(io.Closer); ok {
		err = errors.Join(err, closer.Close())
	}
	return err
}
