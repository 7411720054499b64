package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrSiteURLRequired          = errors.New("postpress config: site url is required")
	ErrStorageRootRequired      = errors.New("postpress config: storage root is required")
	ErrStoragePathRequired      = errors.New("postpress config: storage path is required")
	ErrPrimaryTemplateRequired  = errors.New("postpress config: primary template is required")
	ErrNotifyProviderUnknown    = errors.New("postpress config: notify provider is invalid")
	ErrNotifyRedisAddrRequired  = errors.New("postpress config: redis address is required for the redis notifier")
	ErrNotifyTimeoutInvalid     = errors.New("postpress config: notify timeout must be zero or positive")
	ErrLoggingProviderUnknown   = errors.New("postpress config: logging provider is invalid")
	ErrLoggingLevelInvalid      = errors.New("postpress config: logging level is invalid")
	ErrLoggingFormatInvalid     = errors.New("postpress config: logging format is invalid")
	ErrServerUploadLimitInvalid = errors.New("postpress config: max upload bytes must be positive")
)

// Notify providers understood by the DI container.
const (
	NotifyProviderNone  = "none"
	NotifyProviderLog   = "log"
	NotifyProviderGit   = "git"
	NotifyProviderRedis = "redis"
)

// Config aggregates everything the publish service needs at runtime. The
// mapstructure tags let the CLI decode it straight from viper.
type Config struct {
	Site      SiteConfig      `mapstructure:"site"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Templates TemplatesConfig `mapstructure:"templates"`
	Defaults  DefaultsConfig  `mapstructure:"defaults"`
	Markdown  MarkdownConfig  `mapstructure:"markdown"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// SiteConfig describes the public site the posts are published to.
type SiteConfig struct {
	URL         string `mapstructure:"url"`
	Title       string `mapstructure:"title"`
	Description string `mapstructure:"description"`
	FeedEnabled bool   `mapstructure:"feed_enabled"`
}

// StorageConfig lays out the generated site on disk. Paths other than Root
// are relative to Root.
type StorageConfig struct {
	Root            string `mapstructure:"root"`
	IndexPath       string `mapstructure:"index_path"`
	PostsDir        string `mapstructure:"posts_dir"`
	ImagesDir       string `mapstructure:"images_dir"`
	TemplatesDir    string `mapstructure:"templates_dir"`
	SitemapPath     string `mapstructure:"sitemap_path"`
	FeedPath        string `mapstructure:"feed_path"`
	PostsURLPrefix  string `mapstructure:"posts_url_prefix"`
	ImagesURLPrefix string `mapstructure:"images_url_prefix"`
}

// TemplatesConfig names the template file backing each template variant.
type TemplatesConfig struct {
	Primary   string `mapstructure:"primary"`
	Secondary string `mapstructure:"secondary"`
	Tertiary  string `mapstructure:"tertiary"`
}

// DefaultsConfig holds the values used when a submission omits a field.
type DefaultsConfig struct {
	Author string `mapstructure:"author"`
	Cover  string `mapstructure:"cover"`
}

// MarkdownConfig configures the goldmark parser.
type MarkdownConfig struct {
	Extensions []string `mapstructure:"extensions"`
	HardWraps  bool     `mapstructure:"hard_wraps"`
	SafeMode   bool     `mapstructure:"safe_mode"`
}

// NotifyConfig selects what happens after a successful publish.
type NotifyConfig struct {
	Provider string            `mapstructure:"provider"`
	Timeout  time.Duration     `mapstructure:"timeout"`
	Git      GitNotifyConfig   `mapstructure:"git"`
	Redis    RedisNotifyConfig `mapstructure:"redis"`
}

// GitNotifyConfig drives the git add/commit/push chain and the optional deploy command.
type GitNotifyConfig struct {
	Dir           string   `mapstructure:"dir"`
	Remote        string   `mapstructure:"remote"`
	Branch        string   `mapstructure:"branch"`
	Push          bool     `mapstructure:"push"`
	CommitPrefix  string   `mapstructure:"commit_prefix"`
	DeployCommand []string `mapstructure:"deploy_command"`
}

// RedisNotifyConfig points the redis notifier at a server and channel.
type RedisNotifyConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

// ServerConfig configures the HTTP adapter.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MetricsEnabled  bool          `mapstructure:"metrics_enabled"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `mapstructure:"provider"`
	Level     string   `mapstructure:"level"`
	Format    string   `mapstructure:"format"`
	AddSource bool     `mapstructure:"add_source"`
	Focus     []string `mapstructure:"focus"`
}

// DefaultConfig returns the layout used by the original on-track.in site.
func DefaultConfig() Config {
	return Config{
		Site: SiteConfig{
			URL:         "https://on-track.in",
			Title:       "Ontrack Blog",
			FeedEnabled: true,
		},
		Storage: StorageConfig{
			Root:            "public",
			IndexPath:       "blog/data/blogs.json",
			PostsDir:        "blog/posts",
			ImagesDir:       "images/blog",
			TemplatesDir:    "blog/templates",
			SitemapPath:     "sitemap.xml",
			FeedPath:        "blog/feed.xml",
			PostsURLPrefix:  "/blog/posts",
			ImagesURLPrefix: "/images/blog",
		},
		Templates: TemplatesConfig{
			Primary:   "blog-template.html",
			Secondary: "blog-template-2.html",
			Tertiary:  "blog-template-3.html",
		},
		Defaults: DefaultsConfig{
			Author: "Ontrack Team",
			Cover:  "/images/blog/default.jpg",
		},
		Notify: NotifyConfig{
			Provider: NotifyProviderLog,
			Timeout:  2 * time.Minute,
			Git: GitNotifyConfig{
				Remote:       "origin",
				CommitPrefix: "blog:",
			},
			Redis: RedisNotifyConfig{
				Channel: "postpress:published",
			},
		},
		Server: ServerConfig{
			Addr:            ":3333",
			MaxUploadBytes:  10 << 20,
			ShutdownTimeout: 10 * time.Second,
			MetricsEnabled:  true,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Site.URL) == "" {
		return ErrSiteURLRequired
	}
	if strings.TrimSpace(cfg.Storage.Root) == "" {
		return ErrStorageRootRequired
	}
	paths := map[string]string{
		"index_path":    cfg.Storage.IndexPath,
		"posts_dir":     cfg.Storage.PostsDir,
		"images_dir":    cfg.Storage.ImagesDir,
		"templates_dir": cfg.Storage.TemplatesDir,
		"sitemap_path":  cfg.Storage.SitemapPath,
	}
	for name, value := range paths {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: %s", ErrStoragePathRequired, name)
		}
	}
	if cfg.Site.FeedEnabled && strings.TrimSpace(cfg.Storage.FeedPath) == "" {
		return fmt.Errorf("%w: feed_path", ErrStoragePathRequired)
	}
	if strings.TrimSpace(cfg.Templates.Primary) == "" {
		return ErrPrimaryTemplateRequired
	}
	if cfg.Server.MaxUploadBytes <= 0 {
		return ErrServerUploadLimitInvalid
	}

	switch provider := normalize(cfg.Notify.Provider); provider {
	case "", NotifyProviderNone, NotifyProviderLog, NotifyProviderGit:
	case NotifyProviderRedis:
		if strings.TrimSpace(cfg.Notify.Redis.Addr) == "" {
			return ErrNotifyRedisAddrRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrNotifyProviderUnknown, provider)
	}
	if cfg.Notify.Timeout < 0 {
		return ErrNotifyTimeoutInvalid
	}

	provider := normalize(cfg.Logging.Provider)
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "", "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
