package postpress

import "github.com/goliatone/go-postpress/internal/runtimeconfig"

var (
	ErrSiteURLRequired          = runtimeconfig.ErrSiteURLRequired
	ErrStorageRootRequired      = runtimeconfig.ErrStorageRootRequired
	ErrStoragePathRequired      = runtimeconfig.ErrStoragePathRequired
	ErrPrimaryTemplateRequired  = runtimeconfig.ErrPrimaryTemplateRequired
	ErrNotifyProviderUnknown    = runtimeconfig.ErrNotifyProviderUnknown
	ErrNotifyRedisAddrRequired  = runtimeconfig.ErrNotifyRedisAddrRequired
	ErrNotifyTimeoutInvalid     = runtimeconfig.ErrNotifyTimeoutInvalid
	ErrLoggingProviderUnknown   = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid      = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid     = runtimeconfig.ErrLoggingFormatInvalid
	ErrServerUploadLimitInvalid = runtimeconfig.ErrServerUploadLimitInvalid
)

type (
	Config            = runtimeconfig.Config
	SiteConfig        = runtimeconfig.SiteConfig
	StorageConfig     = runtimeconfig.StorageConfig
	TemplatesConfig   = runtimeconfig.TemplatesConfig
	DefaultsConfig    = runtimeconfig.DefaultsConfig
	MarkdownConfig    = runtimeconfig.MarkdownConfig
	NotifyConfig      = runtimeconfig.NotifyConfig
	GitNotifyConfig   = runtimeconfig.GitNotifyConfig
	RedisNotifyConfig = runtimeconfig.RedisNotifyConfig
	ServerConfig      = runtimeconfig.ServerConfig
	LoggingConfig     = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
