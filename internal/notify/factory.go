package notify

import (
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-postpress/internal/runtimeconfig"
	"github.com/goliatone/go-postpress/pkg/interfaces"
)

// FromConfig builds the notifier selected by cfg.Provider. pathPrefix is
// prepended to event files by notifiers that operate on the working tree.
// The none provider yields a nil notifier.
func FromConfig(cfg runtimeconfig.NotifyConfig, pathPrefix string, logger interfaces.Logger) (interfaces.PublishNotifier, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case runtimeconfig.NotifyProviderNone:
		return nil, nil
	case "", runtimeconfig.NotifyProviderLog:
		return NewLogNotifier(logger), nil
	case runtimeconfig.NotifyProviderGit:
		return NewGitNotifier(GitOptions{
			Dir:           cfg.Git.Dir,
			PathPrefix:    pathPrefix,
			Remote:        cfg.Git.Remote,
			Branch:        cfg.Git.Branch,
			Push:          cfg.Git.Push,
			CommitPrefix:  cfg.Git.CommitPrefix,
			DeployCommand: cfg.Git.DeployCommand,
		}, nil, logger), nil
	case runtimeconfig.NotifyProviderRedis:
		if strings.TrimSpace(cfg.Redis.Addr) == "" {
			return nil, runtimeconfig.ErrNotifyRedisAddrRequired
		}
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return NewRedisNotifier(rdb, cfg.Redis.Channel), nil
	default:
		return nil, fmt.Errorf("%w: %q", runtimeconfig.ErrNotifyProviderUnknown, cfg.Provider)
	}
}
