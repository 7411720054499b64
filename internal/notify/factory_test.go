package notify

import (
	"errors"
	"testing"

	"github.com/goliatone/go-postpress/internal/runtimeconfig"
)

func TestFromConfig(t *testing.T) {
	cases := []struct {
		name     string
		cfg      runtimeconfig.NotifyConfig
		wantNil  bool
		wantType string
		wantErr  error
	}{
		{name: "none", cfg: runtimeconfig.NotifyConfig{Provider: "none"}, wantNil: true},
		{name: "default log", cfg: runtimeconfig.NotifyConfig{}, wantType: "log"},
		{name: "git", cfg: runtimeconfig.NotifyConfig{Provider: "git"}, wantType: "git"},
		{name: "redis", cfg: runtimeconfig.NotifyConfig{Provider: "redis", Redis: runtimeconfig.RedisNotifyConfig{Addr: "127.0.0.1:6379"}}, wantType: "redis"},
		{name: "redis without addr", cfg: runtimeconfig.NotifyConfig{Provider: "redis"}, wantErr: runtimeconfig.ErrNotifyRedisAddrRequired},
		{name: "unknown", cfg: runtimeconfig.NotifyConfig{Provider: "carrier-pigeon"}, wantErr: runtimeconfig.ErrNotifyProviderUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n, err := FromConfig(tc.cfg, "public", nil)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FromConfig: %v", err)
			}
			if tc.wantNil {
				if n != nil {
					t.Fatalf("expected nil notifier, got %T", n)
				}
				return
			}
			switch n.(type) {
			case *LogNotifier:
				if tc.wantType != "log" {
					t.Fatalf("unexpected log notifier")
				}
			case *GitNotifier:
				if tc.wantType != "git" {
					t.Fatalf("unexpected git notifier")
				}
			case *RedisNotifier:
				if tc.wantType != "redis" {
					t.Fatalf("unexpected redis notifier")
				}
				_ = n.(*RedisNotifier).Close()
			default:
				t.Fatalf("unexpected notifier %T", n)
			}
		})
	}
}
