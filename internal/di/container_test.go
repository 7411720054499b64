package di_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/goliatone/go-command/dispatcher"
	"github.com/spf13/afero"

	publishcmd "github.com/goliatone/go-postpress/internal/commands/publish"
	"github.com/goliatone/go-postpress/internal/di"
	"github.com/goliatone/go-postpress/internal/runtimeconfig"
	"github.com/goliatone/go-postpress/pkg/interfaces"
)

type capturingNotifier struct {
	mu     sync.Mutex
	events []interfaces.PublishEvent
}

func (n *capturingNotifier) Notify(_ context.Context, event interfaces.PublishEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *capturingNotifier) snapshot() []interfaces.PublishEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]interfaces.PublishEvent(nil), n.events...)
}

func seededFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "public/blog/templates/blog-template.html", []byte("<h1>{{title}}</h1>{{content}}"), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	return fs
}

func TestNewContainerRejectsInvalidConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Site.URL = ""

	if _, err := di.NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrSiteURLRequired) {
		t.Fatalf("expected ErrSiteURLRequired, got %v", err)
	}
}

func TestContainerServesBlogRoutes(t *testing.T) {
	fs := seededFs(t)
	notifier := &capturingNotifier{}

	container, err := di.NewContainer(runtimeconfig.DefaultConfig(),
		di.WithFilesystem(fs),
		di.WithNotifier(notifier),
	)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}

	handler, err := container.Handler()
	if err != nil {
		t.Fatalf("Handler: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/blog/create", strings.NewReader(`{"title":"Wired Post","markdown":"# Hello"}`))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["page"] != "/blog/posts/wired-post.html" {
		t.Fatalf("unexpected payload %v", payload)
	}

	if err := container.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	events := notifier.snapshot()
	if len(events) != 1 || events[0].Slug != "wired-post" {
		t.Fatalf("expected one notification for wired-post, got %#v", events)
	}
	if exists, _ := afero.Exists(fs, "public/sitemap.xml"); !exists {
		t.Fatalf("expected sitemap to be written")
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `postpress_publish_total{outcome="success"} 1`) {
		t.Fatalf("expected publish counter in metrics output, got %d", rec.Code)
	}
}

func TestContainerMetricsCanBeDisabled(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Server.MetricsEnabled = false

	container, err := di.NewContainer(cfg, di.WithFilesystem(seededFs(t)), di.WithNotifier(nil))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	handler, err := container.Handler()
	if err != nil {
		t.Fatalf("Handler: %v", err)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for disabled metrics, got %d", rec.Code)
	}
}

func TestContainerDispatchesCommands(t *testing.T) {
	fs := seededFs(t)
	container, err := di.NewContainer(runtimeconfig.DefaultConfig(), di.WithFilesystem(fs), di.WithNotifier(nil))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	unsubscribe := container.SubscribeCommands()
	t.Cleanup(unsubscribe)

	var page string
	err = dispatcher.Dispatch(context.Background(), publishcmd.PublishPostCommand{
		Title:    "Via Dispatcher",
		Markdown: "body",
		ResultCallback: func(env publishcmd.ResultEnvelope) {
			page = env.Result.URL
		},
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if page != "/blog/posts/via-dispatcher.html" {
		t.Fatalf("unexpected page %q", page)
	}

	err = dispatcher.Dispatch(context.Background(), publishcmd.PublishPostCommand{Title: "via dispatcher", Markdown: "again"})
	if err == nil {
		t.Fatalf("expected duplicate publish to fail")
	}
	if exists, _ := afero.Exists(fs, "public/blog/posts/via-dispatcher.html"); !exists {
		t.Fatalf("expected first page to remain")
	}
}

func TestContainerPublishesToRedis(t *testing.T) {
	server := miniredis.RunT(t)
	sub := server.NewSubscriber()
	defer sub.Close()
	sub.Subscribe("posts")

	cfg := runtimeconfig.DefaultConfig()
	cfg.Notify.Provider = runtimeconfig.NotifyProviderRedis
	cfg.Notify.Redis.Addr = server.Addr()
	cfg.Notify.Redis.Channel = "posts"

	container, err := di.NewContainer(cfg, di.WithFilesystem(seededFs(t)))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}

	cmd := publishcmd.PublishPostCommand{Title: "Redis Post", Markdown: "x"}
	if err := container.PublishHandler().Execute(context.Background(), cmd); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	select {
	case msg := <-sub.Messages():
		var event interfaces.PublishEvent
		if err := json.Unmarshal([]byte(msg.Message), &event); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		if event.Slug != "redis-post" {
			t.Fatalf("unexpected event %+v", event)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for redis notification")
	}

	if err := container.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
