package di_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/goliatone/go-postpress/internal/di"
	"github.com/goliatone/go-postpress/internal/publish"
	"github.com/goliatone/go-postpress/internal/runtimeconfig"
	"github.com/goliatone/go-postpress/pkg/interfaces"
)

func TestContainerLogsPublishThroughProvider(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Notify.Provider = runtimeconfig.NotifyProviderNone

	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "public/blog/templates/blog-template.html", []byte("<h1>{{title}}</h1>{{content}}"), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	rec := newRecordingProvider()

	container, err := di.NewContainer(cfg,
		di.WithFilesystem(fs),
		di.WithLoggerProvider(rec),
		di.WithClock(func() time.Time { return time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC) }),
	)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	t.Cleanup(func() { _ = container.Close(context.Background()) })

	if _, err := container.PublishService().Publish(context.Background(), publish.Request{Title: "Logged Post", Markdown: "x"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	entry := rec.find("publish.completed")
	if entry == nil {
		t.Fatalf("expected publish.completed log entry, got %#v", rec.entries)
	}
	if got := entry.fields["slug"]; got != "logged-post" {
		t.Fatalf("expected slug field logged-post, got %v", got)
	}
	if got := entry.fields["module"]; got != "postpress.publish" {
		t.Fatalf("expected module field postpress.publish, got %v", got)
	}
}

type recordingProvider struct {
	mu      sync.Mutex
	entries []recordedEntry
}

type recordedEntry struct {
	level  string
	msg    string
	fields map[string]any
}

func newRecordingProvider() *recordingProvider {
	return &recordingProvider{entries: []recordedEntry{}}
}

func (p *recordingProvider) GetLogger(name string) interfaces.Logger {
	return &recordingLogger{
		provider: p,
		fields: map[string]any{
			"logger": name,
		},
	}
}

func (p *recordingProvider) record(entry recordedEntry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = append(p.entries, entry)
}

func (p *recordingProvider) find(msg string) *recordedEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.entries {
		if p.entries[i].msg == msg {
			return &p.entries[i]
		}
	}
	return nil
}

type recordingLogger struct {
	provider *recordingProvider
	fields   map[string]any
}

var _ interfaces.Logger = (*recordingLogger)(nil)

func (l *recordingLogger) Trace(msg string, args ...any) { l.log("TRACE", msg, args...) }
func (l *recordingLogger) Debug(msg string, args ...any) { l.log("DEBUG", msg, args...) }
func (l *recordingLogger) Info(msg string, args ...any)  { l.log("INFO", msg, args...) }
func (l *recordingLogger) Warn(msg string, args ...any)  { l.log("WARN", msg, args...) }
func (l *recordingLogger) Error(msg string, args ...any) { l.log("ERROR", msg, args...) }
func (l *recordingLogger) Fatal(msg string, args ...any) { l.log("FATAL", msg, args...) }

func (l *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	merged := make(map[string]any, len(l.fields)+len(fields))
	for key, value := range l.fields {
		merged[key] = value
	}
	for key, value := range fields {
		merged[key] = value
	}
	return &recordingLogger{
		provider: l.provider,
		fields:   merged,
	}
}

func (l *recordingLogger) WithContext(context.Context) interfaces.Logger {
	return &recordingLogger{
		provider: l.provider,
		fields:   cloneFields(l.fields),
	}
}

func (l *recordingLogger) log(level, msg string, args ...any) {
	fields := cloneFields(l.fields)
	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			break
		}
		key, _ := args[i].(string)
		if key == "" {
			continue
		}
		fields[key] = args[i+1]
	}
	l.provider.record(recordedEntry{
		level:  level,
		msg:    msg,
		fields: fields,
	})
}

func cloneFields(fields map[string]any) map[string]any {
	if len(fields) == 0 {
		return map[string]any{}
	}
	copied := make(map[string]any, len(fields))
	for key, value := range fields {
		copied[key] = value
	}
	return copied
}
