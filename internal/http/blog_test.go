package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/goliatone/go-postpress/internal/adapters/storage"
	publishcmd "github.com/goliatone/go-postpress/internal/commands/publish"
	"github.com/goliatone/go-postpress/internal/markdown"
	"github.com/goliatone/go-postpress/internal/media"
	"github.com/goliatone/go-postpress/internal/posts"
	"github.com/goliatone/go-postpress/internal/publish"
	"github.com/goliatone/go-postpress/pkg/interfaces"
)

var fixedNow = time.Date(2024, 3, 15, 8, 30, 0, 0, time.UTC)

type blogHarness struct {
	fs     afero.Fs
	server *httptest.Server
}

func newBlogHarness(t *testing.T, opts ...Option) *blogHarness {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, body := range map[string]string{
		"public/blog/templates/blog-template.html":   `<h1>{{title}}</h1><img src="{{cover}}">{{content}}`,
		"public/blog/templates/blog-template-2.html": `<h2>{{title}}</h2>{{content}}`,
		"public/blog/templates/blog-template-3.html": `<h3>{{title}}</h3>{{content}}`,
	} {
		if err := afero.WriteFile(fs, name, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	clock := func() time.Time { return fixedNow }
	store := storage.NewFilesystem(fs, "public")
	svc := publish.NewService(
		publish.DefaultServiceConfig(),
		posts.NewIndexStore(store, "blog/data/blogs.json"),
		store,
		markdown.NewGoldmarkParser(interfaces.ParseOptions{}),
		publish.WithClock(clock),
		publish.WithMedia(media.NewService(store, media.WithClock(clock))),
	)

	base := []Option{
		WithPublisher(publishcmd.NewPublishPostHandler(svc, nil)),
		WithClock(clock),
		WithMetricsHandler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("postpress_publish_total 1\n"))
		})),
	}
	mux := http.NewServeMux()
	if err := NewBlogAPI(append(base, opts...)...).Register(mux); err != nil {
		t.Fatalf("Register: %v", err)
	}
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return &blogHarness{fs: fs, server: server}
}

func (h *blogHarness) postJSON(t *testing.T, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(h.server.URL+"/blog/create", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	return resp, decodeBody(t, resp)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return payload
}

func TestCreateFromMultipartForm(t *testing.T) {
	h := newBlogHarness(t)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	_ = form.WriteField("title", "My First Post")
	_ = form.WriteField("markdown", "# Hi")
	_ = form.WriteField("template", "2")
	part, err := form.CreateFormFile("cover", "Beach Day.JPG")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write([]byte("jpeg-bytes"))
	if err := form.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}

	resp, err := http.Post(h.server.URL+"/blog/create", form.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	payload := decodeBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", resp.StatusCode, payload)
	}
	if payload["success"] != true || payload["page"] != "/blog/posts/my-first-post.html" {
		t.Fatalf("unexpected payload %v", payload)
	}
	if payload["template"] != float64(2) {
		t.Fatalf("expected template 2, got %v", payload["template"])
	}

	page, err := afero.ReadFile(h.fs, "public/blog/posts/my-first-post.html")
	if err != nil {
		t.Fatalf("read page: %v", err)
	}
	if !strings.HasPrefix(string(page), "<h2>My First Post</h2>") {
		t.Fatalf("expected second template, got %q", page)
	}

	stored := "public/images/blog/1710491400000-beach-day.jpg"
	raw, err := afero.ReadFile(h.fs, stored)
	if err != nil {
		t.Fatalf("expected stored cover at %s: %v", stored, err)
	}
	if string(raw) != "jpeg-bytes" {
		t.Fatalf("unexpected cover content %q", raw)
	}
}

func TestCreateFromJSON(t *testing.T) {
	h := newBlogHarness(t)

	resp, payload := h.postJSON(t, `{"title":"Tagged Post","markdown":"body","tags":["go","web"],"template":3}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", resp.StatusCode, payload)
	}
	if payload["template"] != float64(3) {
		t.Fatalf("expected template 3, got %v", payload["template"])
	}

	raw, err := afero.ReadFile(h.fs, "public/blog/data/blogs.json")
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	var index []posts.Post
	if err := json.Unmarshal(raw, &index); err != nil {
		t.Fatalf("decode index: %v", err)
	}
	if len(index) != 1 || index[0].Slug != "tagged-post" {
		t.Fatalf("unexpected index %+v", index)
	}
	if strings.Join(index[0].Tags, ",") != "go,web" {
		t.Fatalf("expected tags go,web, got %v", index[0].Tags)
	}
	if index[0].Cover != "/images/blog/default.jpg" {
		t.Fatalf("expected default cover, got %q", index[0].Cover)
	}
}

func TestCreateRejectsMissingFields(t *testing.T) {
	h := newBlogHarness(t)

	cases := []string{
		`{"title":"Only title"}`,
		`{"markdown":"only body"}`,
		`{"title":"   ","markdown":"x"}`,
		`{"title":"!!!","markdown":"x"}`,
		`not json`,
	}
	for _, body := range cases {
		resp, payload := h.postJSON(t, body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, resp.StatusCode)
		}
		if payload["error"] != "validation_error" {
			t.Fatalf("%s: unexpected payload %v", body, payload)
		}
	}

	if exists, _ := afero.Exists(h.fs, "public/blog/data/blogs.json"); exists {
		t.Fatalf("rejected requests must not create the index")
	}
}

func TestCreateDuplicateReturnsConflict(t *testing.T) {
	h := newBlogHarness(t)

	body := `{"title":"Same Title","markdown":"first"}`
	if resp, payload := h.postJSON(t, body); resp.StatusCode != http.StatusOK {
		t.Fatalf("first publish: %d %v", resp.StatusCode, payload)
	}
	resp, payload := h.postJSON(t, `{"title":"same title!","markdown":"second"}`)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %v", resp.StatusCode, payload)
	}
	if payload["error"] != "conflict" {
		t.Fatalf("unexpected payload %v", payload)
	}
}

func TestCreateRejectsOversizedBody(t *testing.T) {
	h := newBlogHarness(t, WithMaxUploadBytes(32))

	resp, payload := h.postJSON(t, `{"title":"Big","markdown":"`+strings.Repeat("x", 128)+`"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %v", resp.StatusCode, payload)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	h := newBlogHarness(t)

	resp, err := http.Get(h.server.URL + "/health")
	if err != nil {
		t.Fatalf("get health: %v", err)
	}
	payload := decodeBody(t, resp)
	if payload["status"] != "ok" || payload["time"] != "2024-03-15T08:30:00Z" {
		t.Fatalf("unexpected health payload %v", payload)
	}

	resp, err = http.Get(h.server.URL + "/metrics")
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected metrics 200, got %d", resp.StatusCode)
	}
}

type failingExecutor struct{ err error }

func (f failingExecutor) Execute(context.Context, publishcmd.PublishPostCommand) error { return f.err }

func TestCreateMapsStorageErrors(t *testing.T) {
	mux := http.NewServeMux()
	api := NewBlogAPI(WithPublisher(failingExecutor{err: posts.NewStorageError(errors.New("disk full"), "write page")}))
	if err := api.Register(mux); err != nil {
		t.Fatalf("Register: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/blog/create", strings.NewReader(`{"title":"x","markdown":"y"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"storage_error"`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestRegisterRequiresPublisher(t *testing.T) {
	if err := NewBlogAPI().Register(http.NewServeMux()); err == nil {
		t.Fatalf("expected error without publisher")
	}
	if err := NewBlogAPI(WithPublisher(failingExecutor{})).Register(nil); err == nil {
		t.Fatalf("expected error without mux")
	}
}

func TestBasePathPrefixesRoutes(t *testing.T) {
	mux := http.NewServeMux()
	api := NewBlogAPI(WithPublisher(failingExecutor{}), WithBasePath("/api/"))
	if err := api.Register(mux); err != nil {
		t.Fatalf("Register: %v", err)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on prefixed health, got %d", rec.Code)
	}
}
