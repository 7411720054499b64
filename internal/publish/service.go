package publish

import (
	"context"
	"html"
	"path"
	"strings"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-postpress/internal/generator"
	"github.com/goliatone/go-postpress/internal/logging"
	"github.com/goliatone/go-postpress/internal/media"
	"github.com/goliatone/go-postpress/internal/posts"
	"github.com/goliatone/go-postpress/internal/util"
	"github.com/goliatone/go-postpress/pkg/interfaces"
)

// Outcome labels reported to the Observer.
const (
	OutcomeSuccess    = "success"
	OutcomeValidation = "validation_error"
	OutcomeConflict   = "conflict"
	OutcomeStorage    = "storage_error"
	OutcomeError      = "error"
)

// Artifacts reads and writes site files relative to the site root.
type Artifacts interface {
	ReadFile(ctx context.Context, rel string) ([]byte, error)
	WriteFile(ctx context.Context, rel string, content []byte) error
}

// Dispatcher hands a publish event to the background notifier.
type Dispatcher interface {
	Dispatch(event interfaces.PublishEvent) error
}

// Observer receives the outcome and duration of every publish.
type Observer interface {
	ObservePublish(outcome string, elapsed time.Duration)
}

// Config holds the site layout and defaults a Service publishes with.
type Config struct {
	SiteURL         string
	SiteTitle       string
	SiteDescription string
	FeedEnabled     bool

	PostsDir       string
	PostsURLPrefix string
	TemplatesDir   string
	TemplateFiles  map[posts.Template]string
	SitemapPath    string
	FeedPath       string

	DefaultAuthor string
	DefaultCover  string
}

// DefaultServiceConfig mirrors the default runtime layout.
func DefaultServiceConfig() Config {
	return Config{
		SiteURL:        "https://on-track.in",
		FeedEnabled:    true,
		PostsDir:       "blog/posts",
		PostsURLPrefix: "/blog/posts",
		TemplatesDir:   "blog/templates",
		TemplateFiles:  DefaultTemplateFiles(),
		SitemapPath:    "sitemap.xml",
		FeedPath:       "blog/feed.xml",
		DefaultAuthor:  "Ontrack Team",
		DefaultCover:   "/images/blog/default.jpg",
	}
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the publish logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for post dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides how publish ids are generated.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithDispatcher sets where successful publishes are announced.
func WithDispatcher(d Dispatcher) Option {
	return func(s *Service) {
		s.dispatcher = d
	}
}

// WithObserver registers a publish observer.
func WithObserver(o Observer) Option {
	return func(s *Service) {
		s.observer = o
	}
}

// WithMedia sets the attachment store.
func WithMedia(store media.Service) Option {
	return func(s *Service) {
		s.media = store
	}
}

// Service publishes posts: it renders the page, records it in the index and
// regenerates the sitemap and feed.
type Service struct {
	cfg        Config
	index      *posts.IndexStore
	artifacts  Artifacts
	parser     interfaces.MarkdownParser
	templates  templateSource
	media      media.Service
	dispatcher Dispatcher
	observer   Observer
	logger     interfaces.Logger
	now        func() time.Time
	newID      func() string

	// mu serialises the load, render, persist and sitemap steps so
	// concurrent publishes never write back a stale index.
	mu sync.Mutex
}

// NewService wires a publish service. Attachments are rejected unless a media
// store is configured with WithMedia.
func NewService(cfg Config, index *posts.IndexStore, artifacts Artifacts, parser interfaces.MarkdownParser, opts ...Option) *Service {
	if cfg.TemplateFiles == nil {
		cfg.TemplateFiles = DefaultTemplateFiles()
	}
	s := &Service{
		cfg:       cfg,
		index:     index,
		artifacts: artifacts,
		parser:    parser,
		templates: templateSource{
			reader: artifacts,
			dir:    cfg.TemplatesDir,
			files:  cfg.TemplateFiles,
		},
		logger: logging.NoOp(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Publish runs the publication pipeline for req.
func (s *Service) Publish(ctx context.Context, req Request) (*Result, error) {
	started := s.now()
	result, err := s.publish(ctx, req)
	if s.observer != nil {
		s.observer.ObservePublish(outcomeOf(err), s.now().Sub(started))
	}
	return result, err
}

func (s *Service) publish(ctx context.Context, req Request) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	req = req.withFrontMatter()
	if err := req.validate(); err != nil {
		return nil, err
	}

	publishID := s.newID()
	tpl := posts.ResolveTemplate(req.Template)
	slug := posts.Slugify(req.Title)
	logger := logging.WithPublishContext(s.logger.WithContext(ctx), publishID, slug, tpl.String())
	if slug == "" {
		return nil, posts.NewValidationError("title must contain at least one letter or digit")
	}

	publishedAt := s.now()
	post, files, err := s.commit(ctx, req, slug, tpl, publishedAt, logger)
	if err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		event := interfaces.PublishEvent{
			ID:          publishID,
			Title:       post.Title,
			Slug:        post.Slug,
			URL:         post.URL,
			Files:       files,
			PublishedAt: publishedAt.UTC(),
		}
		if err := s.dispatcher.Dispatch(event); err != nil {
			logger.Warn("publish.notify.skipped", "error", err)
		}
	}

	logger.Info("publish.completed", "url", post.URL)
	return &Result{URL: post.URL, Template: tpl, Post: post}, nil
}

// commit is the critical section: everything that reads or rewrites shared
// site state happens under s.mu. Attachments are stored only once the slug is
// known to be free, so a conflicting publish leaves no files behind.
func (s *Service) commit(ctx context.Context, req Request, slug string, tpl posts.Template, at time.Time, logger interfaces.Logger) (posts.Post, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.index.Load(ctx)
	if posts.Contains(current, slug) {
		logger.Warn("publish.conflict")
		return posts.Post{}, nil, posts.NewConflictError(slug)
	}

	assets, err := s.storeAttachments(ctx, req.Attachments)
	if err != nil {
		logger.Error("publish.attachments.failed", "error", err)
		return posts.Post{}, nil, err
	}
	post := s.buildPost(req, slug, tpl, at, assets)

	page, err := s.render(ctx, post, req.Markdown)
	if err != nil {
		logger.Error("publish.render.failed", "error", err)
		return posts.Post{}, nil, err
	}

	pagePath := path.Join(s.cfg.PostsDir, post.Slug+".html")
	if err := s.artifacts.WriteFile(ctx, pagePath, []byte(page)); err != nil {
		logger.Error("publish.page.write_failed", "error", err)
		return posts.Post{}, nil, posts.NewStorageError(err, "write post page")
	}

	updated, err := posts.Append(current, post)
	if err != nil {
		return posts.Post{}, nil, err
	}
	if err := s.index.Persist(ctx, updated); err != nil {
		logger.Error("publish.index.persist_failed", "error", err)
		return posts.Post{}, nil, err
	}

	files := []string{pagePath, s.index.Path()}
	written, err := s.writeSiteIndexes(ctx, updated)
	files = append(files, written...)
	if err != nil {
		logger.Error("publish.sitemap.write_failed", "error", err)
		return posts.Post{}, nil, err
	}
	for _, stored := range assets {
		files = append(files, stored.Path)
	}
	return post, files, nil
}

func (s *Service) writeSiteIndexes(ctx context.Context, index []posts.Post) ([]string, error) {
	var written []string
	sitemap := generator.BuildSitemap(s.cfg.SiteURL, index)
	if err := s.artifacts.WriteFile(ctx, s.cfg.SitemapPath, []byte(sitemap)); err != nil {
		return written, posts.NewStorageError(err, "write sitemap")
	}
	written = append(written, s.cfg.SitemapPath)

	if !s.cfg.FeedEnabled || strings.TrimSpace(s.cfg.FeedPath) == "" {
		return written, nil
	}
	feed := generator.BuildFeed(generator.FeedMetadata{
		BaseURL:     s.cfg.SiteURL,
		Title:       s.cfg.SiteTitle,
		Description: s.cfg.SiteDescription,
		GeneratedAt: s.now(),
	}, index)
	if err := s.artifacts.WriteFile(ctx, s.cfg.FeedPath, []byte(feed)); err != nil {
		return written, posts.NewStorageError(err, "write feed")
	}
	return append(written, s.cfg.FeedPath), nil
}

func (s *Service) render(ctx context.Context, post posts.Post, body string) (string, error) {
	content, err := s.parser.Parse([]byte(body))
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "render markdown").
			WithTextCode("RENDER_ERROR")
	}
	tpl, err := s.templates.load(ctx, post.Template)
	if err != nil {
		return "", err
	}
	return generator.RenderTemplate(tpl, map[string]string{
		generator.FieldTitle:       html.EscapeString(post.Title),
		generator.FieldDescription: html.EscapeString(post.Description),
		generator.FieldAuthor:      html.EscapeString(post.Author),
		generator.FieldDate:        post.Date,
		generator.FieldURL:         post.URL,
		generator.FieldCover:       post.Cover,
		generator.FieldThumbnail:   post.Thumbnail,
		generator.FieldTags:        generator.FormatTags(post.Tags),
		generator.FieldContent:     string(content),
	}), nil
}

func (s *Service) storeAttachments(ctx context.Context, attachments []media.Attachment) (map[string]*media.Stored, error) {
	accepted := make([]media.Attachment, 0, len(attachments))
	for _, attachment := range attachments {
		if media.KnownField(attachment.Field) && attachment.Content != nil {
			accepted = append(accepted, attachment)
		}
	}
	if len(accepted) == 0 {
		return map[string]*media.Stored{}, nil
	}
	if s.media == nil {
		return nil, posts.NewStorageError(goerrors.New("attachment storage is not configured", goerrors.CategoryInternal), "store attachments")
	}
	return s.media.SaveAll(ctx, accepted)
}

func (s *Service) buildPost(req Request, slug string, tpl posts.Template, at time.Time, assets map[string]*media.Stored) posts.Post {
	title := strings.TrimSpace(req.Title)
	description := util.FirstNonEmpty(req.Description, title)
	author := util.FirstNonEmpty(req.Author, s.cfg.DefaultAuthor)
	cover := s.cfg.DefaultCover
	if stored := assets[media.FieldCover]; stored != nil {
		cover = stored.URL
	}
	thumbnail := cover
	if stored := assets[media.FieldThumbnail]; stored != nil {
		thumbnail = stored.URL
	}
	return posts.Post{
		Title:       title,
		Slug:        slug,
		Description: description,
		Author:      author,
		Date:        posts.FormatDate(at),
		URL:         posts.PostURL(s.cfg.PostsURLPrefix, slug),
		Cover:       cover,
		Thumbnail:   thumbnail,
		Tags:        posts.ParseTags(req.Tags),
		Template:    tpl,
	}
}

func outcomeOf(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	switch posts.KindOf(err) {
	case posts.KindValidation:
		return OutcomeValidation
	case posts.KindConflict:
		return OutcomeConflict
	case posts.KindStorage:
		return OutcomeStorage
	default:
		return OutcomeError
	}
}
