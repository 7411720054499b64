package media

import (
	"context"
	"io"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-postpress/internal/logging"
	"github.com/goliatone/go-postpress/internal/posts"
	"github.com/goliatone/go-postpress/pkg/interfaces"
)

// Writer persists a stream at a path relative to the site root.
type Writer interface {
	WriteStream(ctx context.Context, rel string, src io.Reader) error
}

// Service stores post attachments.
type Service interface {
	Save(ctx context.Context, attachment Attachment) (*Stored, error)
	SaveAll(ctx context.Context, attachments []Attachment) (map[string]*Stored, error)
}

// ServiceOption configures the attachment service.
type ServiceOption func(*service)

// WithDirectory sets the directory, relative to the site root, uploads are written to.
func WithDirectory(dir string) ServiceOption {
	return func(s *service) {
		if trimmed := strings.Trim(strings.TrimSpace(dir), "/"); trimmed != "" {
			s.dir = trimmed
		}
	}
}

// WithURLPrefix sets the public URL prefix stored files are served under.
func WithURLPrefix(prefix string) ServiceOption {
	return func(s *service) {
		if trimmed := strings.TrimSpace(prefix); trimmed != "" {
			s.urlPrefix = "/" + strings.Trim(trimmed, "/")
		}
	}
}

// WithClock overrides the time source used for stored names.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger used for upload events.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type service struct {
	writer    Writer
	dir       string
	urlPrefix string
	now       func() time.Time
	logger    interfaces.Logger

	mu           sync.Mutex
	issuedMillis int64
	issued       map[string]struct{}
}

// NewService returns an attachment service writing through writer.
func NewService(writer Writer, opts ...ServiceOption) Service {
	s := &service{
		writer:    writer,
		dir:       "images/blog",
		urlPrefix: "/images/blog",
		now:       time.Now,
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *service) Save(ctx context.Context, attachment Attachment) (*Stored, error) {
	if !KnownField(attachment.Field) {
		return nil, posts.NewValidationError("unknown attachment field " + attachment.Field)
	}
	if attachment.Content == nil {
		return nil, posts.NewValidationError(attachment.Field + " attachment has no content")
	}

	at := s.now()
	name := s.reserve(StoredName(attachment.Filename, at), at.UnixMilli())
	rel := path.Join(s.dir, name)
	counter := &countingReader{r: attachment.Content}
	if err := s.writer.WriteStream(ctx, rel, counter); err != nil {
		return nil, posts.NewStorageError(err, "store "+attachment.Field)
	}

	stored := &Stored{
		Field: attachment.Field,
		Path:  rel,
		URL:   path.Join(s.urlPrefix, name),
		Size:  counter.n,
	}
	s.logger.Debug("media.attachment.stored",
		"field", stored.Field,
		"path", stored.Path,
		"size", stored.Size,
	)
	return stored, nil
}

// SaveAll stores every attachment, keyed by field. When a field repeats the
// last one wins. The first failure aborts the batch.
func (s *service) SaveAll(ctx context.Context, attachments []Attachment) (map[string]*Stored, error) {
	out := make(map[string]*Stored, len(attachments))
	for _, attachment := range attachments {
		stored, err := s.Save(ctx, attachment)
		if err != nil {
			return nil, err
		}
		out[stored.Field] = stored
	}
	return out, nil
}

// reserve hands out name once per millisecond; repeats get a -2, -3... suffix
// ahead of the extension.
func (s *service) reserve(name string, millis int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.issued == nil || millis != s.issuedMillis {
		s.issued = map[string]struct{}{}
		s.issuedMillis = millis
	}
	candidate := name
	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 2; ; n++ {
		if _, taken := s.issued[candidate]; !taken {
			break
		}
		candidate = stem + "-" + strconv.Itoa(n) + ext
	}
	s.issued[candidate] = struct{}{}
	return candidate
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
