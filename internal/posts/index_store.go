package posts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"slices"

	"github.com/goliatone/go-postpress/internal/logging"
	"github.com/goliatone/go-postpress/pkg/interfaces"
)

// Storage is the durable file access the index store needs. WriteFile must
// replace path atomically; ReadFile must report a missing file with an error
// matching fs.ErrNotExist.
type Storage interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFile(ctx context.Context, path string, content []byte) error
}

// IndexOption configures an IndexStore.
type IndexOption func(*IndexStore)

// WithIndexLogger sets the logger used to report corrupt index records.
func WithIndexLogger(logger interfaces.Logger) IndexOption {
	return func(s *IndexStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCorruptionHook registers a callback invoked whenever Load discards an
// unreadable or corrupt record.
func WithCorruptionHook(fn func(error)) IndexOption {
	return func(s *IndexStore) {
		s.onCorrupt = fn
	}
}

// IndexStore loads and persists the ordered post index as one JSON document.
// It does not serialise callers; the publish service owns that lock.
type IndexStore struct {
	storage   Storage
	path      string
	logger    interfaces.Logger
	onCorrupt func(error)
}

// NewIndexStore builds a store for the document at path.
func NewIndexStore(storage Storage, path string, opts ...IndexOption) *IndexStore {
	s := &IndexStore{
		storage: storage,
		path:    path,
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Path returns the storage path of the index document.
func (s *IndexStore) Path() string {
	return s.path
}

// Load returns the persisted index. A missing document is an empty index. An
// unreadable or corrupt document is logged and also treated as empty, so the
// next Persist overwrites it.
func (s *IndexStore) Load(ctx context.Context) []Post {
	raw, err := s.storage.ReadFile(ctx, s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []Post{}
	}
	if err != nil {
		s.corrupt(ctx, fmt.Errorf("read: %w", err))
		return []Post{}
	}

	index, err := decodeIndex(raw)
	if err != nil {
		s.corrupt(ctx, err)
		return []Post{}
	}
	return index
}

// Persist replaces the stored index with index.
func (s *IndexStore) Persist(ctx context.Context, index []Post) error {
	if index == nil {
		index = []Post{}
	}
	payload, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return NewStorageError(err, "encode post index")
	}
	if err := s.storage.WriteFile(ctx, s.path, payload); err != nil {
		return NewStorageError(err, "write post index")
	}
	return nil
}

// Append returns a copy of index with post added at the end, or a conflict
// error when the slug is taken. index is never modified.
func Append(index []Post, post Post) ([]Post, error) {
	if Contains(index, post.Slug) {
		return nil, NewConflictError(post.Slug)
	}
	next := make([]Post, 0, len(index)+1)
	next = append(next, index...)
	return append(next, post), nil
}

// Contains reports whether a post with slug is present in index.
func Contains(index []Post, slug string) bool {
	return slices.ContainsFunc(index, func(p Post) bool { return p.Slug == slug })
}

func (s *IndexStore) corrupt(ctx context.Context, cause error) {
	err := newCorruptIndexError(cause, s.path)
	s.logger.WithContext(ctx).Error("posts.index.corrupt",
		"path", s.path,
		"text_code", TextCodeCorruptIndex,
		"error", err,
	)
	if s.onCorrupt != nil {
		s.onCorrupt(err)
	}
}

func decodeIndex(raw []byte) ([]Post, error) {
	var document any
	if err := json.Unmarshal(raw, &document); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := indexSchema.Validate(document); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}

	var index []Post
	if err := json.Unmarshal(raw, &index); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	for i := range index {
		if index[i].Tags == nil {
			index[i].Tags = []string{}
		}
	}
	if index == nil {
		index = []Post{}
	}
	return index, nil
}
