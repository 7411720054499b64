package markdown

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-postpress/pkg/interfaces"
)

// LoaderConfig configures how Markdown files are discovered within a filesystem.
type LoaderConfig struct {
	// Pattern limits discovered files to those matching the glob (defaults to "*.md").
	Pattern string
	// Recursive controls whether sub-directories are traversed.
	Recursive bool
}

// Document is a Markdown file read from disk with its frontmatter split off.
// Source keeps the untouched file contents.
type Document struct {
	Path        string
	FrontMatter interfaces.FrontMatter
	Body        string
	Source      string
	ModTime     time.Time
}

// Loader discovers and reads Markdown documents from an fs.FS.
type Loader struct {
	fs        fs.FS
	pattern   string
	recursive bool
}

// NewLoader constructs a Loader using the provided filesystem and configuration.
func NewLoader(filesystem fs.FS, cfg LoaderConfig) *Loader {
	pattern := strings.TrimSpace(cfg.Pattern)
	if pattern == "" {
		pattern = "*.md"
	}
	return &Loader{
		fs:        filesystem,
		pattern:   pattern,
		recursive: cfg.Recursive,
	}
}

// LoadFile reads and splits a single document. name is slash separated and
// relative to the loader filesystem.
func (l *Loader) LoadFile(ctx context.Context, name string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := fs.ReadFile(l.fs, name)
	if err != nil {
		return nil, fmt.Errorf("markdown loader read %s: %w", name, err)
	}
	info, err := fs.Stat(l.fs, name)
	if err != nil {
		return nil, fmt.Errorf("markdown loader stat %s: %w", name, err)
	}

	source := string(data)
	fm, body := SplitFrontMatter(source)
	return &Document{
		Path:        name,
		FrontMatter: fm,
		Body:        body,
		Source:      source,
		ModTime:     info.ModTime(),
	}, nil
}

// LoadDirectory returns every matching document under dir, ordered by
// modification time and then path so older posts are published first.
func (l *Loader) LoadDirectory(ctx context.Context, dir string) ([]*Document, error) {
	root := path.Clean(strings.TrimPrefix(dir, "/"))
	if root == "" {
		root = "."
	}

	var docs []*Document
	walkErr := fs.WalkDir(l.fs, root, func(current string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if current != root && !l.recursive {
				return fs.SkipDir
			}
			return nil
		}
		if !l.matches(current) {
			return nil
		}
		doc, err := l.LoadFile(ctx, current)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.SliceStable(docs, func(i, j int) bool {
		if !docs[i].ModTime.Equal(docs[j].ModTime) {
			return docs[i].ModTime.Before(docs[j].ModTime)
		}
		return docs[i].Path < docs[j].Path
	})
	return docs, nil
}

func (l *Loader) matches(name string) bool {
	pattern := strings.ReplaceAll(l.pattern, "**/", "")
	target := path.Base(name)
	if strings.Contains(pattern, "/") {
		target = name
	}
	match, err := path.Match(pattern, target)
	return err == nil && match
}
