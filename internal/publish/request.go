package publish

import (
	"strings"

	"github.com/goliatone/go-postpress/internal/markdown"
	"github.com/goliatone/go-postpress/internal/media"
	"github.com/goliatone/go-postpress/internal/posts"
)

// Request is a single submission to publish.
type Request struct {
	Title       string
	Markdown    string
	Description string
	Author      string
	// Tags is comma separated text.
	Tags string
	// Template is the raw template identifier, e.g. "2".
	Template    string
	Attachments []media.Attachment
}

// Result reports a successful publish.
type Result struct {
	URL      string
	Template posts.Template
	Post     posts.Post
}

func (r Request) validate() error {
	if strings.TrimSpace(r.Title) == "" || strings.TrimSpace(r.Markdown) == "" {
		return posts.NewValidationError("title and markdown are required")
	}
	return nil
}

// withFrontMatter strips a leading frontmatter block from the markdown body
// and lets its values fill the fields the caller left empty.
func (r Request) withFrontMatter() Request {
	fm, body := markdown.SplitFrontMatter(r.Markdown)
	if fm.IsZero() && body == r.Markdown {
		return r
	}
	r.Markdown = body
	if strings.TrimSpace(r.Title) == "" {
		r.Title = fm.Title
	}
	if strings.TrimSpace(r.Description) == "" {
		r.Description = fm.Description
	}
	if strings.TrimSpace(r.Author) == "" {
		r.Author = fm.Author
	}
	if strings.TrimSpace(r.Tags) == "" && len(fm.Tags) > 0 {
		r.Tags = strings.Join(fm.Tags, ",")
	}
	if strings.TrimSpace(r.Template) == "" && fm.Template != "" {
		r.Template = fm.Template
	}
	return r
}
