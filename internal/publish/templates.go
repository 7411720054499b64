package publish

import (
	"context"
	"path"
	"strings"

	"github.com/goliatone/go-postpress/internal/posts"
)

// DefaultTemplateFiles maps each template variant onto its file name.
func DefaultTemplateFiles() map[posts.Template]string {
	return map[posts.Template]string{
		posts.TemplatePrimary:   "blog-template.html",
		posts.TemplateSecondary: "blog-template-2.html",
		posts.TemplateTertiary:  "blog-template-3.html",
	}
}

type templateSource struct {
	reader interface {
		ReadFile(ctx context.Context, rel string) ([]byte, error)
	}
	dir   string
	files map[posts.Template]string
}

func (t templateSource) path(tpl posts.Template) string {
	name := strings.TrimSpace(t.files[tpl])
	if name == "" {
		name = DefaultTemplateFiles()[tpl]
	}
	if name == "" {
		name = DefaultTemplateFiles()[posts.TemplatePrimary]
	}
	return path.Join(t.dir, name)
}

// load reads the template text for tpl. Template files are supplied by the
// site; a missing file is a storage failure.
func (t templateSource) load(ctx context.Context, tpl posts.Template) (string, error) {
	rel := t.path(tpl)
	raw, err := t.reader.ReadFile(ctx, rel)
	if err != nil {
		return "", posts.NewStorageError(err, "read template "+rel)
	}
	return string(raw), nil
}
