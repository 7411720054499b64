package generator

import (
	"html"
	"slices"
	"strings"
)

// Placeholder names recognised in post templates. A placeholder appears in a
// template as {{name}}.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldDate        = "date"
	FieldAuthor      = "author"
	FieldCover       = "cover"
	FieldThumbnail   = "thumbnail"
	FieldContent     = "content"
	FieldURL         = "url"
	FieldTags        = "tags"
)

// Placeholders lists every recognised placeholder name.
func Placeholders() []string {
	return []string{
		FieldTitle, FieldDescription, FieldDate, FieldAuthor, FieldCover,
		FieldThumbnail, FieldContent, FieldURL, FieldTags,
	}
}

// Token returns the marker written in templates for placeholder name.
func Token(name string) string {
	return "{{" + name + "}}"
}

// RenderTemplate replaces every occurrence of each recognised placeholder
// present in fields with its value. Values are inserted verbatim; fields that
// are not recognised placeholders, and placeholders without a field, are left
// alone.
func RenderTemplate(template string, fields map[string]string) string {
	if len(fields) == 0 || template == "" {
		return template
	}
	pairs := make([]string, 0, len(fields)*2)
	for _, name := range Placeholders() {
		value, ok := fields[name]
		if !ok {
			continue
		}
		pairs = append(pairs, Token(name), value)
	}
	if len(pairs) == 0 {
		return template
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// FormatTags renders tags as a run of escaped tag spans, e.g.
// <span class="tag">go</span><span class="tag">web</span>.
func FormatTags(tags []string) string {
	var b strings.Builder
	for _, tag := range tags {
		b.WriteString(`<span class="tag">`)
		b.WriteString(html.EscapeString(tag))
		b.WriteString(`</span>`)
	}
	return b.String()
}

// IsPlaceholder reports whether name is a recognised placeholder.
func IsPlaceholder(name string) bool {
	return slices.Contains(Placeholders(), name)
}
