package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-postpress/pkg/interfaces"
)

// ParseFrontMatter splits an optional YAML frontmatter block off source. When
// no block is present, or the block holds no keys (a leading thematic break
// pair, comments only), the returned FrontMatter is zero and body equals source.
func ParseFrontMatter(source []byte) (interfaces.FrontMatter, []byte, error) {
	var meta frontMatterEnvelope
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return interfaces.FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	if meta.empty() {
		return interfaces.FrontMatter{}, source, nil
	}
	return interfaces.FrontMatter{
		Title:       strings.TrimSpace(meta.Title),
		Description: strings.TrimSpace(meta.Description),
		Author:      strings.TrimSpace(meta.Author),
		Template:    strings.TrimSpace(meta.Template),
		Tags:        []string(meta.Tags),
		Custom:      meta.Custom,
	}, body, nil
}

// SplitFrontMatter is ParseFrontMatter for callers that prefer to keep going
// with the raw text when the block is malformed.
func SplitFrontMatter(source string) (interfaces.FrontMatter, string) {
	meta, body, err := ParseFrontMatter([]byte(source))
	if err != nil {
		return interfaces.FrontMatter{}, source
	}
	return meta, string(body)
}

type frontMatterEnvelope struct {
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Author      string         `yaml:"author"`
	Template    string         `yaml:"template"`
	Tags        tagList        `yaml:"tags"`
	Custom      map[string]any `yaml:",inline"`
}

func (m frontMatterEnvelope) empty() bool {
	return strings.TrimSpace(m.Title) == "" &&
		strings.TrimSpace(m.Description) == "" &&
		strings.TrimSpace(m.Author) == "" &&
		strings.TrimSpace(m.Template) == "" &&
		len(m.Tags) == 0 &&
		len(m.Custom) == 0
}

// tagList accepts both `tags: [a, b]` and `tags: "a, b"`.
type tagList []string

func (t *tagList) UnmarshalYAML(unmarshal func(any) error) error {
	var list []string
	if err := unmarshal(&list); err == nil {
		*t = cleanTags(list)
		return nil
	}
	var joined string
	if err := unmarshal(&joined); err != nil {
		return err
	}
	*t = cleanTags(strings.Split(joined, ","))
	return nil
}

func cleanTags(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			out = append(out, value)
		}
	}
	return out
}
