package posts

import (
	"path"
	"strings"
	"time"
)

// DateLayout is the persisted calendar date format of Post.Date.
const DateLayout = "2006-01-02"

// Post is a published entry of the post index. Posts are created once and
// never mutated.
type Post struct {
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	Author      string   `json:"author"`
	Date        string   `json:"date"`
	URL         string   `json:"url"`
	Cover       string   `json:"cover"`
	Thumbnail   string   `json:"thumbnail,omitempty"`
	Tags        []string `json:"tags"`
	Template    Template `json:"template,omitempty"`
}

// PublishedAt parses Date, returning the zero time for malformed values.
func (p Post) PublishedAt() time.Time {
	t, err := time.Parse(DateLayout, p.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}

// FormatDate renders t as a post date in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// PostURL derives the public path of the page generated for slug.
func PostURL(prefix, slug string) string {
	prefix = "/" + strings.Trim(strings.TrimSpace(prefix), "/")
	return path.Join(prefix, slug+".html")
}

// ParseTags splits comma separated tags, trimming each token and dropping
// empty ones. The result is never nil.
func ParseTags(raw string) []string {
	tags := []string{}
	for _, token := range strings.Split(raw, ",") {
		if token = strings.TrimSpace(token); token != "" {
			tags = append(tags, token)
		}
	}
	return tags
}
