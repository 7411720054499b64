package interfaces

// MarkdownParser converts Markdown to HTML. Implementations must be safe for
// concurrent use; the publish pipeline treats them as pure functions.
type MarkdownParser interface {
	// Parse converts Markdown into HTML using the parser's default settings.
	Parse(markdown []byte) ([]byte, error)
	// ParseWithOptions converts Markdown into HTML using the supplied overrides.
	ParseWithOptions(markdown []byte, opts ParseOptions) ([]byte, error)
}

// ParseOptions customises Markdown parsing behaviour, keeping option names
// readable for configuration unmarshalling and CLI flags.
type ParseOptions struct {
	Extensions []string
	Sanitize   bool
	HardWraps  bool
	SafeMode   bool
}

// FrontMatter models the optional YAML block at the top of a submitted
// Markdown document. Values only fill request fields the caller left empty.
type FrontMatter struct {
	Title       string         `yaml:"title" json:"title"`
	Description string         `yaml:"description" json:"description"`
	Author      string         `yaml:"author" json:"author"`
	Template    string         `yaml:"template" json:"template"`
	Tags        []string       `yaml:"tags" json:"tags"`
	Custom      map[string]any `yaml:",inline" json:"custom,omitempty"`
}

// IsZero reports whether no recognised frontmatter key was present.
func (f FrontMatter) IsZero() bool {
	return f.Title == "" && f.Description == "" && f.Author == "" && f.Template == "" && len(f.Tags) == 0
}
