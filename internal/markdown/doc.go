// Package markdown renders post bodies with goldmark, splits YAML frontmatter
// off submitted documents and discovers Markdown files for bulk imports.
package markdown
