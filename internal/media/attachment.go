package media

import (
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-slug"
)

// Upload fields accepted alongside a post.
const (
	FieldCover     = "cover"
	FieldThumbnail = "thumbnail"
)

const fallbackStem = "upload"

// Attachment is an uploaded file waiting to be stored.
type Attachment struct {
	Field    string
	Filename string
	Content  io.Reader
}

// Stored describes an attachment after it has been written.
type Stored struct {
	Field string `json:"field"`
	Path  string `json:"path"`
	URL   string `json:"url"`
	Size  int64  `json:"size"`
}

// Fields lists the attachment fields in the order they are processed.
func Fields() []string {
	return []string{FieldCover, FieldThumbnail}
}

// KnownField reports whether field is an accepted upload field.
func KnownField(field string) bool {
	switch field {
	case FieldCover, FieldThumbnail:
		return true
	default:
		return false
	}
}

// StoredName builds the name an upload is stored under: the millisecond
// timestamp, a normalized stem and the lowercase extension.
func StoredName(original string, at time.Time) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(original), "\\", "/"))
	if base == "." || base == "/" {
		base = ""
	}
	ext := strings.ToLower(path.Ext(base))
	stem := strings.TrimSuffix(base, path.Ext(base))

	normalized, err := slug.Normalize(stem)
	if err != nil || normalized == "" {
		normalized = fallbackStem
	}
	if !validExtension(ext) {
		ext = ""
	}
	return strconv.FormatInt(at.UnixMilli(), 10) + "-" + normalized + ext
}

func validExtension(ext string) bool {
	if len(ext) < 2 || len(ext) > 10 {
		return false
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
