package posts

import "strings"

// Slugify lower-cases title, collapses every run of characters outside
// [a-z0-9] into a single hyphen and strips the leading/trailing hyphen. The
// result may be empty; callers decide whether that is acceptable.
func Slugify(title string) string {
	lower := strings.ToLower(title)

	var b strings.Builder
	b.Grow(len(lower))
	pendingHyphen := false
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			if pendingHyphen {
				b.WriteByte('-')
				pendingHyphen = false
			}
			b.WriteByte(c)
			continue
		}
		if b.Len() == 0 {
			// leading run collapses to a hyphen that would be stripped anyway
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}
