package generator

import (
	"encoding/xml"
	"strings"

	"github.com/goliatone/go-postpress/internal/posts"
)

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

type sitemapEntry struct {
	Location   string
	LastMod    string
	ChangeFreq string
	Priority   string
}

// BuildSitemap renders the sitemap for index: the site root first, then one
// entry per post in index order. The output depends only on its inputs.
func BuildSitemap(baseURL string, index []posts.Post) string {
	base := normalizeBaseURL(baseURL)

	entries := make([]sitemapEntry, 0, len(index)+1)
	entries = append(entries, sitemapEntry{
		Location:   base + "/",
		ChangeFreq: "daily",
		Priority:   "1.0",
	})
	for _, post := range index {
		entries = append(entries, sitemapEntry{
			Location:   absoluteURL(base, post.URL),
			LastMod:    post.Date,
			ChangeFreq: "monthly",
			Priority:   "0.7",
		})
	}

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<urlset xmlns="` + sitemapNamespace + `">` + "\n")
	for _, entry := range entries {
		builder.WriteString("  <url>\n")
		writeElement(&builder, "loc", entry.Location)
		if entry.LastMod != "" {
			writeElement(&builder, "lastmod", entry.LastMod)
		}
		writeElement(&builder, "changefreq", entry.ChangeFreq)
		writeElement(&builder, "priority", entry.Priority)
		builder.WriteString("  </url>\n")
	}
	builder.WriteString("</urlset>\n")
	return builder.String()
}

func writeElement(builder *strings.Builder, name, value string) {
	builder.WriteString("    <" + name + ">")
	_ = xml.EscapeText(builder, []byte(value))
	builder.WriteString("</" + name + ">\n")
}

func normalizeBaseURL(baseURL string) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = "http://localhost"
	}
	return base
}

func absoluteURL(base, route string) string {
	route = strings.TrimSpace(route)
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	return base + route
}
