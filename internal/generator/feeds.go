package generator

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/goliatone/go-postpress/internal/posts"
)

const maxFeedItems = 100

// FeedMetadata describes the channel wrapping the feed items.
type FeedMetadata struct {
	BaseURL     string
	Title       string
	Description string
	GeneratedAt time.Time
}

type feedItem struct {
	Title       string
	Summary     string
	Link        string
	GUID        string
	Author      string
	Tags        []string
	PublishedAt time.Time
}

// BuildFeed renders an RSS 2.0 document for index in reverse index order and
// capped at the 100 most recently published items.
func BuildFeed(meta FeedMetadata, index []posts.Post) string {
	base := normalizeBaseURL(meta.BaseURL)
	generatedAt := meta.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	items := make([]feedItem, 0, len(index))
	for i := len(index) - 1; i >= 0; i-- {
		post := index[i]
		title := strings.TrimSpace(post.Title)
		if title == "" {
			title = post.Slug
		}
		link := absoluteURL(base, post.URL)
		items = append(items, feedItem{
			Title:       title,
			Summary:     strings.TrimSpace(post.Description),
			Link:        link,
			GUID:        link,
			Author:      strings.TrimSpace(post.Author),
			Tags:        post.Tags,
			PublishedAt: post.PublishedAt(),
		})
	}
	if len(items) > maxFeedItems {
		items = items[:maxFeedItems]
	}

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/">` + "\n")
	builder.WriteString("  <channel>\n")
	builder.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(feedTitle(meta, base))))
	builder.WriteString(fmt.Sprintf("    <link>%s</link>\n", escapeXML(base+"/")))
	builder.WriteString(fmt.Sprintf("    <description>%s</description>\n", escapeXML(feedDescription(meta))))
	builder.WriteString(fmt.Sprintf("    <lastBuildDate>%s</lastBuildDate>\n", generatedAt.UTC().Format(time.RFC1123Z)))
	for _, item := range items {
		pub := item.PublishedAt
		if pub.IsZero() {
			pub = generatedAt
		}
		builder.WriteString("    <item>\n")
		builder.WriteString(fmt.Sprintf("      <title>%s</title>\n", escapeXML(item.Title)))
		builder.WriteString(fmt.Sprintf("      <link>%s</link>\n", escapeXML(item.Link)))
		builder.WriteString(fmt.Sprintf("      <guid isPermaLink=\"true\">%s</guid>\n", escapeXML(item.GUID)))
		builder.WriteString(fmt.Sprintf("      <pubDate>%s</pubDate>\n", pub.UTC().Format(time.RFC1123Z)))
		if item.Author != "" {
			builder.WriteString(fmt.Sprintf("      <dc:creator>%s</dc:creator>\n", escapeXML(item.Author)))
		}
		for _, tag := range item.Tags {
			if strings.TrimSpace(tag) == "" {
				continue
			}
			builder.WriteString(fmt.Sprintf("      <category>%s</category>\n", escapeXML(tag)))
		}
		if item.Summary != "" {
			builder.WriteString(fmt.Sprintf("      <description>%s</description>\n", escapeXML(item.Summary)))
		}
		builder.WriteString("    </item>\n")
	}
	builder.WriteString("  </channel>\n")
	builder.WriteString(`</rss>` + "\n")
	return builder.String()
}

func feedTitle(meta FeedMetadata, base string) string {
	if title := strings.TrimSpace(meta.Title); title != "" {
		return title
	}
	return base
}

func feedDescription(meta FeedMetadata) string {
	if desc := strings.TrimSpace(meta.Description); desc != "" {
		return desc
	}
	return "Latest posts"
}

func escapeXML(value string) string {
	return html.EscapeString(value)
}
