package generator

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-postpress/internal/posts"
)

func TestBuildFeedOrdersNewestFirst(t *testing.T) {
	index := []posts.Post{
		{Title: "Old", Slug: "old", URL: "/blog/posts/old.html", Date: "2024-01-01", Author: "Ann"},
		{Title: "New & Shiny", Slug: "new", URL: "/blog/posts/new.html", Date: "2024-05-01", Tags: []string{"go"}},
	}
	out := BuildFeed(FeedMetadata{
		BaseURL:     "https://on-track.in",
		Title:       "Ontrack Blog",
		GeneratedAt: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
	}, index)

	if !strings.Contains(out, "<title>Ontrack Blog</title>") {
		t.Fatalf("expected channel title: %s", out)
	}
	newIdx := strings.Index(out, "New &amp; Shiny")
	oldIdx := strings.Index(out, "<title>Old</title>")
	if newIdx < 0 || oldIdx < 0 || newIdx > oldIdx {
		t.Fatalf("expected newest item first: %s", out)
	}
	if !strings.Contains(out, "<link>https://on-track.in/blog/posts/new.html</link>") {
		t.Fatalf("expected absolute item link: %s", out)
	}
	if !strings.Contains(out, "<category>go</category>") {
		t.Fatalf("expected category element: %s", out)
	}
	if !strings.Contains(out, "<dc:creator>Ann</dc:creator>") {
		t.Fatalf("expected author element: %s", out)
	}
}

func TestBuildFeedCapsItems(t *testing.T) {
	index := make([]posts.Post, 0, maxFeedItems+5)
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < maxFeedItems+5; i++ {
		slug := fmt.Sprintf("post-%d", i)
		index = append(index, posts.Post{
			Title: slug,
			Slug:  slug,
			URL:   "/blog/posts/" + slug + ".html",
			Date:  posts.FormatDate(start.AddDate(0, 0, i)),
		})
	}
	out := BuildFeed(FeedMetadata{BaseURL: "https://x.test"}, index)
	if got := strings.Count(out, "<item>"); got != maxFeedItems {
		t.Fatalf("expected %d items, got %d", maxFeedItems, got)
	}
	if strings.Contains(out, "<title>post-0</title>") {
		t.Fatalf("expected oldest posts to be dropped")
	}
}

func TestBuildFeedSameDayFollowsIndexOrder(t *testing.T) {
	index := []posts.Post{
		{Title: "Morning", Slug: "morning", URL: "/blog/posts/morning.html", Date: "2024-05-01"},
		{Title: "Evening", Slug: "evening", URL: "/blog/posts/evening.html", Date: "2024-05-01"},
	}
	out := BuildFeed(FeedMetadata{BaseURL: "https://on-track.in"}, index)
	morning := strings.Index(out, "<title>Morning</title>")
	evening := strings.Index(out, "<title>Evening</title>")
	if morning < 0 || evening < 0 || evening > morning {
		t.Fatalf("expected the later post first: %s", out)
	}
}
