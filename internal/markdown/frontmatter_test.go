package markdown

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseFrontMatter(t *testing.T) {
	source := []byte(`---
title: Sample Post
description: A short summary
author: Jane
template: 2
tags: [go, " web "]
series: basics
---
# Sample Post

Body text.
`)

	fm, body, err := ParseFrontMatter(source)
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if fm.Title != "Sample Post" || fm.Description != "A short summary" || fm.Author != "Jane" {
		t.Fatalf("unexpected frontmatter %#v", fm)
	}
	if fm.Template != "2" {
		t.Fatalf("expected template 2, got %q", fm.Template)
	}
	if !reflect.DeepEqual(fm.Tags, []string{"go", "web"}) {
		t.Fatalf("unexpected tags %#v", fm.Tags)
	}
	if fm.Custom["series"] != "basics" {
		t.Fatalf("expected custom keys to be kept, got %#v", fm.Custom)
	}
	if !strings.Contains(string(body), "# Sample Post") || strings.Contains(string(body), "title:") {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestParseFrontMatterAcceptsCommaSeparatedTags(t *testing.T) {
	fm, _, err := ParseFrontMatter([]byte("---\ntags: \"go, tools,,\"\n---\nbody\n"))
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if !reflect.DeepEqual(fm.Tags, []string{"go", "tools"}) {
		t.Fatalf("unexpected tags %#v", fm.Tags)
	}
}

func TestSplitFrontMatterWithoutBlock(t *testing.T) {
	fm, body := SplitFrontMatter("# Hi")
	if !fm.IsZero() {
		t.Fatalf("expected zero frontmatter, got %#v", fm)
	}
	if body != "# Hi" {
		t.Fatalf("expected body untouched, got %q", body)
	}
}

func TestSplitFrontMatterKeepsKeylessBlock(t *testing.T) {
	for _, source := range []string{
		"---\n# Chapter One\n---\nBody text",
		"---\n---\nBody text",
	} {
		fm, body := SplitFrontMatter(source)
		if !fm.IsZero() {
			t.Fatalf("expected zero frontmatter for %q, got %#v", source, fm)
		}
		if body != source {
			t.Fatalf("expected source kept verbatim, got %q", body)
		}
	}
}
