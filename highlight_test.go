package main

import (
	"strings"
	"testing"

	"prose-server/internal/types"
)

func TestHighlightDisjointSegments(t *testing.T) {
	content := "The quick brown fox jumps over the lazy dog"
	errors := []types.AnalysisError{
		{Kind: "style", Message: "Wordy", TextSegment: "quick brown", Position: intPtr(4)},
		{Kind: "grammar", Message: "Odd phrasing", TextSegment: "lazy dog", Position: intPtr(35)},
	}
	got := HighlightContent(content, errors)

	if n := strings.Count(got, "<mark"); n != 2 {
		t.Fatalf("got %d marks, want 2:\n%s", n, got)
	}
	if strings.Count(got, "</mark>") != 2 {
		t.Errorf("unbalanced marks:\n%s", got)
	}
	for _, want := range []string{`title="Wordy"`, `title="Odd phrasing"`} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
	// Stripping the marks must give back the escaped content.
	stripped := got
	for _, tag := range []string{"</mark>"} {
		stripped = strings.ReplaceAll(stripped, tag, "")
	}
	for strings.Contains(stripped, "<mark") {
		open := strings.Index(stripped, "<mark")
		close := strings.Index(stripped[open:], ">")
		stripped = stripped[:open] + stripped[open+close+1:]
	}
	if stripped != EscapeHTML(content) {
		t.Errorf("marked content diverged from the original:\n%q\n%q", stripped, EscapeHTML(content))
	}
}

func TestHighlightPartialOverlapDropped(t *testing.T) {
	content := "alpha beta gamma"
	errors := []types.AnalysisError{
		{Kind: "style", Message: "first", TextSegment: "alpha beta", Position: intPtr(0)},
		{Kind: "style", Message: "second", TextSegment: "beta gamma", Position: intPtr(6)},
	}
	got := HighlightContent(content, errors)

	// Higher position wins (right-to-left processing); the partial overlap is
	// dropped rather than producing broken nesting.
	if n := strings.Count(got, "<mark"); n != 1 {
		t.Fatalf("got %d marks, want 1:\n%s", n, got)
	}
	if !strings.Contains(got, `title="second"`) {
		t.Errorf("wrong span survived:\n%s", got)
	}
}

func TestHighlightNestedEnclosure(t *testing.T) {
	content := "alpha beta gamma"
	errors := []types.AnalysisError{
		{Kind: "style", Message: "outer", TextSegment: "alpha beta gamma", Position: intPtr(0)},
		{Kind: "grammar", Message: "inner", TextSegment: "beta", Position: intPtr(6)},
	}
	got := HighlightContent(content, errors)

	if n := strings.Count(got, "<mark"); n != 2 {
		t.Fatalf("got %d marks, want 2:\n%s", n, got)
	}
	outerIdx := strings.Index(got, `title="outer"`)
	innerIdx := strings.Index(got, `title="inner"`)
	if outerIdx < 0 || innerIdx < 0 || outerIdx > innerIdx {
		t.Errorf("outer mark must open before the inner one:\n%s", got)
	}
	if !strings.HasSuffix(got, "</mark>") {
		t.Errorf("outer mark must close last:\n%s", got)
	}
}

func TestHighlightSegmentNotFound(t *testing.T) {
	content := "nothing to see here"
	errors := []types.AnalysisError{
		{Kind: "style", Message: "m", TextSegment: "absent phrase", Position: intPtr(0)},
	}
	got := HighlightContent(content, errors)
	if got != EscapeHTML(content) {
		t.Errorf("missing segment should leave content untouched: %q", got)
	}
}

// Errors without both a segment and a position never produce marks.
func TestHighlightRequiresSegmentAndPosition(t *testing.T) {
	content := "some text with a segment"
	errors := []types.AnalysisError{
		{Kind: "style", Message: "no position", TextSegment: "segment"},
		{Kind: "style", Message: "no segment", Position: intPtr(0)},
	}
	got := HighlightContent(content, errors)
	if strings.Contains(got, "<mark") {
		t.Errorf("unanchored errors produced marks:\n%s", got)
	}
}

func TestHighlightEscapesContentAndSegment(t *testing.T) {
	content := `use <b>bold</b> sparingly`
	errors := []types.AnalysisError{
		{Kind: "style", Message: `avoid "bold" tags`, TextSegment: "<b>bold</b>", Position: intPtr(4)},
	}
	got := HighlightContent(content, errors)

	if strings.Contains(got, "<b>") {
		t.Error("raw markup from content leaked into the page")
	}
	if !strings.Contains(got, "<mark") {
		t.Fatalf("escaped segment was not matched:\n%s", got)
	}
	if !strings.Contains(got, "&lt;b&gt;bold&lt;/b&gt;") {
		t.Errorf("segment not present in escaped form:\n%s", got)
	}
	// The message lands in a title attribute and must not break out of it.
	if strings.Contains(got, `title="avoid "bold" tags"`) {
		t.Error("unescaped quotes in the title attribute")
	}
}
