package main

import (
	"strings"
	"testing"

	"prose-server/internal/types"
)

// viewContext is a render context with widgets disabled, for view tests that
// only care about block markup.
func viewContext() *renderContext {
	return &renderContext{reportID: "r1"}
}

func TestRenderBlocksEmpty(t *testing.T) {
	r := NewBlockRenderer(viewContext())
	got := r.RenderBlocks(nil)
	if !strings.Contains(got, "empty-state") || !strings.Contains(got, "No document blocks") {
		t.Errorf("empty tree did not render the empty state: %q", got)
	}
}

func TestRenderCleanParagraph(t *testing.T) {
	r := NewBlockRenderer(viewContext())
	got := r.RenderBlocks([]*types.Block{
		{Kind: "paragraph", Content: "A plain sentence."},
	})

	for _, want := range []string{
		"BLOCK 1: PARAGRAPH",
		`class="status-chip chip-clean"`,
		">Clean<",
		"A plain sentence.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("paragraph card missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "chip-issues") {
		t.Error("clean paragraph rendered an issue chip")
	}
}

func TestRenderListWithItemError(t *testing.T) {
	r := NewBlockRenderer(viewContext())
	got := r.RenderBlocks([]*types.Block{
		{
			Kind: "olist",
			Children: []*types.Block{
				{Kind: "list_item", Content: "First step"},
				{Kind: "list_item", Content: "Second step", Errors: []types.AnalysisError{
					{Kind: "grammar", Message: "Tense shift", ConfidenceScore: floatPtr(0.8)},
				}},
			},
		},
	})

	for _, want := range []string{
		"BLOCK 1: ORDERED LIST",
		"1 Issue(s)",
		"<ol",
		"First step",
		"Second step",
		"Tense shift",
		">80%<",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("list card missing %q in:\n%s", want, got)
		}
	}
}

// Two renders of the same tree must produce byte-identical markup.
func TestRenderBlocksDeterministic(t *testing.T) {
	blocks := []*types.Block{
		{
			Kind:  "section",
			Title: "Install",
			Children: []*types.Block{
				{Kind: "paragraph", Content: "Download the package.", Errors: []types.AnalysisError{
					{Kind: "passive_voice", Message: "Name the actor", ConfidenceScore: floatPtr(0.9)},
				}},
				{Kind: "ulist", Children: []*types.Block{
					{Kind: "list_item", Content: "Unpack"},
					{Kind: "list_item", Content: "Run the installer"},
				}},
			},
		},
		{Kind: "paragraph", Content: "Done."},
	}

	first := NewBlockRenderer(viewContext()).RenderBlocks(blocks)
	second := NewBlockRenderer(viewContext()).RenderBlocks(blocks)
	if first != second {
		t.Error("two renders of the same tree differ")
	}
}

// Child-only kinds at the top level render nothing and must not consume a
// sequence number.
func TestSequenceSkipsEmptyDispatches(t *testing.T) {
	r := NewBlockRenderer(viewContext())
	got := r.RenderBlocks([]*types.Block{
		{Kind: "paragraph", Content: "one"},
		{Kind: "list_item", Content: "stray item"},
		{Kind: "paragraph", Content: "two"},
	})

	if !strings.Contains(got, "BLOCK 1: PARAGRAPH") || !strings.Contains(got, "BLOCK 2: PARAGRAPH") {
		t.Errorf("expected paragraphs numbered 1 and 2:\n%s", got)
	}
	if strings.Contains(got, "BLOCK 3") {
		t.Error("stray child-only block consumed a sequence number")
	}
}

func TestSectionAggregatesAndRestartsNumbering(t *testing.T) {
	r := NewBlockRenderer(viewContext())
	section := &types.Block{
		Kind:    "section",
		Content: "Installation",
		Children: []*types.Block{
			{Kind: "paragraph", Content: "p1", Errors: []types.AnalysisError{{Kind: "style", Message: "a"}}},
			{Kind: "paragraph", Content: "p2", Errors: []types.AnalysisError{{Kind: "grammar", Message: "b"}}},
		},
	}
	got := r.RenderBlocks([]*types.Block{
		{Kind: "paragraph", Content: "intro"},
		section,
	})

	if !strings.Contains(got, "BLOCK 2: SECTION") {
		t.Errorf("section not numbered 2:\n%s", got)
	}
	// Children restart at 1 inside the section.
	if !strings.Contains(got, "BLOCK 1: PARAGRAPH") {
		t.Error("section child numbering did not restart at 1")
	}
	if got := r.IssueCount(section); got != 2 {
		t.Errorf("section IssueCount = %d, want 2", got)
	}
	if !strings.Contains(got, "2 Issue(s)") {
		t.Errorf("section chip does not aggregate child issues:\n%s", got)
	}
}

func TestSkippedBlock(t *testing.T) {
	r := NewBlockRenderer(viewContext())
	block := &types.Block{
		Kind:               "listing",
		Content:            "func main() {}",
		ShouldSkipAnalysis: true,
		Errors:             []types.AnalysisError{{Kind: "style", Message: "should not appear"}},
	}
	got := r.RenderBlocks([]*types.Block{block})

	if !strings.Contains(got, "chip-skipped") || !strings.Contains(got, ">Skipped<") {
		t.Errorf("skipped chip missing:\n%s", got)
	}
	if strings.Contains(got, "should not appear") {
		t.Error("skipped block rendered its errors")
	}
	if got := r.IssueCount(block); got != 0 {
		t.Errorf("skipped block IssueCount = %d, want 0", got)
	}
}

// A skipped container contributes nothing to an ancestor's aggregate, even
// when its descendants carry errors.
func TestSkippedSubtreeExcludedFromAggregate(t *testing.T) {
	r := NewBlockRenderer(viewContext())
	section := &types.Block{
		Kind: "section",
		Children: []*types.Block{
			{Kind: "paragraph", Errors: []types.AnalysisError{{Kind: "style"}}},
			{
				Kind:               "listing",
				ShouldSkipAnalysis: true,
				Children: []*types.Block{
					{Kind: "paragraph", Errors: []types.AnalysisError{{Kind: "style"}, {Kind: "grammar"}}},
				},
			},
		},
	}
	if got := r.IssueCount(section); got != 1 {
		t.Errorf("IssueCount = %d, want 1", got)
	}
}

func TestHeadingLevelClamp(t *testing.T) {
	r := NewBlockRenderer(viewContext())
	testCases := []struct {
		level int
		want  string
	}{
		{0, "<h2"},
		{3, "<h3"},
		{9, "<h6"},
	}
	for _, tc := range testCases {
		got := r.RenderBlocks([]*types.Block{{Kind: "heading", Content: "Title", Level: tc.level}})
		if !strings.Contains(got, tc.want) {
			t.Errorf("level %d: want %q in:\n%s", tc.level, tc.want, got)
		}
	}
}

func TestAdmonitionCard(t *testing.T) {
	r := NewBlockRenderer(viewContext())
	got := r.RenderBlocks([]*types.Block{
		{Kind: "admonition", AdmonitionType: "warning", Content: "Back up first."},
	})
	for _, want := range []string{"ADMONITION: WARNING", "admonition-warning", "WARNING", "Back up first."} {
		if !strings.Contains(got, want) {
			t.Errorf("admonition card missing %q in:\n%s", want, got)
		}
	}
}

func TestBlockContentIsEscaped(t *testing.T) {
	r := NewBlockRenderer(viewContext())
	got := r.RenderBlocks([]*types.Block{
		{Kind: "paragraph", Content: `<script>alert("x")</script>`},
	})
	if strings.Contains(got, "<script>") {
		t.Error("block content reached the page unescaped")
	}
	if !strings.Contains(got, "&lt;script&gt;") {
		t.Errorf("escaped content missing:\n%s", got)
	}
}

func TestNormalizeBlockKindAliases(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{"olist", "ordered_list"},
		{"ULIST", "unordered_list"},
		{"dlist", "description_list"},
		{"Paragraph", "paragraph"},
		{"custom_kind", "custom_kind"},
	}
	for _, tc := range testCases {
		if got := NormalizeBlockKind(tc.in); got != tc.want {
			t.Errorf("NormalizeBlockKind(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBlockDisplayName(t *testing.T) {
	testCases := []struct {
		name  string
		block types.Block
		want  string
	}{
		{"heading_with_level", types.Block{Kind: "heading", Level: 2}, "HEADING (Level 2)"},
		{"heading_without_level", types.Block{Kind: "heading"}, "HEADING"},
		{"admonition", types.Block{Kind: "admonition", AdmonitionType: "note"}, "ADMONITION: NOTE"},
		{"unknown_falls_back", types.Block{Kind: "mystery"}, "PARAGRAPH"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := BlockDisplayName(&tc.block); got != tc.want {
				t.Errorf("BlockDisplayName = %q, want %q", got, tc.want)
			}
		})
	}
}
