package main

import (
	"strings"
	"testing"

	"prose-server/internal/types"
)

func TestListElementByKind(t *testing.T) {
	testCases := []struct {
		kind string
		want string
	}{
		{"ordered_list", "<ol"},
		{"olist", "<ol"},
		{"unordered_list", "<ul"},
		{"ulist", "<ul"},
	}
	for _, tc := range testCases {
		t.Run(tc.kind, func(t *testing.T) {
			r := NewBlockRenderer(viewContext())
			got := r.RenderBlocks([]*types.Block{
				{Kind: tc.kind, Children: []*types.Block{{Kind: "list_item", Content: "item"}}},
			})
			if !strings.Contains(got, tc.want) {
				t.Errorf("kind %q: want %q in:\n%s", tc.kind, tc.want, got)
			}
		})
	}
}

func TestListTitle(t *testing.T) {
	r := NewBlockRenderer(viewContext())
	got := r.RenderBlocks([]*types.Block{
		{Kind: "ulist", Children: []*types.Block{
			{Kind: "list_title", Content: "Prerequisites"},
			{Kind: "list_item", Content: "Go 1.25"},
		}},
	})
	if !strings.Contains(got, `class="list-title"`) || !strings.Contains(got, "Prerequisites") {
		t.Errorf("list title missing:\n%s", got)
	}
}

func TestNestedListLevels(t *testing.T) {
	r := NewBlockRenderer(viewContext())
	got := r.RenderBlocks([]*types.Block{
		{Kind: "olist", Children: []*types.Block{
			{Kind: "list_item", Content: "outer", Children: []*types.Block{
				{Kind: "ulist", Children: []*types.Block{
					{Kind: "list_item", Content: "inner"},
				}},
			}},
		}},
	})
	if !strings.Contains(got, "list-level-0") || !strings.Contains(got, "list-level-1") {
		t.Errorf("nesting levels missing:\n%s", got)
	}
	// The nested list renders inside its parent item.
	liOpen := strings.Index(got, "outer")
	inner := strings.Index(got, "inner")
	if liOpen < 0 || inner < liOpen {
		t.Errorf("nested list did not render after its parent item:\n%s", got)
	}
}

// Structure-kind errors on the list node go to the dedicated footer; content
// errors keep the plain footer.
func TestListStructureErrorSplit(t *testing.T) {
	r := NewBlockRenderer(viewContext())
	got := r.RenderBlocks([]*types.Block{
		{
			Kind: "ulist",
			Errors: []types.AnalysisError{
				{Kind: "lists", Message: "Inconsistent markers"},
				{Kind: "grammar", Message: "Bad tense"},
			},
			Children: []*types.Block{{Kind: "list_item", Content: "item"}},
		},
	})

	structIdx := strings.Index(got, "List Structure Issues")
	if structIdx < 0 {
		t.Fatalf("structural footer missing:\n%s", got)
	}
	if markerIdx := strings.Index(got, "Inconsistent markers"); markerIdx < structIdx {
		t.Error("structural error rendered before the structural footer heading")
	}
	if tenseIdx := strings.Index(got, "Bad tense"); tenseIdx > structIdx {
		t.Error("content error rendered inside the structural footer")
	}
}

func TestDescriptionListFromItemFields(t *testing.T) {
	r := NewBlockRenderer(viewContext())
	got := r.RenderBlocks([]*types.Block{
		{Kind: "dlist", Children: []*types.Block{
			{Kind: "description_list_item", Term: "CPU", Description: "Central processing unit"},
			{Kind: "description_list_item", Term: "RAM", Description: "Working memory"},
		}},
	})

	for _, want := range []string{
		"BLOCK 1: DESCRIPTION LIST",
		"<dl", "<dt", "<dd",
		"CPU", "Central processing unit",
		"RAM", "Working memory",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("dlist missing %q in:\n%s", want, got)
		}
	}
}

// Term and description can arrive as attributed child blocks; their errors
// attach to the matching dt / dd.
func TestDescriptionListFromAttributedChildren(t *testing.T) {
	r := NewBlockRenderer(viewContext())
	got := r.RenderBlocks([]*types.Block{
		{Kind: "dlist", Children: []*types.Block{
			{Kind: "description_list_item", Children: []*types.Block{
				{
					Kind:       "paragraph",
					Content:    "API",
					Attributes: map[string]any{"is_dlist_term": true},
					Errors:     []types.AnalysisError{{Kind: "terminology", Message: "Expand on first use"}},
				},
				{
					Kind:       "paragraph",
					Content:    "Application programming interface",
					Attributes: map[string]any{"is_dlist_description": true},
					Errors:     []types.AnalysisError{{Kind: "style", Message: "Wordy"}},
				},
			}},
		}},
	})

	dtIdx := strings.Index(got, "<dt")
	ddIdx := strings.Index(got, "<dd")
	termErr := strings.Index(got, "Expand on first use")
	descErr := strings.Index(got, "Wordy")
	if dtIdx < 0 || ddIdx < 0 || termErr < 0 || descErr < 0 {
		t.Fatalf("attributed dlist parts missing:\n%s", got)
	}
	if !(dtIdx < termErr && termErr < ddIdx) {
		t.Error("term error did not render inside the dt")
	}
	if descErr < ddIdx {
		t.Error("description error did not render inside the dd")
	}
}

// Errors on the item node itself cannot be attributed to term or description
// and surface as structure issues.
func TestDescriptionListItemErrorsAreStructural(t *testing.T) {
	r := NewBlockRenderer(viewContext())
	got := r.RenderBlocks([]*types.Block{
		{Kind: "dlist", Children: []*types.Block{
			{
				Kind:   "description_list_item",
				Term:   "X",
				Errors: []types.AnalysisError{{Kind: "structure", Message: "Missing description"}},
			},
		}},
	})
	structIdx := strings.Index(got, "List Structure Issues")
	errIdx := strings.Index(got, "Missing description")
	if structIdx < 0 || errIdx < structIdx {
		t.Errorf("item-level error not in the structural footer:\n%s", got)
	}
}
