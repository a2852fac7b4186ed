package main

import (
	"strings"
	"testing"

	"prose-server/internal/types"
)

func structuredTable() *types.Block {
	return &types.Block{
		Kind: "table",
		Children: []*types.Block{
			{Kind: "table_row", Children: []*types.Block{
				{Kind: "table_cell", Content: "Name"},
				{Kind: "table_cell", Content: "Role"},
			}},
			{Kind: "table_row", Children: []*types.Block{
				{Kind: "table_cell", Content: "gopher", Errors: []types.AnalysisError{
					{Kind: "spelling", Message: "Possible typo"},
				}},
				{Kind: "table_cell", Content: "mascot"},
			}},
		},
	}
}

func TestRenderStructuredTable(t *testing.T) {
	r := NewBlockRenderer(viewContext())
	got := r.RenderBlocks([]*types.Block{structuredTable()})

	for _, want := range []string{
		"BLOCK 1: TABLE",
		"<table", "<thead>", "<tbody>",
		"<th", "Name", "Role",
		"<td", "gopher", "mascot",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("table missing %q in:\n%s", want, got)
		}
	}

	// The first row renders as the header.
	theadEnd := strings.Index(got, "</thead>")
	nameIdx := strings.Index(got, "Name")
	gopherIdx := strings.Index(got, "gopher")
	if nameIdx > theadEnd || gopherIdx < theadEnd {
		t.Error("header / body row split is wrong")
	}
}

func TestTableCellIssueLabels(t *testing.T) {
	r := NewBlockRenderer(viewContext())
	got := r.RenderBlocks([]*types.Block{structuredTable()})

	for _, want := range []string{
		"Cell-Level Issues (1)",
		"Row 2, Column 1",
		"Possible typo",
		"cell-error-dot",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("cell issue section missing %q in:\n%s", want, got)
		}
	}
}

func TestTableCellSpans(t *testing.T) {
	r := NewBlockRenderer(viewContext())
	got := r.RenderBlocks([]*types.Block{
		{Kind: "table", Children: []*types.Block{
			{Kind: "table_row", Children: []*types.Block{
				{Kind: "table_cell", Content: "wide", Attributes: map[string]any{"colspan": float64(2)}},
			}},
			{Kind: "table_row", Children: []*types.Block{
				{Kind: "table_cell", Content: "tall", Attributes: map[string]any{"rowspan": float64(3)}},
			}},
		}},
	})
	if !strings.Contains(got, `colspan="2"`) {
		t.Errorf("colspan attribute missing:\n%s", got)
	}
	if !strings.Contains(got, `rowspan="3"`) {
		t.Errorf("rowspan attribute missing:\n%s", got)
	}
}

func TestParseAsciiDocTable(t *testing.T) {
	raw := "|===\n|Name |Role\n|gopher |mascot\ncontinued\n|===\n"
	rows := parseAsciiDocTable(raw)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if len(rows[0]) != 2 || rows[0][0].content != "Name" || rows[0][1].content != "Role" {
		t.Errorf("header row = %+v", rows[0])
	}
	// The continuation line appends to the last cell of the current row.
	if rows[1][1].content != "mascot continued" {
		t.Errorf("continuation handling: got %q, want %q", rows[1][1].content, "mascot continued")
	}
}

func TestRawTableShapeWinsOverChildren(t *testing.T) {
	block := structuredTable()
	block.RawContent = "|===\n|Only |Header\n|==="
	rows := parseTableRows(block)
	if len(rows) != 1 || rows[0][0].content != "Only" {
		t.Errorf("raw shape did not win: %+v", rows)
	}
}

func TestTableFallbackToPreformatted(t *testing.T) {
	r := NewBlockRenderer(viewContext())
	got := r.RenderBlocks([]*types.Block{
		{Kind: "table", Content: "col1\tcol2\nval1\tval2"},
	})
	if !strings.Contains(got, `<pre class="block-content">`) {
		t.Errorf("fallback dump missing:\n%s", got)
	}
	if strings.Contains(got, "<table") {
		t.Error("fallback still rendered a table element")
	}
}

// Cell content goes through the inline whitelist pass, not plain escaping.
func TestTableCellInlineMarkup(t *testing.T) {
	r := NewBlockRenderer(viewContext())
	got := r.RenderBlocks([]*types.Block{
		{Kind: "table", Children: []*types.Block{
			{Kind: "table_row", Children: []*types.Block{
				{Kind: "table_cell", Content: "run <code>make</code>"},
				{Kind: "table_cell", Content: "<script>x</script>"},
			}},
		}},
	})
	if !strings.Contains(got, "<code>make</code>") {
		t.Errorf("whitelisted inline tag stayed escaped:\n%s", got)
	}
	if strings.Contains(got, "<script>") {
		t.Error("non-whitelisted tag reached the page")
	}
}
