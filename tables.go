package main

import (
	"fmt"
	"log/slog"
	"strings"

	"prose-server/internal/types"
)

// tableCell is the parsed form of one cell, whichever input shape it came
// from. Row and column indexes are 0-based positional unless the backend
// supplied row_index / cell_index attributes.
type tableCell struct {
	content string
	colspan int
	rowspan int
	row     int
	col     int
	errors  []types.AnalysisError
}

// renderTableCard renders a table block. Input shapes are tried in order:
// the raw AsciiDoc slice, the structured table_row children, and finally a
// preformatted dump of the block content.
func (r *BlockRenderer) renderTableCard(b *types.Block, seq int) string {
	var sb strings.Builder
	sb.WriteString(r.cardOpen(b, seq))
	sb.WriteString(`<div class="block-card-body">`)

	rows := parseTableRows(b)
	if len(rows) == 0 {
		fmt.Fprintf(&sb, `<pre class="block-content">%s</pre>`, EscapeHTML(b.Content))
	} else {
		sb.WriteString(renderTableGrid(rows))
		sb.WriteString(r.renderCellIssues(rows))
	}

	sb.WriteString(`</div>`)
	sb.WriteString(r.cardFooter(b.Errors, ""))
	sb.WriteString(`</div>`)
	return sb.String()
}

// parseTableRows resolves the table's input shape. Returns nil when only the
// preformatted fallback is possible.
func parseTableRows(b *types.Block) [][]tableCell {
	if strings.Contains(b.RawContent, "|===") {
		if rows := parseAsciiDocTable(b.RawContent); len(rows) > 0 {
			return rows
		}
	}
	return parseStructuredTable(b)
}

// parseAsciiDocTable slices the content between the first two |=== delimiters
// and splits it into rows and cells. Lines beginning with | start a new row;
// continuation lines append to the last cell of the current row with a single
// space. Parse failures are caught and logged; the caller falls back to the
// next shape.
func parseAsciiDocTable(raw string) (rows [][]tableCell) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Warn("asciidoc table parse failed", "panic", rec)
			rows = nil
		}
	}()

	start := strings.Index(raw, "|===")
	if start < 0 {
		return nil
	}
	rest := raw[start+len("|==="):]
	end := strings.Index(rest, "|===")
	if end < 0 {
		end = len(rest)
	}
	body := rest[:end]

	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "|") {
			fields := strings.Split(trimmed, "|")[1:] // drop the leading empty field
			row := make([]tableCell, 0, len(fields))
			for col, field := range fields {
				row = append(row, tableCell{
					content: strings.TrimSpace(field),
					colspan: 1,
					rowspan: 1,
					row:     len(rows),
					col:     col,
				})
			}
			rows = append(rows, row)
			continue
		}
		// Continuation line: belongs to the last cell of the current row.
		if len(rows) > 0 {
			row := rows[len(rows)-1]
			if len(row) > 0 {
				row[len(row)-1].content += " " + trimmed
			}
		}
	}
	return rows
}

// parseStructuredTable reads the nested table_row / table_cell shape.
func parseStructuredTable(b *types.Block) [][]tableCell {
	var rows [][]tableCell
	for _, rowBlock := range b.Children {
		if NormalizeBlockKind(rowBlock.Kind) != "table_row" {
			continue
		}
		rowIdx := len(rows)
		if idx, ok := rowBlock.AttrInt("row_index"); ok {
			rowIdx = idx
		}
		var row []tableCell
		for _, cellBlock := range rowBlock.Children {
			if NormalizeBlockKind(cellBlock.Kind) != "table_cell" {
				continue
			}
			cell := tableCell{
				content: cellBlock.Content,
				colspan: 1,
				rowspan: 1,
				row:     rowIdx,
				col:     len(row),
				errors:  cellBlock.Errors,
			}
			if span, ok := cellBlock.AttrInt("colspan"); ok && span > 1 {
				cell.colspan = span
			}
			if span, ok := cellBlock.AttrInt("rowspan"); ok && span > 1 {
				cell.rowspan = span
			}
			if idx, ok := cellBlock.AttrInt("cell_index"); ok {
				cell.col = idx
			}
			row = append(row, cell)
		}
		rows = append(rows, row)
	}
	return rows
}

// renderTableGrid renders the parsed rows. The first row is the header.
// Cell content goes through the inline whitelist pass, the only place block
// content may emit HTML. Cells with errors get the red dot indicator.
func renderTableGrid(rows [][]tableCell) string {
	var sb strings.Builder
	sb.WriteString(`<table class="block-table">`)
	for i, row := range rows {
		element := "td"
		if i == 0 {
			sb.WriteString(`<thead>`)
			element = "th"
		}
		sb.WriteString(`<tr>`)
		for _, cell := range row {
			fmt.Fprintf(&sb, `<%s class="block-table-cell"`, element)
			if cell.colspan > 1 {
				fmt.Fprintf(&sb, ` colspan="%d"`, cell.colspan)
			}
			if cell.rowspan > 1 {
				fmt.Fprintf(&sb, ` rowspan="%d"`, cell.rowspan)
			}
			sb.WriteString(`>`)
			sb.WriteString(RenderTableCellInline(cell.content))
			if len(cell.errors) > 0 {
				sb.WriteString(`<span class="cell-error-dot" title="This cell has issues"></span>`)
			}
			fmt.Fprintf(&sb, `</%s>`, element)
		}
		sb.WriteString(`</tr>`)
		if i == 0 {
			sb.WriteString(`</thead><tbody>`)
		}
	}
	sb.WriteString(`</tbody></table>`)
	return sb.String()
}

// renderCellIssues renders the dedicated per-cell issue section with
// 1-based row and column labels.
func (r *BlockRenderer) renderCellIssues(rows [][]tableCell) string {
	total := 0
	for _, row := range rows {
		for _, cell := range row {
			total += len(cell.errors)
		}
	}
	if total == 0 {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<div class="cell-issues"><div class="footer-heading">Cell-Level Issues (%d)</div>`, total)
	for _, row := range rows {
		for _, cell := range row {
			if len(cell.errors) == 0 {
				continue
			}
			fmt.Fprintf(&sb, `<div class="cell-issue-group"><span class="cell-label">Row %d, Column %d</span>`,
				cell.row+1, cell.col+1)
			sb.WriteString(renderErrorList(cell.errors, r.ctx))
			sb.WriteString(`</div>`)
		}
	}
	sb.WriteString(`</div>`)
	return sb.String()
}
