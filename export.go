package main

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"prose-server/internal/types"
)

// Export formats offered by the export panel.
const (
	exportFormatMarkdown = "markdown"
	exportFormatHTML     = "html"
	exportFormatText     = "text"
)

// BuildMarkdownExport serialises a report as Markdown: metadata front matter
// when present, the document body from the block tree (or raw content), and
// an issue appendix.
func BuildMarkdownExport(report *types.Report) string {
	var sb strings.Builder

	if meta := report.Metadata; meta != nil && meta.Title != "" {
		sb.WriteString("---\n")
		fmt.Fprintf(&sb, "title: %s\n", meta.Title)
		if meta.Description != "" {
			fmt.Fprintf(&sb, "description: %s\n", meta.Description)
		}
		if len(meta.Keywords) > 0 {
			fmt.Fprintf(&sb, "keywords: %s\n", strings.Join(meta.Keywords, ", "))
		}
		if meta.ContentType != "" {
			fmt.Fprintf(&sb, "content_type: %s\n", meta.ContentType)
		}
		sb.WriteString("---\n\n")
	}

	if len(report.StructuralBlocks) > 0 {
		for _, b := range report.StructuralBlocks {
			writeBlockMarkdown(&sb, b, 0)
		}
	} else {
		sb.WriteString(report.Content)
		sb.WriteString("\n")
	}

	sb.WriteString(markdownIssueAppendix(report))
	return sb.String()
}

// writeBlockMarkdown serialises one block subtree. depth tracks list nesting.
func writeBlockMarkdown(sb *strings.Builder, b *types.Block, depth int) {
	switch NormalizeBlockKind(b.Kind) {
	case "heading":
		level := b.Level
		if level < 1 {
			level = 2
		}
		if level > 6 {
			level = 6
		}
		fmt.Fprintf(sb, "%s %s\n\n", strings.Repeat("#", level), b.Content)
	case "section":
		if b.Content != "" {
			fmt.Fprintf(sb, "## %s\n\n", b.Content)
		}
		for _, child := range b.Children {
			writeBlockMarkdown(sb, child, depth)
		}
	case "ordered_list", "unordered_list":
		marker := "-"
		if NormalizeBlockKind(b.Kind) == "ordered_list" {
			marker = "1."
		}
		for _, item := range b.Children {
			if NormalizeBlockKind(item.Kind) != "list_item" {
				continue
			}
			fmt.Fprintf(sb, "%s%s %s\n", strings.Repeat("  ", depth), marker, item.Content)
			for _, nested := range item.Children {
				writeBlockMarkdown(sb, nested, depth+1)
			}
		}
		if depth == 0 {
			sb.WriteString("\n")
		}
	case "description_list":
		for _, item := range b.Children {
			if NormalizeBlockKind(item.Kind) != "description_list_item" {
				continue
			}
			fmt.Fprintf(sb, "%s\n: %s\n\n", item.Term, item.Description)
		}
	case "table":
		for _, row := range b.Children {
			if NormalizeBlockKind(row.Kind) != "table_row" {
				continue
			}
			var cells []string
			for _, cell := range row.Children {
				if NormalizeBlockKind(cell.Kind) == "table_cell" {
					cells = append(cells, cell.Content)
				}
			}
			fmt.Fprintf(sb, "| %s |\n", strings.Join(cells, " | "))
		}
		sb.WriteString("\n")
	case "listing", "literal":
		fmt.Fprintf(sb, "```\n%s\n```\n\n", b.Content)
	case "quote":
		fmt.Fprintf(sb, "> %s\n\n", b.Content)
	case "admonition":
		fmt.Fprintf(sb, "**%s:** %s\n\n", strings.ToUpper(b.AdmonitionType), b.Content)
	case "list_item", "description_list_item", "table_row", "table_cell", "list_title":
		// reached through parents
	default:
		if b.Content != "" {
			fmt.Fprintf(sb, "%s\n\n", b.Content)
		}
		for _, child := range b.Children {
			writeBlockMarkdown(sb, child, depth)
		}
	}
}

func markdownIssueAppendix(report *types.Report) string {
	if report.Analysis == nil || len(report.Analysis.Errors) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\n## Issues\n\n")
	for i := range report.Analysis.Errors {
		e := &report.Analysis.Errors[i]
		fmt.Fprintf(&sb, "- **%s**: %s", kindLabel(e.Kind), errorMessage(e))
		if suggestions := e.AllSuggestions(); len(suggestions) > 0 {
			fmt.Fprintf(&sb, " (suggestion: %s)", suggestions[0])
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// BuildTextExport serialises a report as plain text: content plus a flat
// issue list.
func BuildTextExport(report *types.Report) string {
	var sb strings.Builder
	if len(report.StructuralBlocks) > 0 {
		for _, b := range report.StructuralBlocks {
			writeBlockText(&sb, b)
		}
	} else {
		sb.WriteString(report.Content)
		sb.WriteString("\n")
	}
	if report.Analysis != nil && len(report.Analysis.Errors) > 0 {
		sb.WriteString("\nIssues:\n")
		for i := range report.Analysis.Errors {
			e := &report.Analysis.Errors[i]
			fmt.Fprintf(&sb, "  [%s] %s\n", kindLabel(e.Kind), errorMessage(e))
		}
	}
	return sb.String()
}

func writeBlockText(sb *strings.Builder, b *types.Block) {
	switch NormalizeBlockKind(b.Kind) {
	case "list_item", "description_list_item", "table_row", "table_cell", "list_title":
		return
	case "description_list":
		for _, item := range b.Children {
			if NormalizeBlockKind(item.Kind) == "description_list_item" {
				fmt.Fprintf(sb, "%s: %s\n", item.Term, item.Description)
			}
		}
		sb.WriteString("\n")
		return
	case "ordered_list", "unordered_list":
		for _, item := range b.Children {
			if NormalizeBlockKind(item.Kind) == "list_item" {
				fmt.Fprintf(sb, "  - %s\n", item.Content)
				for _, nested := range item.Children {
					writeBlockText(sb, nested)
				}
			}
		}
		sb.WriteString("\n")
		return
	}
	if b.Content != "" {
		sb.WriteString(b.Content)
		sb.WriteString("\n\n")
	}
	for _, child := range b.Children {
		writeBlockText(sb, child)
	}
}

// shareQRDataURI renders the report share link as an inline PNG QR code.
// Failures degrade to an empty string; the panel just omits the image.
func shareQRDataURI(shareURL string) string {
	png, err := qrcode.Encode(shareURL, qrcode.Medium, 180)
	if err != nil {
		slog.Warn("share QR generation failed", "url", shareURL, "error", err)
		return ""
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}

// renderExportPanel renders the export page body: one section per format
// plus the share link QR.
func renderExportPanel(report *types.Report, shareURL string) string {
	markdown := BuildMarkdownExport(report)
	text := BuildTextExport(report)

	var sb strings.Builder
	sb.WriteString(`<div class="export-panel">`)

	fmt.Fprintf(&sb, `<div class="export-section"><h2>Markdown</h2><textarea class="export-body" readonly>%s</textarea></div>`,
		EscapeHTML(markdown))
	fmt.Fprintf(&sb, `<div class="export-section"><h2>Plain text</h2><textarea class="export-body" readonly>%s</textarea></div>`,
		EscapeHTML(text))
	fmt.Fprintf(&sb, `<div class="export-section"><h2>HTML</h2><p>The report page itself is the HTML export: <a href="/html/report/%s">open report</a> and save.</p></div>`,
		EscapeHTML(report.ID))

	if qr := shareQRDataURI(shareURL); qr != "" {
		fmt.Fprintf(&sb, `<div class="share-qr"><img src="%s" alt="Share link QR" width="180" height="180"><p><a href="%s">%s</a></p></div>`,
			qr, EscapeHTML(shareURL), EscapeHTML(shareURL))
	}

	sb.WriteString(`</div>`)
	return sb.String()
}
