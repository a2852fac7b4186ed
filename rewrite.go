package main

import (
	"fmt"
	"strings"

	"prose-server/internal/types"
)

// renderRewriteResults renders the rewrite and refinement panels below the
// report columns. Either pass may be absent; an empty text with no bullet
// list renders nothing for that pass.
func renderRewriteResults(rewrite *types.RewriteResult, refinement *types.RefinementResult) string {
	var sb strings.Builder
	sb.WriteString(`<div id="rewrite-results">`)
	if rewrite != nil {
		sb.WriteString(renderRewritePanel("Rewritten Draft", rewrite.Text(), rewrite.Improvements, "Improvements"))
	}
	if refinement != nil {
		sb.WriteString(renderRewritePanel("Refined Draft (Pass 2)", refinement.Text(), refinement.Refinements, "Refinements"))
	}
	sb.WriteString(`</div>`)
	return sb.String()
}

func renderRewritePanel(heading, text string, notes []string, notesHeading string) string {
	if text == "" && len(notes) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(`<div class="rewrite-panel">`)
	fmt.Fprintf(&sb, `<div class="rewrite-panel-head">%s</div>`, EscapeHTML(heading))
	if text != "" {
		fmt.Fprintf(&sb, `<div class="rewrite-text">%s</div>`, EscapeHTML(text))
	}
	if len(notes) > 0 {
		fmt.Fprintf(&sb, `<div class="footer-heading" style="padding: 0 14px">%s</div>`, EscapeHTML(notesHeading))
		sb.WriteString(`<ul class="improvement-list">`)
		for _, note := range notes {
			fmt.Fprintf(&sb, `<li>%s</li>`, EscapeHTML(note))
		}
		sb.WriteString(`</ul>`)
	}
	sb.WriteString(`</div>`)
	return sb.String()
}
