package main

import (
	"fmt"
	"strings"

	"prose-server/internal/types"
)

// BlockRenderer walks the structural block tree in document order and emits
// one card per rendered block. Issue counts are aggregated once per render
// with a memoised fold over the tree.
type BlockRenderer struct {
	ctx    *renderContext
	counts map[*types.Block]int
}

// NewBlockRenderer builds a renderer for one request. ctx may carry a nil
// tracker, which disables feedback widgets.
func NewBlockRenderer(ctx *renderContext) *BlockRenderer {
	return &BlockRenderer{
		ctx:    ctx,
		counts: make(map[*types.Block]int),
	}
}

// RenderBlocks renders the top-level card stack. Sequence numbers advance
// only when a dispatch produces output, so structural child kinds that render
// empty never consume a number.
func (r *BlockRenderer) RenderBlocks(blocks []*types.Block) string {
	if len(blocks) == 0 {
		return `<div class="empty-state"><span class="icon icon-empty"></span><p>No document blocks to display.</p></div>`
	}
	return r.renderChildren(blocks)
}

// renderChildren renders a sibling run with local 1-based numbering.
// Sections reuse this so their numbering restarts at 1.
func (r *BlockRenderer) renderChildren(blocks []*types.Block) string {
	var sb strings.Builder
	seq := 0
	for _, b := range blocks {
		fragment := r.renderBlock(b, seq+1)
		if fragment == "" {
			continue
		}
		seq++
		IncrementBlocksRendered()
		sb.WriteString(fragment)
	}
	return sb.String()
}

// renderBlock dispatches one block to its view. Child-only kinds return
// empty output; they are reached through their parents.
func (r *BlockRenderer) renderBlock(b *types.Block, seq int) string {
	switch NormalizeBlockKind(b.Kind) {
	case "ordered_list", "unordered_list":
		return r.renderListCard(b, seq)
	case "description_list":
		return r.renderDescriptionListCard(b, seq)
	case "table":
		return r.renderTableCard(b, seq)
	case "section":
		return r.renderSectionCard(b, seq)
	case "list_item", "description_list_item", "table_row", "table_cell", "list_title":
		return ""
	default:
		return r.renderDefaultCard(b, seq)
	}
}

// IssueCount returns the aggregate issue count of a block: its own errors
// plus the counts of all descendants. Skipped blocks contribute nothing.
func (r *BlockRenderer) IssueCount(b *types.Block) int {
	if n, ok := r.counts[b]; ok {
		return n
	}
	n := 0
	if !b.ShouldSkipAnalysis {
		n = len(b.Errors)
		for _, child := range b.Children {
			n += r.IssueCount(child)
		}
	}
	r.counts[b] = n
	return n
}

// statusChip renders the header chip: Skipped, Clean or the issue total.
func (r *BlockRenderer) statusChip(b *types.Block) string {
	if b.ShouldSkipAnalysis {
		return `<span class="status-chip chip-skipped">Skipped</span>`
	}
	count := r.IssueCount(b)
	if count == 0 {
		return `<span class="status-chip chip-clean">Clean</span>`
	}
	return fmt.Sprintf(`<span class="status-chip chip-issues">%d Issue(s)</span>`, count)
}

// cardOpen emits the card opener and header shared by every block view.
func (r *BlockRenderer) cardOpen(b *types.Block, seq int) string {
	style := BlockStyleFor(b.Kind)
	var sb strings.Builder
	fmt.Fprintf(&sb, `<div class="block-card kind-%s">`, NormalizeBlockKind(b.Kind))
	fmt.Fprintf(&sb, `<div class="block-card-head" style="background: %s">`, style.Gradient)
	fmt.Fprintf(&sb, `<span class="icon %s"></span>`, style.Icon)
	fmt.Fprintf(&sb, `<span class="block-card-title">BLOCK %d: %s</span>`, seq, EscapeHTML(BlockDisplayName(b)))
	sb.WriteString(r.statusChip(b))
	sb.WriteString(`</div>`)
	if b.Title != "" {
		fmt.Fprintf(&sb, `<div class="block-card-caption">%s</div>`, EscapeHTML(b.Title))
	}
	return sb.String()
}

// cardFooter renders the block-level error footer, or nothing.
func (r *BlockRenderer) cardFooter(errors []types.AnalysisError, heading string) string {
	if len(errors) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(`<div class="block-card-footer">`)
	if heading != "" {
		fmt.Fprintf(&sb, `<div class="footer-heading">%s</div>`, EscapeHTML(heading))
	}
	sb.WriteString(renderErrorList(errors, r.ctx))
	sb.WriteString(`</div>`)
	return sb.String()
}

// skippedBody is the placeholder for blocks excluded from analysis.
const skippedBody = `<div class="empty-state skipped-state"><span class="icon icon-skip"></span><p>Skipped &mdash; this block was not analysed.</p></div>`

// renderDefaultCard renders every block kind without a dedicated view:
// header, a kind-appropriate body, and the error footer.
func (r *BlockRenderer) renderDefaultCard(b *types.Block, seq int) string {
	var sb strings.Builder
	sb.WriteString(r.cardOpen(b, seq))
	sb.WriteString(`<div class="block-card-body">`)

	switch {
	case b.ShouldSkipAnalysis:
		sb.WriteString(skippedBody)
	case NormalizeBlockKind(b.Kind) == "heading":
		level := b.Level
		if level < 1 {
			level = 2
		}
		if level > 6 {
			level = 6
		}
		fmt.Fprintf(&sb, `<h%d class="heading-preview">%s</h%d>`, level, EscapeHTML(b.Content), level)
	case NormalizeBlockKind(b.Kind) == "admonition":
		fmt.Fprintf(&sb, `<div class="admonition admonition-%s"><span class="admonition-type">%s</span><pre class="block-content">%s</pre></div>`,
			strings.ToLower(b.AdmonitionType), EscapeHTML(strings.ToUpper(b.AdmonitionType)), EscapeHTML(b.Content))
	case NormalizeBlockKind(b.Kind) == "quote":
		fmt.Fprintf(&sb, `<blockquote class="quote-preview">%s</blockquote>`, EscapeHTML(b.Content))
	default:
		fmt.Fprintf(&sb, `<pre class="block-content">%s</pre>`, EscapeHTML(b.Content))
	}

	sb.WriteString(`</div>`)
	if !b.ShouldSkipAnalysis {
		sb.WriteString(r.cardFooter(b.Errors, ""))
	}
	sb.WriteString(`</div>`)
	return sb.String()
}

// renderSectionCard renders a section: its own header plus a nested stack of
// child cards with numbering restarting at 1, aggregating child issue counts
// into the header chip.
func (r *BlockRenderer) renderSectionCard(b *types.Block, seq int) string {
	var sb strings.Builder
	sb.WriteString(r.cardOpen(b, seq))
	sb.WriteString(`<div class="block-card-body section-body">`)
	if b.Content != "" {
		fmt.Fprintf(&sb, `<div class="section-heading">%s</div>`, EscapeHTML(b.Content))
	}
	if len(b.Children) > 0 {
		sb.WriteString(`<div class="section-children">`)
		sb.WriteString(r.renderChildren(b.Children))
		sb.WriteString(`</div>`)
	}
	sb.WriteString(`</div>`)
	sb.WriteString(r.cardFooter(b.Errors, ""))
	sb.WriteString(`</div>`)
	return sb.String()
}
