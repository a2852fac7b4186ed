package main

import (
	"fmt"
	"strings"

	"prose-server/internal/types"
	"prose-server/internal/util"
)

// isStructuralErrorKind reports whether an error belongs in the list card
// footer rather than under an item.
func isStructuralErrorKind(kind string) bool {
	kind = strings.ToLower(kind)
	return kind == "lists" || kind == "structure"
}

// renderListCard renders an ordered or unordered list block: the nested item
// view in the body, list-structure errors in the footer.
func (r *BlockRenderer) renderListCard(b *types.Block, seq int) string {
	var sb strings.Builder
	sb.WriteString(r.cardOpen(b, seq))
	sb.WriteString(`<div class="block-card-body">`)
	sb.WriteString(r.renderListBody(b, 0))
	sb.WriteString(`</div>`)

	structural := util.FilterSlice(b.Errors, func(e types.AnalysisError) bool { return isStructuralErrorKind(e.Kind) })
	plain := util.FilterSlice(b.Errors, func(e types.AnalysisError) bool { return !isStructuralErrorKind(e.Kind) })
	sb.WriteString(r.cardFooter(plain, ""))
	sb.WriteString(r.cardFooter(structural, "List Structure Issues"))
	sb.WriteString(`</div>`)
	return sb.String()
}

// renderListBody renders the items of a list block. Level 0 picks the marker
// element from the parent kind; nested lists indent by a fixed increment and
// render inline inside their parent item.
func (r *BlockRenderer) renderListBody(list *types.Block, level int) string {
	element := "ul"
	if NormalizeBlockKind(list.Kind) == "ordered_list" {
		element = "ol"
	}

	var sb strings.Builder
	for _, child := range list.Children {
		if NormalizeBlockKind(child.Kind) == "list_title" {
			fmt.Fprintf(&sb, `<div class="list-title">%s</div>`, EscapeHTML(child.Content))
			break
		}
	}

	fmt.Fprintf(&sb, `<%s class="block-list list-level-%d">`, element, level)
	for _, child := range list.Children {
		if NormalizeBlockKind(child.Kind) != "list_item" {
			continue
		}
		sb.WriteString(`<li class="block-list-item">`)
		fmt.Fprintf(&sb, `<span class="list-item-text">%s</span>`, EscapeHTML(child.Content))
		if !child.ShouldSkipAnalysis {
			sb.WriteString(renderErrorList(child.Errors, r.ctx))
		}
		for _, nested := range child.Children {
			switch NormalizeBlockKind(nested.Kind) {
			case "ordered_list", "unordered_list":
				sb.WriteString(r.renderListBody(nested, level+1))
			case "description_list":
				sb.WriteString(r.renderDescriptionListBody(nested))
			}
		}
		sb.WriteString(`</li>`)
	}
	fmt.Fprintf(&sb, `</%s>`, element)
	return sb.String()
}

// renderDescriptionListCard renders a description list block: term and
// description pairs in the body, structural errors in the footer as
// "List Structure Issues".
func (r *BlockRenderer) renderDescriptionListCard(b *types.Block, seq int) string {
	var sb strings.Builder
	sb.WriteString(r.cardOpen(b, seq))
	sb.WriteString(`<div class="block-card-body">`)
	sb.WriteString(r.renderDescriptionListBody(b))
	sb.WriteString(`</div>`)

	structural := append([]types.AnalysisError(nil), b.Errors...)
	for _, item := range b.Children {
		if NormalizeBlockKind(item.Kind) == "description_list_item" {
			structural = append(structural, r.dlistStructureErrors(item)...)
		}
	}
	sb.WriteString(r.cardFooter(structural, "List Structure Issues"))
	sb.WriteString(`</div>`)
	return sb.String()
}

// renderDescriptionListBody renders the definition list itself. Per-item
// errors split by the is_dlist_term / is_dlist_description attributes on the
// item's child blocks; errors on the item node itself are structural and are
// handled by the caller.
func (r *BlockRenderer) renderDescriptionListBody(b *types.Block) string {
	var sb strings.Builder
	sb.WriteString(`<dl class="block-dlist">`)
	for _, item := range b.Children {
		if NormalizeBlockKind(item.Kind) != "description_list_item" {
			continue
		}
		term, description := item.Term, item.Description
		var termErrors, descErrors []types.AnalysisError
		for _, part := range item.Children {
			switch {
			case part.AttrBool("is_dlist_term"):
				if term == "" {
					term = part.Content
				}
				termErrors = append(termErrors, part.Errors...)
			case part.AttrBool("is_dlist_description"):
				if description == "" {
					description = part.Content
				}
				descErrors = append(descErrors, part.Errors...)
			}
		}

		fmt.Fprintf(&sb, `<dt class="dlist-term">%s`, EscapeHTML(term))
		sb.WriteString(renderErrorList(termErrors, r.ctx))
		sb.WriteString(`</dt>`)
		fmt.Fprintf(&sb, `<dd class="dlist-description">%s`, EscapeHTML(description))
		sb.WriteString(renderErrorList(descErrors, r.ctx))
		sb.WriteString(`</dd>`)
	}
	sb.WriteString(`</dl>`)
	return sb.String()
}

// dlistStructureErrors collects the errors on a description_list_item node
// that could not be attributed to its term or description.
func (r *BlockRenderer) dlistStructureErrors(item *types.Block) []types.AnalysisError {
	return append([]types.AnalysisError(nil), item.Errors...)
}
