package main

import (
	"fmt"
	"sort"
	"strings"

	"prose-server/internal/types"
)

// highlightSpan is one accepted mark region, in coordinates of the escaped
// content string.
type highlightSpan struct {
	start int
	end   int
	err   *types.AnalysisError
}

// HighlightContent produces the flat-fallback view body: the escaped content
// with <mark> overlays for every error carrying both a text segment and a
// numeric position. Errors are processed right-to-left by position so earlier
// substitutions do not shift later offsets. A segment that is not found is
// silently skipped; a segment that would partially overlap an accepted mark
// is dropped (a nested segment that fully encloses an accepted mark wraps it).
func HighlightContent(content string, errors []types.AnalysisError) string {
	escaped := EscapeHTML(content)

	candidates := make([]*types.AnalysisError, 0, len(errors))
	for i := range errors {
		if errors[i].TextSegment != "" && errors[i].Position != nil {
			candidates = append(candidates, &errors[i])
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return *candidates[i].Position > *candidates[j].Position
	})

	var accepted []highlightSpan
	for _, e := range candidates {
		segment := EscapeHTML(e.TextSegment)
		idx := strings.Index(escaped, segment)
		if idx < 0 {
			continue
		}
		span := highlightSpan{start: idx, end: idx + len(segment), err: e}
		if overlapsPartially(span, accepted) {
			continue
		}
		accepted = append(accepted, span)
	}
	if len(accepted) == 0 {
		return escaped
	}
	return applyHighlights(escaped, accepted)
}

// overlapsPartially reports whether a candidate span partially overlaps any
// accepted span. Disjoint spans and fully enclosing spans are allowed.
func overlapsPartially(span highlightSpan, accepted []highlightSpan) bool {
	for _, a := range accepted {
		disjoint := span.end <= a.start || span.start >= a.end
		encloses := span.start <= a.start && span.end >= a.end
		enclosed := a.start <= span.start && a.end >= span.end
		if !disjoint && !encloses && !enclosed {
			return true
		}
	}
	return false
}

// applyHighlights wraps each accepted span in its mark tag in one pass over
// the escaped content. At equal positions closing tags precede opening tags,
// inner marks close before outer ones, and outer marks open before inner
// ones, so nested spans produce properly nested markup.
func applyHighlights(escaped string, spans []highlightSpan) string {
	type tagEvent struct {
		pos     int
		opening bool
		span    highlightSpan
	}
	events := make([]tagEvent, 0, len(spans)*2)
	for _, span := range spans {
		events = append(events, tagEvent{pos: span.start, opening: true, span: span})
		events = append(events, tagEvent{pos: span.end, opening: false, span: span})
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].pos != events[j].pos {
			return events[i].pos < events[j].pos
		}
		if events[i].opening != events[j].opening {
			return !events[i].opening // closes before opens
		}
		if events[i].opening {
			return events[i].span.end > events[j].span.end // outer opens first
		}
		return events[i].span.start > events[j].span.start // inner closes first
	})

	var sb strings.Builder
	cursor := 0
	for _, event := range events {
		sb.WriteString(escaped[cursor:event.pos])
		cursor = event.pos
		if event.opening {
			style := ErrorStyleFor(event.span.err.Kind)
			fmt.Fprintf(&sb, `<mark class="content-highlight" style="background: %s33" title="%s">`,
				style.Color, EscapeHTML(errorMessage(event.span.err)))
		} else {
			sb.WriteString(`</mark>`)
		}
	}
	sb.WriteString(escaped[cursor:])
	return sb.String()
}
