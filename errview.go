package main

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"prose-server/internal/types"
)

// renderContext carries the per-request state the views need: which report
// the fragments belong to, the session's feedback tracker (nil disables the
// widgets), the CSRF token for the widget forms, and the errorId whose reason
// fieldset should flash after a rejected not-helpful submission.
type renderContext struct {
	reportID        string
	tracker         *FeedbackTracker
	csrfToken       string
	reasonMissingID string
}

// fallbackErrorMessage is shown for errors that arrive without a message.
const fallbackErrorMessage = "Style issue detected"

// errorMessage returns the display message with the documented fallback.
func errorMessage(e *types.AnalysisError) string {
	if e.Message != "" {
		return e.Message
	}
	return fallbackErrorMessage
}

// confidenceBadge renders the percentage badge with its level icon.
func confidenceBadge(e *types.AnalysisError) string {
	score := ExtractConfidence(e)
	level := ClassifyConfidence(score)
	return fmt.Sprintf(
		`<span class="confidence-badge confidence-%s"><span class="icon %s"></span>%d%%</span>`,
		strings.ToLower(level), confidenceIcon(level), int(math.Round(score*100)))
}

// RenderInlineError renders the compact per-block error view: accent stripe,
// kind label, confidence badge, message, a single suggestion, metadata chips
// and the feedback row.
func RenderInlineError(e *types.AnalysisError, ctx *renderContext) string {
	style := ErrorStyleFor(e.Kind)
	errorID := FingerprintError(e)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<div class="inline-error severity-%s" id="err-%s" style="border-left-color: %s">`,
		style.Severity, errorID, style.Color)

	sb.WriteString(`<div class="inline-error-head">`)
	fmt.Fprintf(&sb, `<span class="error-kind"><span class="icon %s"></span>%s</span>`,
		style.Icon, EscapeHTML(kindLabel(e.Kind)))
	sb.WriteString(confidenceBadge(e))
	if e.EnhancedValidationAvailable {
		sb.WriteString(`<span class="enhanced-badge">Enhanced</span>`)
	}
	sb.WriteString(`</div>`)

	fmt.Fprintf(&sb, `<div class="error-message">%s</div>`, EscapeHTML(errorMessage(e)))

	if suggestions := e.AllSuggestions(); len(suggestions) > 0 {
		fmt.Fprintf(&sb, `<div class="error-suggestion"><span class="suggestion-label">Suggestion:</span> %s</div>`,
			EscapeHTML(suggestions[0]))
	}

	sb.WriteString(renderErrorMeta(e))
	sb.WriteString(renderFeedbackWidget(e, errorID, ctx))
	sb.WriteString(`</div>`)
	return sb.String()
}

// renderErrorMeta renders the metadata chip row: line number, consolidation
// info and the confidence details disclosure.
func renderErrorMeta(e *types.AnalysisError) string {
	var sb strings.Builder
	sb.WriteString(`<div class="error-meta">`)
	if e.LineNumber != nil {
		fmt.Fprintf(&sb, `<span class="meta-chip">Line %d</span>`, *e.LineNumber)
	}
	if len(e.ConsolidatedFrom) > 0 {
		fmt.Fprintf(&sb, `<span class="meta-chip consolidation-chip">Consolidated from %d rules</span>`,
			len(e.ConsolidatedFrom))
		if e.ConsolidationType != "" {
			fmt.Fprintf(&sb, `<span class="meta-chip">%s</span>`, EscapeHTML(kindLabel(e.ConsolidationType)))
		}
	}
	sb.WriteString(renderConfidenceDetails(e))
	sb.WriteString(`</div>`)
	return sb.String()
}

// renderConfidenceDetails renders the details disclosure: the confidence
// explanation and, when available, the pretty-printed confidence calculation.
func renderConfidenceDetails(e *types.AnalysisError) string {
	score := ExtractConfidence(e)
	level := ClassifyConfidence(score)

	var sb strings.Builder
	sb.WriteString(`<details class="confidence-details"><summary>Details</summary><div class="confidence-details-body">`)
	fmt.Fprintf(&sb, `<p>Confidence %d%% (%s). Scores combine rule certainty with validation consensus; low-confidence findings deserve a second look.</p>`,
		int(math.Round(score*100)), level)

	if e.ValidationResult != nil {
		v := e.ValidationResult
		fmt.Fprintf(&sb, `<p class="validation-summary">Validation: %s (consensus %.2f over %d passes)</p>`,
			EscapeHTML(v.Decision), v.ConsensusScore, v.PassesCount)
	}
	if e.ConfidenceCalculation != nil {
		if pretty, err := json.MarshalIndent(e.ConfidenceCalculation, "", "  "); err == nil {
			fmt.Fprintf(&sb, `<pre class="confidence-json">%s</pre>`, EscapeHTML(string(pretty)))
		}
	}
	sb.WriteString(`</div></details>`)
	return sb.String()
}

// renderFeedbackWidget renders the verdict row for one error. States:
// prompt (no record), confirmed helpful / not helpful (with the Change
// affordance). The not-helpful path opens a reason fieldset; a submission
// without a reason re-renders with the fieldset outlined.
func renderFeedbackWidget(e *types.AnalysisError, errorID string, ctx *renderContext) string {
	if ctx == nil || ctx.tracker == nil {
		return ""
	}
	ctx.tracker.RegisterError(e)
	record := ctx.tracker.GetByID(errorID)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<div class="feedback-row" data-error-id="%s">`, errorID)

	if record != nil {
		label := "Marked as helpful"
		if record.Verdict == types.VerdictNotHelpful {
			label = "Marked as not helpful"
		}
		fmt.Fprintf(&sb, `<span class="feedback-confirmed feedback-%s">%s</span>`, record.Verdict, label)
		sb.WriteString(feedbackFormOpen(ctx, errorID))
		sb.WriteString(`<input type="hidden" name="verdict" value="change">`)
		sb.WriteString(`<button type="submit" class="feedback-btn feedback-change">Change</button>`)
		sb.WriteString(`</form>`)
		sb.WriteString(`</div>`)
		return sb.String()
	}

	sb.WriteString(`<span class="feedback-prompt">Was this helpful?</span>`)

	sb.WriteString(feedbackFormOpen(ctx, errorID))
	sb.WriteString(`<input type="hidden" name="verdict" value="helpful">`)
	sb.WriteString(`<button type="submit" class="feedback-btn feedback-helpful">Helpful</button>`)
	sb.WriteString(`</form>`)

	open := ""
	fieldsetClass := "feedback-reason-fieldset"
	if ctx.reasonMissingID == errorID {
		open = " open"
		fieldsetClass += " reason-missing"
	}
	fmt.Fprintf(&sb, `<details class="feedback-reason"%s><summary class="feedback-btn feedback-not-helpful">Not helpful</summary>`, open)
	sb.WriteString(feedbackFormOpen(ctx, errorID))
	sb.WriteString(`<input type="hidden" name="verdict" value="not_helpful">`)
	fmt.Fprintf(&sb, `<fieldset class="%s"><legend>Why was this not helpful?</legend>`, fieldsetClass)
	for _, category := range types.FeedbackReasonCategories {
		fmt.Fprintf(&sb, `<label><input type="radio" name="reason_category" value="%s"> %s</label>`,
			category, EscapeHTML(kindLabel(category)))
	}
	sb.WriteString(`<textarea name="reason_comment" rows="2" placeholder="Optional comment"></textarea>`)
	sb.WriteString(`</fieldset>`)
	sb.WriteString(`<button type="submit" class="feedback-btn feedback-submit">Submit</button>`)
	sb.WriteString(`</form></details>`)

	sb.WriteString(`</div>`)
	return sb.String()
}

// feedbackFormOpen emits the shared opening of a feedback form, including the
// CSRF token and routing fields.
func feedbackFormOpen(ctx *renderContext, errorID string) string {
	return fmt.Sprintf(
		`<form method="post" action="/html/feedback" class="feedback-form">`+
			`<input type="hidden" name="csrf_token" value="%s">`+
			`<input type="hidden" name="report_id" value="%s">`+
			`<input type="hidden" name="error_id" value="%s">`,
		EscapeHTML(ctx.csrfToken), EscapeHTML(ctx.reportID), errorID)
}

// RenderErrorCard renders the larger card used by the flat error summary:
// the inline content plus the flagged text segment and the fix-option chooser.
func RenderErrorCard(e *types.AnalysisError, ctx *renderContext) string {
	style := ErrorStyleFor(e.Kind)
	errorID := FingerprintError(e)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<div class="error-card severity-%s" id="card-%s" style="border-left-color: %s">`,
		style.Severity, errorID, style.Color)

	sb.WriteString(`<div class="error-card-head">`)
	fmt.Fprintf(&sb, `<span class="error-kind"><span class="icon %s"></span>%s</span>`,
		style.Icon, EscapeHTML(kindLabel(e.Kind)))
	sb.WriteString(confidenceBadge(e))
	if e.EnhancedValidationAvailable {
		sb.WriteString(`<span class="enhanced-badge">Enhanced</span>`)
	}
	sb.WriteString(`</div>`)

	fmt.Fprintf(&sb, `<div class="error-message">%s</div>`, EscapeHTML(errorMessage(e)))

	if e.TextSegment != "" {
		fmt.Fprintf(&sb, `<pre class="error-segment"><code>%s</code></pre>`, EscapeHTML(e.TextSegment))
	}
	if e.TextSpan != "" && e.TextSpan != e.TextSegment {
		fmt.Fprintf(&sb, `<div class="error-span"><span class="suggestion-label">Consolidated span:</span> %s</div>`,
			EscapeHTML(e.TextSpan))
	}

	sb.WriteString(renderFixOptions(e))
	sb.WriteString(renderErrorMeta(e))
	sb.WriteString(renderConfidenceAnalysis(e))
	sb.WriteString(renderFeedbackWidget(e, errorID, ctx))
	sb.WriteString(`</div>`)
	return sb.String()
}

// renderFixOptions renders the expandable fix chooser when the error carries
// two or more options; otherwise it falls back to the flat suggestions list.
func renderFixOptions(e *types.AnalysisError) string {
	var sb strings.Builder
	if len(e.FixOptions) >= 2 {
		sb.WriteString(`<details class="fix-options" open><summary>Fix options</summary>`)
		for _, option := range e.FixOptions {
			fmt.Fprintf(&sb, `<div class="fix-option fix-%s">`, EscapeHTML(option.Scope))
			fmt.Fprintf(&sb, `<div class="fix-option-head"><span class="scope-chip scope-%s">%s</span><span class="fix-type">%s</span></div>`,
				EscapeHTML(option.Scope), EscapeHTML(kindLabel(option.Scope)), EscapeHTML(kindLabel(option.Type)))
			if option.Description != "" {
				fmt.Fprintf(&sb, `<div class="fix-description">%s</div>`, EscapeHTML(option.Description))
			}
			if option.TextSpan != "" {
				fmt.Fprintf(&sb, `<pre class="error-segment"><code>%s</code></pre>`, EscapeHTML(option.TextSpan))
			}
			if len(option.Suggestions) > 0 {
				sb.WriteString(`<ul class="suggestion-list">`)
				for _, suggestion := range option.Suggestions {
					fmt.Fprintf(&sb, `<li>%s</li>`, EscapeHTML(suggestion))
				}
				sb.WriteString(`</ul>`)
			}
			sb.WriteString(`</div>`)
		}
		sb.WriteString(`</details>`)
		return sb.String()
	}

	if suggestions := e.AllSuggestions(); len(suggestions) > 0 {
		sb.WriteString(`<ul class="suggestion-list">`)
		for _, suggestion := range suggestions {
			fmt.Fprintf(&sb, `<li>%s</li>`, EscapeHTML(suggestion))
		}
		sb.WriteString(`</ul>`)
	}
	return sb.String()
}

// renderConfidenceAnalysis renders the collapsible confidence breakdown used
// by the card view.
func renderConfidenceAnalysis(e *types.AnalysisError) string {
	if e.ConfidenceCalculation == nil && e.ValidationResult == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(`<details class="confidence-analysis"><summary>Confidence Analysis</summary><div class="confidence-analysis-body">`)
	if c := e.ConfidenceCalculation; c != nil {
		sb.WriteString(`<table class="confidence-table">`)
		if c.Method != "" {
			fmt.Fprintf(&sb, `<tr><th>Method</th><td>%s</td></tr>`, EscapeHTML(kindLabel(c.Method)))
		}
		fmt.Fprintf(&sb, `<tr><th>Primary confidence</th><td>%.2f</td></tr>`, c.PrimaryConfidence)
		fmt.Fprintf(&sb, `<tr><th>Weighted average</th><td>%.2f</td></tr>`, c.WeightedAverage)
		if c.ConsolidationPenalty != 0 {
			fmt.Fprintf(&sb, `<tr><th>Consolidation penalty</th><td>%.2f</td></tr>`, c.ConsolidationPenalty)
		}
		sb.WriteString(`</table>`)
	}
	if v := e.ValidationResult; v != nil {
		fmt.Fprintf(&sb, `<p class="validation-summary">Validation decision: %s (consensus %.2f, %d passes)</p>`,
			EscapeHTML(v.Decision), v.ConsensusScore, v.PassesCount)
	}
	sb.WriteString(`</div></details>`)
	return sb.String()
}

// summaryKindOrder is the fixed display order for error summary groups;
// kinds outside the list follow alphabetically.
var summaryKindOrder = []string{"style", "grammar", "structure", "punctuation", "terminology", "passive_voice", "readability"}

// RenderErrorSummary groups a flat error list by kind into expandable
// sections. Groups with three or fewer items start expanded.
func RenderErrorSummary(errors []types.AnalysisError, ctx *renderContext) string {
	if len(errors) == 0 {
		return `<div class="empty-state empty-success"><span class="icon icon-check"></span><p>No issues found. Nice work.</p></div>`
	}

	groups := make(map[string][]*types.AnalysisError)
	for i := range errors {
		kind := strings.ToLower(errors[i].Kind)
		if kind == "" {
			kind = "style"
		}
		groups[kind] = append(groups[kind], &errors[i])
	}

	ordered := make([]string, 0, len(groups))
	seen := make(map[string]bool)
	for _, kind := range summaryKindOrder {
		if _, ok := groups[kind]; ok {
			ordered = append(ordered, kind)
			seen[kind] = true
		}
	}
	var rest []string
	for kind := range groups {
		if !seen[kind] {
			rest = append(rest, kind)
		}
	}
	sort.Strings(rest)
	ordered = append(ordered, rest...)

	var sb strings.Builder
	sb.WriteString(`<div class="error-summary">`)
	for _, kind := range ordered {
		group := groups[kind]
		open := ""
		if len(group) <= 3 {
			open = " open"
		}
		fmt.Fprintf(&sb, `<details class="summary-group"%s><summary><span class="icon %s"></span>%s <span class="group-count">%d</span></summary>`,
			open, ErrorStyleFor(kind).Icon, EscapeHTML(kindLabel(kind)), len(group))
		for _, e := range group {
			sb.WriteString(RenderErrorCard(e, ctx))
		}
		sb.WriteString(`</details>`)
	}
	sb.WriteString(`</div>`)
	return sb.String()
}

// renderErrorList renders a stack of inline errors (block footers).
func renderErrorList(errors []types.AnalysisError, ctx *renderContext) string {
	var sb strings.Builder
	for i := range errors {
		sb.WriteString(RenderInlineError(&errors[i], ctx))
	}
	return sb.String()
}
