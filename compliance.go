package main

import (
	"fmt"
	"strings"

	"prose-server/internal/types"
)

// complianceStatusLabels maps the backend status slugs to display text.
var complianceStatusLabels = map[string]string{
	"compliant":         "Compliant",
	"mostly_compliant":  "Mostly Compliant",
	"needs_improvement": "Needs Improvement",
	"non_compliant":     "Non-Compliant",
}

var severityOrder = []string{"high", "medium", "low"}

// renderCompliancePanel renders the modular-compliance result: the status
// banner, per-severity counts and the issue list ordered high to low.
func renderCompliancePanel(result *types.ComplianceResult, ctx *renderContext) string {
	if result == nil {
		return `<div class="empty-state"><p>No compliance result is attached to this report.</p></div>`
	}

	status := strings.ToLower(result.ComplianceStatus)
	label, ok := complianceStatusLabels[status]
	if !ok {
		status = "needs_improvement"
		label = result.ComplianceStatus
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<div class="compliance-banner compliance-%s">%s`, status, EscapeHTML(label))
	if result.ContentType != "" {
		fmt.Fprintf(&sb, ` <span class="meta-chip">%s</span>`, EscapeHTML(kindLabel(result.ContentType)))
	}
	fmt.Fprintf(&sb, ` <span class="meta-chip">%d issue(s)</span></div>`, result.TotalIssues)

	if len(result.IssuesBySeverity) > 0 {
		sb.WriteString(`<div class="severity-chips">`)
		for _, severity := range severityOrder {
			if count, ok := result.IssuesBySeverity[severity]; ok {
				fmt.Fprintf(&sb, `<span class="severity-chip severity-%s">%s: %d</span>`,
					severity, EscapeHTML(kindLabel(severity)), count)
			}
		}
		sb.WriteString(`</div>`)
	}

	if len(result.Issues) == 0 {
		sb.WriteString(`<div class="empty-state empty-success"><p>No compliance issues.</p></div>`)
		return sb.String()
	}

	for _, severity := range severityOrder {
		for i := range result.Issues {
			if strings.ToLower(result.Issues[i].Severity) == severity {
				sb.WriteString(renderComplianceIssue(&result.Issues[i]))
			}
		}
	}
	// Issues with unrecognised severities trail the ordered groups.
	for i := range result.Issues {
		if !isKnownSeverity(result.Issues[i].Severity) {
			sb.WriteString(renderComplianceIssue(&result.Issues[i]))
		}
	}
	return sb.String()
}

func isKnownSeverity(severity string) bool {
	switch strings.ToLower(severity) {
	case "high", "medium", "low":
		return true
	}
	return false
}

func renderComplianceIssue(issue *types.ComplianceIssue) string {
	severity := strings.ToLower(issue.Severity)
	var sb strings.Builder
	fmt.Fprintf(&sb, `<div class="error-card compliance-issue severity-%s">`, severity)
	sb.WriteString(`<div class="error-card-head">`)
	fmt.Fprintf(&sb, `<span class="severity-chip severity-%s">%s</span>`, severity, EscapeHTML(kindLabel(issue.Severity)))
	if issue.LineNumber != nil {
		fmt.Fprintf(&sb, `<span class="meta-chip">Line %d</span>`, *issue.LineNumber)
	}
	sb.WriteString(`</div>`)
	fmt.Fprintf(&sb, `<div class="error-message">%s</div>`, EscapeHTML(issue.Message))
	if issue.Description != "" {
		fmt.Fprintf(&sb, `<div class="error-suggestion">%s</div>`, EscapeHTML(issue.Description))
	}
	if issue.FlaggedText != "" {
		fmt.Fprintf(&sb, `<pre class="error-segment"><code>%s</code></pre>`, EscapeHTML(issue.FlaggedText))
	}
	if len(issue.Suggestions) > 0 {
		sb.WriteString(`<ul class="suggestion-list">`)
		for _, suggestion := range issue.Suggestions {
			fmt.Fprintf(&sb, `<li>%s</li>`, EscapeHTML(suggestion))
		}
		sb.WriteString(`</ul>`)
	}
	sb.WriteString(`</div>`)
	return sb.String()
}
