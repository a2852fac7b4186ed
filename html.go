package main

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"prose-server/internal/types"
	"prose-server/internal/util"
)

var pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
  <meta name="theme-color" content="{{.ThemeColor}}">
  {{if .Favicon}}<link rel="icon" href="{{.Favicon}}">{{end}}
  <style>
    * { box-sizing: border-box; margin: 0; padding: 0; }
    body {
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Oxygen, Ubuntu, Cantarell, sans-serif;
      line-height: 1.6;
      color: #333;
      background: #f5f5f5;
      padding: 20px;
    }
    .container {
      max-width: 1100px;
      margin: 0 auto;
      background: white;
      border-radius: 8px;
      box-shadow: 0 2px 8px rgba(0,0,0,0.1);
      overflow: hidden;
    }
    header {
      background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
      color: white;
      padding: 24px 30px;
    }
    header h1 { font-size: 24px; margin-bottom: 4px; }
    .subtitle { opacity: 0.9; font-size: 14px; }
    nav {
      padding: 12px 15px;
      background: #f8f9fa;
      border-bottom: 1px solid #dee2e6;
      display: flex;
      gap: 10px;
      flex-wrap: wrap;
    }
    nav a {
      padding: 8px 16px;
      background: #667eea;
      color: white;
      text-decoration: none;
      border-radius: 4px;
      font-size: 14px;
    }
    nav a:hover { background: #5568d3; }
    main { padding: 20px; min-height: 400px; }
    .flash { padding: 12px 16px; border-radius: 4px; margin-bottom: 16px; font-size: 14px; }
    .flash-success { background: #e6ffed; border: 1px solid #34d058; color: #22863a; }
    .flash-error { background: #ffeef0; border: 1px solid #d73a49; color: #86181d; }
    .report-columns { display: grid; grid-template-columns: 2fr 1fr; gap: 20px; }
    @media (max-width: 900px) { .report-columns { grid-template-columns: 1fr; } }
    .block-card {
      border: 1px solid #e1e4e8;
      border-radius: 6px;
      margin: 12px 0;
      overflow: hidden;
      background: white;
    }
    .block-card-head {
      display: flex;
      align-items: center;
      gap: 8px;
      padding: 10px 14px;
      color: white;
      font-size: 13px;
      font-weight: 600;
    }
    .block-card-title { flex: 1; letter-spacing: 0.3px; }
    .block-card-caption { padding: 6px 14px; font-size: 13px; font-style: italic; color: #586069; background: #f8f9fa; }
    .block-card-body { padding: 14px; }
    .block-card-footer { padding: 10px 14px; border-top: 1px solid #e1e4e8; background: #fafbfc; }
    .footer-heading { font-size: 12px; font-weight: 600; text-transform: uppercase; color: #586069; margin-bottom: 6px; }
    .block-content { white-space: pre-wrap; word-wrap: break-word; font-size: 14px; background: #f6f8fa; border-radius: 4px; padding: 10px; }
    .status-chip { padding: 2px 10px; border-radius: 10px; font-size: 12px; background: rgba(255,255,255,0.25); }
    .chip-clean { background: #28a745; }
    .chip-issues { background: #d73a49; }
    .chip-skipped { background: #6a737d; }
    .section-children { margin-left: 14px; border-left: 2px solid #eaecef; padding-left: 14px; }
    .section-heading { font-size: 16px; font-weight: 600; margin-bottom: 8px; }
    .block-list, .block-dlist { margin-left: 22px; }
    .list-title { font-weight: 600; font-size: 14px; margin-bottom: 6px; }
    .list-level-1, .list-level-2, .list-level-3 { margin-left: 18px; }
    .dlist-term { font-weight: 600; }
    .dlist-description { margin-left: 18px; margin-bottom: 8px; }
    .block-table { border-collapse: collapse; width: 100%; font-size: 14px; }
    .block-table th, .block-table td { border: 1px solid #d0d7de; padding: 6px 10px; position: relative; }
    .block-table thead th { background: #f0f3f6; }
    .cell-error-dot { position: absolute; top: 4px; right: 4px; width: 8px; height: 8px; border-radius: 50%; background: #d73a49; display: inline-block; }
    .cell-issues { margin-top: 12px; }
    .cell-label { font-size: 12px; font-weight: 600; color: #586069; }
    .inline-error, .error-card {
      border: 1px solid #e1e4e8;
      border-left-width: 4px;
      border-radius: 4px;
      padding: 10px 12px;
      margin: 8px 0;
      font-size: 14px;
      background: white;
    }
    .inline-error-head, .error-card-head { display: flex; align-items: center; gap: 8px; margin-bottom: 4px; }
    .error-kind { font-weight: 600; font-size: 13px; }
    .confidence-badge { padding: 1px 8px; border-radius: 10px; font-size: 12px; border: 1px solid #d0d7de; }
    .confidence-high { background: #e6ffed; }
    .confidence-medium { background: #fff8e6; }
    .confidence-low { background: #ffeef0; }
    .enhanced-badge { padding: 1px 8px; border-radius: 10px; font-size: 11px; background: #ddf4ff; color: #0969da; }
    .error-suggestion { color: #22863a; font-size: 13px; }
    .suggestion-label { font-weight: 600; }
    .suggestion-list { margin-left: 20px; font-size: 13px; }
    .error-meta { display: flex; gap: 8px; align-items: center; flex-wrap: wrap; margin-top: 6px; }
    .meta-chip { padding: 1px 8px; border-radius: 10px; font-size: 11px; background: #f0f3f6; color: #586069; }
    .error-segment { background: #fff8f8; border: 1px solid #f1c0c0; border-radius: 4px; padding: 8px; font-size: 13px; margin: 6px 0; white-space: pre-wrap; }
    .feedback-row { display: flex; align-items: center; gap: 8px; margin-top: 8px; flex-wrap: wrap; }
    .feedback-prompt, .feedback-confirmed { font-size: 13px; color: #586069; }
    .feedback-btn { border: 1px solid #d0d7de; background: #f6f8fa; border-radius: 4px; padding: 3px 10px; font-size: 12px; cursor: pointer; }
    .feedback-btn:hover { background: #eaeef2; }
    .feedback-form { display: inline; }
    .feedback-reason-fieldset { border: 1px solid #d0d7de; border-radius: 4px; padding: 8px; margin: 6px 0; display: flex; flex-direction: column; gap: 4px; font-size: 13px; }
    .reason-missing { border-color: #d73a49; box-shadow: 0 0 0 2px rgba(215,58,73,0.3); }
    details.confidence-details, details.confidence-analysis, details.fix-options, details.summary-group, details.feedback-reason { font-size: 13px; }
    details summary { cursor: pointer; }
    .confidence-json { background: #f6f8fa; border-radius: 4px; padding: 8px; font-size: 12px; overflow-x: auto; }
    .stats-sidebar { border: 1px solid #e1e4e8; border-radius: 6px; padding: 14px; background: #fafbfc; }
    .overall-score { text-align: center; padding: 12px; border-radius: 6px; margin-bottom: 12px; color: white; }
    .score-good { background: #28a745; }
    .score-warn { background: #d9a400; }
    .score-bad { background: #d73a49; }
    .score-value { font-size: 28px; font-weight: 700; display: block; }
    .score-label { font-size: 12px; text-transform: uppercase; }
    .stats-counts { display: flex; gap: 12px; justify-content: center; font-size: 13px; color: #586069; margin-bottom: 10px; }
    .stat-metric { margin-bottom: 10px; }
    .stat-metric-head { display: flex; justify-content: space-between; font-size: 13px; }
    .stat-bar { height: 6px; border-radius: 3px; background: #eaecef; overflow: hidden; }
    .stat-bar-fill { height: 100%; }
    .level-good .stat-bar-fill { background: #28a745; }
    .level-warn .stat-bar-fill { background: #d9a400; }
    .level-bad .stat-bar-fill { background: #d73a49; }
    .grade-badge { text-align: center; padding: 10px; border-radius: 6px; margin: 12px 0; }
    .grade-met { background: #e6ffed; border: 1px solid #34d058; }
    .grade-miss { background: #ffeef0; border: 1px solid #d73a49; }
    .grade-value { font-weight: 700; display: block; }
    .grade-target { font-size: 12px; color: #586069; }
    .recommendations ul { margin-left: 18px; font-size: 13px; }
    .empty-state { text-align: center; padding: 30px; color: #586069; }
    .empty-success { color: #22863a; }
    .content-highlight { border-radius: 2px; }
    .flat-content { white-space: pre-wrap; word-wrap: break-word; font-size: 15px; border: 1px solid #e1e4e8; border-radius: 6px; padding: 14px; background: white; margin-bottom: 16px; }
    .rewrite-panel { border: 1px solid #e1e4e8; border-radius: 6px; margin-top: 16px; }
    .rewrite-panel-head { padding: 10px 14px; background: #f0f3f6; font-weight: 600; font-size: 14px; }
    .rewrite-text { white-space: pre-wrap; padding: 14px; font-size: 14px; }
    .improvement-list { margin: 0 14px 14px 32px; font-size: 13px; }
    .metadata-form { display: grid; gap: 10px; max-width: 640px; }
    .metadata-form label { font-size: 13px; font-weight: 600; }
    .metadata-form input, .metadata-form textarea, .metadata-form select {
      width: 100%; padding: 8px; border: 1px solid #d0d7de; border-radius: 4px; font-size: 14px;
    }
    .metadata-form button { justify-self: start; padding: 8px 20px; background: #667eea; color: white; border: none; border-radius: 4px; cursor: pointer; }
    .compliance-banner { padding: 14px; border-radius: 6px; font-weight: 600; margin-bottom: 14px; }
    .compliance-compliant { background: #e6ffed; color: #22863a; }
    .compliance-mostly_compliant { background: #fff8e6; color: #735c00; }
    .compliance-needs_improvement { background: #fff1e5; color: #953800; }
    .compliance-non_compliant { background: #ffeef0; color: #86181d; }
    .severity-chips { display: flex; gap: 8px; margin-bottom: 14px; }
    .severity-chip { padding: 2px 10px; border-radius: 10px; font-size: 12px; }
    .severity-high { background: #ffeef0; color: #86181d; }
    .severity-medium { background: #fff8e6; color: #735c00; }
    .severity-low { background: #ddf4ff; color: #0969da; }
    .export-section { margin-bottom: 20px; }
    .export-section h2 { font-size: 16px; margin-bottom: 6px; }
    .export-body { width: 100%; min-height: 160px; font-family: monospace; font-size: 13px; padding: 10px; border: 1px solid #d0d7de; border-radius: 4px; }
    .share-qr { text-align: center; margin: 16px 0; }
    .share-qr img { border: 1px solid #e1e4e8; border-radius: 6px; }
    .help-body h1, .help-body h2 { margin: 16px 0 8px; }
    .help-body p, .help-body ul { margin-bottom: 10px; }
    .help-body ul { margin-left: 22px; }
  </style>
</head>
<body>
  <div class="container">
    <header>
      <h1>{{.SiteName}}</h1>
      <p class="subtitle">{{.Subtitle}}</p>
    </header>
    <nav>
      {{range .Nav}}<a href="{{.Href}}">{{.Label}}</a>{{end}}
    </nav>
    <main>
      {{if .Flash.Error}}<div class="flash flash-error">{{.Flash.Error}}</div>{{end}}
      {{if .Flash.Success}}<div class="flash flash-success">{{.Flash.Success}}</div>{{end}}
      {{.Body}}
    </main>
  </div>
</body>
</html>`

var compiledPageTemplate = util.MustCompileTemplate("page", nil, pageTemplate)

// navLink is one entry in the page navigation strip.
type navLink struct {
	Href  string
	Label string
}

// PageData feeds the page shell template. Body is pre-composed fragment HTML;
// everything inside it has already been escaped at build time.
type PageData struct {
	Title      string
	SiteName   string
	Subtitle   string
	ThemeColor string
	Favicon    string
	Nav        []navLink
	Flash      FlashMessages
	Body       template.HTML
}

// reportNav builds the navigation strip for one report's pages.
func reportNav(reportID string) []navLink {
	base := "/html/report/" + reportID
	return []navLink{
		{Href: base, Label: "Report"},
		{Href: base + "/metadata", Label: "Metadata"},
		{Href: base + "/compliance", Label: "Compliance"},
		{Href: base + "/export", Label: "Export"},
		{Href: "/html/help", Label: "Help"},
	}
}

// renderPage writes a full page through the shell template.
func renderPage(w http.ResponseWriter, title, subtitle string, nav []navLink, flash FlashMessages, body string) {
	site := GetSiteConfig()
	data := PageData{
		Title:      site.FormatTitle(title),
		SiteName:   site.Site.Name,
		Subtitle:   subtitle,
		ThemeColor: site.Meta.ThemeColor.Light,
		Favicon:    site.Links.Favicon,
		Nav:        nav,
		Flash:      flash,
		Body:       template.HTML(body),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := compiledPageTemplate.Execute(w, data); err != nil {
		slog.Error("page template execution failed", "title", title, "error", err)
	}
}

// safeFragment runs one top-level render step with a recover guard. A panic
// inside a view never escapes the composer; the fragment degrades to a
// placeholder and the failure is logged.
func safeFragment(name string, build func() string) (out string) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("render fragment failed", "fragment", name, "panic", rec)
			out = `<div class="empty-state"><p>This section could not be rendered.</p></div>`
		}
	}()
	return build()
}

// renderReportHTML composes the report body: the two-column layout with the
// structural block view (or the flat fallback) on the left and the statistics
// sidebar on the right, followed by rewrite output when present.
func renderReportHTML(report *types.Report, ctx *renderContext) string {
	var sb strings.Builder
	sb.WriteString(`<div id="analysis-results" class="report-columns">`)

	sb.WriteString(`<div class="report-main">`)
	if len(report.StructuralBlocks) > 0 {
		sb.WriteString(safeFragment("blocks", func() string {
			return NewBlockRenderer(ctx).RenderBlocks(report.StructuralBlocks)
		}))
	} else {
		sb.WriteString(safeFragment("flat", func() string {
			return renderFlatFallback(report, ctx)
		}))
	}
	sb.WriteString(`</div>`)

	sb.WriteString(`<aside class="report-side">`)
	if report.Analysis != nil {
		sb.WriteString(safeFragment("statistics", func() string {
			return RenderStatisticsSidebar(report.Analysis)
		}))
	}
	sb.WriteString(`</aside>`)
	sb.WriteString(`</div>`)

	if report.Rewrite != nil || report.Refinement != nil {
		sb.WriteString(safeFragment("rewrite", func() string {
			return renderRewriteResults(report.Rewrite, report.Refinement)
		}))
	}

	IncrementReportsRendered()
	return sb.String()
}

// renderFlatFallback renders the single-content view used when no structural
// tree is present: highlighted content plus the grouped error summary.
func renderFlatFallback(report *types.Report, ctx *renderContext) string {
	var errors []types.AnalysisError
	if report.Analysis != nil {
		errors = report.Analysis.Errors
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, `<div class="flat-content">%s</div>`, HighlightContent(report.Content, errors))
	sb.WriteString(RenderErrorSummary(errors, ctx))
	return sb.String()
}
