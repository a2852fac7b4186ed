package main

import (
	"bytes"
	"log/slog"
	"sync"

	"github.com/yuin/goldmark"
)

const helpMarkdown = `# Using the report server

Submit an analysis with ` + "`POST /analyses`" + `. The body is the JSON the
analysis backend produces:

- ` + "`analysis`" + ` — errors, statistics, technical writing metrics, overall score
- ` + "`content`" + ` — the analysed text
- ` + "`structural_blocks`" + ` — optional block tree; without it the report falls
  back to the highlighted flat view
- optional companion panels: ` + "`metadata`" + `, ` + "`compliance`" + `, ` + "`rewrite`" + `,
  ` + "`refinement`" + `

The response redirects to the report page. From there:

## Reading the report

Each block renders as a card with a status chip: **Clean**, **N Issue(s)** or
**Skipped**. Container chips aggregate the issues of everything inside them.
Issues carry a confidence badge; low-confidence findings deserve a second look
before acting on them.

## Feedback

Every issue has a **Was this helpful?** row. Verdicts are stored per browser
session and mirrored to the analysis backend so rules can be tuned. Marking
**Not helpful** asks for a reason; pick the closest category.

## Other pages

- **Metadata** — edit title, description, keywords and taxonomy tags.
- **Compliance** — the modular-compliance findings for the document type.
- **Export** — Markdown and plain-text exports plus a share QR code.
`

var (
	helpHTMLOnce sync.Once
	helpHTML     string
)

// renderHelpHTML converts the embedded guide to HTML once. The source is a
// trusted compile-time constant, so the output embeds directly.
func renderHelpHTML() string {
	helpHTMLOnce.Do(func() {
		var buf bytes.Buffer
		if err := goldmark.Convert([]byte(helpMarkdown), &buf); err != nil {
			slog.Error("help guide conversion failed", "error", err)
			helpHTML = `<div class="empty-state"><p>The guide is unavailable.</p></div>`
			return
		}
		helpHTML = `<div class="help-body">` + buf.String() + `</div>`
	})
	return helpHTML
}
