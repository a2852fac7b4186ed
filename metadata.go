package main

import (
	"fmt"
	"net/http"
	"strings"

	"prose-server/internal/types"
)

// contentTypeOptions are the document types the metadata backend recognises.
var contentTypeOptions = []string{"concept", "task", "reference", "tutorial", "troubleshooting"}

// renderMetadataForm renders the metadata editor for one report. Fields map
// one-to-one onto the metadata record; list fields edit as comma-separated
// text.
func renderMetadataForm(report *types.Report, csrfToken string) string {
	meta := report.Metadata
	if meta == nil {
		meta = &types.Metadata{}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<form method="post" action="/html/report/%s/metadata" class="metadata-form">`, EscapeHTML(report.ID))
	fmt.Fprintf(&sb, `<input type="hidden" name="csrf_token" value="%s">`, EscapeHTML(csrfToken))

	fmt.Fprintf(&sb, `<label>Title<input type="text" name="title" value="%s"></label>`, EscapeHTML(meta.Title))
	fmt.Fprintf(&sb, `<label>Description<textarea name="description" rows="3">%s</textarea></label>`, EscapeHTML(meta.Description))
	fmt.Fprintf(&sb, `<label>Keywords (comma-separated)<input type="text" name="keywords" value="%s"></label>`,
		EscapeHTML(strings.Join(meta.Keywords, ", ")))
	fmt.Fprintf(&sb, `<label>Taxonomy tags (comma-separated)<input type="text" name="taxonomy_tags" value="%s"></label>`,
		EscapeHTML(strings.Join(meta.TaxonomyTags, ", ")))
	fmt.Fprintf(&sb, `<label>Audience<input type="text" name="audience" value="%s"></label>`, EscapeHTML(meta.Audience))
	fmt.Fprintf(&sb, `<label>Intent<input type="text" name="intent" value="%s"></label>`, EscapeHTML(meta.Intent))

	sb.WriteString(`<label>Content type<select name="content_type">`)
	sb.WriteString(`<option value=""></option>`)
	for _, option := range contentTypeOptions {
		selected := ""
		if option == meta.ContentType {
			selected = ` selected`
		}
		fmt.Fprintf(&sb, `<option value="%s"%s>%s</option>`, option, selected, EscapeHTML(kindLabel(option)))
	}
	sb.WriteString(`</select></label>`)

	sb.WriteString(`<button type="submit">Save metadata</button>`)
	sb.WriteString(`</form>`)
	return sb.String()
}

// metadataFromForm builds the metadata record from a submitted editor form.
func metadataFromForm(r *http.Request) *types.Metadata {
	return &types.Metadata{
		Title:        strings.TrimSpace(r.FormValue("title")),
		Description:  strings.TrimSpace(r.FormValue("description")),
		Keywords:     splitCommaList(r.FormValue("keywords")),
		TaxonomyTags: splitCommaList(r.FormValue("taxonomy_tags")),
		Audience:     strings.TrimSpace(r.FormValue("audience")),
		Intent:       strings.TrimSpace(r.FormValue("intent")),
		ContentType:  strings.TrimSpace(r.FormValue("content_type")),
	}
}

func splitCommaList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
