package main

import (
	"fmt"
	"strings"

	"prose-server/internal/types"
)

// ErrorStyle is the visual descriptor for an error kind: accent colour,
// icon token and alert severity. Icon tokens are opaque class names for the
// stylesheet; the renderer never interprets them.
type ErrorStyle struct {
	Color    string
	Icon     string
	Severity string // success | info | warning | danger
}

var errorStyles = map[string]ErrorStyle{
	"style":         {Color: "#6f42c1", Icon: "icon-style", Severity: "info"},
	"grammar":       {Color: "#d6336c", Icon: "icon-grammar", Severity: "danger"},
	"spelling":      {Color: "#c92a2a", Icon: "icon-spelling", Severity: "danger"},
	"structure":     {Color: "#1971c2", Icon: "icon-structure", Severity: "warning"},
	"lists":         {Color: "#1971c2", Icon: "icon-list", Severity: "warning"},
	"punctuation":   {Color: "#e8590c", Icon: "icon-punctuation", Severity: "warning"},
	"terminology":   {Color: "#0ca678", Icon: "icon-terminology", Severity: "info"},
	"word_usage":    {Color: "#0ca678", Icon: "icon-terminology", Severity: "info"},
	"passive_voice": {Color: "#f08c00", Icon: "icon-passive", Severity: "warning"},
	"readability":   {Color: "#5f3dc4", Icon: "icon-readability", Severity: "info"},
	"tone":          {Color: "#862e9c", Icon: "icon-tone", Severity: "info"},
}

// ErrorStyleFor looks up the visual descriptor for an error kind.
// Lookup is case-insensitive; unknown kinds fall back to "style".
func ErrorStyleFor(kind string) ErrorStyle {
	if style, ok := errorStyles[strings.ToLower(kind)]; ok {
		return style
	}
	return errorStyles["style"]
}

// BlockStyle is the visual descriptor for a block kind.
type BlockStyle struct {
	Icon        string
	Gradient    string
	DisplayName string
}

var blockStyles = map[string]BlockStyle{
	"paragraph":        {Icon: "icon-paragraph", Gradient: "linear-gradient(135deg, #f8f9fa, #e9ecef)", DisplayName: "PARAGRAPH"},
	"heading":          {Icon: "icon-heading", Gradient: "linear-gradient(135deg, #e7f5ff, #d0ebff)", DisplayName: "HEADING"},
	"ordered_list":     {Icon: "icon-olist", Gradient: "linear-gradient(135deg, #fff9db, #fff3bf)", DisplayName: "ORDERED LIST"},
	"unordered_list":   {Icon: "icon-ulist", Gradient: "linear-gradient(135deg, #fff9db, #fff3bf)", DisplayName: "UNORDERED LIST"},
	"description_list": {Icon: "icon-dlist", Gradient: "linear-gradient(135deg, #fff9db, #fff3bf)", DisplayName: "DESCRIPTION LIST"},
	"table":            {Icon: "icon-table", Gradient: "linear-gradient(135deg, #e6fcf5, #c3fae8)", DisplayName: "TABLE"},
	"section":          {Icon: "icon-section", Gradient: "linear-gradient(135deg, #f3f0ff, #e5dbff)", DisplayName: "SECTION"},
	"admonition":       {Icon: "icon-admonition", Gradient: "linear-gradient(135deg, #fff4e6, #ffe8cc)", DisplayName: "ADMONITION"},
	"listing":          {Icon: "icon-code", Gradient: "linear-gradient(135deg, #f1f3f5, #dee2e6)", DisplayName: "CODE LISTING"},
	"literal":          {Icon: "icon-code", Gradient: "linear-gradient(135deg, #f1f3f5, #dee2e6)", DisplayName: "LITERAL"},
	"quote":            {Icon: "icon-quote", Gradient: "linear-gradient(135deg, #f8f9fa, #e9ecef)", DisplayName: "QUOTE"},
	"sidebar":          {Icon: "icon-sidebar", Gradient: "linear-gradient(135deg, #f8f9fa, #e9ecef)", DisplayName: "SIDEBAR"},
	"example":          {Icon: "icon-example", Gradient: "linear-gradient(135deg, #f8f9fa, #e9ecef)", DisplayName: "EXAMPLE"},
	"verse":            {Icon: "icon-verse", Gradient: "linear-gradient(135deg, #f8f9fa, #e9ecef)", DisplayName: "VERSE"},
	"attribute_entry":  {Icon: "icon-attribute", Gradient: "linear-gradient(135deg, #f1f3f5, #dee2e6)", DisplayName: "ATTRIBUTE ENTRY"},
	"comment":          {Icon: "icon-comment", Gradient: "linear-gradient(135deg, #f1f3f5, #dee2e6)", DisplayName: "COMMENT"},
	"image":            {Icon: "icon-image", Gradient: "linear-gradient(135deg, #f1f3f5, #dee2e6)", DisplayName: "IMAGE"},
	"audio":            {Icon: "icon-audio", Gradient: "linear-gradient(135deg, #f1f3f5, #dee2e6)", DisplayName: "AUDIO"},
	"video":            {Icon: "icon-video", Gradient: "linear-gradient(135deg, #f1f3f5, #dee2e6)", DisplayName: "VIDEO"},
}

// blockKindAliases maps the short backend spellings onto the canonical kinds.
var blockKindAliases = map[string]string{
	"olist": "ordered_list",
	"ulist": "unordered_list",
	"dlist": "description_list",
}

// NormalizeBlockKind lower-cases a block kind and resolves aliases.
func NormalizeBlockKind(kind string) string {
	kind = strings.ToLower(kind)
	if canonical, ok := blockKindAliases[kind]; ok {
		return canonical
	}
	return kind
}

// BlockStyleFor looks up the visual descriptor for a block kind.
// Unknown kinds fall back to paragraph.
func BlockStyleFor(kind string) BlockStyle {
	if style, ok := blockStyles[NormalizeBlockKind(kind)]; ok {
		return style
	}
	return blockStyles["paragraph"]
}

// BlockDisplayName returns the header label for a block: headings carry their
// level, admonitions their type in uppercase.
func BlockDisplayName(b *types.Block) string {
	style := BlockStyleFor(b.Kind)
	switch NormalizeBlockKind(b.Kind) {
	case "heading":
		if b.Level > 0 {
			return fmt.Sprintf("%s (Level %d)", style.DisplayName, b.Level)
		}
	case "admonition":
		if b.AdmonitionType != "" {
			return style.DisplayName + ": " + strings.ToUpper(b.AdmonitionType)
		}
	}
	return style.DisplayName
}

// kindLabel renders an error kind slug as a human label: "passive_voice"
// becomes "Passive Voice".
func kindLabel(kind string) string {
	if kind == "" {
		kind = "style"
	}
	words := strings.Split(strings.ToLower(kind), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
