package main

import (
	"html"
	"regexp"
)

// EscapeHTML maps the five HTML metacharacters (& < > " ') to entities.
// Empty input yields an empty string. Every piece of backend-supplied text
// passes through here before reaching a page; RenderTableCellInline is the
// only path that re-enables any markup afterwards.
func EscapeHTML(text string) string {
	if text == "" {
		return ""
	}
	return html.EscapeString(text)
}

// inlineWhitelistRegex matches the escaped form of exactly the allowed inline
// tags, case-insensitively. A tag carrying attributes does not match and so
// stays escaped; attributes are never carried over.
var inlineWhitelistRegex = regexp.MustCompile(`(?i)&lt;(/?)(code|strong|em|b|i)&gt;`)

// RenderTableCellInline escapes cell text and then reverse-escapes the fixed
// inline whitelist: <code>, <strong>, <em>, <b>, <i> and their closers.
// Every other "<" stays escaped. The output contains no tags outside the
// whitelist and no raw & < > outside whitelisted tag openers and closers.
func RenderTableCellInline(text string) string {
	escaped := EscapeHTML(text)
	return inlineWhitelistRegex.ReplaceAllString(escaped, "<$1$2>")
}
