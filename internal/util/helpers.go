package util

import (
	"html/template"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strings"
)

// =============================================================================
// Template Compilation Helpers
// =============================================================================

// MustCompileTemplate compiles a template with the given name and content.
// Panics with a fatal error if compilation fails.
// This is used during initialization when template failures are unrecoverable.
func MustCompileTemplate(name string, funcs template.FuncMap, content string) *template.Template {
	t, err := template.New(name).Funcs(funcs).Parse(content)
	if err != nil {
		slog.Error("failed to compile template", "template", name, "error", err)
		os.Exit(1)
	}
	return t
}

// =============================================================================
// String Utilities
// =============================================================================

var whitespaceRegex = regexp.MustCompile(`\s+`)

// CollapseWhitespace trims a string and collapses internal whitespace runs to
// single spaces. Used to normalise text identifiers before fingerprinting.
func CollapseWhitespace(s string) string {
	return whitespaceRegex.ReplaceAllString(strings.TrimSpace(s), " ")
}

// TruncateString truncates a string to maxLen bytes with no suffix.
// Fingerprint slots truncate exactly, so no ellipsis is added here.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

// TruncateStringRunes truncates a string to maxLen runes (Unicode-aware),
// adding "..." suffix if truncation occurs. Used for display text only.
func TruncateStringRunes(s string, maxLen int) string {
	if maxLen <= 3 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

// =============================================================================
// Slice Utilities
// =============================================================================

// FilterSlice returns a new slice containing only elements that satisfy the
// predicate. The original slice is not modified.
func FilterSlice[T any](items []T, predicate func(T) bool) []T {
	result := make([]T, 0, len(items))
	for _, item := range items {
		if predicate(item) {
			result = append(result, item)
		}
	}
	return result
}

// SortedCopy returns a sorted copy of a string slice.
// Useful for building stable cache keys from unordered inputs.
func SortedCopy(slice []string) []string {
	if len(slice) == 0 {
		return nil
	}
	sorted := make([]string, len(slice))
	copy(sorted, slice)
	sort.Strings(sorted)
	return sorted
}

// MapKeys returns all keys from a map as a slice.
// Order is not guaranteed (map iteration order).
func MapKeys[K comparable, V any](m map[K]V) []K {
	result := make([]K, 0, len(m))
	for k := range m {
		result = append(result, k)
	}
	return result
}
