package main

import (
	"strings"
	"testing"
)

func TestEscapeHTML(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain", "hello world", "hello world"},
		{"angle_brackets", "<script>alert(1)</script>", "&lt;script&gt;alert(1)&lt;/script&gt;"},
		{"ampersand", "a & b", "a &amp; b"},
		{"double_quote", `say "hi"`, "say &#34;hi&#34;"},
		{"single_quote", "it's", "it&#39;s"},
		{"unicode_untouched", "héllo 世界", "héllo 世界"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := EscapeHTML(tc.input)
			if got != tc.want {
				t.Errorf("EscapeHTML(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

// Escaped output must contain no raw < > " ' characters, whatever goes in.
func TestEscapeHTMLOutputIsInert(t *testing.T) {
	inputs := []string{
		"<b onmouseover=alert(1)>x</b>",
		`"><img src=x onerror=alert(1)>`,
		"a < b > c & d ' e \" f",
		"<mark title=\"inject\">",
	}
	for _, input := range inputs {
		got := EscapeHTML(input)
		if strings.ContainsAny(got, `<>"'`) {
			t.Errorf("EscapeHTML(%q) leaked a metacharacter: %q", input, got)
		}
	}
}

func TestRenderTableCellInline(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "cell text", "cell text"},
		{"allowed_code", "use <code>go test</code> here", "use <code>go test</code> here"},
		{"allowed_strong", "<strong>bold</strong>", "<strong>bold</strong>"},
		{"allowed_em_mixed_case", "<EM>x</EM>", "<EM>x</EM>"},
		{"disallowed_script", "<script>x</script>", "&lt;script&gt;x&lt;/script&gt;"},
		{"disallowed_mark", "<mark>x</mark>", "&lt;mark&gt;x&lt;/mark&gt;"},
		// A whitelisted tag carrying attributes stays escaped.
		{"attribute_stays_escaped", `<code class="x">y</code>`, "&lt;code class=&#34;x&#34;&gt;y</code>"},
		{"bare_angle", "a < b", "a &lt; b"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := RenderTableCellInline(tc.input)
			if got != tc.want {
				t.Errorf("RenderTableCellInline(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
