// Static markup validator for rendered report pages.
// Fetches pages from a running server (or reads saved HTML files) and checks
// the markup for the structural rules the renderer is supposed to uphold.
package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// Severity levels
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// CheckResult represents a single validation finding
type CheckResult struct {
	Rule     string
	Message  string
	Source   string
	Severity string
}

func main() {
	serverURL := flag.String("url", "", "base URL of a running server to fetch pages from")
	pages := flag.String("pages", "/html/help", "comma-separated page paths to fetch")
	flag.Parse()

	var results []CheckResult

	if *serverURL != "" {
		client := &http.Client{Timeout: 10 * time.Second}
		for _, page := range strings.Split(*pages, ",") {
			page = strings.TrimSpace(page)
			if page == "" {
				continue
			}
			body, err := fetchPage(client, strings.TrimSuffix(*serverURL, "/")+page)
			if err != nil {
				results = append(results, CheckResult{
					Rule: "fetch", Message: err.Error(), Source: page, Severity: SeverityError,
				})
				continue
			}
			results = append(results, validateDocument(page, body)...)
		}
	}

	for _, path := range flag.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			results = append(results, CheckResult{
				Rule: "read", Message: err.Error(), Source: path, Severity: SeverityError,
			})
			continue
		}
		results = append(results, validateDocument(path, string(data))...)
	}

	errors := 0
	for _, result := range results {
		fmt.Printf("[%s] %s: %s (%s)\n", result.Severity, result.Source, result.Message, result.Rule)
		if result.Severity == SeverityError {
			errors++
		}
	}
	fmt.Printf("\n%d finding(s), %d error(s)\n", len(results), errors)
	if errors > 0 {
		os.Exit(1)
	}
}

func fetchPage(client *http.Client, url string) (string, error) {
	resp, err := client.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// validateDocument parses one page and runs the structural checks.
func validateDocument(source, body string) []CheckResult {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return []CheckResult{{
			Rule: "parse", Message: "HTML does not parse: " + err.Error(),
			Source: source, Severity: SeverityError,
		}}
	}

	var results []CheckResult
	ids := make(map[string]int)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			results = append(results, checkElement(source, n, ids)...)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	for id, count := range ids {
		if count > 1 {
			results = append(results, CheckResult{
				Rule:     "duplicate-id",
				Message:  fmt.Sprintf("id %q appears %d times", id, count),
				Source:   source,
				Severity: SeverityError,
			})
		}
	}
	return results
}

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func checkElement(source string, n *html.Node, ids map[string]int) []CheckResult {
	var results []CheckResult

	if id, ok := attr(n, "id"); ok && id != "" {
		ids[id]++
	}

	switch n.Data {
	case "form":
		// Every mutating form must carry the CSRF token.
		if method, _ := attr(n, "method"); strings.EqualFold(method, "post") {
			if !hasHiddenInput(n, "csrf_token") {
				results = append(results, CheckResult{
					Rule:     "csrf-token",
					Message:  "POST form without csrf_token input",
					Source:   source,
					Severity: SeverityError,
				})
			}
		}
	case "img":
		if _, ok := attr(n, "alt"); !ok {
			results = append(results, CheckResult{
				Rule:     "img-alt",
				Message:  "img without alt attribute",
				Source:   source,
				Severity: SeverityWarning,
			})
		}
	case "mark":
		// Highlight marks must carry the message tooltip.
		if title, ok := attr(n, "title"); !ok || title == "" {
			results = append(results, CheckResult{
				Rule:     "mark-title",
				Message:  "content highlight without title",
				Source:   source,
				Severity: SeverityWarning,
			})
		}
	case "table":
		if !hasDescendant(n, "thead") {
			results = append(results, CheckResult{
				Rule:     "table-header",
				Message:  "table without thead",
				Source:   source,
				Severity: SeverityWarning,
			})
		}
	}
	return results
}

func hasHiddenInput(form *html.Node, name string) bool {
	var found bool
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found {
			return
		}
		if n.Type == html.ElementNode && n.Data == "input" {
			if v, _ := attr(n, "name"); v == name {
				found = true
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(form)
	return found
}

func hasDescendant(n *html.Node, tag string) bool {
	var found bool
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if found {
			return
		}
		if node.Type == html.ElementNode && node.Data == tag {
			found = true
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return found
}
