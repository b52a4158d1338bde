package scraper

import (
	"io"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var bidKeywords = []string{
	"bid", "rfp", "rfq", "proposal", "procurement", "quote", "tender",
	"materials", "gravel", "asphalt", "concrete", "road", "construction",
	"supply", "purchase", "contract", "award",
}

var documentExtensions = []string{".pdf", ".doc", ".docx", ".xls", ".xlsx"}

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{1,2}[-/]\d{1,2}[-/]\d{2,4}\b`),
	regexp.MustCompile(`\b\d{4}[-/]\d{1,2}[-/]\d{1,2}\b`),
	regexp.MustCompile(`(?i)\b(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+\d{1,2},?\s+\d{4}\b`),
	regexp.MustCompile(`(?i)\b\d{1,2}\s+(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+\d{4}\b`),
}

// candidate is a bid notice pulled from a page before persistence.
type candidate struct {
	Title       string
	URL         string
	Description string
	DatePosted  string
	Section     string
}

// extractBids walks the page and collects links that look like bid or
// procurement notices, carrying the nearest heading as section context.
func extractBids(body io.Reader, baseURL string) ([]candidate, error) {
	root, err := html.Parse(body)
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	var out []candidate
	var section string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "h1", "h2", "h3", "h4", "h5", "h6":
				section = nodeText(n)
			case "a":
				if c, ok := linkCandidate(n, base, section); ok {
					out = append(out, c)
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)

	return dedupe(out), nil
}

func linkCandidate(n *html.Node, base *url.URL, section string) (candidate, bool) {
	var href string
	for _, attr := range n.Attr {
		if attr.Key == "href" {
			href = attr.Val
			break
		}
	}
	text := nodeText(n)
	if href == "" || len(text) <= 5 {
		return candidate{}, false
	}
	if !isBidRelated(text) && !isBidRelated(href) && !isDocumentLink(href) {
		return candidate{}, false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return candidate{}, false
	}

	title := text
	if len(title) > 200 {
		title = title[:200]
	}

	return candidate{
		Title:       title,
		URL:         base.ResolveReference(ref).String(),
		Description: text,
		DatePosted:  extractDate(text),
		Section:     section,
	}, true
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func isBidRelated(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range bidKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func isDocumentLink(href string) bool {
	lower := strings.ToLower(href)
	for _, ext := range documentExtensions {
		if strings.Contains(lower, ext) {
			return true
		}
	}
	return false
}

func extractDate(text string) string {
	for _, pattern := range datePatterns {
		if match := pattern.FindString(text); match != "" {
			return match
		}
	}
	return ""
}

func dedupe(in []candidate) []candidate {
	seen := make(map[string]struct{}, len(in))
	out := make([]candidate, 0, len(in))
	for _, c := range in {
		key := c.Title + "|" + c.URL
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}
