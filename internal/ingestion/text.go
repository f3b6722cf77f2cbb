// Package ingestion normalizes submitted resume and job description text before scoring and comparison.
package ingestion

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	whitespaceRun  = regexp.MustCompile(`\s+`)
	blankLineRun   = regexp.MustCompile(`\n\n\n+`)
	htmlTagPattern = regexp.MustCompile(`(?i)<\s*/?\s*(p|div|br|li|ul|ol|h[1-6]|span|strong|em|b|i|a|table|tr|td|section|article)\b[^>]*>`)
)

// LooksLikeHTML reports whether content contains common markup tags, as job
// descriptions pasted from a job board often do.
func LooksLikeHTML(content string) bool {
	return htmlTagPattern.MatchString(content)
}

// HTMLToText converts HTML to plain text, keeping one line per block element
// and turning list items into "- " bullets. Scripts and styles are dropped.
func HTMLToText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, noscript").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("li").Each(func(_ int, s *goquery.Selection) {
		s.PrependHtml("- ")
		s.AppendHtml("\n")
	})
	doc.Find("p, div, h1, h2, h3, h4, h5, h6, tr, section, article").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	return doc.Text(), nil
}

// CleanText cleans and normalizes text content while preserving structure.
// HTML input is converted to text first; if it cannot be parsed it is cleaned as-is.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	if LooksLikeHTML(content) {
		if text, err := HTMLToText(content); err == nil {
			content = text
		}
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		cleaned = append(cleaned, cleanLine(line))
	}

	result := blankLineRun.ReplaceAllString(strings.Join(cleaned, "\n"), "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine trims a line and collapses inner whitespace, keeping markdown
// headings and bullet markers intact.
func cleanLine(line string) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "#") {
		return trimmed
	}
	return whitespaceRun.ReplaceAllString(trimmed, " ")
}

// Fingerprint reduces text to a case- and whitespace-insensitive form used to
// spot the same resume submitted twice.
func Fingerprint(content string) string {
	content = CleanText(content)
	content = whitespaceRun.ReplaceAllString(content, " ")
	return strings.ToLower(strings.TrimSpace(content))
}
