package extract

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Page is a fetched resort page ready for extraction
type Page struct {
	URL  string
	Doc  *goquery.Document
	Text string
	HTML string
}

// NewPage parses an HTML body into a Page
func NewPage(r io.Reader, url string) (*Page, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read page: %w", err)
	}
	return ParseHTML(string(raw), url)
}

// ParseHTML parses an HTML string into a Page
func ParseHTML(html, url string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &Page{
		URL:  url,
		Doc:  doc,
		Text: visibleText(doc.Selection),
		HTML: html,
	}, nil
}

var horizontalSpace = regexp.MustCompile(`[ \t\r\f\v\x{00a0}]+`)

// visibleText returns the document's text with one line per text node.
// Text nodes are separated so adjacent table cells do not run together.
func visibleText(sel *goquery.Selection) string {
	var lines []string
	var walk func(*goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, c *goquery.Selection) {
			switch goquery.NodeName(c) {
			case "script", "style", "noscript", "template":
				return
			case "#text":
				line := strings.TrimSpace(horizontalSpace.ReplaceAllString(c.Text(), " "))
				if line != "" {
					lines = append(lines, line)
				}
			default:
				walk(c)
			}
		})
	}
	walk(sel)
	return strings.Join(lines, "\n")
}
