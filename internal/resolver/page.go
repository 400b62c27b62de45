package resolver

import (
	"bufio"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Page wraps a parsed markup tree for resolution. The caller owns parsing
// and fetching; the resolver only reads the tree.
type Page struct {
	Doc *goquery.Document
	URL *url.URL

	text string // flattened text, built lazily
}

// NewPage builds a Page from a parsed document. rawURL may be empty when the
// source URL is unknown; URLParameter strategies then yield nothing.
func NewPage(doc *goquery.Document, rawURL string) *Page {
	p := &Page{Doc: doc}
	if rawURL != "" {
		if u, err := url.Parse(rawURL); err == nil {
			p.URL = u
		}
	}
	return p
}

// ParsePage parses raw HTML into a Page.
func ParsePage(html, rawURL string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	return NewPage(doc, rawURL), nil
}

// Text returns the flattened document text with collapsed whitespace,
// one line per block, cached after the first call.
func (p *Page) Text() string {
	if p.text == "" && p.Doc != nil {
		p.text = flattenText(p.Doc)
	}
	return p.text
}

func flattenText(doc *goquery.Document) string {
	var b strings.Builder
	doc.Find("h1,h2,h3,h4,h5,p,li,td,th,dt,dd,div,span,label").Each(func(_ int, s *goquery.Selection) {
		if s.Children().Length() > 0 {
			return // only leaf blocks; parents would duplicate text
		}
		if line := normalizeSpace(s.Text()); line != "" {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	})
	return b.String()
}

// normalizeSpace collapses runs of whitespace, including non-breaking
// spaces, into single spaces.
func normalizeSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	scanner := bufio.NewScanner(strings.NewReader(s))
	for scanner.Scan() {
		line := strings.TrimSpace(strings.ReplaceAll(scanner.Text(), " ", " "))
		if line != "" {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(strings.Join(strings.Fields(line), " "))
		}
	}
	return b.String()
}
