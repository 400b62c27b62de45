package resolver

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// searchLabels is the most drift-resistant strategy: labels are user-facing
// strings that survive markup redesigns that break selectors. Primary-
// language labels are tried before secondary ones; for each label the
// adjacency ladder below runs until a pattern yields a non-empty value.
func searchLabels(page *Page, primary, secondary []string) string {
	if page.Doc == nil {
		return ""
	}
	for _, labels := range [][]string{primary, secondary} {
		for _, label := range labels {
			if v := findLabelValue(page.Doc, label); v != "" {
				return v
			}
		}
	}
	return ""
}

func findLabelValue(doc *goquery.Document, label string) string {
	// 1. inline "label: value" inside a single text-bearing node
	if v := inlineValue(doc, label); v != "" {
		return v
	}
	// 2. tabular pairing: label cell followed by a value cell
	if v := tableCellValue(doc, label); v != "" {
		return v
	}
	// 3. adjacent-sibling block pairing
	return siblingValue(doc, label)
}

// inlineValue matches "label: value" within the text of one leaf node.
func inlineValue(doc *goquery.Document, label string) string {
	var found string
	doc.Find("p,li,div,span,td,th,dt,dd,label,strong,b").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.Children().Length() > 0 {
			return true
		}
		text := normalizeSpace(s.Text())
		idx := labelIndex(text, label)
		if idx < 0 {
			return true
		}
		rest := strings.TrimLeft(text[idx+len(label):], " :.- ")
		if rest == "" {
			return true
		}
		found = strings.TrimSpace(rest)
		return false
	})
	return found
}

// tableCellValue finds a th/td whose text is the label and returns the text
// of the following cell in the same row.
func tableCellValue(doc *goquery.Document, label string) string {
	var found string
	doc.Find("td,th").EachWithBreak(func(_ int, cell *goquery.Selection) bool {
		if !textIsLabel(cell.Text(), label) {
			return true
		}
		value := normalizeSpace(cell.NextFiltered("td,th").Text())
		if value == "" {
			return true
		}
		found = value
		return false
	})
	return found
}

// siblingValue finds any block whose text is the label and returns the text
// of its next sibling element.
func siblingValue(doc *goquery.Document, label string) string {
	var found string
	doc.Find("div,span,p,dt,label,strong,b,h2,h3,h4").EachWithBreak(func(_ int, block *goquery.Selection) bool {
		if !textIsLabel(block.Text(), label) {
			return true
		}
		value := normalizeSpace(block.Next().Text())
		if value == "" {
			return true
		}
		found = value
		return false
	})
	return found
}

// labelIndex reports where label occurs in text, case-insensitively, or -1.
func labelIndex(text, label string) int {
	return strings.Index(strings.ToLower(text), strings.ToLower(label))
}

// textIsLabel reports whether a node's text is the label itself, allowing
// trailing separator punctuation but no other payload.
func textIsLabel(text, label string) bool {
	t := strings.TrimRight(normalizeSpace(text), " :.- ")
	return strings.EqualFold(t, strings.TrimSpace(label))
}
