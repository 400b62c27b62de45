// Package lineitems reconstructs price-table rows from the decoder's flat
// text. Table structure is lost during decoding and multi-word cells split
// across lines, so rows are rebuilt from token runs: a run of non-numeric
// lines (name and unit) followed by a run of numeric lines (the price
// columns).
package lineitems

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/opentender-mk/tender-extract/internal/normalize"
)

// LineItem is one reconstructed row. All numeric fields are exact decimals;
// pointers are nil where a column could not be recovered. A row with only a
// code or only a name is still emitted, because a partial record is more
// useful downstream than a dropped one.
type LineItem struct {
	ProcurementCode string           `json:"procurement_code,omitempty"`
	Name            string           `json:"name,omitempty"`
	Unit            string           `json:"unit,omitempty"`
	Quantity        *decimal.Decimal `json:"quantity,omitempty"`
	UnitPrice       *decimal.Decimal `json:"unit_price,omitempty"`
	TotalNoVAT      *decimal.Decimal `json:"total_no_vat,omitempty"`
	VATAmount       *decimal.Decimal `json:"vat_amount,omitempty"`
	TotalWithVAT    *decimal.Decimal `json:"total_with_vat,omitempty"`
	Confidence      float64          `json:"confidence"`
}

var (
	reCPVRoot   = regexp.MustCompile(`^\d{8}$`)
	reCPVSuffix = regexp.MustCompile(`^-\d$`)
	reNumeric   = regexp.MustCompile(`^[0-9][0-9.,\s\x{00a0}]*$`)
)

type Extractor struct {
	amounts *normalize.Amounts
	logger  *slog.Logger
}

func New(amounts *normalize.Amounts, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{amounts: amounts, logger: logger}
}

// row accumulates one item's fragments while scanning.
type row struct {
	code  string
	words []string
	nums  []decimal.Decimal
}

func (r *row) empty() bool {
	return r.code == "" && len(r.words) == 0 && len(r.nums) == 0
}

// Extract scans the decoded text and emits every reconstructable row.
func (e *Extractor) Extract(text string) []LineItem {
	columns := defaultColumns
	var items []LineItem
	cur := &row{}

	flush := func() {
		if item, ok := e.build(cur, columns); ok {
			items = append(items, item)
		}
		cur = &row{}
	}

	for _, line := range strings.Split(text, "\n") {
		tok := strings.TrimSpace(strings.ReplaceAll(line, " ", " "))
		if tok == "" || tok == "\f" {
			continue
		}
		tok = strings.Trim(tok, "\f")

		if cols := detectHeader(tok); cols != nil {
			flush()
			columns = cols
			continue
		}

		switch {
		case reCPVRoot.MatchString(tok) && (len(cur.words) == 0 || len(cur.nums) > 0):
			// an 8-digit token at row start is a procurement code root; after
			// a numeric run it opens the next row. Only between words and
			// before any number can it be an amount.
			if !cur.empty() {
				flush()
			}
			cur.code = tok

		case reCPVSuffix.MatchString(tok) && cur.code != "" && len(cur.words) == 0:
			// check-digit fragment split onto its own line: "50421200" / "-4"
			cur.code += tok

		case isNumericToken(tok):
			if v, ok := e.amounts.Parse(tok); ok {
				cur.nums = append(cur.nums, v)
			} else {
				e.logger.Debug("dropping unparseable numeric fragment", "token", tok)
			}

		default:
			if len(cur.nums) > 0 {
				// text after a numeric run starts the next row
				flush()
			}
			cur.words = append(cur.words, tok)
		}
	}
	flush()
	return items
}

func isNumericToken(tok string) bool {
	return reNumeric.MatchString(tok)
}

// build maps a completed run onto a LineItem. Numeric fragments are
// assigned positionally following the detected or default column order.
func (e *Extractor) build(r *row, columns []column) (LineItem, bool) {
	if r.empty() {
		return LineItem{}, false
	}
	name, unit := splitUnit(r.words)
	if r.code == "" && name == "" && unit == "" {
		// a bare numeric run with no identity is decoder noise
		return LineItem{}, false
	}

	item := LineItem{ProcurementCode: r.code, Name: name, Unit: unit}
	for i, v := range r.nums {
		if i >= len(columns) {
			break
		}
		val := v
		switch columns[i] {
		case colQuantity:
			item.Quantity = &val
		case colUnitPrice:
			item.UnitPrice = &val
		case colTotalNoVAT:
			item.TotalNoVAT = &val
		case colVAT:
			item.VATAmount = &val
		case colTotalWithVAT:
			item.TotalWithVAT = &val
		}
	}

	item.Confidence = confidence(item, len(r.nums))
	return item, true
}

func confidence(item LineItem, numCount int) float64 {
	score := 0.5
	if item.ProcurementCode != "" {
		score += 0.2
	}
	if item.Name != "" {
		score += 0.1
	}
	if item.Unit != "" {
		score += 0.1
	}
	if numCount >= 4 {
		score += 0.1
	}
	if numCount == 0 {
		score = 0.3 // fallback identity: code or name only
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
