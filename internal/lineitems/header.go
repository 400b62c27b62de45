package lineitems

import (
	"sort"
	"strings"
)

// column identifies one numeric column of a reconstructed price table.
type column int

const (
	colQuantity column = iota
	colUnitPrice
	colTotalNoVAT
	colVAT
	colTotalWithVAT
)

// defaultColumns is the positional fallback when no table header survived
// decoding; it matches the dominant layout of procurement price annexes.
var defaultColumns = []column{colQuantity, colUnitPrice, colTotalNoVAT, colVAT, colTotalWithVAT}

// headerPhrases map header-cell text to columns. Longer phrases come first
// so "вкупно со ддв" is claimed before the bare "ддв" can match inside it.
var headerPhrases = []struct {
	phrase string
	col    column
}{
	{"вкупно со ддв", colTotalWithVAT},
	{"total with vat", colTotalWithVAT},
	{"вкупно без ддв", colTotalNoVAT},
	{"total without vat", colTotalNoVAT},
	{"вкупна цена", colTotalNoVAT},
	{"единечна цена", colUnitPrice},
	{"unit price", colUnitPrice},
	{"количина", colQuantity},
	{"quantity", colQuantity},
	{"ддв", colVAT},
	{"vat", colVAT},
}

// detectHeader recognizes a flattened table-header line and recovers the
// column order from phrase positions. It returns nil unless at least two
// known columns are present, so ordinary prose cannot masquerade as a
// header.
func detectHeader(line string) []column {
	lower := strings.ToLower(line)

	type hit struct {
		col column
		idx int
	}
	var hits []hit
	claimed := make([]bool, len(lower))

	for _, hp := range headerPhrases {
		// first unclaimed occurrence; "ддв" inside an already-claimed
		// "вкупно без ддв" must not shadow the standalone cell further right
		idx := -1
		for search := 0; search < len(lower); {
			rel := strings.Index(lower[search:], hp.phrase)
			if rel < 0 {
				break
			}
			pos := search + rel
			if !claimed[pos] {
				idx = pos
				break
			}
			search = pos + 1
		}
		if idx < 0 {
			continue
		}
		hits = append(hits, hit{col: hp.col, idx: idx})
		for i := idx; i < idx+len(hp.phrase) && i < len(claimed); i++ {
			claimed[i] = true
		}
	}
	if len(hits) < 2 {
		return nil
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].idx < hits[j].idx })
	cols := make([]column, len(hits))
	seen := make(map[column]bool, len(hits))
	for i, h := range hits {
		if seen[h.col] {
			return nil // duplicated column header, do not trust it
		}
		seen[h.col] = true
		cols[i] = h.col
	}
	return cols
}
