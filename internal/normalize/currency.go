package normalize

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/opentender-mk/tender-extract/internal/common"
)

// currencyTokens are stripped from raw amount strings before separator
// analysis. Longer tokens first so "денари" goes before "ден".
var currencyTokens = []string{
	"денари", "ден.", "ден", "МКД", "мкд", "MKD", "mkd",
	"евра", "ЕУР", "еур", "EUR", "eur", "€",
	"USD", "usd", "$", "без ддв", "со ддв",
}

// range separators: en dash, em dash, or a hyphen with surrounding space.
// A bare hyphen is left alone so negative signs still reach the sign check.
var reRange = regexp.MustCompile(`\s+-\s+|–|—`)

var reSpace = regexp.MustCompile(`[\s\x{00a0}\x{202f}]+`)

// Amounts parses locale-messy monetary strings into exact decimals.
// Decimal/thousands separator roles are inferred per value rather than
// fixed per locale, because the source mixes author conventions freely.
type Amounts struct {
	ceiling  decimal.Decimal
	currency string
	logger   *slog.Logger
}

func NewAmounts(cfg common.NormalizeConfig, logger *slog.Logger) *Amounts {
	if logger == nil {
		logger = slog.Default()
	}
	ceiling, err := decimal.NewFromString(cfg.AmountCeiling)
	if err != nil || ceiling.IsZero() {
		ceiling = decimal.NewFromInt(10_000_000_000)
	}
	currency := cfg.Currency
	if currency == "" {
		currency = "MKD"
	}
	return &Amounts{ceiling: ceiling, currency: currency, logger: logger}
}

// DefaultCurrency returns the configured fallback currency code.
func (a *Amounts) DefaultCurrency() string {
	return a.currency
}

// Parse extracts a decimal amount from raw. For ranges
// ("100.000 – 200.000") only the first bound is returned; the source
// historically published ranges that way and downstream records carry a
// single estimated value. Negative amounts and amounts above the sanity
// ceiling are rejected as corrupted rather than accepted.
func (a *Amounts) Parse(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Decimal{}, false
	}

	if bounds := reRange.Split(s, 2); len(bounds) > 1 {
		s = bounds[0]
	}

	for _, tok := range currencyTokens {
		s = strings.ReplaceAll(s, tok, "")
	}
	s = reSpace.ReplaceAllString(s, "")
	if s == "" {
		return decimal.Decimal{}, false
	}

	neg := strings.HasPrefix(s, "-")
	s = normalizeSeparators(strings.TrimPrefix(s, "-"))

	value, err := decimal.NewFromString(s)
	if err != nil {
		a.logger.Debug("unparseable amount", "raw", raw)
		return decimal.Decimal{}, false
	}
	if neg || value.IsNegative() {
		a.logger.Warn("rejecting negative amount", "raw", raw)
		return decimal.Decimal{}, false
	}
	if value.GreaterThan(a.ceiling) {
		a.logger.Warn("rejecting amount above sanity ceiling", "raw", raw, "value", value.String(), "ceiling", a.ceiling.String())
		return decimal.Decimal{}, false
	}
	return value, true
}

// normalizeSeparators rewrites s into plain decimal notation. When both '.'
// and ',' occur, the right-most one is the decimal separator. With a single
// separator type, it is decimal only if exactly 1-2 digits follow its last
// occurrence and it occurs once; otherwise it groups thousands.
func normalizeSeparators(s string) string {
	lastDot := strings.LastIndexByte(s, '.')
	lastComma := strings.LastIndexByte(s, ',')

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if decimalLike(s, ',', lastComma) {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastDot >= 0:
		if !decimalLike(s, '.', lastDot) {
			s = strings.ReplaceAll(s, ".", "")
		}
	}
	return s
}

func decimalLike(s string, sep byte, last int) bool {
	if strings.Count(s, string(sep)) != 1 {
		return false
	}
	trailing := len(s) - last - 1
	return trailing >= 1 && trailing <= 2
}
