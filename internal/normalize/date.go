package normalize

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/opentender-mk/tender-extract/internal/common"
)

// numeric layouts, tried in order; two-digit-year variants follow.
var dateLayouts = []string{
	"02.01.2006",
	"02/01/2006",
	"2006-01-02",
	"02-01-2006",
}

var dateLayoutsShort = []string{
	"02.01.06",
	"02/01/06",
	"02-01-06",
}

// monthNames covers Macedonian and English month names plus common
// three-letter abbreviations. OCR output loses case, so lookup is lowercased.
var monthNames = map[string]time.Month{
	"јануари": time.January, "февруари": time.February, "март": time.March,
	"април": time.April, "мај": time.May, "јуни": time.June,
	"јули": time.July, "август": time.August, "септември": time.September,
	"октомври": time.October, "ноември": time.November, "декември": time.December,
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "jun": time.June, "jul": time.July,
	"aug": time.August, "sep": time.September, "oct": time.October,
	"nov": time.November, "dec": time.December,
}

var reNamedMonth = regexp.MustCompile(`(?i)^(\d{1,2})\.?\s+([\p{L}]+)\.?\s+(\d{4})`)

// Dates parses free-form date strings into UTC-midnight calendar dates.
// Parse never returns an error; anything unparseable, or a parse landing
// outside the plausible year range, comes back as (zero, false). The year
// bound is what rejects OCR garbage like "15.03.0024".
type Dates struct {
	minYear int
	maxYear int
	now     func() time.Time
	logger  *slog.Logger
}

func NewDates(cfg common.NormalizeConfig, logger *slog.Logger) *Dates {
	if logger == nil {
		logger = slog.Default()
	}
	minYear, maxYear := cfg.MinYear, cfg.MaxYear
	if minYear == 0 {
		minYear = 2000
	}
	if maxYear == 0 {
		maxYear = 2050
	}
	return &Dates{minYear: minYear, maxYear: maxYear, now: time.Now, logger: logger}
}

// WithNow fixes the clock, for relative-keyword resolution in tests.
func (d *Dates) WithNow(now func() time.Time) *Dates {
	d.now = now
	return d
}

func (d *Dates) Parse(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return d.bound(t)
		}
	}
	for _, layout := range dateLayoutsShort {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return d.bound(t)
		}
	}

	if t, ok := d.parseNamedMonth(s); ok {
		return d.bound(t)
	}

	if t, ok := d.parseRelative(s); ok {
		return d.bound(t)
	}

	// Last chance: a lenient parse, still subject to the year bound so a
	// creative misread cannot smuggle in an implausible date.
	if t, err := dateparse.ParseAny(s); err == nil {
		return d.bound(t.UTC())
	}

	return time.Time{}, false
}

func (d *Dates) parseNamedMonth(s string) (time.Time, bool) {
	m := reNamedMonth.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(m[1])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}
	month, ok := monthNames[strings.ToLower(m[2])]
	if !ok {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(m[3])
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
}

func (d *Dates) parseRelative(s string) (time.Time, bool) {
	today := d.now().UTC()
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	switch strings.ToLower(s) {
	case "today", "денес":
		return today, true
	case "yesterday", "вчера":
		return today.AddDate(0, 0, -1), true
	}
	return time.Time{}, false
}

func (d *Dates) bound(t time.Time) (time.Time, bool) {
	if t.Year() < d.minYear || t.Year() > d.maxYear {
		d.logger.Debug("date outside plausible range", "date", t.Format("2006-01-02"), "min_year", d.minYear, "max_year", d.maxYear)
		return time.Time{}, false
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
}
