package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/opentender-mk/tender-extract/internal/fieldspec"
	"github.com/opentender-mk/tender-extract/internal/normalize"
	"github.com/opentender-mk/tender-extract/internal/telemetry"
)

// Record maps field names to their normalized values; a nil value means
// every strategy for that field exhausted.
type Record map[string]*fieldspec.NormalizedValue

// Resolver executes FieldSpec strategy lists against markup pages. Strategy
// failures never escape: an empty result or an internal error moves the
// cascade to the next strategy, and a fully exhausted field resolves to nil.
type Resolver struct {
	dates   *normalize.Dates
	amounts *normalize.Amounts
	tel     *telemetry.Telemetry
	logger  *slog.Logger
}

func New(dates *normalize.Dates, amounts *normalize.Amounts, tel *telemetry.Telemetry, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{dates: dates, amounts: amounts, tel: tel, logger: logger}
}

// Resolve runs one field's strategies in ascending priority and reports
// exactly one outcome to telemetry.
func (r *Resolver) Resolve(page *Page, spec fieldspec.FieldSpec) fieldspec.ExtractionOutcome {
	for _, strat := range spec.Strategies {
		raw, err := r.execute(page, spec, strat)
		if err != nil {
			r.logger.Debug("strategy error, continuing",
				"field", spec.Name, "strategy", strat.Kind.String(), "level", strat.Priority, "error", err)
			continue
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			r.logger.Debug("strategy yielded nothing",
				"field", spec.Name, "strategy", strat.Kind.String(), "level", strat.Priority)
			continue
		}

		value, ok := r.normalizeValue(spec, raw)
		if !ok {
			r.logger.Debug("value failed normalization, continuing",
				"field", spec.Name, "strategy", strat.Kind.String(), "level", strat.Priority, "raw", raw)
			continue
		}

		level := strat.Priority
		if r.tel != nil {
			r.tel.Record(spec.Name, true, &level)
		}
		return fieldspec.ExtractionOutcome{Field: spec.Name, Value: value, Level: &level, Attempted: true}
	}

	if spec.Critical {
		r.logger.Error("all strategies exhausted for critical field", "field", spec.Name)
	} else {
		r.logger.Info("all strategies exhausted", "field", spec.Name)
	}
	if r.tel != nil {
		r.tel.Record(spec.Name, false, nil)
	}
	return fieldspec.ExtractionOutcome{Field: spec.Name, Attempted: true}
}

// ResolveAll resolves a whole field table against one page.
func (r *Resolver) ResolveAll(page *Page, specs []fieldspec.FieldSpec) (Record, []fieldspec.ExtractionOutcome) {
	record := make(Record, len(specs))
	outcomes := make([]fieldspec.ExtractionOutcome, 0, len(specs))
	for _, spec := range specs {
		outcome := r.Resolve(page, spec)
		record[spec.Name] = outcome.Value
		outcomes = append(outcomes, outcome)
	}
	return record, outcomes
}

func (r *Resolver) execute(page *Page, spec fieldspec.FieldSpec, strat fieldspec.Strategy) (raw string, err error) {
	defer func() {
		// goquery panics on some malformed selector/tree combinations;
		// a strategy failure must stay a strategy failure.
		if rec := recover(); rec != nil {
			err = fmt.Errorf("strategy panic: %v", rec)
		}
	}()

	switch strat.Kind {
	case fieldspec.PathQuery:
		if page.Doc == nil {
			return "", nil
		}
		return normalizeSpace(page.Doc.Find(strat.Selector).First().Text()), nil

	case fieldspec.LabelSearch:
		return searchLabels(page, strat.PrimaryLabels, strat.SecondaryLabels), nil

	case fieldspec.Pattern:
		m := strat.Regexp.FindStringSubmatch(page.Text())
		if m == nil {
			return "", nil
		}
		if len(m) > 1 {
			return m[1], nil
		}
		return m[0], nil

	case fieldspec.URLParameter:
		if page.URL == nil {
			return "", nil
		}
		return page.URL.Query().Get(strat.Param), nil

	case fieldspec.KeywordScan:
		return scanKeywords(page.Text(), strat.Keywords), nil

	case fieldspec.Default:
		r.logger.Log(context.Background(), strat.Severity, "applying default value", "field", spec.Name, "value", strat.Value)
		return strat.Value, nil

	default:
		return "", fmt.Errorf("unknown strategy kind %d", strat.Kind)
	}
}

// scanKeywords finds the first line containing any keyword and returns the
// remainder of that line after the keyword and separator punctuation.
func scanKeywords(text string, keywords []string) string {
	for _, line := range strings.Split(text, "\n") {
		for _, kw := range keywords {
			idx := strings.Index(strings.ToLower(line), strings.ToLower(kw))
			if idx < 0 {
				continue
			}
			rest := strings.TrimLeft(line[idx+len(kw):], " :.- ")
			if rest != "" {
				return strings.TrimSpace(rest)
			}
		}
	}
	return ""
}

func (r *Resolver) normalizeValue(spec fieldspec.FieldSpec, raw string) (*fieldspec.NormalizedValue, bool) {
	switch spec.Type {
	case fieldspec.TypeDate:
		t, ok := r.dates.Parse(raw)
		if !ok {
			return nil, false
		}
		return fieldspec.NewDate(t), true
	case fieldspec.TypeMoney:
		amount, ok := r.amounts.Parse(raw)
		if !ok {
			return nil, false
		}
		currency := spec.Currency
		if currency == "" {
			currency = r.amounts.DefaultCurrency()
		}
		return fieldspec.NewMoney(amount, currency), true
	case fieldspec.TypeRaw:
		return fieldspec.NewRaw(raw), true
	default:
		return fieldspec.NewText(raw), true
	}
}
