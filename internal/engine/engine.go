// Package engine wires the extraction components into the two entry paths:
// markup pages through the strategy resolver and binary documents through
// the decode cascade. It owns the worker pools and the per-document budget;
// it performs no network, database, or output I/O of its own.
package engine

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/opentender-mk/tender-extract/constants"
	"github.com/opentender-mk/tender-extract/internal/common"
	"github.com/opentender-mk/tender-extract/internal/decode"
	"github.com/opentender-mk/tender-extract/internal/fieldspec"
	"github.com/opentender-mk/tender-extract/internal/lineitems"
	"github.com/opentender-mk/tender-extract/internal/normalize"
	"github.com/opentender-mk/tender-extract/internal/resolver"
	"github.com/opentender-mk/tender-extract/internal/schema"
	"github.com/opentender-mk/tender-extract/internal/status"
	"github.com/opentender-mk/tender-extract/internal/telemetry"
)

type Engine struct {
	cfg       *common.Config
	tel       *telemetry.Telemetry
	resolver  *resolver.Resolver
	decoder   *decode.Decoder
	items     *lineitems.Extractor
	validator *schema.Validator
	logger    *slog.Logger
	now       func() time.Time
}

type Option func(*Engine)

// WithTelemetry injects a shared accumulator, e.g. one already attached to
// a prometheus exporter. Without it the engine creates its own.
func WithTelemetry(tel *telemetry.Telemetry) Option {
	return func(e *Engine) { e.tel = tel }
}

// WithClock fixes the clock used for status inference, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(cfg *common.Config, logger *slog.Logger, decodeOpts []decode.Option, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = common.LoadConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{cfg: cfg, logger: logger, now: time.Now}
	for _, o := range opts {
		o(e)
	}
	if e.tel == nil {
		e.tel = telemetry.New(logger)
	}

	dates := normalize.NewDates(cfg.Normalize, logger)
	amounts := normalize.NewAmounts(cfg.Normalize, logger)
	e.resolver = resolver.New(dates, amounts, e.tel, logger)
	e.items = lineitems.New(amounts, logger)

	ocrGate := semaphore.NewWeighted(int64(cfg.Workers.OCR))
	decodeOpts = append([]decode.Option{decode.WithOCRGate(ocrGate)}, decodeOpts...)
	e.decoder = decode.NewDecoder(cfg.Decode, e.tel, logger, decodeOpts...)

	validator, err := schema.NewValidator(logger)
	if err != nil {
		return nil, err
	}
	e.validator = validator

	return e, nil
}

// PageResult is the markup-path output: the normalized record, the
// per-field audit trail, the inferred status, and the schema verdict.
type PageResult struct {
	Record    resolver.Record
	Outcomes  []fieldspec.ExtractionOutcome
	Status    constants.TenderStatus
	SchemaErr error
}

// ProcessPage resolves a field table against one parsed page. Resolution is
// synchronous and never fails; per-field misses surface in the outcomes and
// in telemetry.
func (e *Engine) ProcessPage(page *resolver.Page, specs []fieldspec.FieldSpec) PageResult {
	record, outcomes := e.resolver.ResolveAll(page, specs)
	st := status.Infer(record, page.Text(), e.now())
	return PageResult{
		Record:    record,
		Outcomes:  outcomes,
		Status:    st,
		SchemaErr: e.validator.Validate(record),
	}
}

// DocumentResult is the binary-path output: the decode record with its
// terminal status plus whatever line items the text yielded.
type DocumentResult struct {
	Input  string
	Record *decode.DocumentRecord
	Items  []lineitems.LineItem
}

// ProcessDocument decodes one binary document and reconstructs its line
// items. The decode budget and OCR gating apply inside the decoder.
func (e *Engine) ProcessDocument(ctx context.Context, data []byte, mimeHint string) DocumentResult {
	rec := e.decoder.Decode(ctx, data, mimeHint)
	res := DocumentResult{Record: rec}
	if rec.Status == constants.DecodeSuccess {
		res.Items = e.items.Extract(rec.Text)
	}
	return res
}

// Telemetry exposes the shared accumulator for snapshots, alert checks and
// between-batch resets.
func (e *Engine) Telemetry() *telemetry.Telemetry {
	return e.tel
}
