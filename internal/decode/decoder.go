// Package decode turns raw document bytes into text through a cascade of
// engines: the embedded text layer first, a layout-aware pass for columnar
// documents, and OCR as the expensive last resort for scans. Engines are
// promoted by a single rule: output under the minimum-content threshold
// means try the next one.
package decode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"unicode/utf8"

	"golang.org/x/sync/semaphore"

	"github.com/opentender-mk/tender-extract/constants"
	"github.com/opentender-mk/tender-extract/internal/common"
	"github.com/opentender-mk/tender-extract/internal/telemetry"
)

// Decoder runs the per-document decode state machine. It is safe for
// concurrent use; each Decode call owns its record and scratch files.
type Decoder struct {
	cfg       common.DecodeConfig
	runner    Runner
	pageCount func(path string) (int, error)
	tel       *telemetry.Telemetry
	ocrGate   *semaphore.Weighted
	logger    *slog.Logger
}

type Option func(*Decoder)

// WithRunner replaces the external-command runner, for tests.
func WithRunner(r Runner) Option {
	return func(d *Decoder) { d.runner = r }
}

// WithPageCounter replaces the PDF page counter, for tests.
func WithPageCounter(fn func(path string) (int, error)) Option {
	return func(d *Decoder) { d.pageCount = fn }
}

// WithOCRGate bounds concurrent OCR runs with a shared semaphore so a burst
// of scanned documents cannot starve the fast path.
func WithOCRGate(sem *semaphore.Weighted) Option {
	return func(d *Decoder) { d.ocrGate = sem }
}

func NewDecoder(cfg common.DecodeConfig, tel *telemetry.Telemetry, logger *slog.Logger, opts ...Option) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Soffice == "" {
		cfg.Soffice = "soffice"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "mkd+eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.MinTextChars <= 0 {
		cfg.MinTextChars = 50
	}
	d := &Decoder{
		cfg:       cfg,
		runner:    execRunner{logger: logger},
		pageCount: defaultPageCount,
		tel:       tel,
		logger:    logger,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Decode classifies and decodes one document. It never returns an error: a
// caller feeding N documents gets N records, each carrying its terminal
// status. The per-document wall-clock budget is enforced here.
func (d *Decoder) Decode(ctx context.Context, data []byte, mimeHint string) *DocumentRecord {
	if d.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
	}

	rec := newRecord(len(data))
	if len(data) == 0 {
		return d.finish(rec, constants.DecodePermanent, common.ErrPermanent, "empty byte stream")
	}

	rec.Kind = detectKind(data, mimeHint)
	if rec.Kind == constants.KindUnknown {
		return d.finish(rec, constants.DecodePermanent, common.ErrPermanent, "unrecognized byte stream")
	}

	if rec.Kind == constants.KindSpreadsheet {
		return d.decodeWorkbook(rec, data)
	}

	path, cleanup, err := d.spill(data, rec.Kind)
	if err != nil {
		return d.finish(rec, constants.DecodeFailed, common.ErrEngineFail, fmt.Sprintf("scratch file: %v", err))
	}
	defer cleanup()

	if rec.Kind == constants.KindOfficeDoc {
		converted, cerr := d.convertOffice(ctx, path)
		if cerr != nil {
			if timedOut(ctx) {
				return d.timeout(rec, ctx)
			}
			return d.finish(rec, constants.DecodeFailed, common.ErrEngineFail, cerr.Error())
		}
		path = converted
	}

	a, aerr := d.analyzePDF(ctx, path)
	if aerr != nil {
		if timedOut(ctx) {
			return d.timeout(rec, ctx)
		}
		return d.finish(rec, constants.DecodePermanent, common.ErrPermanent, fmt.Sprintf("corrupt document: %v", aerr))
	}
	if rec.Kind != constants.KindOfficeDoc {
		rec.Kind = a.kind
	}
	rec.Pages = a.pages
	rec.transition(constants.DecodeAnalyzed)
	d.logger.Debug("document analyzed",
		"id", rec.ID, "kind", rec.Kind, "pages", a.pages,
		"text_fraction", a.textFraction(), "recommended", a.recommended)

	return d.cascade(ctx, rec, path, a)
}

// cascade runs engines from the recommended one onward in the fixed order
// fast-text -> layout -> OCR, promoting on under-threshold output.
func (d *Decoder) cascade(ctx context.Context, rec *DocumentRecord, path string, a analysis) *DocumentRecord {
	rec.transition(constants.DecodeDecoding)

	order := []constants.Engine{constants.EngineFastText, constants.EngineLayout, constants.EngineOCR}
	start := 0
	for i, eng := range order {
		if eng == a.recommended {
			start = i
			break
		}
	}

	ocrAttempted := false
	for _, eng := range order[start:] {
		if timedOut(ctx) {
			return d.timeout(rec, ctx)
		}

		if eng == constants.EngineOCR {
			if !d.cfg.OCREnabled {
				return d.finish(rec, constants.DecodeOcrRequired, nil, "scanned document and OCR disabled")
			}
			if d.ocrGate != nil {
				if err := d.ocrGate.Acquire(ctx, 1); err != nil {
					return d.timeout(rec, ctx)
				}
				defer d.ocrGate.Release(1)
			}
			ocrAttempted = true
		}

		text, pages, err := d.runEngine(ctx, eng, path, a)
		if err != nil {
			if timedOut(ctx) {
				return d.timeout(rec, ctx)
			}
			rec.warn(fmt.Sprintf("%s: %v", eng, err))
			d.logger.Warn("engine failed, promoting", "id", rec.ID, "engine", eng, "error", err)
			continue
		}
		// the threshold is in characters; byte length would halve it for
		// Cyrillic output
		chars := utf8.RuneCountInString(text)
		if chars >= d.cfg.MinTextChars {
			rec.Engine = eng
			rec.Text = text
			if pages > 0 {
				rec.Pages = pages
			}
			return d.finish(rec, constants.DecodeSuccess, nil, "")
		}
		d.logger.Debug("engine under threshold, promoting",
			"id", rec.ID, "engine", eng, "chars", chars, "min", d.cfg.MinTextChars)
	}

	if ocrAttempted {
		return d.finish(rec, constants.DecodeFailed, common.ErrEngineFail, "all engines under threshold")
	}
	return d.finish(rec, constants.DecodeOcrRequired, nil, "non-OCR engines under threshold")
}

func (d *Decoder) runEngine(ctx context.Context, eng constants.Engine, path string, a analysis) (string, int, error) {
	switch eng {
	case constants.EngineFastText:
		// the analyzer already ran the fast engine as its probe
		if a.probeText != "" {
			return a.probeText, a.pages, nil
		}
		return d.runPdftotext(ctx, path, false)
	case constants.EngineLayout:
		return d.runPdftotext(ctx, path, true)
	case constants.EngineOCR:
		return d.runOCR(ctx, path)
	default:
		return "", 0, fmt.Errorf("no engine %q", eng)
	}
}

func (d *Decoder) decodeWorkbook(rec *DocumentRecord, data []byte) *DocumentRecord {
	rec.transition(constants.DecodeAnalyzed)
	rec.transition(constants.DecodeDecoding)
	text, sheets, err := d.decodeSpreadsheet(data)
	if err != nil {
		return d.finish(rec, constants.DecodePermanent, common.ErrPermanent, err.Error())
	}
	rec.Pages = sheets
	if utf8.RuneCountInString(text) < d.cfg.MinTextChars {
		return d.finish(rec, constants.DecodeFailed, common.ErrEngineFail, "workbook under content threshold")
	}
	rec.Engine = constants.EngineSpreadsheet
	rec.Text = text
	return d.finish(rec, constants.DecodeSuccess, nil, "")
}

// spill writes the buffer to a scratch file so external engines can read
// it; the extension matters to soffice.
func (d *Decoder) spill(data []byte, kind constants.DocKind) (string, func(), error) {
	ext := ".pdf"
	if kind == constants.KindOfficeDoc {
		ext = spillExt(data)
	}
	dir, err := os.MkdirTemp(d.cfg.ScratchDir, "te-doc-*")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() {
		if rerr := os.RemoveAll(dir); rerr != nil {
			d.logger.Warn("failed to remove scratch dir", "dir", dir, "error", rerr)
		}
	}
	path := filepath.Join(dir, "doc"+ext)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}

func timedOut(ctx context.Context) bool {
	return ctx.Err() != nil
}

// timeout finalizes a record whose budget expired. No partial text is kept;
// telemetry recorded for already-completed sub-steps stands.
func (d *Decoder) timeout(rec *DocumentRecord, ctx context.Context) *DocumentRecord {
	cause := common.ErrTimeout
	if errors.Is(ctx.Err(), context.Canceled) {
		cause = context.Canceled
	}
	rec.Text = ""
	rec.Engine = constants.EngineNone
	return d.finish(rec, constants.DecodeFailed, cause, "decode budget exceeded")
}

func (d *Decoder) finish(rec *DocumentRecord, status constants.DecodeStatus, failure error, note string) *DocumentRecord {
	rec.warn(note)
	rec.finalize(status, failure)
	if d.tel != nil {
		d.tel.RecordDocument(status)
	}
	switch status {
	case constants.DecodeSuccess:
		d.logger.Info("decode complete",
			"id", rec.ID, "engine", rec.Engine, "pages", rec.Pages, "chars", utf8.RuneCountInString(rec.Text), "duration_ms", rec.Duration.Milliseconds())
	default:
		d.logger.Warn("decode did not produce text",
			"id", rec.ID, "status", status, "failure", failure, "note", note)
	}
	return rec
}
