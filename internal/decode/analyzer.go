package decode

import (
	"bytes"
	"context"
	"strings"
	"unicode/utf8"

	"github.com/opentender-mk/tender-extract/constants"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// analysis is the lightweight inspection result that drives engine choice.
type analysis struct {
	kind        constants.DocKind
	pages       int
	textPages   int     // pages whose text layer met the probe minimum
	layoutScore float64 // fraction of probe lines with columnar spacing
	probeText   string  // fast-engine probe output, reused by the cascade
	recommended constants.Engine
}

// textFraction is the share of pages carrying a usable text layer.
func (a analysis) textFraction() float64 {
	if a.pages == 0 {
		return 0
	}
	return float64(a.textPages) / float64(a.pages)
}

const (
	probeMinChars   = 20   // per-page chars for a page to count as text-bearing
	scannedFraction = 0.1  // at or below this, the document is a scan
	columnarShare   = 0.25 // probe lines with wide gaps before layout engine wins
)

var (
	magicPDF = []byte("%PDF")
	magicZip = []byte("PK\x03\x04")
	magicOLE = []byte{0xd0, 0xcf, 0x11, 0xe0}
)

// detectKind classifies the byte stream, preferring magic bytes over the
// caller's mime hint since hints from the source are frequently stale.
func detectKind(data []byte, mimeHint string) constants.DocKind {
	switch {
	case bytes.HasPrefix(data, magicPDF):
		return constants.KindTextPDF // refined to scanned_pdf after the probe
	case bytes.HasPrefix(data, magicZip):
		if bytes.Contains(data, []byte("xl/")) {
			return constants.KindSpreadsheet
		}
		if bytes.Contains(data, []byte("word/")) {
			return constants.KindOfficeDoc
		}
		if bytes.Contains(data, []byte("spreadsheet")) { // ODS mimetype entry
			return constants.KindSpreadsheet
		}
		if bytes.Contains(data, []byte("opendocument.text")) {
			return constants.KindOfficeDoc
		}
	case bytes.HasPrefix(data, magicOLE):
		return constants.KindOfficeDoc
	}
	switch constants.MapMimeToFormat(mimeHint) {
	case constants.PDF:
		return constants.KindTextPDF
	case constants.SPREADSHEET:
		return constants.KindSpreadsheet
	case constants.OFFICE:
		return constants.KindOfficeDoc
	}
	return constants.KindUnknown
}

// spillExt picks the scratch-file extension for an office document from its
// container, so soffice is never handed a legacy OLE file named .docx.
func spillExt(data []byte) string {
	switch {
	case bytes.HasPrefix(data, magicOLE):
		return ".doc"
	case bytes.Contains(data, []byte("opendocument.text")):
		return ".odt"
	default:
		return ".docx"
	}
}

// analyzePDF counts pages, probes the text layer with the fast engine, and
// recommends the cheapest engine expected to clear the content threshold.
func (d *Decoder) analyzePDF(ctx context.Context, path string) (analysis, error) {
	a := analysis{kind: constants.KindTextPDF}

	pages, err := d.pageCount(path)
	if err != nil {
		// pdfcpu rejecting the stream means the file is corrupt, not that
		// an engine hiccuped.
		return a, err
	}
	a.pages = pages

	probe, _, perr := d.runPdftotext(ctx, path, false)
	if perr == nil {
		a.probeText = probe
		a.textPages, a.layoutScore = probeStats(probe)
	}

	switch {
	case a.textFraction() <= scannedFraction:
		a.kind = constants.KindScannedPDF
		a.recommended = constants.EngineOCR
	case a.layoutScore >= columnarShare:
		a.recommended = constants.EngineLayout
	default:
		a.recommended = constants.EngineFastText
	}
	return a, nil
}

// probeStats derives per-page text presence (form feeds are the page
// separators, matching poppler output) and a columnar-layout score.
func probeStats(text string) (textPages int, layoutScore float64) {
	var wideLines, totalLines int
	for _, page := range strings.Split(text, "\f") {
		if utf8.RuneCountInString(strings.TrimSpace(page)) >= probeMinChars {
			textPages++
		}
		for _, line := range strings.Split(page, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			totalLines++
			if strings.Contains(trimmed, "   ") {
				wideLines++
			}
		}
	}
	if totalLines > 0 {
		layoutScore = float64(wideLines) / float64(totalLines)
	}
	return textPages, layoutScore
}

func defaultPageCount(path string) (int, error) {
	return api.PageCountFile(path)
}
