package decode

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

// runPdftotext extracts the embedded text layer. layout=false is the fast
// engine (-raw, reading-order stream); layout=true preserves columnar
// geometry for forms and multi-column notices.
func (d *Decoder) runPdftotext(ctx context.Context, path string, layout bool) (text string, pages int, err error) {
	mode := "-raw"
	if layout {
		mode = "-layout"
	}
	out, errb, err := d.runner.Run(ctx, d.cfg.Pdftotext, mode, "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", 0, fmt.Errorf("pdftotext: %w (%s)", err, truncate(string(errb), 512))
	}
	text = string(out)
	// A form-feed \f is used as page separator by default
	pages = 1 + strings.Count(text, "\f")
	return text, pages, nil
}

// runOCR rasterizes pages with pdftoppm and feeds each image to tesseract.
// This is the slow path: tens of seconds per document, which is why it sits
// behind its own worker gate.
func (d *Decoder) runOCR(ctx context.Context, path string) (text string, pages int, err error) {
	tmpDir, err := os.MkdirTemp(d.cfg.ScratchDir, "te-ocr-*")
	if err != nil {
		return "", 0, err
	}
	defer func() {
		if rerr := os.RemoveAll(tmpDir); rerr != nil {
			d.logger.Warn("failed to remove temp dir", "dir", tmpDir, "error", rerr)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := d.runner.Run(ctx, d.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", d.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return "", 0, fmt.Errorf("pdftoppm: %w (%s)", err, truncate(string(errb), 512))
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if d.cfg.MaxPages > 0 && len(matches) > d.cfg.MaxPages {
		matches = matches[:d.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return "", 0, fmt.Errorf("pdftoppm produced no images")
	}

	var b strings.Builder
	for _, img := range matches {
		txt, terr := d.tesseract(ctx, img)
		if terr != nil {
			d.logger.Warn("tesseract failed on page", "image", img, "error", terr)
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\f\n") // keep a clear page break marker
		}
		b.WriteString(txt)
	}
	return b.String(), len(matches), nil
}

func (d *Decoder) tesseract(ctx context.Context, imgPath string) (string, error) {
	args := []string{imgPath, "stdout", "-l", d.cfg.TesseractLang}
	// tesseract <file> stdout -l <lang>
	out, errb, err := d.runner.Run(ctx, d.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w (%s)", err, truncate(string(errb), 512))
	}
	return string(out), nil
}

// decodeSpreadsheet reads workbook cells natively; there is no text layer
// or OCR notion for spreadsheets, so the cascade does not apply.
func (d *Decoder) decodeSpreadsheet(data []byte) (text string, pages int, err error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", 0, fmt.Errorf("excelize: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			d.logger.Warn("failed to close workbook", "error", cerr)
		}
	}()

	var b strings.Builder
	sheets := f.GetSheetList()
	for i, sheet := range sheets {
		rows, rerr := f.GetRows(sheet)
		if rerr != nil {
			d.logger.Warn("failed to read sheet", "sheet", sheet, "error", rerr)
			continue
		}
		if i > 0 {
			b.WriteString("\n\f\n")
		}
		for _, row := range rows {
			b.WriteString(strings.Join(row, "\t"))
			b.WriteByte('\n')
		}
	}
	return b.String(), len(sheets), nil
}

// convertOffice turns a doc/docx/odt/rtf into a PDF so it can re-enter the
// PDF cascade. soffice writes <basename>.pdf into the output directory.
func (d *Decoder) convertOffice(ctx context.Context, path string) (pdfPath string, err error) {
	outDir := filepath.Dir(path)
	_, errb, err := d.runner.Run(ctx, d.cfg.Soffice, "--headless", "--convert-to", "pdf", "--outdir", outDir, path)
	if err != nil {
		return "", fmt.Errorf("soffice: %w (%s)", err, truncate(string(errb), 512))
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	pdfPath = filepath.Join(outDir, base+".pdf")
	if _, serr := os.Stat(pdfPath); serr != nil {
		return "", fmt.Errorf("soffice produced no output: %v", serr)
	}
	return pdfPath, nil
}
