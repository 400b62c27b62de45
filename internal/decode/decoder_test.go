package decode

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/opentender-mk/tender-extract/constants"
	"github.com/opentender-mk/tender-extract/internal/common"
)

// fakeRunner stubs the poppler/tesseract/soffice binaries. pdftoppm drops a
// single page image next to the requested prefix so the glob in runOCR finds
// it; soffice records its input path and produces an empty converted PDF.
type fakeRunner struct {
	rawText    string
	layoutText string
	ocrText    string
	rawErr     error
	layoutErr  error
	ppmErr     error
	ocrErr     error
	calls      []string
	sofficeIn  string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	f.calls = append(f.calls, name)
	switch name {
	case "pdftotext":
		if args[0] == "-layout" {
			return []byte(f.layoutText), nil, f.layoutErr
		}
		return []byte(f.rawText), nil, f.rawErr
	case "pdftoppm":
		if f.ppmErr != nil {
			return nil, []byte("stub failure"), f.ppmErr
		}
		prefix := args[len(args)-1]
		if err := os.WriteFile(prefix+"-1.png", []byte("png"), 0o600); err != nil {
			return nil, nil, err
		}
		return nil, nil, nil
	case "tesseract":
		return []byte(f.ocrText), nil, f.ocrErr
	case "soffice":
		in := args[len(args)-1]
		outDir := args[len(args)-2]
		f.sofficeIn = in
		base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
		return nil, nil, os.WriteFile(filepath.Join(outDir, base+".pdf"), []byte("%PDF-1.4"), 0o600)
	}
	return nil, nil, fmt.Errorf("unexpected command %s", name)
}

func testConfig(t *testing.T) common.DecodeConfig {
	t.Helper()
	return common.DecodeConfig{
		MinTextChars: 50,
		OCREnabled:   true,
		ScratchDir:   t.TempDir(),
	}
}

func testDecoder(t *testing.T, cfg common.DecodeConfig, r Runner, pages int) *Decoder {
	t.Helper()
	return NewDecoder(cfg, nil, nil,
		WithRunner(r),
		WithPageCounter(func(string) (int, error) { return pages, nil }),
	)
}

var pdfBytes = []byte("%PDF-1.4\nstub body")

func TestDecode_TextPDFFastPath(t *testing.T) {
	body := strings.Repeat("Известување за склучен договор. ", 5)
	r := &fakeRunner{rawText: body}
	d := testDecoder(t, testConfig(t), r, 1)

	rec := d.Decode(context.Background(), pdfBytes, "application/pdf")

	if rec.Status != constants.DecodeSuccess {
		t.Fatalf("status = %s, want %s (warnings: %v)", rec.Status, constants.DecodeSuccess, rec.Warnings)
	}
	if rec.Engine != constants.EngineFastText {
		t.Errorf("engine = %s, want %s", rec.Engine, constants.EngineFastText)
	}
	if rec.Kind != constants.KindTextPDF {
		t.Errorf("kind = %s, want %s", rec.Kind, constants.KindTextPDF)
	}
	if rec.Text != body {
		t.Errorf("text not propagated from engine output")
	}
	// the analyzer probe doubles as the fast-engine pass
	if n := countCalls(r, "pdftotext"); n != 1 {
		t.Errorf("pdftotext ran %d times, want 1", n)
	}
}

func TestDecode_ScannedPDFCascadesToOCR(t *testing.T) {
	r := &fakeRunner{
		rawText: "", // no text layer at all
		ocrText: strings.Repeat("Записник од отворање на понуди. ", 4),
	}
	d := testDecoder(t, testConfig(t), r, 3)

	rec := d.Decode(context.Background(), pdfBytes, "")

	if rec.Status != constants.DecodeSuccess {
		t.Fatalf("status = %s, want %s (warnings: %v)", rec.Status, constants.DecodeSuccess, rec.Warnings)
	}
	if rec.Kind != constants.KindScannedPDF {
		t.Errorf("kind = %s, want %s", rec.Kind, constants.KindScannedPDF)
	}
	if rec.Engine != constants.EngineOCR {
		t.Errorf("engine = %s, want %s", rec.Engine, constants.EngineOCR)
	}
	if countCalls(r, "pdftoppm") != 1 || countCalls(r, "tesseract") != 1 {
		t.Errorf("OCR pipeline calls = %v, want one pdftoppm and one tesseract", r.calls)
	}
}

func TestDecode_PromotionOnUnderThresholdOutput(t *testing.T) {
	// both text engines produce real but insufficient output; OCR clears
	// the threshold
	r := &fakeRunner{
		rawText:    "Оглас бр. 05443/2023", // >= probe minimum, < content minimum
		layoutText: "Оглас бр. 05443/2023",
		ocrText:    strings.Repeat("Договорен орган: Општина Центар. ", 4),
	}
	d := testDecoder(t, testConfig(t), r, 1)

	rec := d.Decode(context.Background(), pdfBytes, "")

	if rec.Status != constants.DecodeSuccess {
		t.Fatalf("status = %s, want %s (warnings: %v)", rec.Status, constants.DecodeSuccess, rec.Warnings)
	}
	if rec.Engine != constants.EngineOCR {
		t.Errorf("engine = %s, want %s after two promotions", rec.Engine, constants.EngineOCR)
	}
}

func TestDecode_ThresholdCountsCharactersNotBytes(t *testing.T) {
	// 30 Cyrillic characters occupy 60 bytes; a 50-character threshold
	// must still promote, not accept the byte length
	short := strings.Repeat("да", 15)
	r := &fakeRunner{
		rawText:    short,
		layoutText: short,
		ocrText:    strings.Repeat("Целосно препознаен текст од скен. ", 3),
	}
	d := testDecoder(t, testConfig(t), r, 1)

	rec := d.Decode(context.Background(), pdfBytes, "")

	if rec.Status != constants.DecodeSuccess {
		t.Fatalf("status = %s, want %s (warnings: %v)", rec.Status, constants.DecodeSuccess, rec.Warnings)
	}
	if rec.Engine != constants.EngineOCR {
		t.Errorf("engine = %s, want %s: 30-character output must not clear a 50-character threshold",
			rec.Engine, constants.EngineOCR)
	}
}

func TestDecode_OfficeSpillExtension(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		ext  string
	}{
		{"legacy ole", append([]byte{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1}, make([]byte, 64)...), ".doc"},
		{"opendocument", []byte("PK\x03\x04mimetypeapplication/vnd.oasis.opendocument.textPK"), ".odt"},
		{"ooxml", []byte("PK\x03\x04....word/document.xml"), ".docx"},
	}
	for _, tc := range cases {
		r := &fakeRunner{rawText: strings.Repeat("Согласност за обработка на документот. ", 3)}
		d := testDecoder(t, testConfig(t), r, 1)

		rec := d.Decode(context.Background(), tc.data, "")

		if rec.Status != constants.DecodeSuccess {
			t.Errorf("%s: status = %s, want %s (warnings: %v)", tc.name, rec.Status, constants.DecodeSuccess, rec.Warnings)
			continue
		}
		if got := filepath.Ext(r.sofficeIn); got != tc.ext {
			t.Errorf("%s: spilled as %q, want extension %s", tc.name, filepath.Base(r.sofficeIn), tc.ext)
		}
	}
}

func TestDecode_OCRDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.OCREnabled = false
	r := &fakeRunner{rawText: ""}
	d := testDecoder(t, cfg, r, 2)

	rec := d.Decode(context.Background(), pdfBytes, "")

	if rec.Status != constants.DecodeOcrRequired {
		t.Fatalf("status = %s, want %s", rec.Status, constants.DecodeOcrRequired)
	}
	if countCalls(r, "pdftoppm") != 0 {
		t.Errorf("pdftoppm must not run with OCR disabled")
	}
	if rec.Failure != nil {
		t.Errorf("failure = %v, want nil for OCR_REQUIRED", rec.Failure)
	}
}

func TestDecode_AllEnginesUnderThreshold(t *testing.T) {
	r := &fakeRunner{rawText: "", layoutText: "", ocrText: "кратко"}
	d := testDecoder(t, testConfig(t), r, 1)

	rec := d.Decode(context.Background(), pdfBytes, "")

	if rec.Status != constants.DecodeFailed {
		t.Fatalf("status = %s, want %s", rec.Status, constants.DecodeFailed)
	}
	if !errors.Is(rec.Failure, common.ErrEngineFail) {
		t.Errorf("failure = %v, want ErrEngineFail", rec.Failure)
	}
}

func TestDecode_EngineErrorPromotesWithWarning(t *testing.T) {
	r := &fakeRunner{
		rawText:   "Оглас бр. 05443/2023",
		layoutErr: errors.New("exit status 1"),
		ocrText:   strings.Repeat("Предмет на договорот за јавна набавка. ", 4),
	}
	d := testDecoder(t, testConfig(t), r, 1)

	rec := d.Decode(context.Background(), pdfBytes, "")

	if rec.Status != constants.DecodeSuccess {
		t.Fatalf("status = %s, want %s", rec.Status, constants.DecodeSuccess)
	}
	if len(rec.Warnings) == 0 {
		t.Errorf("expected a warning recording the layout engine failure")
	}
}

func TestDecode_EmptyAndUnrecognizedInput(t *testing.T) {
	d := testDecoder(t, testConfig(t), &fakeRunner{}, 0)

	for name, data := range map[string][]byte{
		"empty":   nil,
		"garbage": []byte("\x00\x01\x02 not a document"),
	} {
		rec := d.Decode(context.Background(), data, "")
		if rec.Status != constants.DecodePermanent {
			t.Errorf("%s: status = %s, want %s", name, rec.Status, constants.DecodePermanent)
		}
		if !errors.Is(rec.Failure, common.ErrPermanent) {
			t.Errorf("%s: failure = %v, want ErrPermanent", name, rec.Failure)
		}
	}
}

func TestDecode_CorruptPDFIsPermanent(t *testing.T) {
	d := NewDecoder(testConfig(t), nil, nil,
		WithRunner(&fakeRunner{}),
		WithPageCounter(func(string) (int, error) { return 0, errors.New("xref table corrupt") }),
	)

	rec := d.Decode(context.Background(), pdfBytes, "")

	if rec.Status != constants.DecodePermanent {
		t.Fatalf("status = %s, want %s", rec.Status, constants.DecodePermanent)
	}
	if !errors.Is(rec.Failure, common.ErrPermanent) {
		t.Errorf("failure = %v, want ErrPermanent", rec.Failure)
	}
}

func TestDecode_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := testDecoder(t, testConfig(t), &fakeRunner{}, 1)
	rec := d.Decode(ctx, pdfBytes, "")

	if rec.Status != constants.DecodeFailed {
		t.Fatalf("status = %s, want %s", rec.Status, constants.DecodeFailed)
	}
	if !errors.Is(rec.Failure, context.Canceled) {
		t.Errorf("failure = %v, want context.Canceled", rec.Failure)
	}
	if rec.Text != "" {
		t.Errorf("partial text must be dropped on cancellation")
	}
}

func TestDecode_Workbook(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]string{
		{"Реден број", "Предмет", "Количина", "Вкупно со ДДВ"},
		{"1", "Одржување на информатичка опрема", "12", "590.000,00"},
	}
	for i, row := range rows {
		for j, cell := range row {
			name, _ := excelize.CoordinatesToCellName(j+1, i+1)
			if err := f.SetCellValue(sheet, name, cell); err != nil {
				t.Fatalf("SetCellValue: %v", err)
			}
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}

	d := testDecoder(t, testConfig(t), &fakeRunner{}, 0)
	rec := d.Decode(context.Background(), buf.Bytes(), "")

	if rec.Status != constants.DecodeSuccess {
		t.Fatalf("status = %s, want %s (warnings: %v)", rec.Status, constants.DecodeSuccess, rec.Warnings)
	}
	if rec.Engine != constants.EngineSpreadsheet {
		t.Errorf("engine = %s, want %s", rec.Engine, constants.EngineSpreadsheet)
	}
	if rec.Kind != constants.KindSpreadsheet {
		t.Errorf("kind = %s, want %s", rec.Kind, constants.KindSpreadsheet)
	}
	if !strings.Contains(rec.Text, "Одржување на информатичка опрема\t12") {
		t.Errorf("workbook rows not flattened tab-separated:\n%s", rec.Text)
	}
}

func TestDecode_RecordIsFinalizedOnce(t *testing.T) {
	d := testDecoder(t, testConfig(t), &fakeRunner{rawText: strings.Repeat("x", 60)}, 1)
	rec := d.Decode(context.Background(), pdfBytes, "")

	if !rec.Finalized() {
		t.Fatal("record not finalized")
	}
	status := rec.Status
	rec.transition(constants.DecodePending)
	rec.finalize(constants.DecodePermanent, common.ErrPermanent)
	if rec.Status != status {
		t.Errorf("frozen record mutated: %s -> %s", status, rec.Status)
	}
}

func TestDetectKind(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		mime string
		want constants.DocKind
	}{
		{"pdf magic", []byte("%PDF-1.7"), "", constants.KindTextPDF},
		{"xlsx magic", []byte("PK\x03\x04....xl/workbook.xml"), "", constants.KindSpreadsheet},
		{"docx magic", []byte("PK\x03\x04....word/document.xml"), "", constants.KindOfficeDoc},
		{"legacy doc", []byte{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1}, "", constants.KindOfficeDoc},
		{"mime fallback pdf", []byte("no magic here"), "application/pdf", constants.KindTextPDF},
		{"mime fallback workbook", []byte("no magic here"), "text/csv", constants.KindSpreadsheet},
		{"unknown", []byte("no magic here"), "text/plain", constants.KindUnknown},
	}
	for _, tc := range cases {
		if got := detectKind(tc.data, tc.mime); got != tc.want {
			t.Errorf("%s: detectKind = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestProbeStats(t *testing.T) {
	// the second page is 18 characters (35 bytes); the per-page minimum of
	// 20 counts characters, so it is not text-bearing
	text := "Договорен орган    Општина Центар    Скопје\fскенирана страница"
	pages, score := probeStats(text)
	if pages != 1 {
		t.Errorf("textPages = %d, want 1 (second page below probe minimum)", pages)
	}
	if score != 0.5 {
		t.Errorf("layoutScore = %f, want 0.5", score)
	}
}

func countCalls(r *fakeRunner, name string) int {
	n := 0
	for _, c := range r.calls {
		if c == name {
			n++
		}
	}
	return n
}
