package constants

import "strings"

// DocFormat is the coarse container format detected from extension or magic bytes.
type DocFormat string

const (
	PDF         DocFormat = "PDF"
	OFFICE      DocFormat = "OFFICE"
	SPREADSHEET DocFormat = "SPREADSHEET"
	IMAGE       DocFormat = "IMAGE"
	UNKNOWN     DocFormat = ""
)

// DocKind is the refined classification produced by the decode analyzer.
type DocKind string

const (
	KindTextPDF     DocKind = "text_pdf"
	KindScannedPDF  DocKind = "scanned_pdf"
	KindOfficeDoc   DocKind = "office_doc"
	KindSpreadsheet DocKind = "spreadsheet"
	KindUnknown     DocKind = "unknown"
)

// AllowedExtensions holds the default allowed file extensions for document ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"doc":  {},
	"docx": {},
	"odt":  {},
	"rtf":  {},
	"xls":  {},
	"xlsx": {},
	"ods":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a normalized extension to a container format.
func MapExtToFormat(ext string) DocFormat {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "doc", "docx", "odt", "rtf":
		return OFFICE
	case "xls", "xlsx", "ods", "csv":
		return SPREADSHEET
	case "jpg", "jpeg", "png", "tif", "tiff":
		return IMAGE
	default:
		return UNKNOWN
	}
}

// MapMimeToFormat maps a mime hint to a container format. The hint may be
// empty or wrong; the analyzer re-detects from magic bytes either way.
func MapMimeToFormat(mime string) DocFormat {
	m := strings.ToLower(strings.TrimSpace(mime))
	switch {
	case m == "application/pdf":
		return PDF
	case strings.Contains(m, "spreadsheet"), strings.Contains(m, "ms-excel"), m == "text/csv":
		return SPREADSHEET
	case strings.Contains(m, "wordprocessing"), strings.Contains(m, "msword"), strings.Contains(m, "opendocument.text"), m == "application/rtf":
		return OFFICE
	case strings.HasPrefix(m, "image/"):
		return IMAGE
	default:
		return UNKNOWN
	}
}
