package constants

// DecodeStatus is the canonical lifecycle state for a document decode.
type DecodeStatus string

// Stable values (callers persist these exact strings).
const (
	DecodePending     DecodeStatus = "PENDING"      // created, not yet analyzed
	DecodeAnalyzed    DecodeStatus = "ANALYZED"     // analyzer produced an engine recommendation
	DecodeDecoding    DecodeStatus = "DECODING"     // engine cascade in progress
	DecodeSuccess     DecodeStatus = "SUCCESS"      // output met the minimum-content threshold
	DecodeOcrRequired DecodeStatus = "OCR_REQUIRED" // non-OCR engines under threshold, OCR unavailable
	DecodeFailed      DecodeStatus = "FAILED"       // recoverable failure; external scheduler may retry
	DecodePermanent   DecodeStatus = "PERMANENTLY_FAILED"
)

// Terminal reports whether no further transitions are allowed from s.
func (s DecodeStatus) Terminal() bool {
	switch s {
	case DecodeSuccess, DecodeOcrRequired, DecodeFailed, DecodePermanent:
		return true
	}
	return false
}

// TenderStatus is the inferred lifecycle state of a procurement record.
type TenderStatus string

const (
	StatusOpen      TenderStatus = "OPEN"
	StatusClosed    TenderStatus = "CLOSED"
	StatusAwarded   TenderStatus = "AWARDED"
	StatusCancelled TenderStatus = "CANCELLED"
	StatusDraft     TenderStatus = "DRAFT"
)

// Engine identifies one member of the decode cascade.
type Engine string

const (
	EngineFastText    Engine = "fast-text"
	EngineLayout      Engine = "layout"
	EngineOCR         Engine = "ocr"
	EngineSpreadsheet Engine = "spreadsheet"
	EngineNone        Engine = ""
)
