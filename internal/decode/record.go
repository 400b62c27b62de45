package decode

import (
	"time"

	"github.com/google/uuid"
	"github.com/opentender-mk/tender-extract/constants"
)

// Transition is one recorded state change of a decode.
type Transition struct {
	From constants.DecodeStatus
	To   constants.DecodeStatus
	At   time.Time
}

// DocumentRecord tracks one document through the decode state machine:
// Pending -> Analyzed -> Decoding -> terminal. It is mutable while the
// decoder owns it and frozen by Finalize; a frozen record silently ignores
// further writes, so a late goroutine cannot corrupt a result the caller
// already holds.
type DocumentRecord struct {
	ID       uuid.UUID
	ByteLen  int
	Kind     constants.DocKind
	Engine   constants.Engine
	Text     string
	Pages    int
	Status   constants.DecodeStatus
	Failure  error // taxonomy sentinel for FAILED / PERMANENTLY_FAILED
	Warnings []string
	Duration time.Duration

	Transitions []Transition

	started time.Time
	frozen  bool
}

func newRecord(byteLen int) *DocumentRecord {
	return &DocumentRecord{
		ID:      uuid.New(),
		ByteLen: byteLen,
		Kind:    constants.KindUnknown,
		Status:  constants.DecodePending,
		started: time.Now(),
	}
}

func (r *DocumentRecord) transition(to constants.DecodeStatus) {
	if r.frozen {
		return
	}
	r.Transitions = append(r.Transitions, Transition{From: r.Status, To: to, At: time.Now()})
	r.Status = to
}

func (r *DocumentRecord) warn(msg string) {
	if r.frozen || msg == "" {
		return
	}
	r.Warnings = append(r.Warnings, msg)
}

// finalize moves the record to a terminal status exactly once.
func (r *DocumentRecord) finalize(status constants.DecodeStatus, failure error) {
	if r.frozen {
		return
	}
	r.transition(status)
	r.Failure = failure
	r.Duration = time.Since(r.started)
	r.frozen = true
}

// Finalized reports whether the record reached a terminal status.
func (r *DocumentRecord) Finalized() bool {
	return r.frozen
}
