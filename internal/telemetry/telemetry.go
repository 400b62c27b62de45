// Package telemetry accumulates per-field extraction counters for a batch.
// Its alert check is what surfaces upstream structural drift: a critical
// field whose success rate collapses means the source markup changed, long
// before anyone inspects a page by hand.
package telemetry

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/opentender-mk/tender-extract/constants"
)

// FieldStats are the aggregated counters for one field across a batch.
type FieldStats struct {
	Attempts  uint64
	Successes uint64
	Failures  uint64
	PerLevel  map[uint8]uint64
}

// Snapshot is a point-in-time copy of all counters. It shares no memory
// with the live accumulator.
type Snapshot struct {
	Fields    map[string]FieldStats
	Documents map[constants.DecodeStatus]uint64
}

// Alert flags a critical field whose batch success rate fell below the
// configured threshold.
type Alert struct {
	Field     string
	Rate      float64
	Attempts  uint64
	Threshold float64
}

// DefaultAlertThreshold is the success-rate floor for critical fields.
const DefaultAlertThreshold = 0.8

// Telemetry is the one piece of shared mutable state across concurrent
// document tasks. It is an injected handle, not a process singleton, and
// all increments are mutex-guarded.
type Telemetry struct {
	mu     sync.Mutex
	fields map[string]*FieldStats
	docs   map[constants.DecodeStatus]uint64
	exp    *Exporter
	logger *slog.Logger
}

func New(logger *slog.Logger) *Telemetry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Telemetry{
		fields: make(map[string]*FieldStats),
		docs:   make(map[constants.DecodeStatus]uint64),
		logger: logger,
	}
}

// WithExporter attaches a prometheus exporter; every Record/RecordDocument
// call then also increments the exported counters.
func (t *Telemetry) WithExporter(exp *Exporter) *Telemetry {
	t.mu.Lock()
	t.exp = exp
	t.mu.Unlock()
	return t
}

// Record counts one field outcome. level is the strategy priority that
// succeeded, nil on failure.
func (t *Telemetry) Record(field string, success bool, level *uint8) {
	t.mu.Lock()
	st, ok := t.fields[field]
	if !ok {
		st = &FieldStats{PerLevel: make(map[uint8]uint64)}
		t.fields[field] = st
	}
	st.Attempts++
	if success {
		st.Successes++
		if level != nil {
			st.PerLevel[*level]++
		}
	} else {
		st.Failures++
	}
	exp := t.exp
	t.mu.Unlock()

	if exp != nil {
		exp.recordField(field, success, level)
	}
}

// RecordDocument counts one terminal decode classification.
func (t *Telemetry) RecordDocument(status constants.DecodeStatus) {
	t.mu.Lock()
	t.docs[status]++
	exp := t.exp
	t.mu.Unlock()

	if exp != nil {
		exp.recordDocument(status)
	}
}

// Snapshot deep-copies the current counters.
func (t *Telemetry) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := Snapshot{
		Fields:    make(map[string]FieldStats, len(t.fields)),
		Documents: make(map[constants.DecodeStatus]uint64, len(t.docs)),
	}
	for name, st := range t.fields {
		levels := make(map[uint8]uint64, len(st.PerLevel))
		for l, n := range st.PerLevel {
			levels[l] = n
		}
		snap.Fields[name] = FieldStats{
			Attempts:  st.Attempts,
			Successes: st.Successes,
			Failures:  st.Failures,
			PerLevel:  levels,
		}
	}
	for status, n := range t.docs {
		snap.Documents[status] = n
	}
	return snap
}

// Reset clears all counters. The caller invokes it between batches; nothing
// resets implicitly.
func (t *Telemetry) Reset() {
	t.mu.Lock()
	t.fields = make(map[string]*FieldStats)
	t.docs = make(map[constants.DecodeStatus]uint64)
	t.mu.Unlock()
}

// CheckAlerts returns one alert per critical field whose success rate fell
// below threshold during the batch. Non-critical fields never alert; they
// are allowed to be unreliable. A non-positive threshold means the default.
func (t *Telemetry) CheckAlerts(criticalFields []string, threshold float64) []Alert {
	if threshold <= 0 {
		threshold = DefaultAlertThreshold
	}
	snap := t.Snapshot()

	var alerts []Alert
	for _, field := range criticalFields {
		st, ok := snap.Fields[field]
		if !ok || st.Attempts == 0 {
			continue
		}
		rate := float64(st.Successes) / float64(st.Attempts)
		if rate < threshold {
			alerts = append(alerts, Alert{Field: field, Rate: rate, Attempts: st.Attempts, Threshold: threshold})
			t.logger.Warn("critical field below success threshold",
				"field", field, "rate", rate, "attempts", st.Attempts, "threshold", threshold)
		}
	}
	sort.Slice(alerts, func(i, j int) bool { return alerts[i].Field < alerts[j].Field })
	return alerts
}
