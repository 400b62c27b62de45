package telemetry

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/opentender-mk/tender-extract/constants"
)

// Exporter mirrors telemetry counters into a prometheus registry for
// callers that run a scrape endpoint. The engine itself never serves HTTP;
// it only increments the vectors.
type Exporter struct {
	fieldOutcomes *prometheus.CounterVec
	fieldLevels   *prometheus.CounterVec
	documents     *prometheus.CounterVec
}

func NewExporter(reg prometheus.Registerer) *Exporter {
	e := &Exporter{
		fieldOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tender_extract_field_outcomes_total",
				Help: "Field extraction outcomes by field and result",
			},
			[]string{"field", "result"},
		),
		fieldLevels: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tender_extract_strategy_level_total",
				Help: "Successful extractions by field and strategy level",
			},
			[]string{"field", "level"},
		),
		documents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tender_extract_documents_total",
				Help: "Decoded documents by terminal status",
			},
			[]string{"status"},
		),
	}
	reg.MustRegister(e.fieldOutcomes, e.fieldLevels, e.documents)
	return e
}

func (e *Exporter) recordField(field string, success bool, level *uint8) {
	result := "failure"
	if success {
		result = "success"
	}
	e.fieldOutcomes.WithLabelValues(field, result).Inc()
	if success && level != nil {
		e.fieldLevels.WithLabelValues(field, strconv.Itoa(int(*level))).Inc()
	}
}

func (e *Exporter) recordDocument(status constants.DecodeStatus) {
	e.documents.WithLabelValues(string(status)).Inc()
}
