package fieldspec

import (
	"fmt"

	"github.com/opentender-mk/tender-extract/internal/common"
)

// FieldSpec describes how to extract one field: an ordered list of
// strategies tried in ascending priority, plus typing and criticality.
// Immutable after construction.
type FieldSpec struct {
	Name       string
	Type       FieldType
	Critical   bool
	Currency   string // hint for TypeMoney fields; empty means caller default
	Strategies []Strategy
}

// New validates and builds a FieldSpec. Strategies must be non-empty with
// strictly increasing priorities.
func New(name string, typ FieldType, critical bool, strategies ...Strategy) (FieldSpec, error) {
	if name == "" {
		return FieldSpec{}, common.NewAppError("FIELDSPEC_ERROR", "field name is required", common.ErrInvalidInput)
	}
	if len(strategies) == 0 {
		return FieldSpec{}, common.NewAppError("FIELDSPEC_ERROR", fmt.Sprintf("field %q has no strategies", name), common.ErrInvalidInput)
	}
	for i := 1; i < len(strategies); i++ {
		if strategies[i].Priority <= strategies[i-1].Priority {
			return FieldSpec{}, common.NewAppError("FIELDSPEC_ERROR",
				fmt.Sprintf("field %q: strategy priorities must be strictly increasing (%d after %d)",
					name, strategies[i].Priority, strategies[i-1].Priority), common.ErrInvalidInput)
		}
	}
	return FieldSpec{Name: name, Type: typ, Critical: critical, Strategies: strategies}, nil
}

// MustNew is New for statically known tables.
func MustNew(name string, typ FieldType, critical bool, strategies ...Strategy) FieldSpec {
	fs, err := New(name, typ, critical, strategies...)
	if err != nil {
		panic(err)
	}
	return fs
}

// ExtractionOutcome is the append-only audit record for one field of one
// document. Level is the priority of the strategy that produced the value,
// nil when every strategy exhausted.
type ExtractionOutcome struct {
	Field     string
	Value     *NormalizedValue
	Level     *uint8
	Attempted bool
}

// CriticalNames returns the names of all critical fields in a table, for
// telemetry alert checks.
func CriticalNames(specs []FieldSpec) []string {
	var names []string
	for _, fs := range specs {
		if fs.Critical {
			names = append(names, fs.Name)
		}
	}
	return names
}
