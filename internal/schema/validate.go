// Package schema validates resolved records before hand-off, so a drifting
// source can never push a structurally broken record downstream.
package schema

import (
	"fmt"
	"log/slog"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/opentender-mk/tender-extract/internal/fieldspec"
	"github.com/opentender-mk/tender-extract/internal/resolver"
)

const tenderSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "tender_number": {"type": "string", "minLength": 1},
    "title": {"type": "string", "minLength": 1},
    "contracting_authority": {"type": "string"},
    "publication_date": {"type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$"},
    "closing_date": {"type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$"},
    "estimated_value": {"type": "string", "pattern": "^[0-9]+(\\.[0-9]+)?$"},
    "awarded_value": {"type": "string", "pattern": "^[0-9]+(\\.[0-9]+)?$"},
    "estimated_value_currency": {"type": "string", "minLength": 3, "maxLength": 3},
    "awarded_value_currency": {"type": "string", "minLength": 3, "maxLength": 3},
    "winner": {"type": "string"},
    "procedure_type": {"type": "string"},
    "status": {"type": "string"},
    "cpv_code": {"type": "string"}
  },
  "required": ["tender_number", "title"]
}`

// Validator checks records against the tender record schema.
type Validator struct {
	schema *jsonschema.Schema
	logger *slog.Logger
}

func NewValidator(logger *slog.Logger) (*Validator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	compiled, err := jsonschema.CompileString("tender.schema.json", tenderSchema)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: compiled, logger: logger}, nil
}

// Validate converts a record into its wire shape and checks it. Fields that
// resolved to nil are omitted, matching the schema's optionality; a missing
// required field therefore fails here, not in the consumer.
func (v *Validator) Validate(record resolver.Record) error {
	doc := ToWire(record)
	if err := v.schema.Validate(doc); err != nil {
		v.logger.Warn("record failed schema validation", "error", err)
		return err
	}
	return nil
}

// ToWire renders a record as plain JSON-compatible values: dates as
// ISO-8601, money as exact decimal strings plus a companion currency field.
func ToWire(record resolver.Record) map[string]any {
	doc := make(map[string]any, len(record))
	for name, value := range record {
		if value == nil {
			continue
		}
		switch value.Kind {
		case fieldspec.ValueDate:
			doc[name] = value.Date.Format("2006-01-02")
		case fieldspec.ValueMoney:
			doc[name] = value.Amount.String()
			doc[name+"_currency"] = value.Currency
		case fieldspec.ValueRaw:
			doc[name] = value.Raw
		default:
			doc[name] = value.Text
		}
	}
	return doc
}
