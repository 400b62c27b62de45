package schema

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/opentender-mk/tender-extract/internal/fieldspec"
	"github.com/opentender-mk/tender-extract/internal/resolver"
)

func TestValidate(t *testing.T) {
	v, err := NewValidator(nil)
	if err != nil {
		t.Fatalf("NewValidator() error = %v", err)
	}

	good := resolver.Record{
		"tender_number":   fieldspec.NewText("05443/2023"),
		"title":           fieldspec.NewText("Набавка на канцелариски материјали"),
		"closing_date":    fieldspec.NewDate(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
		"estimated_value": fieldspec.NewMoney(decimal.RequireFromString("590000"), "MKD"),
		"winner":          nil, // unresolved fields are omitted from the wire shape
	}
	if err := v.Validate(good); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}

	missingTitle := resolver.Record{
		"tender_number": fieldspec.NewText("05443/2023"),
	}
	if err := v.Validate(missingTitle); err == nil {
		t.Error("Validate() accepted a record without a title")
	}
}

func TestToWire(t *testing.T) {
	doc := ToWire(resolver.Record{
		"awarded_value":    fieldspec.NewMoney(decimal.RequireFromString("2360"), "MKD"),
		"publication_date": fieldspec.NewDate(time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)),
		"status":           nil,
	})

	if doc["awarded_value"] != "2360" {
		t.Errorf("awarded_value = %v, want 2360", doc["awarded_value"])
	}
	if doc["awarded_value_currency"] != "MKD" {
		t.Errorf("awarded_value_currency = %v, want MKD", doc["awarded_value_currency"])
	}
	if doc["publication_date"] != "2024-03-14" {
		t.Errorf("publication_date = %v, want 2024-03-14", doc["publication_date"])
	}
	if _, ok := doc["status"]; ok {
		t.Error("nil field leaked into the wire shape")
	}
}
