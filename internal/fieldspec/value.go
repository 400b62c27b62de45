package fieldspec

import (
	"time"

	"github.com/shopspring/decimal"
)

// ValueKind tags a NormalizedValue variant.
type ValueKind int

const (
	ValueText ValueKind = iota
	ValueDate
	ValueMoney
	ValueRaw
)

func (k ValueKind) String() string {
	switch k {
	case ValueText:
		return "text"
	case ValueDate:
		return "date"
	case ValueMoney:
		return "money"
	case ValueRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// NormalizedValue is the typed result of a successful field extraction.
// Money carries an arbitrary-precision decimal; monetary amounts never pass
// through a float on any path.
type NormalizedValue struct {
	Kind     ValueKind
	Text     string
	Date     time.Time // UTC midnight
	Amount   decimal.Decimal
	Currency string
	Raw      string
}

func NewText(s string) *NormalizedValue {
	return &NormalizedValue{Kind: ValueText, Text: s}
}

func NewDate(t time.Time) *NormalizedValue {
	return &NormalizedValue{Kind: ValueDate, Date: t}
}

func NewMoney(amount decimal.Decimal, currency string) *NormalizedValue {
	return &NormalizedValue{Kind: ValueMoney, Amount: amount, Currency: currency}
}

func NewRaw(s string) *NormalizedValue {
	return &NormalizedValue{Kind: ValueRaw, Raw: s}
}

// String renders the value for logs and audit output.
func (v *NormalizedValue) String() string {
	if v == nil {
		return ""
	}
	switch v.Kind {
	case ValueText:
		return v.Text
	case ValueDate:
		return v.Date.Format("2006-01-02")
	case ValueMoney:
		return v.Amount.String() + " " + v.Currency
	default:
		return v.Raw
	}
}

// FieldType declares what a field's raw string should normalize into.
type FieldType int

const (
	TypeText FieldType = iota
	TypeDate
	TypeMoney
	TypeRaw
)
