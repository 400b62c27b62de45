package fieldspec

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/opentender-mk/tender-extract/internal/common"
)

func TestNew_Valid(t *testing.T) {
	fs, err := New("closing_date", TypeDate, true,
		NewPathQuery(1, "#deadline"),
		NewLabelSearch(2, []string{"Краен рок"}, []string{"Deadline"}),
		NewKeywordScan(3, "краен рок"),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !fs.Critical || fs.Type != TypeDate || len(fs.Strategies) != 3 {
		t.Errorf("spec not populated: %+v", fs)
	}
}

func TestNew_Rejections(t *testing.T) {
	cases := []struct {
		name       string
		field      string
		strategies []Strategy
	}{
		{"empty name", "", []Strategy{NewPathQuery(1, "#x")}},
		{"no strategies", "title", nil},
		{"equal priorities", "title", []Strategy{NewPathQuery(1, "#x"), NewKeywordScan(1, "наслов")}},
		{"descending priorities", "title", []Strategy{NewPathQuery(2, "#x"), NewKeywordScan(1, "наслов")}},
	}
	for _, tc := range cases {
		_, err := New(tc.field, TypeText, false, tc.strategies...)
		if err == nil {
			t.Errorf("%s: New() succeeded, want error", tc.name)
			continue
		}
		if !errors.Is(err, common.ErrInvalidInput) {
			t.Errorf("%s: error = %v, want ErrInvalidInput", tc.name, err)
		}
	}
}

func TestNewPattern_BadExpression(t *testing.T) {
	if _, err := NewPattern(1, "(["); err == nil {
		t.Error("NewPattern() succeeded on an invalid expression")
	}
}

func TestCriticalNames(t *testing.T) {
	specs := []FieldSpec{
		MustNew("tender_number", TypeText, true, NewPathQuery(1, "#num")),
		MustNew("winner", TypeText, false, NewKeywordScan(1, "носител")),
		MustNew("closing_date", TypeDate, true, NewDefault(1, "", slog.LevelWarn)),
	}
	got := CriticalNames(specs)
	want := []string{"tender_number", "closing_date"}
	if len(got) != len(want) {
		t.Fatalf("CriticalNames() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("CriticalNames()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTenderSpecs_TableIsWellFormed(t *testing.T) {
	specs := TenderSpecs()
	if len(specs) == 0 {
		t.Fatal("TenderSpecs() is empty")
	}
	seen := map[string]bool{}
	for _, fs := range specs {
		if seen[fs.Name] {
			t.Errorf("duplicate field %q", fs.Name)
		}
		seen[fs.Name] = true
		if len(fs.Strategies) == 0 {
			t.Errorf("field %q has no strategies", fs.Name)
		}
	}
	for _, name := range []string{"tender_number", "title", "contracting_authority", "publication_date", "closing_date"} {
		if !seen[name] {
			t.Errorf("required field %q missing from default table", name)
		}
	}
	if crit := CriticalNames(specs); len(crit) != 5 {
		t.Errorf("critical fields = %v, want the five core fields", crit)
	}
}
