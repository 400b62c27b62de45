package fieldspec

import "log/slog"

// TenderSpecs is the default field table for procurement notice pages on
// the national e-procurement portal. Labels are the user-facing Macedonian
// strings with English fallbacks; selectors target markup that historically
// shifts, which is why every field carries a label-search fallback.
func TenderSpecs() []FieldSpec {
	return []FieldSpec{
		MustNew("tender_number", TypeText, true,
			NewPathQuery(1, "span#dossierNumber"),
			NewLabelSearch(2, []string{"Број на оглас", "Број на тендер"}, []string{"Notice number", "Tender number"}),
			NewURLParameter(3, "dossierId"),
			MustPattern(4, `(?i)оглас\s+бр\.?\s*([0-9/-]+)`),
		),
		MustNew("title", TypeText, true,
			NewPathQuery(1, "h1.dossier-title"),
			NewLabelSearch(2, []string{"Предмет на договорот", "Предмет на набавката"}, []string{"Subject of the contract"}),
		),
		MustNew("contracting_authority", TypeText, true,
			NewPathQuery(1, "div.authority-name"),
			NewLabelSearch(2, []string{"Договорен орган"}, []string{"Contracting authority", "Contracting body"}),
		),
		MustNew("publication_date", TypeDate, true,
			NewPathQuery(1, "span.publication-date"),
			NewLabelSearch(2, []string{"Датум на објава"}, []string{"Publication date"}),
			MustPattern(3, `(?i)објавен[ао]?\s+на\s+(\d{1,2}[./-]\d{1,2}[./-]\d{2,4})`),
		),
		MustNew("closing_date", TypeDate, true,
			NewPathQuery(1, "span.closing-date"),
			NewLabelSearch(2, []string{"Краен рок", "Рок за поднесување"}, []string{"Closing date", "Deadline"}),
			NewKeywordScan(3, "Краен рок", "Deadline"),
		),
		MustNew("estimated_value", TypeMoney, false,
			NewLabelSearch(1, []string{"Проценета вредност", "Вредност на договорот"}, []string{"Estimated value"}),
			MustPattern(2, `(?i)проценета\s+вредност[^0-9]*([0-9 .,\x{00a0}]+)`),
		),
		MustNew("awarded_value", TypeMoney, false,
			NewLabelSearch(1, []string{"Вредност на склучениот договор"}, []string{"Awarded value", "Contract value"}),
		),
		MustNew("winner", TypeText, false,
			NewLabelSearch(1, []string{"Носител на набавката", "Избран понудувач"}, []string{"Winner", "Awarded to"}),
		),
		MustNew("procedure_type", TypeText, false,
			NewLabelSearch(1, []string{"Вид на постапка"}, []string{"Procedure type"}),
			NewDefault(2, "отворена постапка", slog.LevelInfo),
		),
		MustNew("status", TypeText, false,
			NewPathQuery(1, "span.dossier-status"),
			NewLabelSearch(2, []string{"Статус"}, []string{"Status"}),
		),
		MustNew("cpv_code", TypeText, false,
			NewLabelSearch(1, []string{"Заеднички поимник за јавни набавки", "ЦПВ"}, []string{"CPV code", "CPV"}),
			MustPattern(2, `\b(\d{8}-\d)\b`),
		),
	}
}
