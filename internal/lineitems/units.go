package lineitems

import "strings"

// unitWords is the unit-keyword dictionary, stored as single words on
// purpose: decoded table cells arrive line-fragmented, so a two-word unit
// like "Работен час" reaches the extractor as two separate tokens and each
// must match independently.
var unitWords = map[string]struct{}{
	// Macedonian
	"час": {}, "часа": {}, "часови": {}, "работен": {}, "работни": {},
	"парче": {}, "парчиња": {}, "бр": {}, "број": {},
	"месец": {}, "месеци": {}, "година": {}, "години": {},
	"ден": {}, "дена": {}, "денови": {},
	"литар": {}, "литри": {}, "килограм": {}, "килограми": {},
	"тон": {}, "тони": {}, "метар": {}, "метри": {},
	"комплет": {}, "пакет": {}, "пакување": {}, "услуга": {}, "услуги": {},
	// unit symbols, both scripts
	"кг": {}, "км": {}, "м2": {}, "м3": {}, "л": {},
	"kg": {}, "km": {}, "m2": {}, "m3": {}, "l": {}, "kom": {},
	// English
	"hour": {}, "hours": {}, "piece": {}, "pieces": {}, "pcs": {},
	"month": {}, "months": {}, "day": {}, "days": {}, "unit": {}, "units": {},
	"set": {}, "package": {}, "service": {},
}

func isUnitWord(w string) bool {
	_, ok := unitWords[strings.ToLower(strings.Trim(w, ".,"))]
	return ok
}

// splitUnit separates a flattened token run into name and unit by taking
// the longest trailing contiguous sequence of unit words, preserving their
// original order. No match means the whole run is the name and the unit is
// absent; tokens are never discarded.
func splitUnit(words []string) (name string, unit string) {
	cut := len(words)
	for cut > 0 && isUnitWord(words[cut-1]) {
		cut--
	}
	return strings.Join(words[:cut], " "), strings.Join(words[cut:], " ")
}
