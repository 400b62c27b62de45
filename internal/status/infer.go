// Package status derives a tender lifecycle status from resolved fields and
// document text. The signal cascade is ordered by decreasing reliability:
// an explicit status field beats outcome evidence, which beats date
// arithmetic, which beats a fuzzy keyword scan.
package status

import (
	"strings"
	"time"

	"github.com/opentender-mk/tender-extract/constants"
	"github.com/opentender-mk/tender-extract/internal/fieldspec"
	"github.com/opentender-mk/tender-extract/internal/resolver"
)

// statusKeywords is the bilingual dictionary for both the explicit-field
// match and the full-text scan. Order matters for the scan: awarded and
// cancelled phrases are more specific than open/closed ones.
var statusKeywords = []struct {
	status   constants.TenderStatus
	keywords []string
}{
	{constants.StatusAwarded, []string{"доделен", "склучен договор", "избран понудувач", "awarded", "contract signed"}},
	{constants.StatusCancelled, []string{"поништен", "поништена", "откажан", "cancelled", "canceled", "annulled"}},
	{constants.StatusClosed, []string{"затворен", "завршен", "истечен", "closed", "expired"}},
	{constants.StatusDraft, []string{"нацрт", "во подготовка", "draft"}},
	{constants.StatusOpen, []string{"отворен", "активен", "во тек", "open", "active"}},
}

// Infer derives a status from the resolved record and the flattened page
// text. now is injected so closing-date arithmetic is reproducible.
func Infer(record resolver.Record, fullText string, now time.Time) constants.TenderStatus {
	// 1. explicit status field
	if v := record["status"]; v != nil {
		if s, ok := matchKeyword(v.String()); ok {
			return s
		}
	}

	// 2. outcome evidence: a winner or an awarded value means the contract
	// was granted regardless of what the page footer says
	if hasValue(record["winner"]) || hasValue(record["awarded_value"]) {
		return constants.StatusAwarded
	}

	// 3. date arithmetic on the closing date
	if v := record["closing_date"]; v != nil && v.Kind == fieldspec.ValueDate {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		if v.Date.Before(today) {
			return constants.StatusClosed
		}
		return constants.StatusOpen
	}

	// 4. full-text keyword scan
	if s, ok := matchKeyword(fullText); ok {
		return s
	}

	// 5. default
	return constants.StatusOpen
}

func matchKeyword(text string) (constants.TenderStatus, bool) {
	t := strings.ToLower(text)
	if strings.TrimSpace(t) == "" {
		return "", false
	}
	for _, entry := range statusKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(t, kw) {
				return entry.status, true
			}
		}
	}
	return "", false
}

func hasValue(v *fieldspec.NormalizedValue) bool {
	return v != nil && strings.TrimSpace(v.String()) != ""
}
