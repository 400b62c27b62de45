package fieldspec

import (
	"log/slog"
	"regexp"
)

// StrategyKind enumerates the closed set of extraction strategies. Adding a
// kind means extending the resolver's dispatch switch, which the compiler
// checks; there is no open-ended strategy registration.
type StrategyKind int

const (
	// PathQuery queries the document tree with a CSS selector.
	PathQuery StrategyKind = iota
	// LabelSearch locates a user-facing label and takes the adjacent value.
	LabelSearch
	// Pattern matches a regular expression against the full document text.
	Pattern
	// URLParameter reads a query parameter from the document URL.
	URLParameter
	// KeywordScan finds a keyword in the flat text and takes the line remainder.
	KeywordScan
	// Default yields a fixed value and logs at a configured severity.
	Default
)

func (k StrategyKind) String() string {
	switch k {
	case PathQuery:
		return "path-query"
	case LabelSearch:
		return "label-search"
	case Pattern:
		return "pattern"
	case URLParameter:
		return "url-parameter"
	case KeywordScan:
		return "keyword-scan"
	case Default:
		return "default"
	default:
		return "unknown"
	}
}

// Strategy is one concrete method for extracting a field's raw value. It is
// owned by its FieldSpec and immutable after construction; payload fields
// are populated per kind.
type Strategy struct {
	Kind     StrategyKind
	Priority uint8

	Selector        string         // PathQuery
	PrimaryLabels   []string       // LabelSearch, primary-language labels
	SecondaryLabels []string       // LabelSearch, secondary-language labels
	Regexp          *regexp.Regexp // Pattern
	Param           string         // URLParameter
	Keywords        []string       // KeywordScan
	Value           string         // Default
	Severity        slog.Level     // Default log severity
}

func NewPathQuery(priority uint8, selector string) Strategy {
	return Strategy{Kind: PathQuery, Priority: priority, Selector: selector}
}

func NewLabelSearch(priority uint8, primary, secondary []string) Strategy {
	return Strategy{Kind: LabelSearch, Priority: priority, PrimaryLabels: primary, SecondaryLabels: secondary}
}

// NewPattern compiles expr eagerly so a bad expression fails at table
// construction, not mid-batch.
func NewPattern(priority uint8, expr string) (Strategy, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Strategy{}, err
	}
	return Strategy{Kind: Pattern, Priority: priority, Regexp: re}, nil
}

func MustPattern(priority uint8, expr string) Strategy {
	return Strategy{Kind: Pattern, Priority: priority, Regexp: regexp.MustCompile(expr)}
}

func NewURLParameter(priority uint8, param string) Strategy {
	return Strategy{Kind: URLParameter, Priority: priority, Param: param}
}

func NewKeywordScan(priority uint8, keywords ...string) Strategy {
	return Strategy{Kind: KeywordScan, Priority: priority, Keywords: keywords}
}

func NewDefault(priority uint8, value string, severity slog.Level) Strategy {
	return Strategy{Kind: Default, Priority: priority, Value: value, Severity: severity}
}
