// Package query translates short natural-language phrases such as
// "IT findings from 2023" into structured record-store filters and runs them.
package query

import (
	"regexp"

	"github.com/sells-group/findings-cli/internal/model"
)

// Category groups patterns by the kind of phrase they understand.
type Category string

// Pattern categories.
const (
	CategoryTemporal    Category = "temporal"
	CategoryDepartment  Category = "department"
	CategoryRisk        Category = "risk"
	CategoryProject     Category = "project"
	CategorySubholding  Category = "subholding"
	CategoryFindingType Category = "finding_type"
	CategoryComposite   Category = "composite"
)

// ParamType is the declared type of an extracted parameter.
type ParamType string

// Parameter types.
const (
	TypeString  ParamType = "string"
	TypeNumber  ParamType = "number"
	TypeBoolean ParamType = "boolean"
)

func (t ParamType) valid() bool {
	switch t {
	case TypeString, TypeNumber, TypeBoolean:
		return true
	}
	return false
}

// Normalizer names a transformation applied to a captured value before type
// conversion.
type Normalizer string

// Normalizers. NormalizeNone leaves the captured text untouched.
const (
	NormalizeNone       Normalizer = ""
	NormalizeCapitalize Normalizer = "capitalize"
	NormalizeUppercase  Normalizer = "uppercase"
	NormalizeLowercase  Normalizer = "lowercase"
	NormalizeTrim       Normalizer = "trim"
)

func (n Normalizer) valid() bool {
	switch n {
	case NormalizeNone, NormalizeCapitalize, NormalizeUppercase, NormalizeLowercase, NormalizeTrim:
		return true
	}
	return false
}

// Extractor reads one parameter out of a regex capture group.
type Extractor struct {
	Name      string     `json:"name" yaml:"name"`
	Type      ParamType  `json:"type" yaml:"type"`
	Group     int        `json:"group" yaml:"group"`
	Normalize Normalizer `json:"normalize,omitempty" yaml:"normalize"`
}

// FilterBuilder maps extracted parameters to store filters.
type FilterBuilder func(Params) []model.Filter

// SortBuilder maps extracted parameters to sort directives.
type SortBuilder func(Params) []model.SortDirective

// Pattern describes one phrase shape and how to turn a match into a query.
type Pattern struct {
	ID         string
	Name       string
	Category   Category
	Priority   int
	Regex      *regexp.Regexp
	Extractors []Extractor
	Filters    FilterBuilder
	Sorts      SortBuilder
	Examples   []string
}

// BuildFilters runs the pattern's filter builder.
func (p *Pattern) BuildFilters(params Params) []model.Filter {
	if p.Filters == nil {
		return nil
	}
	return p.Filters(params)
}

// BuildSorts runs the pattern's sort builder.
func (p *Pattern) BuildSorts(params Params) []model.SortDirective {
	if p.Sorts == nil {
		return nil
	}
	return p.Sorts(params)
}

// Params holds the typed values extracted from one matched phrase. Numbers
// are int when the captured text is integral, float64 otherwise.
type Params map[string]any

// String returns the named parameter as a string.
func (p Params) String(name string) (string, bool) {
	v, ok := p[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Int returns the named parameter as an int. Integral float64 values are
// accepted.
func (p Params) Int(name string) (int, bool) {
	switch v := p[name].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v == float64(int(v)) {
			return int(v), true
		}
	}
	return 0, false
}

// MatchResult is the outcome of Matcher.Match. Confidence is 1 on any regex
// hit and 0 otherwise.
type MatchResult struct {
	Matched    bool     `json:"matched"`
	Pattern    *Pattern `json:"-"`
	Params     Params   `json:"params,omitempty"`
	Confidence float64  `json:"confidence"`
}

// PatternID returns the id of the matched pattern, or "" when nothing matched.
func (r MatchResult) PatternID() string {
	if r.Pattern == nil {
		return ""
	}
	return r.Pattern.ID
}
