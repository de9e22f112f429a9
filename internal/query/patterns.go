package query

import (
	"regexp"
	"strings"

	"github.com/sells-group/findings-cli/internal/model"
)

// Departments is the enumerated set of department names the built-in
// patterns recognise. Matching is case-insensitive.
var Departments = []string{
	"IT", "HR", "Finance", "Accounting", "Marketing", "Sales", "Operations",
	"Legal", "Procurement", "Audit", "Compliance", "Engineering", "Logistics",
	"Production",
}

// SubholdingCodes is the enumerated set of subholding codes the built-in
// patterns recognise. Matching is case-insensitive.
var SubholdingCodes = []string{"1A", "1B", "2A", "2B", "3A", "3B", "4A", "4B"}

// Risk score thresholds on nilai.
const (
	CriticalThreshold = 15
	HighThreshold     = 10
	MediumThreshold   = 5
)

// Regex fragments shared by the built-in patterns.
var (
	deptGroup = "(" + strings.Join(Departments, "|") + ")"
	shGroup   = "(" + strings.Join(SubholdingCodes, "|") + ")"
)

const (
	yearGroup  = `(\d{4})`
	showPrefix = `(?:show\s+(?:me\s+)?(?:all\s+)?)?`
	fromOrIn   = `(?:from|in)`
	onlyWord   = `(?:only|actual)`
	nonWord    = `non[\s-]?findings`
)

// rx compiles an anchored, case-insensitive pattern.
func rx(body string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^` + body + `$`)
}

// Extractor shorthands.
func yearParam(group int) Extractor {
	return Extractor{Name: "year", Type: TypeNumber, Group: group}
}

func deptParam(group int) Extractor {
	return Extractor{Name: "department", Type: TypeString, Group: group, Normalize: NormalizeCapitalize}
}

func shParam(group int) Extractor {
	return Extractor{Name: "sh", Type: TypeString, Group: group, Normalize: NormalizeUppercase}
}

func projectParam(group int) Extractor {
	return Extractor{Name: "projectName", Type: TypeString, Group: group, Normalize: NormalizeTrim}
}

func limitParam(group int) Extractor {
	return Extractor{Name: "limit", Type: TypeNumber, Group: group}
}

// Filter shorthands. Each reads its value from params and is omitted when
// the parameter was not extracted.
type filterPart func(Params) (model.Filter, bool)

func eqParam(field, param string) filterPart {
	return paramFilter(field, model.OpEq, param)
}

func fixed(field string, op model.Op, value any) filterPart {
	return func(Params) (model.Filter, bool) {
		return model.Filter{Field: field, Op: op, Value: value}, true
	}
}

var (
	yearEq    = eqParam(model.FieldYear, "year")
	deptEq    = eqParam(model.FieldDepartment, "department")
	shEq      = eqParam(model.FieldSH, "sh")
	projectEq = eqParam(model.FieldProjectName, "projectName")
	critical  = fixed(model.FieldNilai, model.OpGte, CriticalThreshold)
	highRisk  = fixed(model.FieldNilai, model.OpGte, HighThreshold)
	isFinding = fixed(model.FieldCode, model.OpNeq, "")
	nonFind   = fixed(model.FieldCode, model.OpEq, "")
)

func filters(parts ...filterPart) FilterBuilder {
	return func(p Params) []model.Filter {
		out := make([]model.Filter, 0, len(parts))
		for _, part := range parts {
			if f, ok := part(p); ok {
				out = append(out, f)
			}
		}
		return out
	}
}

func sortBy(directives ...model.SortDirective) SortBuilder {
	return func(Params) []model.SortDirective {
		out := make([]model.SortDirective, len(directives))
		copy(out, directives)
		return out
	}
}

var (
	byNilaiDesc = sortBy(model.SortDirective{Field: model.FieldNilai, Direction: model.Desc})
	byYearDesc  = sortBy(model.SortDirective{Field: model.FieldYear, Direction: model.Desc})
)

// DefaultPatterns returns a fresh copy of the built-in pattern catalogue in
// registration order. Composite patterns carry strictly higher priorities
// than the single-filter patterns they overlap with, and the free-text
// project patterns sit below everything else.
func DefaultPatterns() []*Pattern {
	var out []*Pattern
	out = append(out, temporalPatterns()...)
	out = append(out, departmentPatterns()...)
	out = append(out, riskPatterns()...)
	out = append(out, subholdingPatterns()...)
	out = append(out, findingTypePatterns()...)
	out = append(out, projectPatterns()...)
	out = append(out, compositePatterns()...)
	return out
}

func temporalPatterns() []*Pattern {
	return []*Pattern{
		{
			ID:         "temporal_findings_from_year",
			Name:       "Findings from year",
			Category:   CategoryTemporal,
			Priority:   10,
			Regex:      rx(showPrefix + `findings\s+` + fromOrIn + `\s+` + yearGroup),
			Extractors: []Extractor{yearParam(1)},
			Filters:    filters(yearEq),
			Sorts:      byNilaiDesc,
			Examples:   []string{"findings from 2023", "show me findings in 2024"},
		},
		{
			ID:         "temporal_year_findings",
			Name:       "Year findings",
			Category:   CategoryTemporal,
			Priority:   10,
			Regex:      rx(showPrefix + yearGroup + `\s+findings`),
			Extractors: []Extractor{yearParam(1)},
			Filters:    filters(yearEq),
			Sorts:      byNilaiDesc,
			Examples:   []string{"2023 findings", "show me 2024 findings"},
		},
		{
			// Two alternation branches supply the year through groups 1 and 2.
			ID:       "temporal_findings_of_year",
			Name:     "Findings of year",
			Category: CategoryTemporal,
			Priority: 10,
			Regex: rx(showPrefix + `findings\s+(?:of\s+` + yearGroup +
				`|for\s+(?:(?:the\s+)?year\s+)?` + yearGroup + `)`),
			Extractors: []Extractor{yearParam(1)},
			Filters:    filters(yearEq),
			Sorts:      byNilaiDesc,
			Examples:   []string{"findings of 2022", "findings for 2022", "findings for the year 2022"},
		},
	}
}

func departmentPatterns() []*Pattern {
	return []*Pattern{
		{
			ID:         "department_findings",
			Name:       "Department findings",
			Category:   CategoryDepartment,
			Priority:   10,
			Regex:      rx(deptGroup + `\s+findings`),
			Extractors: []Extractor{deptParam(1)},
			Filters:    filters(deptEq),
			Sorts:      byYearDesc,
			Examples:   []string{"IT findings", "finance findings"},
		},
		{
			// "show me <DEPT>" uses group 1, "findings from <DEPT>" group 2.
			ID:       "department_show_or_from",
			Name:     "Show department",
			Category: CategoryDepartment,
			Priority: 10,
			Regex: rx(`(?:show\s+(?:me\s+)?(?:all\s+)?` + deptGroup + `(?:\s+findings)?` +
				`|findings\s+(?:from|for|in)\s+` + deptGroup + `)`),
			Extractors: []Extractor{deptParam(1)},
			Filters:    filters(deptEq),
			Sorts:      byYearDesc,
			Examples:   []string{"show me HR", "findings from procurement"},
		},
	}
}

func riskPatterns() []*Pattern {
	return []*Pattern{
		{
			ID:       "risk_critical",
			Name:     "Critical findings",
			Category: CategoryRisk,
			Priority: 15,
			Regex:    rx(showPrefix + `critical\s+(?:risk\s+)?findings`),
			Filters:  filters(critical),
			Sorts:    byNilaiDesc,
			Examples: []string{"critical findings"},
		},
		{
			ID:       "risk_high",
			Name:     "High risk findings",
			Category: CategoryRisk,
			Priority: 15,
			Regex:    rx(showPrefix + `high[\s-]+risk\s+findings`),
			Filters:  filters(highRisk),
			Sorts:    byNilaiDesc,
			Examples: []string{"high risk findings"},
		},
		{
			ID:       "risk_medium",
			Name:     "Medium risk findings",
			Category: CategoryRisk,
			Priority: 15,
			Regex:    rx(showPrefix + `medium[\s-]+risk\s+findings`),
			Filters: filters(
				fixed(model.FieldNilai, model.OpGte, MediumThreshold),
				fixed(model.FieldNilai, model.OpLt, HighThreshold),
			),
			Sorts:    byNilaiDesc,
			Examples: []string{"medium risk findings"},
		},
		{
			ID:         "risk_top_n",
			Name:       "Top N findings",
			Category:   CategoryRisk,
			Priority:   15,
			Regex:      rx(`(?:show\s+(?:me\s+)?)?top\s+(\d+)\s+findings`),
			Extractors: []Extractor{limitParam(1)},
			Filters:    filters(),
			Sorts:      byNilaiDesc,
			Examples:   []string{"top 5 findings", "show me top 10 findings"},
		},
	}
}

func subholdingPatterns() []*Pattern {
	return []*Pattern{
		{
			ID:         "subholding_findings_for",
			Name:       "Findings for subholding",
			Category:   CategorySubholding,
			Priority:   12,
			Regex:      rx(`findings\s+for\s+sh\s*` + shGroup),
			Extractors: []Extractor{shParam(1)},
			Filters:    filters(shEq),
			Sorts:      byYearDesc,
			Examples:   []string{"findings for SH 1A"},
		},
		{
			ID:         "subholding_findings",
			Name:       "Subholding findings",
			Category:   CategorySubholding,
			Priority:   12,
			Regex:      rx(showPrefix + shGroup + `\s+subholding\s+findings`),
			Extractors: []Extractor{shParam(1)},
			Filters:    filters(shEq),
			Sorts:      byYearDesc,
			Examples:   []string{"2b subholding findings"},
		},
		{
			ID:         "subholding_audit_results",
			Name:       "Subholding audit results",
			Category:   CategorySubholding,
			Priority:   12,
			Regex:      rx(`show\s+(?:me\s+)?` + shGroup + `\s+audit\s+results`),
			Extractors: []Extractor{shParam(1)},
			Filters:    filters(shEq),
			Sorts:      byYearDesc,
			Examples:   []string{"show me 3A audit results"},
		},
	}
}

func findingTypePatterns() []*Pattern {
	return []*Pattern{
		{
			ID:       "type_only_findings",
			Name:     "Only actual findings",
			Category: CategoryFindingType,
			Priority: 5,
			Regex:    rx(showPrefix + onlyWord + `\s+findings`),
			Filters:  filters(isFinding),
			Sorts:    byNilaiDesc,
			Examples: []string{"only findings", "actual findings"},
		},
		{
			ID:       "type_non_findings",
			Name:     "Non-findings",
			Category: CategoryFindingType,
			Priority: 5,
			Regex:    rx(showPrefix + nonWord),
			Filters:  filters(nonFind),
			Sorts:    byYearDesc,
			Examples: []string{"non-findings"},
		},
	}
}

// projectPatterns capture free text, so they only apply once every
// enumerated interpretation has been ruled out.
func projectPatterns() []*Pattern {
	return []*Pattern{
		{
			ID:         "project_findings_for",
			Name:       "Findings for project",
			Category:   CategoryProject,
			Priority:   4,
			Regex:      rx(`findings\s+for\s+(.+)`),
			Extractors: []Extractor{projectParam(1)},
			Filters:    filters(projectEq),
			Sorts:      byYearDesc,
			Examples:   []string{"findings for Kilang Balikpapan"},
		},
		{
			ID:         "project_name_findings",
			Name:       "Project findings",
			Category:   CategoryProject,
			Priority:   4,
			Regex:      rx(`(.+?)\s+findings`),
			Extractors: []Extractor{projectParam(1)},
			Filters:    filters(projectEq),
			Sorts:      byYearDesc,
			Examples:   []string{"Jetty Expansion findings"},
		},
		{
			ID:         "project_audit_results",
			Name:       "Project audit results",
			Category:   CategoryProject,
			Priority:   4,
			Regex:      rx(`show\s+(?:me\s+)?(.+?)\s+audit\s+results`),
			Extractors: []Extractor{projectParam(1)},
			Filters:    filters(projectEq),
			Sorts:      byYearDesc,
			Examples:   []string{"show me Pipeline Revamp audit results"},
		},
	}
}

func compositePatterns() []*Pattern {
	return []*Pattern{
		{
			ID:         "composite_department_year",
			Name:       "Department findings by year",
			Category:   CategoryComposite,
			Priority:   20,
			Regex:      rx(showPrefix + deptGroup + `\s+findings\s+(?:` + fromOrIn + `\s+)?` + yearGroup),
			Extractors: []Extractor{deptParam(1), yearParam(2)},
			Filters:    filters(deptEq, yearEq),
			Sorts:      byNilaiDesc,
			Examples:   []string{"IT findings from 2023", "show all IT findings 2024"},
		},
		{
			ID:         "composite_year_department",
			Name:       "Year department findings",
			Category:   CategoryComposite,
			Priority:   20,
			Regex:      rx(showPrefix + yearGroup + `\s+` + deptGroup + `\s+findings`),
			Extractors: []Extractor{yearParam(1), deptParam(2)},
			Filters:    filters(deptEq, yearEq),
			Sorts:      byNilaiDesc,
			Examples:   []string{"2023 HR findings"},
		},
		{
			ID:         "composite_findings_year_department",
			Name:       "Findings in year for department",
			Category:   CategoryComposite,
			Priority:   20,
			Regex:      rx(showPrefix + `findings\s+` + fromOrIn + `\s+` + yearGroup + `\s+(?:for|from|in)\s+` + deptGroup),
			Extractors: []Extractor{yearParam(1), deptParam(2)},
			Filters:    filters(deptEq, yearEq),
			Sorts:      byNilaiDesc,
			Examples:   []string{"findings in 2023 for legal"},
		},
		{
			ID:         "composite_subholding_year",
			Name:       "Subholding findings by year",
			Category:   CategoryComposite,
			Priority:   20,
			Regex:      rx(showPrefix + shGroup + `\s+subholding\s+findings\s+` + fromOrIn + `\s+` + yearGroup),
			Extractors: []Extractor{shParam(1), yearParam(2)},
			Filters:    filters(shEq, yearEq),
			Sorts:      byNilaiDesc,
			Examples:   []string{"1A subholding findings from 2023"},
		},
		{
			ID:         "composite_only_findings_year",
			Name:       "Actual findings by year",
			Category:   CategoryComposite,
			Priority:   22,
			Regex:      rx(showPrefix + onlyWord + `\s+findings\s+` + fromOrIn + `\s+` + yearGroup),
			Extractors: []Extractor{yearParam(1)},
			Filters:    filters(isFinding, yearEq),
			Sorts:      byNilaiDesc,
			Examples:   []string{"only findings from 2023"},
		},
		{
			// "only findings for IT" uses group 1, "IT only findings" group 2.
			ID:       "composite_only_findings_department",
			Name:     "Actual findings by department",
			Category: CategoryComposite,
			Priority: 22,
			Regex: rx(showPrefix + `(?:` + onlyWord + `\s+findings\s+(?:for\s+|from\s+)?` + deptGroup +
				`|` + deptGroup + `\s+` + onlyWord + `\s+findings)`),
			Extractors: []Extractor{deptParam(1)},
			Filters:    filters(isFinding, deptEq),
			Sorts:      byNilaiDesc,
			Examples:   []string{"only findings for IT", "finance actual findings"},
		},
		{
			ID:         "composite_non_findings_year",
			Name:       "Non-findings by year",
			Category:   CategoryComposite,
			Priority:   22,
			Regex:      rx(showPrefix + nonWord + `\s+` + fromOrIn + `\s+` + yearGroup),
			Extractors: []Extractor{yearParam(1)},
			Filters:    filters(nonFind, yearEq),
			Sorts:      byYearDesc,
			Examples:   []string{"non-findings from 2022"},
		},
		{
			ID:         "composite_non_findings_department",
			Name:       "Non-findings by department",
			Category:   CategoryComposite,
			Priority:   22,
			Regex:      rx(showPrefix + nonWord + `\s+(?:for|from|in)\s+` + deptGroup),
			Extractors: []Extractor{deptParam(1)},
			Filters:    filters(nonFind, deptEq),
			Sorts:      byYearDesc,
			Examples:   []string{"non-findings for HR"},
		},
		{
			ID:         "composite_top_n_year",
			Name:       "Top N findings by year",
			Category:   CategoryComposite,
			Priority:   24,
			Regex:      rx(`(?:show\s+(?:me\s+)?)?top\s+(\d+)\s+findings\s+` + fromOrIn + `\s+` + yearGroup),
			Extractors: []Extractor{limitParam(1), yearParam(2)},
			Filters:    filters(yearEq),
			Sorts:      byNilaiDesc,
			Examples:   []string{"top 10 findings from 2023"},
		},
		{
			ID:         "composite_top_n_department",
			Name:       "Top N department findings",
			Category:   CategoryComposite,
			Priority:   24,
			Regex:      rx(`(?:show\s+(?:me\s+)?)?top\s+(\d+)\s+` + deptGroup + `\s+findings`),
			Extractors: []Extractor{limitParam(1), deptParam(2)},
			Filters:    filters(deptEq),
			Sorts:      byNilaiDesc,
			Examples:   []string{"top 3 IT findings"},
		},
		{
			ID:         "composite_critical_department",
			Name:       "Critical department findings",
			Category:   CategoryComposite,
			Priority:   25,
			Regex:      rx(showPrefix + `critical\s+` + deptGroup + `\s+findings`),
			Extractors: []Extractor{deptParam(1)},
			Filters:    filters(critical, deptEq),
			Sorts:      byNilaiDesc,
			Examples:   []string{"critical IT findings"},
		},
		{
			// "critical findings from 2023" uses group 1, "2023 critical findings" group 2.
			ID:       "composite_critical_year",
			Name:     "Critical findings by year",
			Category: CategoryComposite,
			Priority: 25,
			Regex: rx(showPrefix + `(?:critical\s+findings\s+` + fromOrIn + `\s+` + yearGroup +
				`|` + yearGroup + `\s+critical\s+findings)`),
			Extractors: []Extractor{yearParam(1)},
			Filters:    filters(critical, yearEq),
			Sorts:      byNilaiDesc,
			Examples:   []string{"critical findings from 2023", "2024 critical findings"},
		},
		{
			ID:         "composite_high_risk_department",
			Name:       "High risk department findings",
			Category:   CategoryComposite,
			Priority:   25,
			Regex:      rx(showPrefix + `high[\s-]+risk\s+` + deptGroup + `\s+findings`),
			Extractors: []Extractor{deptParam(1)},
			Filters:    filters(highRisk, deptEq),
			Sorts:      byNilaiDesc,
			Examples:   []string{"high risk finance findings"},
		},
		{
			ID:       "composite_only_critical",
			Name:     "Critical actual findings",
			Category: CategoryComposite,
			Priority: 26,
			Regex:    rx(showPrefix + onlyWord + `\s+critical\s+findings`),
			Filters:  filters(isFinding, critical),
			Sorts:    byNilaiDesc,
			Examples: []string{"only critical findings"},
		},
		{
			ID:         "composite_critical_department_year",
			Name:       "Critical department findings by year",
			Category:   CategoryComposite,
			Priority:   30,
			Regex:      rx(showPrefix + `critical\s+` + deptGroup + `\s+findings\s+(?:` + fromOrIn + `\s+)?` + yearGroup),
			Extractors: []Extractor{deptParam(1), yearParam(2)},
			Filters:    filters(critical, deptEq, yearEq),
			Sorts:      byNilaiDesc,
			Examples:   []string{"critical IT findings from 2023"},
		},
		{
			ID:       "composite_only_findings_department_year",
			Name:     "Actual department findings by year",
			Category: CategoryComposite,
			Priority: 35,
			Regex: rx(showPrefix + onlyWord + `\s+findings\s+(?:for\s+|from\s+)?` + deptGroup +
				`\s+(?:` + fromOrIn + `\s+)?` + yearGroup),
			Extractors: []Extractor{deptParam(1), yearParam(2)},
			Filters:    filters(isFinding, deptEq, yearEq),
			Sorts:      byNilaiDesc,
			Examples:   []string{"only findings IT from 2023"},
		},
	}
}
