package query

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/findings-cli/internal/model"
)

func newDefaultMatcher(t *testing.T) *Matcher {
	t.Helper()
	m, err := NewMatcher(DefaultPatterns()...)
	require.NoError(t, err)
	return m
}

func mixCase(s string, seed int) string {
	var b strings.Builder
	for i, r := range s {
		if (i+seed)%2 == 0 {
			b.WriteString(strings.ToUpper(string(r)))
		} else {
			b.WriteString(strings.ToLower(string(r)))
		}
	}
	return b.String()
}

func TestDefaultPatterns_Register(t *testing.T) {
	m := newDefaultMatcher(t)
	assert.Len(t, m.Patterns(), len(DefaultPatterns()))
}

func TestDefaultPatterns_PriorityContract(t *testing.T) {
	for _, p := range DefaultPatterns() {
		switch p.Category {
		case CategoryComposite:
			assert.GreaterOrEqual(t, p.Priority, 20, p.ID)
			assert.LessOrEqual(t, p.Priority, 35, p.ID)
		case CategoryRisk, CategoryTemporal, CategoryDepartment, CategorySubholding:
			assert.GreaterOrEqual(t, p.Priority, 10, p.ID)
			assert.LessOrEqual(t, p.Priority, 15, p.ID)
		case CategoryFindingType:
			assert.Equal(t, 5, p.Priority, p.ID)
		case CategoryProject:
			assert.Less(t, p.Priority, 5, p.ID)
		}
		assert.NotEmpty(t, p.Examples, p.ID)
	}
}

func TestDefaultPatterns_ExamplesMatchOwnPattern(t *testing.T) {
	m := newDefaultMatcher(t)
	for _, p := range m.Patterns() {
		for _, ex := range p.Examples {
			t.Run(ex, func(t *testing.T) {
				res := m.Match(ex)
				require.True(t, res.Matched)
				assert.Equal(t, p.ID, res.PatternID())
			})
		}
	}
}

func TestTemporalPhrases(t *testing.T) {
	m := newDefaultMatcher(t)
	for _, year := range []int{1999, 2000, 2019, 2023, 2024, 2031} {
		for _, format := range []string{"findings from %d", "%d findings", "show me %d findings"} {
			phrase := fmt.Sprintf(format, year)
			t.Run(phrase, func(t *testing.T) {
				res := m.Match(phrase)
				require.True(t, res.Matched)
				assert.Equal(t, CategoryTemporal, res.Pattern.Category)
				assert.Equal(t, year, res.Params["year"])
				assert.Equal(t, 1.0, res.Confidence)
			})
		}
	}
}

func TestDepartmentPhrases_CaseInsensitive(t *testing.T) {
	m := newDefaultMatcher(t)
	for _, d := range Departments {
		want := capitalize(d)
		for seed, variant := range []string{d, strings.ToLower(d), strings.ToUpper(d), mixCase(d, 0), mixCase(d, 1)} {
			phrase := variant + " findings"
			t.Run(fmt.Sprintf("%s/%d", d, seed), func(t *testing.T) {
				res := m.Match(phrase)
				require.True(t, res.Matched)
				assert.Equal(t, CategoryDepartment, res.Pattern.Category)
				assert.Equal(t, want, res.Params["department"])
			})
		}
	}
}

func TestDepartmentPhrases_AlternationBranches(t *testing.T) {
	m := newDefaultMatcher(t)

	res := m.Match("show me HR")
	require.True(t, res.Matched)
	assert.Equal(t, "department_show_or_from", res.PatternID())
	assert.Equal(t, "Hr", res.Params["department"])

	res = m.Match("findings from procurement")
	require.True(t, res.Matched)
	assert.Equal(t, "department_show_or_from", res.PatternID())
	assert.Equal(t, "Procurement", res.Params["department"])
}

func TestSubholdingPhrases_Uppercased(t *testing.T) {
	m := newDefaultMatcher(t)
	for _, code := range SubholdingCodes {
		for _, variant := range []string{code, strings.ToLower(code)} {
			phrase := variant + " subholding findings"
			t.Run(phrase, func(t *testing.T) {
				res := m.Match(phrase)
				require.True(t, res.Matched)
				assert.Equal(t, CategorySubholding, res.Pattern.Category)
				assert.Equal(t, strings.ToUpper(code), res.Params["sh"])
			})
		}
	}

	res := m.Match("findings for SH 2b")
	require.True(t, res.Matched)
	assert.Equal(t, "subholding_findings_for", res.PatternID())
	assert.Equal(t, "2B", res.Params["sh"])

	res = m.Match("show me 3a audit results")
	assert.Equal(t, "subholding_audit_results", res.PatternID())
	assert.Equal(t, "3A", res.Params["sh"])
}

func TestRiskPhrases(t *testing.T) {
	m := newDefaultMatcher(t)

	tests := []struct {
		phrase  string
		id      string
		filters []model.Filter
	}{
		{"critical findings", "risk_critical", []model.Filter{{Field: "nilai", Op: ">=", Value: 15}}},
		{"high risk findings", "risk_high", []model.Filter{{Field: "nilai", Op: ">=", Value: 10}}},
		{"medium risk findings", "risk_medium", []model.Filter{
			{Field: "nilai", Op: ">=", Value: 5},
			{Field: "nilai", Op: "<", Value: 10},
		}},
		{"top 5 findings", "risk_top_n", []model.Filter{}},
	}
	for _, tt := range tests {
		t.Run(tt.phrase, func(t *testing.T) {
			res := m.Match(tt.phrase)
			require.True(t, res.Matched)
			assert.Equal(t, tt.id, res.PatternID())
			assert.Equal(t, tt.filters, res.Pattern.BuildFilters(res.Params))
			assert.Equal(t, []model.SortDirective{{Field: "nilai", Direction: "desc"}}, res.Pattern.BuildSorts(res.Params))
		})
	}

	assert.Equal(t, 5, m.Match("top 5 findings").Params["limit"])
}

func TestProjectPhrases(t *testing.T) {
	m := newDefaultMatcher(t)

	tests := []struct {
		phrase string
		id     string
		name   string
	}{
		{"findings for Kilang  Balikpapan Unit 2", "project_findings_for", "Kilang  Balikpapan Unit 2"},
		{"Jetty Expansion findings", "project_name_findings", "Jetty Expansion"},
		{"show me Pipeline Revamp audit results", "project_audit_results", "Pipeline Revamp"},
	}
	for _, tt := range tests {
		t.Run(tt.phrase, func(t *testing.T) {
			res := m.Match(tt.phrase)
			require.True(t, res.Matched)
			assert.Equal(t, tt.id, res.PatternID())
			assert.Equal(t, tt.name, res.Params["projectName"])
			assert.Equal(t, []model.Filter{{Field: "projectName", Op: "==", Value: tt.name}}, res.Pattern.BuildFilters(res.Params))
		})
	}
}

func TestFindingTypePhrases(t *testing.T) {
	m := newDefaultMatcher(t)

	res := m.Match("only findings")
	assert.Equal(t, "type_only_findings", res.PatternID())
	assert.Equal(t, []model.Filter{{Field: "code", Op: "!=", Value: ""}}, res.Pattern.BuildFilters(res.Params))

	res = m.Match("actual findings")
	assert.Equal(t, "type_only_findings", res.PatternID())

	for _, phrase := range []string{"non-findings", "non findings", "nonfindings"} {
		res = m.Match(phrase)
		assert.Equal(t, "type_non_findings", res.PatternID(), phrase)
		assert.Equal(t, []model.Filter{{Field: "code", Op: "==", Value: ""}}, res.Pattern.BuildFilters(res.Params))
	}
}

func TestCompositePhrases(t *testing.T) {
	m := newDefaultMatcher(t)

	tests := []struct {
		phrase string
		id     string
		params Params
	}{
		{"IT findings from 2023", "composite_department_year", Params{"department": "It", "year": 2023}},
		{"show all IT findings 2024", "composite_department_year", Params{"department": "It", "year": 2024}},
		{"2023 HR findings", "composite_year_department", Params{"year": 2023, "department": "Hr"}},
		{"findings in 2023 for legal", "composite_findings_year_department", Params{"year": 2023, "department": "Legal"}},
		{"critical IT findings", "composite_critical_department", Params{"department": "It"}},
		{"critical findings from 2022", "composite_critical_year", Params{"year": 2022}},
		{"2022 critical findings", "composite_critical_year", Params{"year": 2022}},
		{"critical finance findings in 2021", "composite_critical_department_year", Params{"department": "Finance", "year": 2021}},
		{"high risk sales findings", "composite_high_risk_department", Params{"department": "Sales"}},
		{"only findings IT from 2023", "composite_only_findings_department_year", Params{"department": "It", "year": 2023}},
		{"only findings for audit", "composite_only_findings_department", Params{"department": "Audit"}},
		{"marketing actual findings", "composite_only_findings_department", Params{"department": "Marketing"}},
		{"actual findings in 2020", "composite_only_findings_year", Params{"year": 2020}},
		{"only critical findings", "composite_only_critical", Params{}},
		{"non-findings from 2022", "composite_non_findings_year", Params{"year": 2022}},
		{"non findings for HR", "composite_non_findings_department", Params{"department": "Hr"}},
		{"top 10 findings from 2023", "composite_top_n_year", Params{"limit": 10, "year": 2023}},
		{"top 3 IT findings", "composite_top_n_department", Params{"limit": 3, "department": "It"}},
		{"1A subholding findings in 2024", "composite_subholding_year", Params{"sh": "1A", "year": 2024}},
	}
	for _, tt := range tests {
		t.Run(tt.phrase, func(t *testing.T) {
			res := m.Match(tt.phrase)
			require.True(t, res.Matched)
			assert.Equal(t, tt.id, res.PatternID())
			assert.Equal(t, CategoryComposite, res.Pattern.Category)
			assert.Equal(t, tt.params, res.Params)
		})
	}
}

// A phrase accepted by a composite and by single-filter patterns resolves to
// the composite, and its filters carry the capitalised department.
func TestComposite_BeatsSingleFilterPatterns(t *testing.T) {
	m := newDefaultMatcher(t)

	phrase := "IT findings from 2023"
	res := m.Match(phrase)
	require.True(t, res.Matched)
	assert.Equal(t, 20, res.Pattern.Priority)

	var overlapping []string
	for _, p := range m.Patterns() {
		if p.Regex.MatchString(phrase) {
			overlapping = append(overlapping, p.ID)
			assert.LessOrEqual(t, p.Priority, res.Pattern.Priority)
		}
	}
	assert.Equal(t, "composite_department_year", overlapping[0])

	assert.Equal(t, []model.Filter{
		{Field: "department", Op: "==", Value: "It"},
		{Field: "year", Op: "==", Value: 2023},
	}, res.Pattern.BuildFilters(res.Params))
	assert.Equal(t, []model.SortDirective{{Field: "nilai", Direction: "desc"}}, res.Pattern.BuildSorts(res.Params))
}

func TestBuilders_Deterministic(t *testing.T) {
	m := newDefaultMatcher(t)
	for _, p := range m.Patterns() {
		res := m.Match(p.Examples[0])
		require.True(t, res.Matched, p.ID)
		assert.Equal(t, res.Pattern.BuildFilters(res.Params), res.Pattern.BuildFilters(res.Params), p.ID)
		assert.Equal(t, res.Pattern.BuildSorts(res.Params), res.Pattern.BuildSorts(res.Params), p.ID)
	}
}

func TestDefaultPatterns_NoRegexConflicts(t *testing.T) {
	seen := map[string]string{}
	for _, p := range DefaultPatterns() {
		prev, dup := seen[p.Regex.String()]
		assert.False(t, dup, "%s duplicates %s", p.ID, prev)
		seen[p.Regex.String()] = p.ID
	}
}

func TestUnknownPhrase(t *testing.T) {
	m := newDefaultMatcher(t)
	for _, phrase := range []string{"what is the weather", "findings", "2023"} {
		assert.False(t, m.Match(phrase).Matched, phrase)
	}
}

func TestTemporal_FallbackBranches(t *testing.T) {
	m := newDefaultMatcher(t)

	for phrase, year := range map[string]int{
		"findings of 2019":           2019,
		"findings for year 2020":     2020,
		"findings for 2023":          2023,
		"show me findings for 2018":  2018,
		"findings for the year 2021": 2021,
	} {
		res := m.Match(phrase)
		require.True(t, res.Matched, phrase)
		assert.Equal(t, "temporal_findings_of_year", res.PatternID(), phrase)
		assert.Equal(t, year, res.Params["year"], phrase)
		assert.NotContains(t, res.Params, "projectName", phrase)
	}
}

func TestProject_FindingsForNamesStillMatch(t *testing.T) {
	m := newDefaultMatcher(t)

	tests := []struct {
		phrase  string
		project string
	}{
		{"findings for Kilang Balikpapan", "Kilang Balikpapan"},
		{"findings for 2023 Refinery Upgrade", "2023 Refinery Upgrade"},
		{"findings for Jetty 20231", "Jetty 20231"},
	}
	for _, tt := range tests {
		t.Run(tt.phrase, func(t *testing.T) {
			res := m.Match(tt.phrase)
			require.True(t, res.Matched)
			assert.Equal(t, "project_findings_for", res.PatternID())
			assert.Equal(t, tt.project, res.Params["projectName"])
		})
	}
}
