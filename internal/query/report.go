package query

import (
	"fmt"
	"strings"

	"github.com/sells-group/findings-cli/internal/model"
)

// Markers that start the fixed-format answers. Callers and tests look for
// them to tell empty and failed queries apart from normal reports.
const (
	NoResultsMarker = "No results found"
	ErrorMarker     = "Error executing query"
	NoMatchMarker   = "Could not understand the query"
)

// Stats aggregates the risk scores of a result set.
type Stats struct {
	Count        int     `json:"count"`
	TotalNilai   float64 `json:"totalNilai"`
	AverageNilai float64 `json:"averageNilai"`
}

// ComputeStats returns count, sum and mean of nilai over findings.
func ComputeStats(findings []model.Finding) Stats {
	s := Stats{Count: len(findings)}
	for _, f := range findings {
		s.TotalNilai += f.Nilai
	}
	if s.Count > 0 {
		s.AverageNilai = s.TotalNilai / float64(s.Count)
	}
	return s
}

// FormatResults renders the text answer for a non-empty result set.
func FormatResults(title string, findings []model.Finding, stats Stats) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n", title)
	fmt.Fprintf(&b, "Found %d finding(s)\n", stats.Count)
	fmt.Fprintf(&b, "- Total nilai: %.2f\n", stats.TotalNilai)
	fmt.Fprintf(&b, "- Average nilai: %.2f\n\n", stats.AverageNilai)

	for i, f := range findings {
		fmt.Fprintf(&b, "%d. [%d] %s", i+1, f.Year, f.Department)
		if f.ProjectName != "" {
			fmt.Fprintf(&b, " / %s", f.ProjectName)
		}
		if f.SH != "" {
			fmt.Fprintf(&b, " (SH %s)", f.SH)
		}
		b.WriteString("\n")

		code := f.Code
		if code == "" {
			code = "non-finding"
		}
		fmt.Fprintf(&b, "   Nilai: %.2f (bobot %.2f x kadar %.2f) | Code: %s\n", f.Nilai, f.Bobot, f.Kadar, code)
		if f.Title != "" {
			fmt.Fprintf(&b, "   Finding: %s\n", f.Title)
		}
		if f.Description != "" {
			fmt.Fprintf(&b, "   Detail: %s\n", f.Description)
		}
		if f.Recommendation != "" {
			fmt.Fprintf(&b, "   Recommendation: %s\n", f.Recommendation)
		}
		if len(f.Tags) > 0 {
			fmt.Fprintf(&b, "   Tags: %s\n", strings.Join(f.Tags, ", "))
		}
	}

	return b.String()
}

// FormatNoResults renders the fixed answer for an empty result set.
func FormatNoResults(title string, filters []model.Filter, reason string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s for %s.\n", NoResultsMarker, title)
	if reason != "" {
		fmt.Fprintf(&b, "%s\n", reason)
	}
	if len(filters) > 0 {
		fmt.Fprintf(&b, "Filters applied: %s\n", joinFilters(filters))
	}
	b.WriteString("\nSuggestions:\n")
	b.WriteString("- Check the spelling of the department, project or subholding\n")
	b.WriteString("- Try a different year\n")
	b.WriteString("- Broaden the query, e.g. \"findings from 2023\" or \"top 10 findings\"\n")

	return b.String()
}

// FormatError renders the fixed answer for a failed store query.
func FormatError(title string, err error) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s for %s: %v\n", ErrorMarker, title, err)
	b.WriteString("The record store could not complete the request. Please try again later.\n")

	return b.String()
}

// FormatNoMatch renders the answer for a phrase no pattern understood.
func FormatNoMatch(phrase string, examples []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s: %q\n", NoMatchMarker, phrase)
	if len(examples) > 0 {
		b.WriteString("\nTry one of:\n")
		for _, e := range examples {
			fmt.Fprintf(&b, "- %s\n", e)
		}
	}

	return b.String()
}

func joinFilters(filters []model.Filter) string {
	parts := make([]string, len(filters))
	for i, f := range filters {
		parts[i] = f.String()
	}
	return strings.Join(parts, ", ")
}
