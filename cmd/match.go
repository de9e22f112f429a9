package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/findings-cli/internal/query"
)

var matchCmd = &cobra.Command{
	Use:   "match <phrase>",
	Short: "Show which pattern a phrase matches and the query it would run",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := buildMatcher(cfg)
		if err != nil {
			return err
		}
		formatMatch(cmd.OutOrStdout(), m.Match(strings.Join(args, " ")))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)
}

// formatMatch writes a dry-run description of res to out.
func formatMatch(out io.Writer, res query.MatchResult) {
	if !res.Matched {
		_, _ = fmt.Fprintln(out, "No pattern matched.")
		return
	}

	p := res.Pattern
	filters := p.BuildFilters(res.Params)
	sorts := query.EnsureInequalityOrder(filters, p.BuildSorts(res.Params))

	_, _ = fmt.Fprintf(out, "Pattern:    %s (%s, priority %d)\n", p.ID, p.Category, p.Priority)
	_, _ = fmt.Fprintf(out, "Confidence: %.1f\n", res.Confidence)

	names := make([]string, 0, len(res.Params))
	for name := range res.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		_, _ = fmt.Fprintf(out, "Param:      %s = %v\n", name, res.Params[name])
	}
	for _, f := range filters {
		_, _ = fmt.Fprintf(out, "Filter:     %s\n", f)
	}
	for _, s := range sorts {
		_, _ = fmt.Fprintf(out, "Sort:       %s\n", s)
	}
}
