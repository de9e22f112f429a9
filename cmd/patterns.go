package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/findings-cli/internal/query"
)

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "List registered query patterns in match order",
	RunE: func(cmd *cobra.Command, _ []string) error {
		m, err := buildMatcher(cfg)
		if err != nil {
			return err
		}
		formatPatterns(cmd.OutOrStdout(), m.Patterns())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(patternsCmd)
}

// formatPatterns writes a tabular listing of patterns to out.
func formatPatterns(out io.Writer, patterns []*query.Pattern) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "PRIORITY\tID\tCATEGORY\tEXAMPLE")
	_, _ = fmt.Fprintln(w, "--------\t--\t--------\t-------")

	for _, p := range patterns {
		example := ""
		if len(p.Examples) > 0 {
			example = p.Examples[0]
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", p.Priority, p.ID, p.Category, example)
	}
	_ = w.Flush()
}
