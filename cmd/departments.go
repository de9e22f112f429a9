package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/findings-cli/internal/model"
)

var departmentsCategory string

var departmentsCmd = &cobra.Command{
	Use:   "departments",
	Short: "List departments and the literal spellings recorded for them",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("query"); err != nil {
			return err
		}

		env, err := initEnv(ctx, cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		var depts []model.Department
		if departmentsCategory != "" {
			depts, err = env.Departments.GetByCategory(ctx, departmentsCategory)
		} else {
			depts, err = env.Store.ListDepartments(ctx)
		}
		if err != nil {
			return eris.Wrap(err, "list departments")
		}

		formatDepartments(cmd.OutOrStdout(), depts)
		return nil
	},
}

func init() {
	departmentsCmd.Flags().StringVar(&departmentsCategory, "category", "", "only list departments in this category")
	rootCmd.AddCommand(departmentsCmd)
}

// formatDepartments writes a tabular listing of departments to out.
func formatDepartments(out io.Writer, depts []model.Department) {
	if len(depts) == 0 {
		_, _ = fmt.Fprintln(out, "No departments recorded.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tCATEGORY\tSPELLINGS")
	_, _ = fmt.Fprintln(w, "----\t--------\t---------")
	for _, d := range depts {
		names := "-"
		if len(d.OriginalNames) > 0 {
			names = strings.Join(d.OriginalNames, ", ")
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", d.Name, d.Category, names)
	}
	_ = w.Flush()
}
