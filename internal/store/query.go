package store

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/findings-cli/internal/model"
)

// columns maps filterable field names to findings table columns.
var columns = map[string]string{
	model.FieldYear:        "year",
	model.FieldDepartment:  "department",
	model.FieldProjectName: "project_name",
	model.FieldSH:          "sh",
	model.FieldBobot:       "bobot",
	model.FieldKadar:       "kadar",
	model.FieldNilai:       "nilai",
	model.FieldCode:        "code",
}

const findingColumns = `id, year, department, project_name, sh, bobot, kadar, nilai, code, title, description, recommendation, tags, created_at`

// placeholder renders the n-th (1-based) bind parameter.
type placeholder func(n int) string

func questionMark(int) string { return "?" }

func dollar(n int) string { return fmt.Sprintf("$%d", n) }

// validateQuery enforces the query-shape rules shared by every driver.
func validateQuery(opts model.QueryOptions) error {
	inequality := ""
	for _, f := range opts.Filters {
		if _, ok := columns[f.Field]; !ok {
			return eris.Wrapf(ErrInvalidQuery, "unknown filter field %q", f.Field)
		}
		if !f.Op.Valid() {
			return eris.Wrapf(ErrInvalidQuery, "unsupported operator %q on %s", f.Op, f.Field)
		}
		if !f.Op.IsInequality() {
			continue
		}
		if inequality != "" && inequality != f.Field {
			return eris.Wrapf(ErrInvalidQuery, "range filters on %s and %s", inequality, f.Field)
		}
		inequality = f.Field
	}

	for _, s := range opts.Sorts {
		if _, ok := columns[s.Field]; !ok {
			return eris.Wrapf(ErrInvalidQuery, "unknown sort field %q", s.Field)
		}
		if s.Direction != model.Asc && s.Direction != model.Desc {
			return eris.Wrapf(ErrInvalidQuery, "unsupported direction %q on %s", s.Direction, s.Field)
		}
	}

	if inequality != "" && len(opts.Sorts) > 0 && opts.Sorts[0].Field != inequality {
		return eris.Wrapf(ErrInvalidQuery, "range filter on %s requires it as the first sort, got %s",
			inequality, opts.Sorts[0].Field)
	}
	return nil
}

// buildSelect renders the findings query for opts.
func buildSelect(opts model.QueryOptions, ph placeholder) (string, []any, error) {
	if err := validateQuery(opts); err != nil {
		return "", nil, err
	}

	var b strings.Builder
	b.WriteString("SELECT " + findingColumns + " FROM findings")

	args := make([]any, 0, len(opts.Filters)+1)
	for i, f := range opts.Filters {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		op := string(f.Op)
		switch f.Op {
		case model.OpEq:
			op = "="
		case model.OpNeq:
			op = "<>"
		}
		args = append(args, f.Value)
		fmt.Fprintf(&b, "%s %s %s", columns[f.Field], op, ph(len(args)))
	}

	b.WriteString(" ORDER BY ")
	for _, s := range opts.Sorts {
		fmt.Fprintf(&b, "%s %s, ", columns[s.Field], strings.ToUpper(string(s.Direction)))
	}
	b.WriteString("id ASC")

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		fmt.Fprintf(&b, " LIMIT %s", ph(len(args)))
	}
	return b.String(), args, nil
}
