package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sells-group/findings-cli/internal/model"
)

// EnsureInequalityOrder returns sorts rearranged so that the field of the
// first inequality filter is the primary sort key, as the record store
// requires. An existing directive on that field keeps its direction;
// otherwise an ascending directive is inserted. The input is not modified.
func EnsureInequalityOrder(filters []model.Filter, sorts []model.SortDirective) []model.SortDirective {
	out := make([]model.SortDirective, len(sorts))
	copy(out, sorts)

	field := ""
	for _, f := range filters {
		if f.Op.IsInequality() {
			field = f.Field
			break
		}
	}
	if field == "" {
		return out
	}
	if len(out) > 0 && out[0].Field == field {
		return out
	}

	lead := model.SortDirective{Field: field, Direction: model.Asc}
	rest := make([]model.SortDirective, 0, len(out))
	for _, s := range out {
		if s.Field == field {
			lead.Direction = s.Direction
			continue
		}
		rest = append(rest, s)
	}
	return append([]model.SortDirective{lead}, rest...)
}

// SortFindings orders findings in place by the full directive list. Missing
// values sort last regardless of direction; ties fall through to the next
// directive. The sort is stable.
func SortFindings(findings []model.Finding, sorts []model.SortDirective) {
	if len(sorts) == 0 {
		return
	}
	sort.SliceStable(findings, func(i, j int) bool {
		for _, s := range sorts {
			c := compareValues(findings[i].Field(s.Field), findings[j].Field(s.Field))
			if c == 0 {
				continue
			}
			// Nil handling is direction independent.
			if findings[i].Field(s.Field) == nil || findings[j].Field(s.Field) == nil {
				return c < 0
			}
			if s.Direction == model.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// compareValues orders a before b (-1), after b (1), or equal (0). nil sorts
// after every non-nil value.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}

	af, aNum := a.(float64)
	bf, bNum := b.(float64)
	if aNum && bNum {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}

	as, aStr := a.(string)
	bs, bStr := b.(string)
	if !aStr || !bStr {
		as, bs = fmt.Sprint(a), fmt.Sprint(b)
	}
	return strings.Compare(as, bs)
}
