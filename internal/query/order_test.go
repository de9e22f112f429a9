package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/findings-cli/internal/model"
)

func TestEnsureInequalityOrder(t *testing.T) {
	nilaiDesc := model.SortDirective{Field: "nilai", Direction: model.Desc}
	yearDesc := model.SortDirective{Field: "year", Direction: model.Desc}

	tests := []struct {
		name    string
		filters []model.Filter
		sorts   []model.SortDirective
		want    []model.SortDirective
	}{
		{
			name:    "no inequality leaves sorts alone",
			filters: []model.Filter{{Field: "year", Op: model.OpEq, Value: 2023}},
			sorts:   []model.SortDirective{yearDesc},
			want:    []model.SortDirective{yearDesc},
		},
		{
			name:    "not-equal is not an inequality",
			filters: []model.Filter{{Field: "code", Op: model.OpNeq, Value: ""}},
			sorts:   []model.SortDirective{yearDesc},
			want:    []model.SortDirective{yearDesc},
		},
		{
			name:    "already first",
			filters: []model.Filter{{Field: "nilai", Op: model.OpGte, Value: 15}},
			sorts:   []model.SortDirective{nilaiDesc, yearDesc},
			want:    []model.SortDirective{nilaiDesc, yearDesc},
		},
		{
			name:    "moved to front keeping direction",
			filters: []model.Filter{{Field: "nilai", Op: model.OpGte, Value: 15}},
			sorts:   []model.SortDirective{yearDesc, nilaiDesc},
			want:    []model.SortDirective{nilaiDesc, yearDesc},
		},
		{
			name:    "inserted ascending when absent",
			filters: []model.Filter{{Field: "year", Op: model.OpEq, Value: 2023}, {Field: "nilai", Op: model.OpLt, Value: 5}},
			sorts:   []model.SortDirective{yearDesc},
			want:    []model.SortDirective{{Field: "nilai", Direction: model.Asc}, yearDesc},
		},
		{
			name:    "inserted into empty list",
			filters: []model.Filter{{Field: "bobot", Op: model.OpGt, Value: 2}},
			sorts:   nil,
			want:    []model.SortDirective{{Field: "bobot", Direction: model.Asc}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := append([]model.SortDirective(nil), tt.sorts...)
			got := EnsureInequalityOrder(tt.filters, tt.sorts)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, in, tt.sorts, "input must not be modified")
		})
	}
}

func TestEnsureInequalityOrder_AllInequalityOps(t *testing.T) {
	for _, op := range []model.Op{model.OpGt, model.OpGte, model.OpLt, model.OpLte} {
		filters := []model.Filter{{Field: "kadar", Op: op, Value: 3}}
		sorts := []model.SortDirective{{Field: "year", Direction: model.Desc}, {Field: "nilai", Direction: model.Desc}}

		got := EnsureInequalityOrder(filters, sorts)
		assert.Equal(t, "kadar", got[0].Field, string(op))
		assert.Len(t, got, 3)
	}
}

func TestSortFindings(t *testing.T) {
	findings := []model.Finding{
		{ID: "a", Year: 2022, Nilai: 10},
		{ID: "b", Year: 2023, Nilai: 10},
		{ID: "c", Year: 0, Nilai: 20},
		{ID: "d", Year: 2021, Nilai: 25},
	}

	SortFindings(findings, []model.SortDirective{
		{Field: "nilai", Direction: model.Desc},
		{Field: "year", Direction: model.Desc},
	})
	assert.Equal(t, []string{"d", "c", "b", "a"}, ids(findings))

	SortFindings(findings, []model.SortDirective{{Field: "year", Direction: model.Asc}})
	assert.Equal(t, []string{"d", "a", "b", "c"}, ids(findings), "missing year sorts last ascending")

	SortFindings(findings, []model.SortDirective{{Field: "year", Direction: model.Desc}})
	assert.Equal(t, []string{"b", "a", "d", "c"}, ids(findings), "missing year sorts last descending")
}

func TestSortFindings_Strings(t *testing.T) {
	findings := []model.Finding{
		{ID: "1", Department: "Legal"},
		{ID: "2", Department: ""},
		{ID: "3", Department: "Finance"},
	}
	SortFindings(findings, []model.SortDirective{{Field: "department", Direction: model.Asc}})
	assert.Equal(t, []string{"3", "1", "2"}, ids(findings))
}

func ids(findings []model.Finding) []string {
	out := make([]string, len(findings))
	for i, f := range findings {
		out[i] = f.ID
	}
	return out
}
