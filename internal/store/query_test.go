package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/findings-cli/internal/model"
)

func TestBuildSelect(t *testing.T) {
	tests := []struct {
		name      string
		opts      model.QueryOptions
		ph        placeholder
		wantWhere string
		wantOrder string
		wantArgs  []any
	}{
		{
			name:      "no filters",
			opts:      model.QueryOptions{},
			ph:        questionMark,
			wantOrder: " ORDER BY id ASC",
			wantArgs:  []any{},
		},
		{
			name: "equality and limit",
			opts: model.QueryOptions{
				Filters: []model.Filter{{Field: "year", Op: model.OpEq, Value: 2023}, {Field: "projectName", Op: model.OpEq, Value: "Jetty"}},
				Sorts:   []model.SortDirective{{Field: "nilai", Direction: model.Desc}},
				Limit:   10,
			},
			ph:        questionMark,
			wantWhere: " WHERE year = ? AND project_name = ?",
			wantOrder: " ORDER BY nilai DESC, id ASC LIMIT ?",
			wantArgs:  []any{2023, "Jetty", 10},
		},
		{
			name: "postgres placeholders and inequality",
			opts: model.QueryOptions{
				Filters: []model.Filter{{Field: "code", Op: model.OpNeq, Value: ""}, {Field: "nilai", Op: model.OpGte, Value: 15}},
				Sorts:   []model.SortDirective{{Field: "nilai", Direction: model.Desc}, {Field: "year", Direction: model.Asc}},
				Limit:   5,
			},
			ph:        dollar,
			wantWhere: " WHERE code <> $1 AND nilai >= $2",
			wantOrder: " ORDER BY nilai DESC, year ASC, id ASC LIMIT $3",
			wantArgs:  []any{"", 15, 5},
		},
		{
			name: "range on one field twice",
			opts: model.QueryOptions{
				Filters: []model.Filter{{Field: "nilai", Op: model.OpGte, Value: 5}, {Field: "nilai", Op: model.OpLt, Value: 10}},
			},
			ph:        dollar,
			wantWhere: " WHERE nilai >= $1 AND nilai < $2",
			wantOrder: " ORDER BY id ASC",
			wantArgs:  []any{5, 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := buildSelect(tt.opts, tt.ph)
			require.NoError(t, err)
			assert.Equal(t, "SELECT "+findingColumns+" FROM findings"+tt.wantWhere+tt.wantOrder, query)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestValidateQuery_Rejects(t *testing.T) {
	tests := []struct {
		name string
		opts model.QueryOptions
	}{
		{"unknown filter field", model.QueryOptions{Filters: []model.Filter{{Field: "title", Op: model.OpEq, Value: "x"}}}},
		{"unknown operator", model.QueryOptions{Filters: []model.Filter{{Field: "year", Op: "~", Value: 1}}}},
		{"unknown sort field", model.QueryOptions{Sorts: []model.SortDirective{{Field: "id", Direction: model.Asc}}}},
		{"bad direction", model.QueryOptions{Sorts: []model.SortDirective{{Field: "year", Direction: "up"}}}},
		{"range on two fields", model.QueryOptions{Filters: []model.Filter{
			{Field: "nilai", Op: model.OpGt, Value: 1},
			{Field: "year", Op: model.OpLt, Value: 2024},
		}}},
		{"range field not first sort", model.QueryOptions{
			Filters: []model.Filter{{Field: "nilai", Op: model.OpGte, Value: 15}},
			Sorts:   []model.SortDirective{{Field: "year", Direction: model.Desc}, {Field: "nilai", Direction: model.Desc}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateQuery(tt.opts)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidQuery))
		})
	}
}

func TestValidateQuery_RangeWithoutSorts(t *testing.T) {
	assert.NoError(t, validateQuery(model.QueryOptions{
		Filters: []model.Filter{{Field: "kadar", Op: model.OpLte, Value: 2}},
	}))
}
