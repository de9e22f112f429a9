package model

import "fmt"

// Op is a filter comparison operator.
type Op string

// Supported comparison operators.
const (
	OpEq  Op = "=="
	OpNeq Op = "!="
	OpGt  Op = ">"
	OpGte Op = ">="
	OpLt  Op = "<"
	OpLte Op = "<="
)

// Valid reports whether o is one of the supported operators.
func (o Op) Valid() bool {
	switch o {
	case OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte:
		return true
	}
	return false
}

// IsInequality reports whether o is a range comparison. Range comparisons
// force the query to be ordered by the compared field first.
func (o Op) IsInequality() bool {
	switch o {
	case OpGt, OpGte, OpLt, OpLte:
		return true
	}
	return false
}

// Filter is a single field predicate.
type Filter struct {
	Field string `json:"field" yaml:"field"`
	Op    Op     `json:"op" yaml:"op"`
	Value any    `json:"value" yaml:"value"`
}

func (f Filter) String() string {
	return fmt.Sprintf("%s %s %v", f.Field, f.Op, f.Value)
}

// Direction is a sort direction.
type Direction string

// Sort directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortDirective orders results by one field.
type SortDirective struct {
	Field     string    `json:"field" yaml:"field"`
	Direction Direction `json:"direction" yaml:"direction"`
}

func (s SortDirective) String() string {
	return fmt.Sprintf("%s %s", s.Field, s.Direction)
}

// QueryOptions is the full shape of a record store query.
type QueryOptions struct {
	Filters []Filter        `json:"filters"`
	Sorts   []SortDirective `json:"sorts"`
	Limit   int             `json:"limit"`
}
