package model

import "time"

// Department groups the literal department spellings found in source
// spreadsheets under one canonical name and category.
type Department struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	OriginalNames []string  `json:"originalNames"`
	CreatedAt     time.Time `json:"createdAt"`
}

// HasOriginalName reports whether literal is already recorded as a source
// spelling of the department.
func (d Department) HasOriginalName(literal string) bool {
	for _, n := range d.OriginalNames {
		if n == literal {
			return true
		}
	}
	return false
}
