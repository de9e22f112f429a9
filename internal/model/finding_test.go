package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeNilai(t *testing.T) {
	t.Parallel()
	assert.InDelta(t, 12, ComputeNilai(3, 4), 1e-9)
	assert.InDelta(t, 0, ComputeNilai(0, 5), 1e-9)
	assert.InDelta(t, 3.75, ComputeNilai(2.5, 1.5), 1e-9)
}

func TestFinding_IsFinding(t *testing.T) {
	t.Parallel()
	assert.True(t, Finding{Code: "F-1"}.IsFinding())
	assert.False(t, Finding{}.IsFinding())
}

func TestFinding_Field(t *testing.T) {
	t.Parallel()

	f := Finding{
		Year:        2023,
		Department:  "Divisi TI",
		ProjectName: "Kilang A",
		SH:          "1A",
		Bobot:       3,
		Kadar:       4,
		Nilai:       12,
		Code:        "F-1",
	}

	tests := []struct {
		field string
		want  any
	}{
		{FieldYear, float64(2023)},
		{FieldDepartment, "Divisi TI"},
		{FieldProjectName, "Kilang A"},
		{FieldSH, "1A"},
		{FieldBobot, float64(3)},
		{FieldKadar, float64(4)},
		{FieldNilai, float64(12)},
		{FieldCode, "F-1"},
		{"unknown", nil},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Field(tt.field))
		})
	}

	empty := Finding{}
	assert.Nil(t, empty.Field(FieldYear))
	assert.Nil(t, empty.Field(FieldCode))
	assert.Nil(t, empty.Field(FieldDepartment))
	assert.Equal(t, float64(0), empty.Field(FieldNilai))
}

func TestDepartment_HasOriginalName(t *testing.T) {
	t.Parallel()
	d := Department{OriginalNames: []string{"Divisi TI", "IT Dept"}}
	assert.True(t, d.HasOriginalName("IT Dept"))
	assert.False(t, d.HasOriginalName("it dept"))
}
