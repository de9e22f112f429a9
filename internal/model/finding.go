package model

import "time"

// Store field names for Finding. These are the names used in filters and
// sort directives, independent of the backing store's column names.
const (
	FieldYear        = "year"
	FieldDepartment  = "department"
	FieldProjectName = "projectName"
	FieldSH          = "sh"
	FieldBobot       = "bobot"
	FieldKadar       = "kadar"
	FieldNilai       = "nilai"
	FieldCode        = "code"
)

// Finding is a single audit record.
type Finding struct {
	ID             string    `json:"id"`
	Year           int       `json:"year"`
	Department     string    `json:"department"`
	ProjectName    string    `json:"projectName"`
	SH             string    `json:"sh"`
	Bobot          float64   `json:"bobot"`
	Kadar          float64   `json:"kadar"`
	Nilai          float64   `json:"nilai"`
	Code           string    `json:"code"`
	Title          string    `json:"title,omitempty"`
	Description    string    `json:"description,omitempty"`
	Recommendation string    `json:"recommendation,omitempty"`
	Tags           []string  `json:"tags,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ComputeNilai returns the risk score for the given weight and severity.
func ComputeNilai(bobot, kadar float64) float64 {
	return bobot * kadar
}

// IsFinding reports whether the record carries a classification code, i.e.
// whether it is an actual finding rather than a non-finding.
func (f Finding) IsFinding() bool {
	return f.Code != ""
}

// Field returns the value of the named store field. Zero values of optional
// text and numeric fields are reported as nil so callers can sort them last.
func (f Finding) Field(name string) any {
	switch name {
	case FieldYear:
		if f.Year == 0 {
			return nil
		}
		return float64(f.Year)
	case FieldDepartment:
		return optionalString(f.Department)
	case FieldProjectName:
		return optionalString(f.ProjectName)
	case FieldSH:
		return optionalString(f.SH)
	case FieldBobot:
		return f.Bobot
	case FieldKadar:
		return f.Kadar
	case FieldNilai:
		return f.Nilai
	case FieldCode:
		return optionalString(f.Code)
	default:
		return nil
	}
}

func optionalString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
