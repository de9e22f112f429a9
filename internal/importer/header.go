package importer

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/findings-cli/internal/department"
)

// column identifies a finding field in the source sheet.
type column int

const (
	colYear column = iota
	colDepartment
	colProject
	colSH
	colBobot
	colKadar
	colNilai
	colCode
	colTitle
	colDescription
	colRecommendation
)

// headerSynonyms maps case-folded header text to the column it names.
var headerSynonyms = map[string]column{
	"year": colYear, "tahun": colYear, "tahun audit": colYear, "audit year": colYear,

	"department": colDepartment, "departemen": colDepartment, "dept": colDepartment,
	"divisi": colDepartment, "division": colDepartment, "fungsi": colDepartment, "unit": colDepartment,

	"project": colProject, "project name": colProject, "proyek": colProject,
	"nama proyek": colProject, "projectname": colProject, "auditee": colProject,

	"sh": colSH, "subholding": colSH, "sub holding": colSH, "kode sh": colSH,

	"bobot": colBobot, "weight": colBobot,
	"kadar": colKadar, "severity": colKadar,
	"nilai": colNilai, "score": colNilai, "risk score": colNilai,

	"code": colCode, "kode": colCode, "kode temuan": colCode, "finding code": colCode, "kode risiko": colCode,

	"title": colTitle, "finding": colTitle, "temuan": colTitle, "judul temuan": colTitle,
	"description": colDescription, "deskripsi": colDescription, "uraian": colDescription, "detail": colDescription,
	"recommendation": colRecommendation, "rekomendasi": colRecommendation, "saran": colRecommendation,
}

// columnMap records the cell index of each recognised column.
type columnMap map[column]int

// mapHeader recognises the header row. Year and department columns are
// required; the first occurrence of a column wins.
func mapHeader(cells []string) (columnMap, error) {
	m := make(columnMap)
	for i, cell := range cells {
		key := strings.Trim(department.Fold(cell), ".:*")
		c, ok := headerSynonyms[key]
		if !ok {
			continue
		}
		if _, seen := m[c]; !seen {
			m[c] = i
		}
	}

	var missing []string
	if _, ok := m[colYear]; !ok {
		missing = append(missing, "year")
	}
	if _, ok := m[colDepartment]; !ok {
		missing = append(missing, "department")
	}
	if len(missing) > 0 {
		return nil, eris.Errorf("importer: header is missing %s columns", strings.Join(missing, " and "))
	}
	return m, nil
}

// get returns the trimmed cell for c, or "" when the column is absent or
// the row is short.
func (m columnMap) get(row []string, c column) string {
	i, ok := m[c]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
