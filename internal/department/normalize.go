// Package department maps the many literal department spellings found in
// audit workbooks onto a small set of canonical categories.
package department

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// categories lists each canonical category with the words and phrases that
// identify it, checked in order. Phrases are matched on whole words after
// case folding.
var categories = []struct {
	name     string
	keywords []string
}{
	{"IT", []string{"it", "ti", "ict", "information technology", "teknologi informasi", "sistem informasi", "digital"}},
	{"HR", []string{"hr", "hrd", "sdm", "human resources", "human resource", "human capital", "sumber daya manusia", "personalia"}},
	{"Accounting", []string{"accounting", "akuntansi"}},
	{"Finance", []string{"finance", "keuangan", "treasury", "perbendaharaan"}},
	{"Marketing", []string{"marketing", "pemasaran"}},
	{"Sales", []string{"sales", "penjualan", "niaga"}},
	{"Legal", []string{"legal", "hukum"}},
	{"Procurement", []string{"procurement", "pengadaan", "purchasing", "supply chain"}},
	{"Compliance", []string{"compliance", "kepatuhan", "manajemen risiko"}},
	{"Audit", []string{"audit", "spi", "pengawasan internal"}},
	{"Engineering", []string{"engineering", "teknik", "rekayasa"}},
	{"Logistics", []string{"logistics", "logistik", "warehouse", "gudang", "distribusi"}},
	{"Production", []string{"production", "produksi", "manufacturing", "pabrik"}},
	{"Operations", []string{"operations", "operation", "operasi", "operasional"}},
}

// Normalize applies NFKC, collapses runs of whitespace and trims.
func Normalize(name string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(name)), " ")
}

// Fold returns the case-folded normal form used for comparisons. Casers
// are stateful, so each call gets its own.
func Fold(name string) string {
	return cases.Fold().String(Normalize(name))
}

// wordKey folds name and rewrites it as space-padded words, so that
// strings.Contains on two keys only matches whole words.
func wordKey(name string) string {
	words := strings.FieldsFunc(Fold(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		return ""
	}
	return " " + strings.Join(words, " ") + " "
}

// Categorize returns the canonical category of a literal department name.
// Names that match no known category are their own category.
func Categorize(name string) string {
	padded := wordKey(name)
	if padded == "" {
		return ""
	}

	for _, c := range categories {
		for _, kw := range c.keywords {
			if strings.Contains(padded, " "+kw+" ") {
				return c.name
			}
		}
	}
	return Normalize(name)
}
