// Package importer loads audit findings from Excel or CSV worksheets.
package importer

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/findings-cli/internal/model"
	"github.com/sells-group/findings-cli/internal/tagger"
)

const defaultBatchSize = 500

// findingNamespace seeds content-derived finding ids so re-importing the same
// sheet updates rows instead of duplicating them.
var findingNamespace = uuid.MustParse("6f1c2b7e-5d1a-4a8e-9c3e-2b7d8f0a4c11")

// Sink receives parsed findings.
type Sink interface {
	InsertFindings(ctx context.Context, findings []model.Finding) (int64, error)
}

// Registrar records a literal department spelling under its category.
type Registrar interface {
	Register(ctx context.Context, literal string) (model.Department, error)
}

// Options configures an import run.
type Options struct {
	Sheet     SheetOptions
	HeaderRow int // 1-based; 0 means the first row
	BatchSize int
}

// Result summarises an import run.
type Result struct {
	Rows     int `json:"rows"`
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Importer turns worksheet rows into findings.
type Importer struct {
	sink        Sink
	departments Registrar
	tagger      *tagger.Tagger
	opts        Options
	now         func() time.Time
}

// New creates an Importer. departments and tg may be nil.
func New(sink Sink, departments Registrar, tg *tagger.Tagger, opts Options) *Importer {
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	return &Importer{
		sink:        sink,
		departments: departments,
		tagger:      tg,
		opts:        opts,
		now:         time.Now,
	}
}

// ImportFile reads path and imports its rows.
func (im *Importer) ImportFile(ctx context.Context, path string) (*Result, error) {
	rows, err := ReadSheet(path, im.opts.Sheet)
	if err != nil {
		return nil, err
	}
	res, err := im.ImportRows(ctx, rows)
	if err != nil {
		return nil, eris.Wrapf(err, "importer: import %s", path)
	}
	return res, nil
}

// ImportRows imports already-read rows. The header row is located with
// Options.HeaderRow; everything after it is data.
func (im *Importer) ImportRows(ctx context.Context, rows [][]string) (*Result, error) {
	headerIdx := 0
	if im.opts.HeaderRow > 0 {
		headerIdx = im.opts.HeaderRow - 1
	}
	if headerIdx >= len(rows) {
		return nil, eris.Errorf("importer: header row %d beyond %d rows", headerIdx+1, len(rows))
	}

	cols, err := mapHeader(rows[headerIdx])
	if err != nil {
		return nil, err
	}

	res := &Result{}
	registered := make(map[string]bool)
	batch := make([]model.Finding, 0, im.opts.BatchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := im.sink.InsertFindings(ctx, batch)
		if err != nil {
			return eris.Wrap(err, "importer: insert batch")
		}
		res.Imported += int(n)
		batch = batch[:0]
		return nil
	}

	for i, row := range rows[headerIdx+1:] {
		if blankRow(row) {
			continue
		}
		res.Rows++

		f, ok := im.parseRow(cols, row)
		if !ok {
			res.Skipped++
			zap.L().Debug("importer: skipping row",
				zap.Int("row", headerIdx+i+2),
				zap.String("year", cols.get(row, colYear)),
				zap.String("department", cols.get(row, colDepartment)),
			)
			continue
		}

		if im.departments != nil && !registered[f.Department] {
			if _, err := im.departments.Register(ctx, f.Department); err != nil {
				return nil, eris.Wrapf(err, "importer: register department %q", f.Department)
			}
			registered[f.Department] = true
		}

		batch = append(batch, f)
		if len(batch) >= im.opts.BatchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	zap.L().Info("importer: import complete",
		zap.Int("rows", res.Rows),
		zap.Int("imported", res.Imported),
		zap.Int("skipped", res.Skipped),
		zap.Int("departments", len(registered)),
	)
	return res, nil
}

// parseRow builds a finding from a data row. Rows lacking a usable year or a
// department are rejected.
func (im *Importer) parseRow(cols columnMap, row []string) (model.Finding, bool) {
	year, ok := parseYear(cols.get(row, colYear))
	dept := cols.get(row, colDepartment)
	if !ok || dept == "" {
		return model.Finding{}, false
	}

	f := model.Finding{
		Year:           year,
		Department:     dept,
		ProjectName:    cols.get(row, colProject),
		SH:             cols.get(row, colSH),
		Code:           normalizeCode(cols.get(row, colCode)),
		Title:          cols.get(row, colTitle),
		Description:    cols.get(row, colDescription),
		Recommendation: cols.get(row, colRecommendation),
		CreatedAt:      im.now().UTC(),
	}

	bobot, hasBobot := parseNumber(cols.get(row, colBobot))
	kadar, hasKadar := parseNumber(cols.get(row, colKadar))
	f.Bobot, f.Kadar = bobot, kadar
	if hasBobot && hasKadar {
		f.Nilai = model.ComputeNilai(bobot, kadar)
	} else if nilai, ok := parseNumber(cols.get(row, colNilai)); ok {
		f.Nilai = nilai
	}

	if im.tagger != nil {
		f.Tags = im.tagger.Tags(f.Title, f.Description, f.Recommendation)
	}
	f.ID = findingID(f)
	return f, true
}

func findingID(f model.Finding) string {
	key := strings.Join([]string{
		strconv.Itoa(f.Year), f.Department, f.ProjectName, f.SH, f.Code, f.Title, f.Description,
	}, "\x1f")
	return uuid.NewSHA1(findingNamespace, []byte(key)).String()
}

// parseYear accepts "2023", "2023.0" (numeric Excel cells) and
// "FY2023"-style labels.
func parseYear(s string) (int, bool) {
	s = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "FY")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v != float64(int(v)) || v < 1900 || v > 2999 {
		return 0, false
	}
	return int(v), true
}

// parseNumber accepts dot or comma decimal separators. Empty or
// unparseable cells report false.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return 0, false
	}
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// normalizeCode maps placeholder codes to "" so the row counts as a
// non-finding.
func normalizeCode(s string) string {
	switch strings.ToLower(s) {
	case "-", "n/a", "na", "none", "tidak ada", "non temuan", "non-temuan":
		return ""
	}
	return s
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
