package importer

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/findings-cli/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type mockSink struct {
	batches [][]model.Finding
	err     error
}

func (m *mockSink) InsertFindings(_ context.Context, findings []model.Finding) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.batches = append(m.batches, append([]model.Finding(nil), findings...))
	return int64(len(findings)), nil
}

func (m *mockSink) all() []model.Finding {
	var out []model.Finding
	for _, b := range m.batches {
		out = append(out, b...)
	}
	return out
}

type mockRegistrar struct {
	literals []string
	err      error
}

func (m *mockRegistrar) Register(_ context.Context, literal string) (model.Department, error) {
	if m.err != nil {
		return model.Department{}, m.err
	}
	m.literals = append(m.literals, literal)
	return model.Department{Name: literal, OriginalNames: []string{literal}}, nil
}

func createTestXLSX(t *testing.T, sheets map[string][][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	for name, rows := range sheets {
		sheet, err := f.AddSheet(name)
		require.NoError(t, err)
		for _, rowData := range rows {
			row := sheet.AddRow()
			for _, cellData := range rowData {
				row.AddCell().SetString(cellData)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "findings.xlsx")
	require.NoError(t, f.Save(path))
	return path
}
