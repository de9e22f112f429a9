package query

import (
	"context"
	"strings"
	"sync"

	"github.com/sells-group/findings-cli/internal/model"
)

// mockStore implements RecordStore for testing. It applies equality filters
// on department and records every call.
type mockStore struct {
	mu       sync.Mutex
	findings []model.Finding
	err      error
	calls    []model.QueryOptions
}

func (m *mockStore) GetAll(_ context.Context, opts model.QueryOptions) ([]model.Finding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, opts)
	if m.err != nil {
		return nil, m.err
	}

	var out []model.Finding
	for _, f := range m.findings {
		if matchesDepartment(f, opts.Filters) {
			out = append(out, f)
		}
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func matchesDepartment(f model.Finding, filters []model.Filter) bool {
	for _, flt := range filters {
		if flt.Field == model.FieldDepartment && flt.Op == model.OpEq && flt.Value != f.Department {
			return false
		}
	}
	return true
}

// mockDepartments implements DepartmentLookup for testing.
type mockDepartments struct {
	byCategory  map[string][]model.Department
	byName      map[string][]model.Department
	created     model.Department
	err         error
	createCalls int
	searchCalls int
}

func (m *mockDepartments) GetByCategory(_ context.Context, category string) ([]model.Department, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.byCategory[strings.ToLower(category)], nil
}

func (m *mockDepartments) SearchByName(_ context.Context, text string) ([]model.Department, error) {
	m.searchCalls++
	return m.byName[strings.ToLower(text)], nil
}

func (m *mockDepartments) FindOrCreate(_ context.Context, text string) (model.Department, error) {
	m.createCalls++
	d := m.created
	if d.Name == "" {
		d.Name = text
	}
	return d, nil
}
