package department

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/sells-group/findings-cli/internal/model"
)

// memStore is an in-memory Store keyed by department id.
type memStore struct {
	depts   []model.Department
	err     error
	saveErr error
	saves   int
}

func (m *memStore) ListDepartments(context.Context) ([]model.Department, error) {
	if m.err != nil {
		return nil, m.err
	}
	return append([]model.Department(nil), m.depts...), nil
}

func (m *memStore) GetDepartmentsByCategory(_ context.Context, category string) ([]model.Department, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []model.Department
	for _, d := range m.depts {
		if strings.EqualFold(d.Category, category) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memStore) SaveDepartment(_ context.Context, d *model.Department) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	stored := *d
	stored.OriginalNames = append([]string(nil), d.OriginalNames...)
	for i := range m.depts {
		if m.depts[i].ID == d.ID {
			m.depts[i] = stored
			return nil
		}
	}
	m.depts = append(m.depts, stored)
	return nil
}
