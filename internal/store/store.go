package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/findings-cli/internal/model"
)

// ErrInvalidQuery is returned for query shapes the store refuses to run:
// unknown fields or operators, range filters on more than one field, or a
// range filter whose field is not the leading sort key.
var ErrInvalidQuery = eris.New("store: invalid query")

// FindingStore defines the persistence interface for audit findings and the
// department catalogue.
type FindingStore interface {
	// Findings
	GetAll(ctx context.Context, opts model.QueryOptions) ([]model.Finding, error)
	InsertFindings(ctx context.Context, findings []model.Finding) (int64, error)
	CountFindings(ctx context.Context) (int, error)

	// Departments
	ListDepartments(ctx context.Context) ([]model.Department, error)
	GetDepartmentsByCategory(ctx context.Context, category string) ([]model.Department, error)
	SaveDepartment(ctx context.Context, d *model.Department) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
