package department

import (
	"context"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/findings-cli/internal/model"
)

// Store persists the department catalogue.
type Store interface {
	ListDepartments(ctx context.Context) ([]model.Department, error)
	GetDepartmentsByCategory(ctx context.Context, category string) ([]model.Department, error)
	SaveDepartment(ctx context.Context, d *model.Department) error
}

// Service resolves department references against the catalogue. It
// satisfies query.DepartmentLookup.
type Service struct {
	store Store
	mu    sync.Mutex // serialises catalogue writes
}

// NewService creates a Service over store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// GetByCategory returns the departments filed under category, ignoring case.
func (s *Service) GetByCategory(ctx context.Context, category string) ([]model.Department, error) {
	category = Normalize(category)
	if category == "" {
		return nil, nil
	}
	depts, err := s.store.GetDepartmentsByCategory(ctx, category)
	return depts, eris.Wrapf(err, "department: by category %q", category)
}

// SearchByName returns departments whose name or any literal spelling
// contains the words of text, ignoring case. Words match whole, so "IT"
// does not find "Internal Audit".
func (s *Service) SearchByName(ctx context.Context, text string) ([]model.Department, error) {
	needle := wordKey(text)
	if needle == "" {
		return nil, nil
	}
	all, err := s.store.ListDepartments(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "department: search")
	}

	var out []model.Department
	for _, d := range all {
		if matchesName(d, needle) {
			out = append(out, d)
		}
	}
	return out, nil
}

func matchesName(d model.Department, needle string) bool {
	if strings.Contains(wordKey(d.Name), needle) {
		return true
	}
	for _, n := range d.OriginalNames {
		if strings.Contains(wordKey(n), needle) {
			return true
		}
	}
	return false
}

// FindOrCreate returns the department whose name or category equals text,
// ignoring case, creating an empty one when none exists. A created
// department has no literal spellings until Register records one.
func (s *Service) FindOrCreate(ctx context.Context, text string) (model.Department, error) {
	name := Normalize(text)
	if name == "" {
		return model.Department{}, eris.New("department: empty name")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.store.ListDepartments(ctx)
	if err != nil {
		return model.Department{}, eris.Wrap(err, "department: find")
	}
	folded := Fold(name)
	for _, d := range all {
		if Fold(d.Name) == folded || Fold(d.Category) == folded {
			return d, nil
		}
	}

	d := model.Department{Name: name, Category: Categorize(name)}
	if err := s.store.SaveDepartment(ctx, &d); err != nil {
		return model.Department{}, eris.Wrapf(err, "department: create %q", name)
	}
	zap.L().Info("department: created",
		zap.String("name", d.Name),
		zap.String("category", d.Category),
	)
	return d, nil
}

// Register records literal as a spelling of its category's department,
// creating the department on first sight. It is idempotent. The spelling is
// kept exactly as it appears on findings (only surrounding space is
// trimmed); categorisation works on the normalised form.
func (s *Service) Register(ctx context.Context, literal string) (model.Department, error) {
	literal = strings.TrimSpace(literal)
	if Normalize(literal) == "" {
		return model.Department{}, eris.New("department: empty name")
	}
	category := Categorize(literal)

	s.mu.Lock()
	defer s.mu.Unlock()

	depts, err := s.store.GetDepartmentsByCategory(ctx, category)
	if err != nil {
		return model.Department{}, eris.Wrapf(err, "department: register %q", literal)
	}

	var d model.Department
	if len(depts) > 0 {
		d = depts[0]
		if d.HasOriginalName(literal) {
			return d, nil
		}
	} else {
		d = model.Department{Name: category, Category: category}
	}
	d.OriginalNames = append(d.OriginalNames, literal)

	if err := s.store.SaveDepartment(ctx, &d); err != nil {
		return model.Department{}, eris.Wrapf(err, "department: save %q", d.Name)
	}
	zap.L().Debug("department: registered spelling",
		zap.String("literal", literal),
		zap.String("category", category),
	)
	return d, nil
}
