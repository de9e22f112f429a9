package query

import (
	"context"
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/findings-cli/internal/model"
)

// DefaultLimit caps result sets when the phrase did not ask for a size.
const DefaultLimit = 50

// Response types.
const (
	TypeSimpleQuery = "simple_query"
	TypeNoMatch     = "no_match"
)

// RecordStore is the query side of the findings store.
type RecordStore interface {
	GetAll(ctx context.Context, opts model.QueryOptions) ([]model.Finding, error)
}

// DepartmentLookup resolves a department parameter to the literal department
// spellings stored on findings.
type DepartmentLookup interface {
	GetByCategory(ctx context.Context, category string) ([]model.Department, error)
	SearchByName(ctx context.Context, text string) ([]model.Department, error)
	FindOrCreate(ctx context.Context, text string) (model.Department, error)
}

// Response is the outcome of one executed query. It is always well formed;
// failures are reported through Error and Answer.
type Response struct {
	Type         string                `json:"type"`
	Answer       string                `json:"answer"`
	ResultsCount int                   `json:"resultsCount"`
	Findings     []model.Finding       `json:"findings"`
	Filters      []model.Filter        `json:"filters"`
	Sorts        []model.SortDirective `json:"sorts"`
	Limit        int                   `json:"limit"`
	PatternID    string                `json:"pattern,omitempty"`
	PatternName  string                `json:"patternName,omitempty"`
	Params       Params                `json:"params,omitempty"`
	Departments  []string              `json:"departments,omitempty"`
	Stats        Stats                 `json:"stats"`
	Error        string                `json:"error,omitempty"`
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithDefaultLimit overrides DefaultLimit. Non-positive values are ignored.
func WithDefaultLimit(n int) ExecutorOption {
	return func(e *Executor) {
		if n > 0 {
			e.defaultLimit = n
		}
	}
}

// WithParallelFanout issues per-department queries concurrently.
func WithParallelFanout(enabled bool) ExecutorOption {
	return func(e *Executor) { e.parallel = enabled }
}

// Executor runs matched patterns against a record store.
type Executor struct {
	store        RecordStore
	departments  DepartmentLookup
	defaultLimit int
	parallel     bool
}

// NewExecutor creates an Executor. departments may be nil, in which case
// department filters are passed to the store verbatim.
func NewExecutor(store RecordStore, departments DepartmentLookup, opts ...ExecutorOption) *Executor {
	e := &Executor{
		store:        store,
		departments:  departments,
		defaultLimit: DefaultLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute builds the pattern's query from params, runs it and formats the
// answer. It never returns an error; store and lookup failures become an
// error response with zero results.
func (e *Executor) Execute(ctx context.Context, p *Pattern, params Params) *Response {
	filters := p.BuildFilters(params)
	sorts := EnsureInequalityOrder(filters, p.BuildSorts(params))
	limit := e.resolveLimit(params)

	resp := &Response{
		Type:        TypeSimpleQuery,
		Findings:    []model.Finding{},
		Filters:     filters,
		Sorts:       sorts,
		Limit:       limit,
		PatternID:   p.ID,
		PatternName: p.Name,
		Params:      params,
	}
	log := zap.L().With(zap.String("pattern", p.ID))

	deptIdx := departmentFilterIndex(filters)
	if deptIdx < 0 || e.departments == nil {
		findings, err := e.store.GetAll(ctx, model.QueryOptions{Filters: filters, Sorts: sorts, Limit: limit})
		if err != nil {
			return e.fail(resp, log, err)
		}
		if len(findings) > limit {
			findings = findings[:limit]
		}
		return e.finish(resp, findings)
	}

	requested, _ := filters[deptIdx].Value.(string)
	names, err := e.resolveDepartment(ctx, requested)
	if err != nil {
		return e.fail(resp, log, err)
	}
	resp.Departments = names
	if len(names) == 0 {
		log.Info("query: department not resolvable", zap.String("department", requested))
		resp.Answer = FormatNoResults(p.Name, filters, "No department matches \""+requested+"\".")
		return resp
	}

	base := make([]model.Filter, 0, len(filters)-1)
	base = append(base, filters[:deptIdx]...)
	base = append(base, filters[deptIdx+1:]...)

	log.Debug("query: department fan-out",
		zap.String("department", requested),
		zap.Strings("names", names),
	)

	findings, err := e.fanOut(ctx, base, sorts, limit, names)
	if err != nil {
		return e.fail(resp, log, err)
	}
	SortFindings(findings, sorts)
	if len(findings) > limit {
		findings = findings[:limit]
	}
	return e.finish(resp, findings)
}

// fanOut issues one store query per literal department name and
// concatenates the results in name order.
func (e *Executor) fanOut(ctx context.Context, base []model.Filter, sorts []model.SortDirective, limit int, names []string) ([]model.Finding, error) {
	parts := make([][]model.Finding, len(names))
	run := func(ctx context.Context, i int) error {
		f := make([]model.Filter, 0, len(base)+1)
		f = append(f, base...)
		f = append(f, model.Filter{Field: model.FieldDepartment, Op: model.OpEq, Value: names[i]})

		res, err := e.store.GetAll(ctx, model.QueryOptions{Filters: f, Sorts: sorts, Limit: limit})
		if err != nil {
			return eris.Wrapf(err, "query: department %q", names[i])
		}
		parts[i] = res
		return nil
	}

	if e.parallel {
		g, gctx := errgroup.WithContext(ctx)
		for i := range names {
			g.Go(func() error { return run(gctx, i) })
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := range names {
			if err := run(ctx, i); err != nil {
				return nil, err
			}
		}
	}

	var merged []model.Finding
	for _, p := range parts {
		merged = append(merged, p...)
	}
	return merged, nil
}

// resolveDepartment tries category, then name search, then find-or-create,
// and returns the de-duplicated literal spellings of whatever it found.
func (e *Executor) resolveDepartment(ctx context.Context, requested string) ([]string, error) {
	depts, err := e.departments.GetByCategory(ctx, requested)
	if err != nil {
		return nil, eris.Wrap(err, "query: department by category")
	}
	if len(depts) == 0 {
		depts, err = e.departments.SearchByName(ctx, requested)
		if err != nil {
			return nil, eris.Wrap(err, "query: department search")
		}
	}
	if len(depts) == 0 {
		d, err := e.departments.FindOrCreate(ctx, requested)
		if err != nil {
			return nil, eris.Wrap(err, "query: department find or create")
		}
		depts = []model.Department{d}
	}

	seen := make(map[string]bool)
	var names []string
	for _, d := range depts {
		for _, n := range d.OriginalNames {
			if n == "" || seen[n] {
				continue
			}
			seen[n] = true
			names = append(names, n)
		}
	}
	return names, nil
}

func (e *Executor) resolveLimit(params Params) int {
	switch v := params["limit"].(type) {
	case int:
		if v > 0 {
			return v
		}
	case float64:
		if v > 0 && !math.IsInf(v, 0) && v == math.Trunc(v) && v <= math.MaxInt32 {
			return int(v)
		}
	}
	return e.defaultLimit
}

func (e *Executor) finish(resp *Response, findings []model.Finding) *Response {
	resp.Findings = findings
	resp.ResultsCount = len(findings)
	resp.Stats = ComputeStats(findings)
	if len(findings) == 0 {
		resp.Answer = FormatNoResults(resp.PatternName, resp.Filters, "")
		return resp
	}
	resp.Answer = FormatResults(resp.PatternName, findings, resp.Stats)
	return resp
}

func (e *Executor) fail(resp *Response, log *zap.Logger, err error) *Response {
	log.Warn("query: store query failed", zap.Error(err))
	resp.Findings = []model.Finding{}
	resp.ResultsCount = 0
	resp.Stats = Stats{}
	resp.Error = err.Error()
	resp.Answer = FormatError(resp.PatternName, err)
	return resp
}

// departmentFilterIndex returns the index of the department equality
// filter, or -1.
func departmentFilterIndex(filters []model.Filter) int {
	for i, f := range filters {
		if f.Field == model.FieldDepartment && f.Op == model.OpEq {
			if _, ok := f.Value.(string); ok {
				return i
			}
		}
	}
	return -1
}
