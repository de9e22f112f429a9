package store

import (
	"context"
	"embed"
	"encoding/json"
	"io/fs"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/findings-cli/internal/db"
	"github.com/sells-group/findings-cli/internal/model"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// migrationLockID keys the advisory lock that serialises concurrent migrations.
const migrationLockID = 44102023

// PostgresStore implements FindingStore using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements are prepared on each new connection.
var preparedStatements = map[string]string{
	"count_findings":   `SELECT count(*) FROM findings`,
	"list_departments": `SELECT id, name, category, original_names, created_at FROM departments ORDER BY category, name`,
	"departments_by_category": `SELECT id, name, category, original_names, created_at FROM departments
		WHERE lower(category) = lower($1) ORDER BY name`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// Pool returns the underlying database pool.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// Migrate applies pending migrations in filename order under an advisory
// lock and records each one in schema_migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	log := zap.L().With(zap.String("component", "store.migrate"))

	if _, err := s.pool.Exec(ctx, "SELECT pg_advisory_lock($1)", migrationLockID); err != nil {
		return eris.Wrap(err, "postgres: acquire migration lock")
	}
	defer func() {
		if _, err := s.pool.Exec(ctx, "SELECT pg_advisory_unlock($1)", migrationLockID); err != nil {
			log.Warn("postgres: release migration lock", zap.Error(err))
		}
	}()

	if _, err := s.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		filename   TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		return eris.Wrap(err, "postgres: ensure migration table")
	}

	applied, err := s.appliedMigrations(ctx)
	if err != nil {
		return err
	}

	names, err := migrationNames()
	if err != nil {
		return err
	}
	for _, name := range names {
		if applied[name] {
			continue
		}
		data, err := migrationFS.ReadFile("migrations/" + name)
		if err != nil {
			return eris.Wrapf(err, "postgres: read migration %s", name)
		}
		if _, err := s.pool.Exec(ctx, string(data)); err != nil {
			return eris.Wrapf(err, "postgres: apply migration %s", name)
		}
		if _, err := s.pool.Exec(ctx, "INSERT INTO schema_migrations (filename) VALUES ($1)", name); err != nil {
			return eris.Wrapf(err, "postgres: record migration %s", name)
		}
		log.Info("migration applied", zap.String("file", name))
	}
	return nil
}

func migrationNames() ([]string, error) {
	entries, err := fs.ReadDir(migrationFS, "migrations")
	if err != nil {
		return nil, eris.Wrap(err, "postgres: read migration dir")
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (s *PostgresStore) appliedMigrations(ctx context.Context) (map[string]bool, error) {
	rows, err := s.pool.Query(ctx, "SELECT filename FROM schema_migrations")
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query applied migrations")
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, eris.Wrap(err, "postgres: scan migration row")
		}
		applied[name] = true
	}
	return applied, eris.Wrap(rows.Err(), "postgres: iterate migrations")
}

func (s *PostgresStore) GetAll(ctx context.Context, opts model.QueryOptions) ([]model.Finding, error) {
	query, args, err := buildSelect(opts, dollar)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query findings")
	}
	defer rows.Close()

	findings := []model.Finding{}
	for rows.Next() {
		f, err := scanFinding(rows)
		if err != nil {
			return nil, err
		}
		findings = append(findings, *f)
	}
	return findings, eris.Wrap(rows.Err(), "postgres: query findings iterate")
}

// findingCopyColumns are the findings columns written by InsertFindings.
var findingCopyColumns = []string{
	"id", "year", "department", "project_name", "sh", "bobot", "kadar", "nilai",
	"code", "title", "description", "recommendation", "tags", "created_at",
}

// InsertFindings upserts findings by id through a COPY-staged bulk merge.
func (s *PostgresStore) InsertFindings(ctx context.Context, findings []model.Finding) (int64, error) {
	rows := make([][]any, 0, len(findings))
	for _, f := range findings {
		row, err := findingRow(f)
		if err != nil {
			return 0, err
		}
		rows = append(rows, row)
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "findings",
		Columns:      findingCopyColumns,
		ConflictKeys: []string{"id"},
	}, rows)
	return n, eris.Wrap(err, "postgres: insert findings")
}

func (s *PostgresStore) CountFindings(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, preparedStatements["count_findings"]).Scan(&n)
	return n, eris.Wrap(err, "postgres: count findings")
}

func (s *PostgresStore) ListDepartments(ctx context.Context) ([]model.Department, error) {
	return s.queryDepartments(ctx, preparedStatements["list_departments"])
}

func (s *PostgresStore) GetDepartmentsByCategory(ctx context.Context, category string) ([]model.Department, error) {
	return s.queryDepartments(ctx, preparedStatements["departments_by_category"], category)
}

func (s *PostgresStore) SaveDepartment(ctx context.Context, d *model.Department) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	names, err := json.Marshal(nonNil(d.OriginalNames))
	if err != nil {
		return eris.Wrap(err, "postgres: marshal original names")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO departments (id, name, category, original_names, created_at) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, category = EXCLUDED.category,
		 original_names = EXCLUDED.original_names`,
		d.ID, d.Name, d.Category, names, d.CreatedAt,
	)
	return eris.Wrapf(err, "postgres: save department %s", d.Name)
}

func (s *PostgresStore) queryDepartments(ctx context.Context, query string, args ...any) ([]model.Department, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query departments")
	}
	defer rows.Close()

	var out []model.Department
	for rows.Next() {
		var d model.Department
		var names []byte
		if err := rows.Scan(&d.ID, &d.Name, &d.Category, &names, &d.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan department")
		}
		if err := json.Unmarshal(names, &d.OriginalNames); err != nil {
			return nil, eris.Wrapf(err, "postgres: unmarshal original names of %s", d.Name)
		}
		out = append(out, d)
	}
	return out, eris.Wrap(rows.Err(), "postgres: query departments iterate")
}
