package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/findings-cli/internal/model"
)

// SQLiteStore implements FindingStore using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS findings (
	id             TEXT PRIMARY KEY,
	year           INTEGER NOT NULL DEFAULT 0,
	department     TEXT NOT NULL DEFAULT '',
	project_name   TEXT NOT NULL DEFAULT '',
	sh             TEXT NOT NULL DEFAULT '',
	bobot          REAL NOT NULL DEFAULT 0,
	kadar          REAL NOT NULL DEFAULT 0,
	nilai          REAL NOT NULL DEFAULT 0,
	code           TEXT NOT NULL DEFAULT '',
	title          TEXT NOT NULL DEFAULT '',
	description    TEXT NOT NULL DEFAULT '',
	recommendation TEXT NOT NULL DEFAULT '',
	tags           TEXT NOT NULL DEFAULT '[]',
	created_at     DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS departments (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	category       TEXT NOT NULL,
	original_names TEXT NOT NULL DEFAULT '[]',
	created_at     DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_findings_year ON findings(year);
CREATE INDEX IF NOT EXISTS idx_findings_department ON findings(department);
CREATE INDEX IF NOT EXISTS idx_findings_nilai ON findings(nilai);
CREATE INDEX IF NOT EXISTS idx_findings_sh ON findings(sh);
CREATE INDEX IF NOT EXISTS idx_departments_category ON departments(category COLLATE NOCASE);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetAll(ctx context.Context, opts model.QueryOptions) ([]model.Finding, error) {
	query, args, err := buildSelect(opts, questionMark)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query findings")
	}
	defer rows.Close() //nolint:errcheck

	findings := []model.Finding{}
	for rows.Next() {
		f, err := scanFinding(rows)
		if err != nil {
			return nil, err
		}
		findings = append(findings, *f)
	}
	return findings, eris.Wrap(rows.Err(), "sqlite: query findings iterate")
}

func (s *SQLiteStore) InsertFindings(ctx context.Context, findings []model.Finding) (int64, error) {
	if len(findings) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin insert findings")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO findings (`+findingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			year = excluded.year, department = excluded.department,
			project_name = excluded.project_name, sh = excluded.sh,
			bobot = excluded.bobot, kadar = excluded.kadar, nilai = excluded.nilai,
			code = excluded.code, title = excluded.title, description = excluded.description,
			recommendation = excluded.recommendation, tags = excluded.tags`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare insert finding")
	}
	defer stmt.Close() //nolint:errcheck

	var n int64
	for _, f := range findings {
		row, err := findingRow(f)
		if err != nil {
			return 0, err
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert finding %s", f.ID)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit insert findings")
	}
	return n, nil
}

func (s *SQLiteStore) CountFindings(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM findings`).Scan(&n)
	return n, eris.Wrap(err, "sqlite: count findings")
}

func (s *SQLiteStore) ListDepartments(ctx context.Context) ([]model.Department, error) {
	return s.queryDepartments(ctx, `SELECT id, name, category, original_names, created_at
		FROM departments ORDER BY category, name`)
}

func (s *SQLiteStore) GetDepartmentsByCategory(ctx context.Context, category string) ([]model.Department, error) {
	return s.queryDepartments(ctx, `SELECT id, name, category, original_names, created_at
		FROM departments WHERE category = ? COLLATE NOCASE ORDER BY name`, category)
}

func (s *SQLiteStore) SaveDepartment(ctx context.Context, d *model.Department) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	names, err := json.Marshal(nonNil(d.OriginalNames))
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal original names")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO departments (id, name, category, original_names, created_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, category = excluded.category,
		 original_names = excluded.original_names`,
		d.ID, d.Name, d.Category, string(names), d.CreatedAt,
	)
	return eris.Wrapf(err, "sqlite: save department %s", d.Name)
}

func (s *SQLiteStore) queryDepartments(ctx context.Context, query string, args ...any) ([]model.Department, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query departments")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.Department
	for rows.Next() {
		var d model.Department
		var names string
		if err := rows.Scan(&d.ID, &d.Name, &d.Category, &names, &d.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan department")
		}
		if err := json.Unmarshal([]byte(names), &d.OriginalNames); err != nil {
			return nil, eris.Wrapf(err, "sqlite: unmarshal original names of %s", d.Name)
		}
		out = append(out, d)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: query departments iterate")
}

// helpers

type scannable interface {
	Scan(dest ...any) error
}

func scanFinding(row scannable) (*model.Finding, error) {
	var f model.Finding
	var tags []byte
	err := row.Scan(&f.ID, &f.Year, &f.Department, &f.ProjectName, &f.SH,
		&f.Bobot, &f.Kadar, &f.Nilai, &f.Code, &f.Title, &f.Description,
		&f.Recommendation, &tags, &f.CreatedAt)
	if err != nil {
		return nil, eris.Wrap(err, "store: scan finding")
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &f.Tags); err != nil {
			return nil, eris.Wrapf(err, "store: unmarshal tags of %s", f.ID)
		}
	}
	return &f, nil
}

// findingRow returns f's values in findingColumns order.
func findingRow(f model.Finding) ([]any, error) {
	tags, err := json.Marshal(nonNil(f.Tags))
	if err != nil {
		return nil, eris.Wrapf(err, "store: marshal tags of %s", f.ID)
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	return []any{
		f.ID, f.Year, strings.TrimSpace(f.Department), f.ProjectName, f.SH,
		f.Bobot, f.Kadar, f.Nilai, f.Code, f.Title, f.Description,
		f.Recommendation, string(tags), f.CreatedAt,
	}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
