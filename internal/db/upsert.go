package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// UpsertConfig describes a bulk upsert target.
type UpsertConfig struct {
	Table        string   // may be schema-qualified
	Columns      []string // columns present in every row
	ConflictKeys []string // unique constraint columns
	UpdateCols   []string // nil updates every non-key column
}

// BulkUpsert stages rows in a temp table with COPY, drops duplicate keys
// within the batch (the last row wins), then merges into the target with
// INSERT ... ON CONFLICT DO UPDATE. Everything runs in one transaction.
func BulkUpsert(ctx context.Context, pool Pool, cfg UpsertConfig, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if len(cfg.Columns) == 0 {
		return 0, eris.New("db: upsert: no columns specified")
	}
	if len(cfg.ConflictKeys) == 0 {
		return 0, eris.New("db: upsert: no conflict keys specified")
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "db: upsert: begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	temp := tempTableName(cfg.Table)

	createSQL := fmt.Sprintf(
		"CREATE TEMP TABLE %s (LIKE %s INCLUDING DEFAULTS) ON COMMIT DROP",
		pgx.Identifier{temp}.Sanitize(), identifier(cfg.Table).Sanitize(),
	)
	if _, err := tx.Exec(ctx, createSQL); err != nil {
		return 0, eris.Wrapf(err, "db: upsert: create temp table for %s", cfg.Table)
	}

	if _, err := CopyFrom(ctx, tx, temp, cfg.Columns, rows); err != nil {
		return 0, eris.Wrapf(err, "db: upsert: stage rows for %s", cfg.Table)
	}

	if _, err := tx.Exec(ctx, dedupSQL(temp, cfg.ConflictKeys)); err != nil {
		return 0, eris.Wrapf(err, "db: upsert: dedup staged rows for %s", cfg.Table)
	}

	tag, err := tx.Exec(ctx, mergeSQL(cfg, temp))
	if err != nil {
		return 0, eris.Wrapf(err, "db: upsert: INSERT ON CONFLICT for %s", cfg.Table)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "db: upsert: commit tx")
	}
	return tag.RowsAffected(), nil
}

func tempTableName(table string) string {
	return "_tmp_upsert_" + strings.ReplaceAll(table, ".", "_")
}

func dedupSQL(temp string, keys []string) string {
	t := pgx.Identifier{temp}.Sanitize()
	conds := make([]string, len(keys))
	for i, k := range keys {
		col := pgx.Identifier{k}.Sanitize()
		conds[i] = fmt.Sprintf("a.%s = b.%s", col, col)
	}
	return fmt.Sprintf("DELETE FROM %s a USING %s b WHERE a.ctid < b.ctid AND %s",
		t, t, strings.Join(conds, " AND "))
}

func mergeSQL(cfg UpsertConfig, temp string) string {
	updateCols := cfg.UpdateCols
	if updateCols == nil {
		keys := make(map[string]bool, len(cfg.ConflictKeys))
		for _, k := range cfg.ConflictKeys {
			keys[k] = true
		}
		for _, c := range cfg.Columns {
			if !keys[c] {
				updateCols = append(updateCols, c)
			}
		}
	}

	cols := quoteAndJoin(cfg.Columns)
	action := "DO NOTHING"
	if len(updateCols) > 0 {
		sets := make([]string, len(updateCols))
		for i, c := range updateCols {
			col := pgx.Identifier{c}.Sanitize()
			sets[i] = fmt.Sprintf("%s = EXCLUDED.%s", col, col)
		}
		action = "DO UPDATE SET " + strings.Join(sets, ", ")
	}

	return fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s ON CONFLICT (%s) %s",
		identifier(cfg.Table).Sanitize(), cols, cols,
		pgx.Identifier{temp}.Sanitize(), quoteAndJoin(cfg.ConflictKeys), action)
}

func quoteAndJoin(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}
