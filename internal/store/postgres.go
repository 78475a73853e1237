package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vvka-141/tabmeta/pkg/tabmeta"
)

// DBConn is the narrow database seam the Postgres store needs. It is
// implemented by db.PoolAdapter in production and by test doubles in unit
// tests, keeping pgx-specific pool types out of this package's callers.
type DBConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore merges batches into database tables using conflict-skipping
// inserts.
//
// Each table is created on first merge as all-text columns with a unique
// constraint over its key columns; INSERT ... ON CONFLICT DO NOTHING then
// makes repeated runs idempotent server-side. The new-row count comes from
// the rows actually inserted.
type PostgresStore struct {
	conn    DBConn
	columns map[string][]string
	logger  tabmeta.Logger

	created map[string]bool
}

// NewPostgresStore creates a PostgresStore over an established connection.
// columns optionally overrides the output column order per table.
func NewPostgresStore(conn DBConn, columns map[string][]string, logger tabmeta.Logger) *PostgresStore {
	if conn == nil {
		panic("conn cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &PostgresStore{
		conn:    conn,
		columns: columns,
		logger:  logger,
		created: make(map[string]bool),
	}
}

// Merge inserts the batch's rows, skipping any whose key already exists.
// An empty batch is a Success no-op; any database error fails only this
// table.
func (s *PostgresStore) Merge(ctx context.Context, table tabmeta.Table) tabmeta.TableReport {
	t := arrange(table, s.columns[table.Name])

	report := tabmeta.TableReport{
		Table:   t.Name,
		Total:   len(t.Rows),
		Dropped: t.Dropped,
	}

	if len(t.Rows) == 0 {
		report.Status = successStatus(t.Dropped)
		s.logger.Verbose("%s: nothing to write", t.Name)
		return report
	}

	// Conflict handling is server-side; this only validates that the
	// configured column order still contains the key columns.
	if _, err := t.KeyIndexes(); err != nil {
		return failedReport(t, err)
	}

	if err := s.ensureTable(ctx, t); err != nil {
		return failedReport(t, err)
	}

	insertSQL := buildInsertSQL(t)
	for _, row := range t.Rows {
		args := make([]any, len(row))
		for i, v := range row {
			args[i] = v
		}
		tag, err := s.conn.Exec(ctx, insertSQL, args...)
		if err != nil {
			return failedReport(t, fmt.Errorf("insert into %s failed: %w", t.Name, err))
		}
		if tag.RowsAffected() > 0 {
			report.New++
		} else {
			report.Skipped++
		}
	}

	report.Status = successStatus(t.Dropped)
	s.logger.Verbose("%s: inserted %d of %d rows (%d duplicates skipped)",
		t.Name, report.New, report.Total, report.Skipped)
	return report
}

// ensureTable creates the table with its unique merge key if it does not
// exist yet. Runs at most once per table per store instance.
func (s *PostgresStore) ensureTable(ctx context.Context, t tabmeta.Table) error {
	if s.created[t.Name] {
		return nil
	}

	cols := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		cols[i] = pgx.Identifier{col}.Sanitize() + " text"
	}

	keyCols := t.KeyColumns
	if len(keyCols) == 0 {
		keyCols = t.Columns
	}
	quotedKeys := make([]string, len(keyCols))
	for i, col := range keyCols {
		quotedKeys[i] = pgx.Identifier{col}.Sanitize()
	}

	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s, UNIQUE (%s))",
		pgx.Identifier{t.Name}.Sanitize(),
		strings.Join(cols, ", "),
		strings.Join(quotedKeys, ", "))

	if _, err := s.conn.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create table %s: %w", t.Name, err)
	}
	s.created[t.Name] = true
	return nil
}

func buildInsertSQL(t tabmeta.Table) string {
	quoted := make([]string, len(t.Columns))
	placeholders := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		quoted[i] = pgx.Identifier{col}.Sanitize()
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT DO NOTHING",
		pgx.Identifier{t.Name}.Sanitize(),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "))
}

// Verify PostgresStore implements Store at compile time
var _ Store = (*PostgresStore)(nil)
