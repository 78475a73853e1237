// Package store persists normalized table batches idempotently.
//
// A Store's Merge is the only long-lived state transition in the system:
// it reads the rows already persisted for a table, drops incoming rows
// whose key is already present, and appends only the genuinely new ones.
// Running the same batch twice therefore leaves the table unchanged.
//
// Two implementations exist: CSVStore (the default, append-only flat files
// over the filesystem abstraction) and PostgresStore (conflict-skipping
// inserts through a narrow DBConn seam). A failure in one table's merge is
// reported in that table's TableReport and never aborts the other tables -
// the orchestrator owns that loop.
package store

import (
	"context"
	"strings"

	"github.com/vvka-141/tabmeta/pkg/tabmeta"
)

// Store merges one incoming batch into the persisted table of the same name.
type Store interface {
	Merge(ctx context.Context, table tabmeta.Table) tabmeta.TableReport
}

// keySeparator joins key column values into a single comparable string.
// Unit separator cannot appear in CSV cell values we care about and keeps
// ("a","bc") distinct from ("ab","c").
const keySeparator = "\x1f"

func rowKey(row []string, keyIdx []int) string {
	parts := make([]string, len(keyIdx))
	for i, idx := range keyIdx {
		parts[i] = row[idx]
	}
	return strings.Join(parts, keySeparator)
}

// arrange applies a configured column order to a batch. Configured columns
// missing from the extracted shape become empty cells; extracted columns
// not listed are dropped. A nil override keeps the canonical shape.
func arrange(t tabmeta.Table, override []string) tabmeta.Table {
	if len(override) == 0 {
		return t
	}

	srcIdx := make([]int, len(override))
	for i, col := range override {
		srcIdx[i] = -1
		for j, src := range t.Columns {
			if src == col {
				srcIdx[i] = j
				break
			}
		}
	}

	rows := make([][]string, len(t.Rows))
	for r, src := range t.Rows {
		row := make([]string, len(override))
		for i, idx := range srcIdx {
			if idx >= 0 {
				row[i] = src[idx]
			}
		}
		rows[r] = row
	}

	return tabmeta.Table{
		Name:       t.Name,
		Columns:    override,
		KeyColumns: t.KeyColumns,
		Rows:       rows,
		Dropped:    t.Dropped,
	}
}

// successStatus classifies a completed write: Partial when extraction
// dropped candidates upstream, Success otherwise.
func successStatus(dropped int) tabmeta.Status {
	if dropped > 0 {
		return tabmeta.StatusPartial
	}
	return tabmeta.StatusSuccess
}

func failedReport(t tabmeta.Table, err error) tabmeta.TableReport {
	return tabmeta.TableReport{
		Table:   t.Name,
		Status:  tabmeta.StatusFailed,
		Total:   len(t.Rows),
		Dropped: t.Dropped,
		Error:   err.Error(),
	}
}
