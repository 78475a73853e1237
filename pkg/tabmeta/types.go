package tabmeta

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status classifies the outcome of persisting one table (or a whole run).
type Status string

const (
	// StatusSuccess means every incoming record was either written or
	// recognized as already persisted.
	StatusSuccess Status = "Success"

	// StatusPartial means the write succeeded but some candidate records
	// were dropped upstream for missing key material.
	StatusPartial Status = "Partial"

	// StatusFailed means the table could not be written. Other tables in
	// the same run are still attempted.
	StatusFailed Status = "Failed"
)

// Table is one normalized batch headed for the merge store.
// Rows are positional: each row is aligned with Columns.
type Table struct {
	// Name identifies the table (e.g. "workbooks", "workbook_tags").
	Name string

	// Columns is the fixed output column order.
	Columns []string

	// KeyColumns identifies the columns that form a row's merge key.
	// Empty means the full row is the key (pure relation tables).
	KeyColumns []string

	// Rows holds the incoming records, one string value per column.
	Rows [][]string

	// Dropped counts candidates discarded during extraction because their
	// required key material was missing. Carried here so the merge report
	// can surface it.
	Dropped int
}

// KeyIndexes resolves KeyColumns to positional indexes into Columns.
// Returns indexes for every column when KeyColumns is empty.
func (t *Table) KeyIndexes() ([]int, error) {
	if len(t.KeyColumns) == 0 {
		idx := make([]int, len(t.Columns))
		for i := range t.Columns {
			idx[i] = i
		}
		return idx, nil
	}

	idx := make([]int, 0, len(t.KeyColumns))
	for _, key := range t.KeyColumns {
		found := -1
		for i, col := range t.Columns {
			if col == key {
				found = i
				break
			}
		}
		if found < 0 {
			return nil, fmt.Errorf("key column %q not in table %q: %w", key, t.Name, ErrInvalidConfig)
		}
		idx = append(idx, found)
	}
	return idx, nil
}

// TableReport is the per-table outcome surfaced to the caller.
// A Failed table never suppresses the reports of the other tables.
type TableReport struct {
	Table   string // table name
	Status  Status
	Total   int    // incoming records handed to the merge store
	New     int    // records actually written
	Skipped int    // duplicates dropped (in-batch or already persisted)
	Dropped int    // candidates discarded upstream for missing keys
	Error   string // underlying message when Status is Failed
}

// RunReport aggregates one extraction run across all tables.
type RunReport struct {
	RunID    uuid.UUID
	Started  time.Time
	Finished time.Time
	Tables   []TableReport
}

// Status derives the overall run outcome: Failed if any table failed,
// Partial if any table was partial, Success otherwise.
func (r *RunReport) Status() Status {
	status := StatusSuccess
	for _, t := range r.Tables {
		switch t.Status {
		case StatusFailed:
			return StatusFailed
		case StatusPartial:
			status = StatusPartial
		}
	}
	return status
}

// ExtractConfig contains all parameters needed for one extraction run.
type ExtractConfig struct {
	// DocumentPath is the JSON export of the catalog service.
	DocumentPath string

	// OutputDirectory is where table files are written.
	OutputDirectory string

	// FilePrefix and FileSuffix decorate table file names:
	// <prefix><table><suffix>.csv
	FilePrefix string
	FileSuffix string

	// DateFormat is the Go reference layout for formatted timestamps.
	DateFormat string

	// Verbose enables detailed logging.
	Verbose bool
}

// Validate checks if the ExtractConfig has all required fields and valid
// values. It returns a multi-error if multiple validation failures occur.
func (c *ExtractConfig) Validate() error {
	var errs []error

	if c.DocumentPath == "" {
		errs = append(errs, fmt.Errorf("DocumentPath is required: %w", ErrInvalidConfig))
	}

	if c.OutputDirectory == "" {
		errs = append(errs, fmt.Errorf("OutputDirectory is required: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}
