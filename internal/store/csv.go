package store

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/vvka-141/tabmeta/internal/files/filesystem"
	"github.com/vvka-141/tabmeta/pkg/tabmeta"
)

// CSVOptions configures file naming and layout for the CSV store.
type CSVOptions struct {
	// Directory is where table files live. Created on demand.
	Directory string

	// FilePrefix and FileSuffix decorate file names:
	// <prefix><table><suffix>.csv
	FilePrefix string
	FileSuffix string

	// Columns optionally overrides the output column order per table.
	Columns map[string][]string

	// Filenames optionally overrides the complete file name per table,
	// bypassing the prefix/suffix decoration.
	Filenames map[string]string
}

// CSVStore merges batches into append-only CSV files, one per table.
//
// Files are UTF-8 with a header row written only on creation. The store
// assumes a single writer per table at a time; there is no locking between
// the existing-key read and the append.
type CSVStore struct {
	fs     filesystem.FileSystemProvider
	opts   CSVOptions
	logger tabmeta.Logger
}

// NewCSVStore creates a CSVStore over the given filesystem.
func NewCSVStore(fsp filesystem.FileSystemProvider, opts CSVOptions, logger tabmeta.Logger) *CSVStore {
	if fsp == nil {
		panic("filesystem cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &CSVStore{fs: fsp, opts: opts, logger: logger}
}

// FilePath returns the path of a table's persisted file. A configured
// per-table file name wins over the prefix/suffix decoration.
func (s *CSVStore) FilePath(table string) string {
	name, ok := s.opts.Filenames[table]
	if !ok {
		name = s.opts.FilePrefix + table + s.opts.FileSuffix + tabmeta.TableFileExtension
	}
	return filepath.Join(s.opts.Directory, name)
}

// Merge appends the batch's genuinely new rows to the table file.
//
// Duplicates - against persisted rows or within the batch - are counted
// and dropped, never errors. An empty batch is a Success no-op. Any I/O
// failure fails only this table.
func (s *CSVStore) Merge(ctx context.Context, table tabmeta.Table) tabmeta.TableReport {
	t := arrange(table, s.opts.Columns[table.Name])

	report := tabmeta.TableReport{
		Table:   t.Name,
		Total:   len(t.Rows),
		Dropped: t.Dropped,
	}

	if err := ctx.Err(); err != nil {
		return failedReport(t, err)
	}

	if len(t.Rows) == 0 {
		report.Status = successStatus(t.Dropped)
		s.logger.Verbose("%s: nothing to write", t.Name)
		return report
	}

	keyIdx, err := t.KeyIndexes()
	if err != nil {
		return failedReport(t, err)
	}

	path := s.FilePath(t.Name)
	existing, exists, err := s.existingKeys(path, t.KeyColumns, keyIdx)
	if err != nil {
		return failedReport(t, err)
	}

	var newRows [][]string
	for _, row := range t.Rows {
		key := rowKey(row, keyIdx)
		if _, dup := existing[key]; dup {
			report.Skipped++
			continue
		}
		existing[key] = struct{}{}
		newRows = append(newRows, row)
	}
	report.New = len(newRows)

	if len(newRows) == 0 {
		report.Status = successStatus(t.Dropped)
		s.logger.Verbose("%s: %d incoming, all already persisted", t.Name, report.Total)
		return report
	}

	if err := s.append(path, t.Columns, newRows, !exists); err != nil {
		report.New = 0
		return failedReport(t, err)
	}

	report.Status = successStatus(t.Dropped)
	s.logger.Verbose("%s: wrote %d of %d rows (%d duplicates skipped)",
		t.Name, report.New, report.Total, report.Skipped)
	return report
}

// existingKeys reads the persisted table and returns the set of keys
// already present. A missing file yields an empty set; a file whose header
// no longer contains the key columns is treated the same, with a warning,
// so a column-order change between runs degrades to re-appending rather
// than failing.
func (s *CSVStore) existingKeys(path string, keyColumns []string, keyIdx []int) (map[string]struct{}, bool, error) {
	keys := make(map[string]struct{})

	if _, err := s.fs.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return keys, false, nil
		}
		return nil, false, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	raw, err := s.fs.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	records, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	if err != nil {
		return nil, false, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return keys, true, nil
	}

	header := records[0]
	idx, ok := headerKeyIndexes(header, keyColumns, keyIdx)
	if !ok {
		s.logger.Warn("%s: header does not contain the key columns; treating existing rows as unkeyed", path)
		return keys, true, nil
	}

	for _, record := range records[1:] {
		if !validRow(record, idx) {
			continue
		}
		keys[rowKey(record, idx)] = struct{}{}
	}
	return keys, true, nil
}

// headerKeyIndexes locates the key columns in a persisted header. When the
// table has no dedicated key columns (pure relations) the incoming key
// indexes are used positionally, provided the widths agree.
func headerKeyIndexes(header, keyColumns []string, incomingIdx []int) ([]int, bool) {
	if len(keyColumns) == 0 {
		for _, idx := range incomingIdx {
			if idx >= len(header) {
				return nil, false
			}
		}
		return incomingIdx, true
	}

	idx := make([]int, 0, len(keyColumns))
	for _, key := range keyColumns {
		found := -1
		for i, col := range header {
			if col == key {
				found = i
				break
			}
		}
		if found < 0 {
			return nil, false
		}
		idx = append(idx, found)
	}
	return idx, true
}

func validRow(record []string, keyIdx []int) bool {
	for _, idx := range keyIdx {
		if idx >= len(record) {
			return false
		}
	}
	return true
}

// append encodes the new rows and appends them to the table file, writing
// the header row only when the file is being created.
func (s *CSVStore) append(path string, columns []string, rows [][]string, withHeader bool) error {
	if err := s.fs.MkdirAll(s.opts.Directory); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", s.opts.Directory, err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if withHeader {
		if err := w.Write(columns); err != nil {
			return fmt.Errorf("failed to encode header: %w", err)
		}
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to encode row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to encode rows: %w", err)
	}

	return s.fs.AppendFile(path, buf.Bytes())
}

// Verify CSVStore implements Store at compile time
var _ Store = (*CSVStore)(nil)
