// Package pipeline orchestrates one extraction run end to end.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vvka-141/tabmeta/internal/catalog"
	"github.com/vvka-141/tabmeta/internal/store"
	"github.com/vvka-141/tabmeta/internal/transform"
	"github.com/vvka-141/tabmeta/pkg/tabmeta"
)

// Runner drives extraction in dependency order - entities before the
// relations that reference them - and merges each table independently, so
// one table's failure never aborts the others.
//
// Thread-Safety: NOT safe for concurrent Run() calls on the same instance;
// the merge store assumes a single writer per table.
type Runner struct {
	store      store.Store
	logger     tabmeta.Logger
	dateFormat string
}

// NewRunner creates a Runner with all dependencies injected. Panics on nil
// dependencies: those are programmer errors that should fail loudly at
// startup rather than surface as nil dereferences mid-run.
func NewRunner(st store.Store, logger tabmeta.Logger, dateFormat string) *Runner {
	if st == nil {
		panic("store cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Runner{
		store:      st,
		logger:     logger,
		dateFormat: dateFormat,
	}
}

// Run extracts every table from the document and merges each into the
// store. The returned report covers every table regardless of individual
// failures; the error is non-nil only when at least one table failed, and
// even then the report is complete.
func (r *Runner) Run(ctx context.Context, doc *catalog.Document) (*tabmeta.RunReport, error) {
	report := &tabmeta.RunReport{
		RunID:   uuid.New(),
		Started: time.Now(),
	}

	r.logger.Verbose("run %s: extracting %d workbooks", report.RunID, len(doc.Workbooks))

	// One resolver per run, shared by entity and relation extraction so
	// synthetic connection ids agree.
	resolver := transform.NewIdentityResolver()
	ex := transform.NewExtractor(doc, resolver, r.logger, r.dateFormat)

	batches := []struct {
		name    string
		extract func() tabmeta.Table
	}{
		{transform.TableOwners, ex.Owners},
		{transform.TableWorkbooks, ex.Workbooks},
		{transform.TableViews, ex.Views},
		{transform.TableDatasources, ex.Datasources},
		{transform.TableConnections, ex.Connections},
		{transform.TableTags, ex.Tags},
		{transform.TableWorkbookDatasources, ex.WorkbookDatasources},
		{transform.TableWorkbookTags, ex.WorkbookTags},
		{transform.TableWorkbookViews, ex.WorkbookViews},
		{transform.TableDatasourceConnections, ex.DatasourceConnections},
	}

	for _, batch := range batches {
		table := batch.extract()
		r.logger.Verbose("%s: extracted %d records", batch.name, len(table.Rows))

		tableReport := r.store.Merge(ctx, table)
		report.Tables = append(report.Tables, tableReport)

		switch tableReport.Status {
		case tabmeta.StatusFailed:
			r.logger.Error("%s: failed: %s", tableReport.Table, tableReport.Error)
		default:
			r.logger.Info("%s: %s (%d new, %d skipped, %d dropped)",
				tableReport.Table, tableReport.Status,
				tableReport.New, tableReport.Skipped, tableReport.Dropped)
		}
	}

	report.Finished = time.Now()

	if report.Status() == tabmeta.StatusFailed {
		return report, tabmeta.ErrRunFailed
	}
	return report, nil
}
