// Package transform normalizes the nested catalog document into relational
// tables.
//
// Entity extractors walk the workbook graph and emit one batch per entity
// kind (owners, workbooks, views, datasources, connections, tags); relation
// extractors derive the join tables from the same traversal. Identity is
// resolved per run by an IdentityResolver instance shared between entity and
// relation extractors, so synthetic connection ids agree by construction.
//
// Extraction never fails on bad records: candidates missing required key
// material are dropped, counted, and logged. Only the merge store can fail,
// and only per table.
package transform

import (
	"time"

	"github.com/vvka-141/tabmeta/pkg/tabmeta"
)

// Table names. These double as the base file names of persisted tables.
const (
	TableOwners      = "owners"
	TableWorkbooks   = "workbooks"
	TableViews       = "views"
	TableDatasources = "datasources"
	TableConnections = "connections"
	TableTags        = "tags"

	TableWorkbookDatasources   = "workbook_datasources"
	TableWorkbookTags          = "workbook_tags"
	TableWorkbookViews         = "workbook_views"
	TableDatasourceConnections = "datasource_connections"
)

// View type enumeration derived from the node's __typename.
const (
	ViewTypeDashboard = "dashboard"
	ViewTypeWorksheet = "worksheet"
	ViewTypeOther     = "other"
)

// Datasource type enumeration, determined by which document list the node
// came from.
const (
	DatasourceTypeUpstream = "upstream"
	DatasourceTypeEmbedded = "embedded"
)

// tableColumns is the canonical column order per table. The store may
// reorder or subset these through configuration, but extraction always
// produces this shape.
var tableColumns = map[string][]string{
	TableOwners:      {"id", "name", "username", "email"},
	TableWorkbooks:   {"id", "name", "project_name", "owner_id", "uri", "created_at", "updated_at"},
	TableViews:       {"id", "workbook_id", "name", "path", "type", "created_at", "updated_at"},
	TableDatasources: {"id", "name", "uri", "has_extracts", "extract_last_refresh_time", "type", "created_at", "updated_at"},
	TableConnections: {"id", "name", "connection_type", "connects_to"},
	TableTags:        {"id", "name"},

	TableWorkbookDatasources:   {"workbook_id", "datasource_id"},
	TableWorkbookTags:          {"workbook_id", "tag_id"},
	TableWorkbookViews:         {"workbook_id", "view_id"},
	TableDatasourceConnections: {"datasource_id", "connection_id"},
}

// entityKeyColumns marks tables keyed by a single identity column. Relation
// tables are absent: their merge key is the full row.
var entityKeyColumns = map[string][]string{
	TableOwners:      {"id"},
	TableWorkbooks:   {"id"},
	TableViews:       {"id"},
	TableDatasources: {"id"},
	TableConnections: {"id"},
	TableTags:        {"id"},
}

// Columns returns the canonical column order for a table, or nil for an
// unknown table name.
func Columns(table string) []string {
	return tableColumns[table]
}

// KeyColumns returns the identity columns for a table. Nil means the full
// row is the merge key.
func KeyColumns(table string) []string {
	return entityKeyColumns[table]
}

// AllTables lists every table in extraction order: entities first, then the
// relations that reference them.
func AllTables() []string {
	return []string{
		TableOwners,
		TableWorkbooks,
		TableViews,
		TableDatasources,
		TableConnections,
		TableTags,
		TableWorkbookDatasources,
		TableWorkbookTags,
		TableWorkbookViews,
		TableDatasourceConnections,
	}
}

func newTable(name string) tabmeta.Table {
	return tabmeta.Table{
		Name:       name,
		Columns:    tableColumns[name],
		KeyColumns: entityKeyColumns[name],
	}
}

// timestampLayouts are tried in order when reformatting source timestamps.
// The catalog service emits ISO 8601, usually with a trailing Z.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// formatTimestamp reformats a source timestamp using the given layout.
// Unparseable values pass through unchanged rather than aborting the
// record; empty input stays empty.
func formatTimestamp(raw, layout string) string {
	if raw == "" || layout == "" {
		return raw
	}
	for _, l := range timestampLayouts {
		if t, err := time.Parse(l, raw); err == nil {
			return t.UTC().Format(layout)
		}
	}
	return raw
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
