package transform

import (
	"github.com/vvka-141/tabmeta/internal/catalog"
	"github.com/vvka-141/tabmeta/pkg/tabmeta"
)

// Relation extractors derive the join tables from the same traversal as the
// entity extractors. Rows are emitted in discovery order and use whatever
// ids the document carried - referential integrity is not enforced, so a
// row may reference an entity that was dropped upstream.

// WorkbookDatasources emits one row per workbook/datasource edge, upstream
// and embedded alike. Rows are only emitted when both ids are present.
func (e *Extractor) WorkbookDatasources() tabmeta.Table {
	t := newTable(TableWorkbookDatasources)
	for _, wb := range e.doc.Workbooks {
		for _, ds := range wb.UpstreamDatasources {
			e.appendWorkbookDatasource(&t, wb, ds)
		}
		for _, ds := range wb.EmbeddedDatasources {
			e.appendWorkbookDatasource(&t, wb, ds)
		}
	}
	return t
}

func (e *Extractor) appendWorkbookDatasource(t *tabmeta.Table, wb catalog.Workbook, ds catalog.Datasource) {
	if wb.ID == "" || ds.ID == "" {
		t.Dropped++
		e.logger.Warn("workbook_datasources: dropping edge %q -> %q: missing id", wb.ID, ds.ID)
		return
	}
	t.Rows = append(t.Rows, []string{wb.ID, ds.ID})
}

// WorkbookTags emits one row per workbook/tag edge. The tag id is carried
// as found, even when the tag record itself was dropped for a missing id.
func (e *Extractor) WorkbookTags() tabmeta.Table {
	t := newTable(TableWorkbookTags)
	for _, wb := range e.doc.Workbooks {
		for _, tag := range wb.Tags {
			t.Rows = append(t.Rows, []string{wb.ID, tag.ID})
		}
	}
	return t
}

// WorkbookViews emits one row per workbook/view edge.
func (e *Extractor) WorkbookViews() tabmeta.Table {
	t := newTable(TableWorkbookViews)
	for _, wb := range e.doc.Workbooks {
		for _, v := range wb.Views {
			t.Rows = append(t.Rows, []string{wb.ID, v.ID})
		}
	}
	return t
}

// DatasourceConnections emits one row per datasource/database edge. The
// connection id comes from the run's shared resolver, so it is the same id
// the connection entity extractor emitted for that composite key.
func (e *Extractor) DatasourceConnections() tabmeta.Table {
	t := newTable(TableDatasourceConnections)
	e.walkDatabases(func(ds catalog.Datasource, db catalog.Database) {
		if ds.ID == "" {
			t.Dropped++
			e.logger.Warn("datasource_connections: dropping edge to %q: datasource missing id", db.Name)
			return
		}
		key := ConnectionKey{Name: db.Name, ConnectionType: db.ConnectionType, ConnectsTo: db.Kind()}
		id, _ := e.resolver.ResolveConnection(key)
		t.Rows = append(t.Rows, []string{ds.ID, id})
	})
	return t
}
