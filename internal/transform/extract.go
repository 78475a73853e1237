package transform

import (
	"strings"

	"github.com/vvka-141/tabmeta/internal/catalog"
	"github.com/vvka-141/tabmeta/pkg/tabmeta"
)

// Extractor walks a catalog document and produces normalized table batches.
//
// All extractor methods are side-effect free apart from identity claims on
// the shared resolver; each returns a complete batch ready for the merge
// store. Candidates missing required key material are skipped and counted
// in the batch's Dropped field, never treated as errors.
type Extractor struct {
	doc        *catalog.Document
	resolver   *IdentityResolver
	logger     tabmeta.Logger
	dateFormat string
}

// NewExtractor creates an Extractor over one document. The resolver must be
// the run's shared instance; the same resolver has to be handed to the
// relation extractors or connection ids will not line up.
func NewExtractor(doc *catalog.Document, resolver *IdentityResolver, logger tabmeta.Logger, dateFormat string) *Extractor {
	if doc == nil {
		panic("doc cannot be nil")
	}
	if resolver == nil {
		panic("resolver cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Extractor{
		doc:        doc,
		resolver:   resolver,
		logger:     logger,
		dateFormat: dateFormat,
	}
}

// Owners extracts the owner table. Owners are unique by their natural id;
// an owner without an id is dropped - no synthetic id is ever assigned to
// owners.
func (e *Extractor) Owners() tabmeta.Table {
	t := newTable(TableOwners)
	for _, wb := range e.doc.Workbooks {
		owner := wb.Owner
		if owner.ID == "" {
			t.Dropped++
			e.logger.Warn("owners: dropping owner of workbook %q: missing id", wb.ID)
			continue
		}
		if !e.resolver.Claim(TableOwners, owner.ID) {
			continue
		}
		t.Rows = append(t.Rows, []string{owner.ID, owner.Name, owner.Username, owner.Email})
	}
	e.resolver.SortRows(&t)
	return t
}

// Workbooks extracts the workbook table. owner_id is a weak reference: it
// is emitted as found, even when the referenced owner was dropped.
func (e *Extractor) Workbooks() tabmeta.Table {
	t := newTable(TableWorkbooks)
	for _, wb := range e.doc.Workbooks {
		if wb.ID == "" {
			t.Dropped++
			e.logger.Warn("workbooks: dropping workbook %q: missing id", wb.Name)
			continue
		}
		if !e.resolver.Claim(TableWorkbooks, wb.ID) {
			continue
		}
		t.Rows = append(t.Rows, []string{
			wb.ID,
			wb.Name,
			wb.ProjectName,
			wb.Owner.ID,
			wb.URI,
			formatTimestamp(wb.CreatedAt, e.dateFormat),
			formatTimestamp(wb.UpdatedAt, e.dateFormat),
		})
	}
	e.resolver.SortRows(&t)
	return t
}

// Views extracts the view table.
func (e *Extractor) Views() tabmeta.Table {
	t := newTable(TableViews)
	for _, wb := range e.doc.Workbooks {
		for _, v := range wb.Views {
			if v.ID == "" {
				t.Dropped++
				e.logger.Warn("views: dropping view %q in workbook %q: missing id", v.Name, wb.ID)
				continue
			}
			if !e.resolver.Claim(TableViews, v.ID) {
				continue
			}
			t.Rows = append(t.Rows, []string{
				v.ID,
				wb.ID,
				v.Name,
				v.Path,
				viewType(v.Kind()),
				formatTimestamp(v.CreatedAt, e.dateFormat),
				formatTimestamp(v.UpdatedAt, e.dateFormat),
			})
		}
	}
	e.resolver.SortRows(&t)
	return t
}

// Datasources extracts both upstream and embedded datasources. Embedded
// datasources never carry a uri.
func (e *Extractor) Datasources() tabmeta.Table {
	t := newTable(TableDatasources)
	for _, wb := range e.doc.Workbooks {
		for _, ds := range wb.UpstreamDatasources {
			e.appendDatasource(&t, ds, DatasourceTypeUpstream, ds.URI)
		}
		for _, ds := range wb.EmbeddedDatasources {
			e.appendDatasource(&t, ds, DatasourceTypeEmbedded, "")
		}
	}
	e.resolver.SortRows(&t)
	return t
}

func (e *Extractor) appendDatasource(t *tabmeta.Table, ds catalog.Datasource, dsType, uri string) {
	if ds.ID == "" {
		t.Dropped++
		e.logger.Warn("datasources: dropping %s datasource %q: missing id", dsType, ds.Name)
		return
	}
	if !e.resolver.Claim(TableDatasources, ds.ID) {
		return
	}
	t.Rows = append(t.Rows, []string{
		ds.ID,
		ds.Name,
		uri,
		boolString(ds.HasExtracts),
		formatTimestamp(ds.ExtractLastRefreshTime, e.dateFormat),
		dsType,
		formatTimestamp(ds.CreatedAt, e.dateFormat),
		formatTimestamp(ds.UpdatedAt, e.dateFormat),
	})
}

// Connections extracts the connection table. Connections have no natural
// id; the resolver assigns a synthetic sequential id per distinct
// (name, connection_type, connects_to) tuple, and repeats of the same tuple
// anywhere in the batch collapse to the first record.
func (e *Extractor) Connections() tabmeta.Table {
	t := newTable(TableConnections)
	e.walkDatabases(func(_ catalog.Datasource, db catalog.Database) {
		key := ConnectionKey{Name: db.Name, ConnectionType: db.ConnectionType, ConnectsTo: db.Kind()}
		id, first := e.resolver.ResolveConnection(key)
		if !first {
			return
		}
		t.Rows = append(t.Rows, []string{id, db.Name, db.ConnectionType, db.Kind()})
	})
	e.resolver.SortRows(&t)
	return t
}

// Tags extracts the tag table. Tags missing an id are dropped; relation
// rows referencing them are still emitted downstream (orphans allowed).
func (e *Extractor) Tags() tabmeta.Table {
	t := newTable(TableTags)
	for _, wb := range e.doc.Workbooks {
		for _, tag := range wb.Tags {
			if tag.ID == "" {
				t.Dropped++
				e.logger.Warn("tags: dropping tag %q on workbook %q: missing id", tag.Name, wb.ID)
				continue
			}
			if !e.resolver.Claim(TableTags, tag.ID) {
				continue
			}
			t.Rows = append(t.Rows, []string{tag.ID, tag.Name})
		}
	}
	e.resolver.SortRows(&t)
	return t
}

// walkDatabases visits every database node in document order: per workbook,
// upstream datasources before embedded ones. Entity and relation extraction
// both rely on this order for synthetic id agreement.
func (e *Extractor) walkDatabases(fn func(ds catalog.Datasource, db catalog.Database)) {
	for _, wb := range e.doc.Workbooks {
		for _, ds := range wb.UpstreamDatasources {
			for _, db := range ds.UpstreamDatabases {
				fn(ds, db)
			}
		}
		for _, ds := range wb.EmbeddedDatasources {
			for _, db := range ds.UpstreamDatabases {
				fn(ds, db)
			}
		}
	}
}

func viewType(typeName string) string {
	switch strings.ToLower(typeName) {
	case "dashboard":
		return ViewTypeDashboard
	case "worksheet", "sheet":
		return ViewTypeWorksheet
	default:
		return ViewTypeOther
	}
}
