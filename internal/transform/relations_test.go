package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/tabmeta/internal/catalog"
	"github.com/vvka-141/tabmeta/internal/logging"
)

func TestWorkbookDatasources_CoversBothLists(t *testing.T) {
	ex := newTestExtractor(sampleDocument())

	table := ex.WorkbookDatasources()

	assert.Equal(t, [][]string{
		{"W1", "ds-1"},
		{"W1", "ds-2"},
		{"W2", "ds-3"},
	}, table.Rows)
	assert.Equal(t, 0, table.Dropped)
}

func TestWorkbookDatasources_DropsEdgeMissingEitherID(t *testing.T) {
	doc := &catalog.Document{
		Workbooks: []catalog.Workbook{
			{ID: "", UpstreamDatasources: []catalog.Datasource{{ID: "ds-1"}}},
			{ID: "W2", EmbeddedDatasources: []catalog.Datasource{{ID: ""}}},
			{ID: "W3", UpstreamDatasources: []catalog.Datasource{{ID: "ds-2"}}},
		},
	}
	ex := newTestExtractor(doc)

	table := ex.WorkbookDatasources()

	assert.Equal(t, [][]string{{"W3", "ds-2"}}, table.Rows)
	assert.Equal(t, 2, table.Dropped)
}

func TestWorkbookTags_EmitsOrphanReferences(t *testing.T) {
	// The tag entity without an id is dropped from the tags table, but the
	// relation row is emitted as found.
	ex := newTestExtractor(sampleDocument())

	table := ex.WorkbookTags()

	assert.Equal(t, [][]string{
		{"W1", "t-1"},
		{"W1", ""},
		{"W2", "t-1"},
	}, table.Rows)
	assert.Equal(t, 0, table.Dropped)
}

func TestWorkbookViews_DocumentOrder(t *testing.T) {
	ex := newTestExtractor(sampleDocument())

	table := ex.WorkbookViews()

	assert.Equal(t, [][]string{
		{"W1", "v-1"},
		{"W1", "v-2"},
		{"W2", "v-3"},
	}, table.Rows)
}

func TestDatasourceConnections_SharedResolverIDAgreement(t *testing.T) {
	// Running the connection entity extractor first must not change the ids
	// the relation rows reference: both go through the same resolver.
	resolver := NewIdentityResolver()
	ex := NewExtractor(sampleDocument(), resolver, logging.NewNullLogger(), "2006-01-02 15:04:05")

	connections := ex.Connections()
	relations := ex.DatasourceConnections()

	entityIDs := make(map[string]struct{})
	for _, row := range connections.Rows {
		entityIDs[row[0]] = struct{}{}
	}

	require.Len(t, relations.Rows, 3)
	assert.Equal(t, [][]string{
		{"ds-1", "conn_0"},
		{"ds-2", "conn_0"},
		{"ds-3", "conn_1"},
	}, relations.Rows)
	for _, row := range relations.Rows {
		assert.Contains(t, entityIDs, row[1])
	}
}

func TestDatasourceConnections_NoNewIDsBeyondEntities(t *testing.T) {
	// The relation pass walks the same database nodes as the entity pass,
	// so it must never mint ids the connections table does not have.
	resolver := NewIdentityResolver()
	ex := NewExtractor(sampleDocument(), resolver, logging.NewNullLogger(), "2006-01-02 15:04:05")

	ex.Connections()
	before := resolver.ConnectionCount()
	ex.DatasourceConnections()

	assert.Equal(t, before, resolver.ConnectionCount())
}

func TestDatasourceConnections_DropsEdgeWhenDatasourceUnidentified(t *testing.T) {
	doc := &catalog.Document{
		Workbooks: []catalog.Workbook{
			{
				ID: "W1",
				UpstreamDatasources: []catalog.Datasource{
					{
						ID: "",
						UpstreamDatabases: []catalog.Database{
							{Name: "SalesDB", ConnectionType: "postgres", TypeName: "Database"},
						},
					},
				},
			},
		},
	}
	ex := newTestExtractor(doc)

	table := ex.DatasourceConnections()

	assert.Empty(t, table.Rows)
	assert.Equal(t, 1, table.Dropped)
}
