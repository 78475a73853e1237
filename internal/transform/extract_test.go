package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/tabmeta/internal/catalog"
	"github.com/vvka-141/tabmeta/internal/logging"
	"github.com/vvka-141/tabmeta/pkg/tabmeta"
)

// sampleDocument covers the interesting shapes in one graph: duplicate
// owners and tags across workbooks, a repeated database reference, an
// embedded datasource, and candidates with missing key material.
func sampleDocument() *catalog.Document {
	return &catalog.Document{
		Workbooks: []catalog.Workbook{
			{
				ID:          "W1",
				Name:        "Sales Overview",
				ProjectName: "Finance",
				URI:         "sites/1/workbooks/1",
				Owner:       catalog.Owner{ID: "u-1", Name: "Ada", Username: "ada", Email: "ada@example.com"},
				CreatedAt:   "2024-03-01T10:00:00Z",
				UpdatedAt:   "2024-03-02T10:00:00Z",
				Views: []catalog.View{
					{ID: "v-1", Name: "Revenue", Path: "sales/revenue", TypeName: "Dashboard"},
					{ID: "v-2", Name: "Detail", Path: "sales/detail", TypeName: "Worksheet"},
				},
				UpstreamDatasources: []catalog.Datasource{
					{
						ID:                     "ds-1",
						Name:                   "Sales Data",
						URI:                    "datasources/ds-1",
						HasExtracts:            true,
						ExtractLastRefreshTime: "2024-03-01T04:00:00Z",
						UpstreamDatabases: []catalog.Database{
							{Name: "SalesDB", ConnectionType: "PostgreSQL", TypeName: "Database"},
						},
					},
					{
						ID:   "ds-2",
						Name: "Sales Data v2",
						URI:  "datasources/ds-2",
						UpstreamDatabases: []catalog.Database{
							{Name: "SalesDB", ConnectionType: "PostgreSQL", TypeName: "Database"},
						},
					},
				},
				Tags: []catalog.Tag{
					{ID: "t-1", Name: "finance"},
					{Name: "untracked"}, // missing id, dropped
				},
			},
			{
				ID:    "W2",
				Name:  "HR Dashboard",
				Owner: catalog.Owner{Name: "Nameless"}, // missing id, dropped
				Views: []catalog.View{
					{ID: "v-3", Name: "Headcount", TypeName: "CustomView"},
				},
				EmbeddedDatasources: []catalog.Datasource{
					{
						ID:   "ds-3",
						Name: "HR Data",
						URI:  "should-be-ignored",
						UpstreamDatabases: []catalog.Database{
							{Name: "HRDB", ConnectionType: "MySQL", TypeName: "Database"},
						},
					},
				},
				Tags: []catalog.Tag{
					{ID: "t-1", Name: "finance"}, // duplicate across workbooks
				},
			},
		},
	}
}

func newTestExtractor(doc *catalog.Document) *Extractor {
	return NewExtractor(doc, NewIdentityResolver(), logging.NewNullLogger(), "2006-01-02 15:04:05")
}

func TestOwners_DedupAndDrop(t *testing.T) {
	ex := newTestExtractor(sampleDocument())

	table := ex.Owners()

	require.Len(t, table.Rows, 1)
	assert.Equal(t, []string{"u-1", "Ada", "ada", "ada@example.com"}, table.Rows[0])
	assert.Equal(t, 1, table.Dropped, "owner without id must be dropped, not synthesized")
}

func TestWorkbooks_FieldsAndWeakOwnerReference(t *testing.T) {
	ex := newTestExtractor(sampleDocument())

	table := ex.Workbooks()

	require.Len(t, table.Rows, 2)
	// Sorted case-insensitively by name: "HR Dashboard" before "Sales Overview"
	assert.Equal(t, "W2", table.Rows[0][0])
	assert.Equal(t, []string{
		"W1", "Sales Overview", "Finance", "u-1", "sites/1/workbooks/1",
		"2024-03-01 10:00:00", "2024-03-02 10:00:00",
	}, table.Rows[1])
	// W2's owner was dropped but the weak reference column is simply empty
	assert.Equal(t, "", table.Rows[0][3])
}

func TestWorkbooks_DuplicateIDFirstSeenWins(t *testing.T) {
	doc := &catalog.Document{
		Workbooks: []catalog.Workbook{
			{ID: "W1", Name: "first"},
			{ID: "W1", Name: "second"},
		},
	}
	ex := newTestExtractor(doc)

	table := ex.Workbooks()

	require.Len(t, table.Rows, 1)
	assert.Equal(t, "first", table.Rows[0][1], "later candidate with same id is discarded, not merged")
	assert.Equal(t, 0, table.Dropped, "in-batch duplicate is a dedup, not a drop")
}

func TestViews_TypeMapping(t *testing.T) {
	ex := newTestExtractor(sampleDocument())

	table := ex.Views()

	require.Len(t, table.Rows, 3)
	types := make(map[string]string)
	for _, row := range table.Rows {
		types[row[0]] = row[4]
	}
	assert.Equal(t, ViewTypeDashboard, types["v-1"])
	assert.Equal(t, ViewTypeWorksheet, types["v-2"])
	assert.Equal(t, ViewTypeOther, types["v-3"])
}

func TestDatasources_UpstreamAndEmbedded(t *testing.T) {
	ex := newTestExtractor(sampleDocument())

	table := ex.Datasources()

	require.Len(t, table.Rows, 3)
	byID := make(map[string][]string)
	for _, row := range table.Rows {
		byID[row[0]] = row
	}

	upstream := byID["ds-1"]
	assert.Equal(t, "datasources/ds-1", upstream[2])
	assert.Equal(t, "true", upstream[3])
	assert.Equal(t, "2024-03-01 04:00:00", upstream[4])
	assert.Equal(t, DatasourceTypeUpstream, upstream[5])

	embedded := byID["ds-3"]
	assert.Equal(t, "", embedded[2], "embedded datasources never carry a uri")
	assert.Equal(t, "false", embedded[3])
	assert.Equal(t, DatasourceTypeEmbedded, embedded[5])
}

func TestConnections_CompositeKeyDedup(t *testing.T) {
	// Two datasources in one workbook both reference SalesDB/PostgreSQL/
	// Database; the whole batch must collapse to one conn_0 record.
	ex := newTestExtractor(sampleDocument())

	table := ex.Connections()

	require.Len(t, table.Rows, 2)
	byID := make(map[string][]string)
	for _, row := range table.Rows {
		byID[row[0]] = row
	}
	assert.Equal(t, []string{"conn_0", "SalesDB", "PostgreSQL", "Database"}, byID["conn_0"])
	assert.Equal(t, []string{"conn_1", "HRDB", "MySQL", "Database"}, byID["conn_1"])
}

func TestTags_DropMissingIDAndDedup(t *testing.T) {
	ex := newTestExtractor(sampleDocument())

	table := ex.Tags()

	require.Len(t, table.Rows, 1)
	assert.Equal(t, []string{"t-1", "finance"}, table.Rows[0])
	assert.Equal(t, 1, table.Dropped)
}

func TestFormatTimestamp_FallbackKeepsRawValue(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"rfc3339", "2024-03-01T10:00:00Z", "2024-03-01 10:00:00"},
		{"offset zone", "2024-03-01T10:00:00+02:00", "2024-03-01 08:00:00"},
		{"no zone", "2024-03-01T10:00:00", "2024-03-01 10:00:00"},
		{"unparseable", "last tuesday", "last tuesday"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatTimestamp(tt.raw, "2006-01-02 15:04:05"))
		})
	}
}

func TestExtraction_OrderDeterminism(t *testing.T) {
	// Same input, byte-identical output order across repeated runs.
	var previous tabmeta.Table
	for i := 0; i < 3; i++ {
		table := newTestExtractor(sampleDocument()).Datasources()
		if i > 0 {
			assert.Equal(t, previous.Rows, table.Rows)
		}
		previous = table
	}
}
