package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/tabmeta/pkg/tabmeta"
)

func TestClaim_FirstSeenWins(t *testing.T) {
	r := NewIdentityResolver()

	assert.True(t, r.Claim(TableWorkbooks, "wb-1"))
	assert.False(t, r.Claim(TableWorkbooks, "wb-1"))
	assert.True(t, r.Claim(TableWorkbooks, "wb-2"))

	// Claims are scoped per table
	assert.True(t, r.Claim(TableViews, "wb-1"))
}

func TestResolveConnection_SequentialAssignment(t *testing.T) {
	r := NewIdentityResolver()

	sales := ConnectionKey{Name: "SalesDB", ConnectionType: "postgres", ConnectsTo: "Database"}
	hr := ConnectionKey{Name: "HRDB", ConnectionType: "mysql", ConnectsTo: "Database"}

	id, first := r.ResolveConnection(sales)
	assert.Equal(t, "conn_0", id)
	assert.True(t, first)

	id, first = r.ResolveConnection(hr)
	assert.Equal(t, "conn_1", id)
	assert.True(t, first)

	// Repeat of the same composite key reuses the assigned id
	id, first = r.ResolveConnection(sales)
	assert.Equal(t, "conn_0", id)
	assert.False(t, first)

	assert.Equal(t, 2, r.ConnectionCount())
}

func TestResolveConnection_DistinctKeysDistinctIDs(t *testing.T) {
	r := NewIdentityResolver()

	a, _ := r.ResolveConnection(ConnectionKey{Name: "db", ConnectionType: "postgres", ConnectsTo: "Database"})
	b, _ := r.ResolveConnection(ConnectionKey{Name: "db", ConnectionType: "mysql", ConnectsTo: "Database"})
	c, _ := r.ResolveConnection(ConnectionKey{Name: "db", ConnectionType: "postgres", ConnectsTo: "Table"})

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, b, c)
}

func TestSortRows_CaseInsensitiveByNameThenID(t *testing.T) {
	r := NewIdentityResolver()
	table := tabmeta.Table{
		Columns: []string{"id", "name"},
		Rows: [][]string{
			{"3", "zeta"},
			{"2", "Alpha"},
			{"1", "alpha"},
			{"4", "Beta"},
		},
	}

	r.SortRows(&table)

	require.Len(t, table.Rows, 4)
	// "Alpha"/"alpha" tie on name; id breaks the tie
	assert.Equal(t, [][]string{
		{"1", "alpha"},
		{"2", "Alpha"},
		{"4", "Beta"},
		{"3", "zeta"},
	}, table.Rows)
}

func TestSortRows_Deterministic(t *testing.T) {
	rows := [][]string{
		{"b", "same"},
		{"a", "same"},
		{"c", "other"},
	}

	var outputs [][][]string
	for i := 0; i < 3; i++ {
		table := tabmeta.Table{Columns: []string{"id", "name"}}
		for _, row := range rows {
			table.Rows = append(table.Rows, append([]string(nil), row...))
		}
		NewIdentityResolver().SortRows(&table)
		outputs = append(outputs, table.Rows)
	}

	assert.Equal(t, outputs[0], outputs[1])
	assert.Equal(t, outputs[1], outputs[2])
}

func TestSortRows_NoNameColumnIsNoOp(t *testing.T) {
	r := NewIdentityResolver()
	table := tabmeta.Table{
		Columns: []string{"workbook_id", "tag_id"},
		Rows:    [][]string{{"b", "2"}, {"a", "1"}},
	}

	r.SortRows(&table)

	assert.Equal(t, [][]string{{"b", "2"}, {"a", "1"}}, table.Rows)
}
