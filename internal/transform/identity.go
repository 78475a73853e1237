package transform

import (
	"sort"
	"strconv"
	"strings"

	"github.com/vvka-141/tabmeta/pkg/tabmeta"
)

// ConnectionKey is the composite identity of a connection. The source
// document carries no stable connection identifier, so identity is the
// tuple of everything that describes the target.
type ConnectionKey struct {
	Name           string
	ConnectionType string
	ConnectsTo     string
}

// IdentityResolver assigns final identity to candidate records within one
// extraction run.
//
// Natural-keyed kinds keep their document id; a second candidate with the
// same id in the same batch is discarded in favor of the first (first-seen
// wins - deduplication, not merge). Keyless kinds (connections) get a
// sequential synthetic id per distinct composite key.
//
// One resolver is constructed per run and passed by reference to every
// extractor that needs it. Nothing here is persisted: synthetic ids are
// only guaranteed stable within a single run. NOT safe for concurrent use.
type IdentityResolver struct {
	seen    map[string]map[string]struct{} // table -> claimed natural ids
	connIDs map[ConnectionKey]string
}

// NewIdentityResolver creates an empty resolver scoped to one run.
func NewIdentityResolver() *IdentityResolver {
	return &IdentityResolver{
		seen:    make(map[string]map[string]struct{}),
		connIDs: make(map[ConnectionKey]string),
	}
}

// Claim records a natural id for the given table. It returns true on first
// sight; false means a candidate with this id was already claimed and the
// caller must discard the new one.
func (r *IdentityResolver) Claim(table, id string) bool {
	ids, ok := r.seen[table]
	if !ok {
		ids = make(map[string]struct{})
		r.seen[table] = ids
	}
	if _, dup := ids[id]; dup {
		return false
	}
	ids[id] = struct{}{}
	return true
}

// ResolveConnection returns the synthetic id for a composite connection
// key, assigning "conn_<n>" on first sight. The boolean reports whether the
// key was newly assigned; only then should a connection record be emitted.
//
// Assignment order is traversal order, so every caller walking the document
// in the same order observes the same ids.
func (r *IdentityResolver) ResolveConnection(key ConnectionKey) (string, bool) {
	if id, ok := r.connIDs[key]; ok {
		return id, false
	}
	id := tabmeta.ConnectionIDPrefix + strconv.Itoa(len(r.connIDs))
	r.connIDs[key] = id
	return id, true
}

// ConnectionCount reports how many distinct composite keys were assigned.
func (r *IdentityResolver) ConnectionCount() int {
	return len(r.connIDs)
}

// SortRows orders surviving entity rows case-insensitively by their name
// column, ties broken by id, so on-disk output is deterministic and
// diffable across runs.
func (r *IdentityResolver) SortRows(t *tabmeta.Table) {
	nameIdx := columnIndex(t.Columns, "name")
	idIdx := columnIndex(t.Columns, "id")
	if nameIdx < 0 || idIdx < 0 {
		return
	}
	sort.SliceStable(t.Rows, func(i, j int) bool {
		ni := strings.ToLower(t.Rows[i][nameIdx])
		nj := strings.ToLower(t.Rows[j][nameIdx])
		if ni != nj {
			return ni < nj
		}
		return t.Rows[i][idIdx] < t.Rows[j][idIdx]
	})
}

func columnIndex(columns []string, name string) int {
	for i, c := range columns {
		if c == name {
			return i
		}
	}
	return -1
}
