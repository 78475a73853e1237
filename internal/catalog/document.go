// Package catalog defines the raw nested document returned by the catalog
// service and its decoding.
//
// The document is a JSON export of the Tableau metadata GraphQL API. It is
// treated as untrusted input: optional fields may be absent, identifiers may
// be missing, and references may dangle. The only hard requirement is the
// top-level shape - a list of workbook nodes, either bare or wrapped in the
// GraphQL response envelope:
//
//	{ "workbooks": [ ... ] }
//	{ "data": { "workbooks": [ ... ] } }
//
// Everything below the workbook list is normalized downstream by the
// transform package; this package only mirrors the wire shape.
package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/vvka-141/tabmeta/pkg/tabmeta"
)

// Owner is the user node embedded in a workbook.
type Owner struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// View is a sheet or dashboard belonging to a workbook. Exports spell the
// type discriminator either as the raw GraphQL "__typename" or as a plain
// "type" field; both are accepted, "__typename" wins.
type View struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Path      string `json:"path"`
	TypeName  string `json:"__typename"`
	Type      string `json:"type"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// Kind returns the view's type discriminator, whichever spelling the
// export used.
func (v View) Kind() string {
	if v.TypeName != "" {
		return v.TypeName
	}
	return v.Type
}

// Database is the connection target nested under a datasource.
// It carries no stable identifier of its own; identity is derived from
// (name, connection type, target category) by the identity resolver.
// The category is spelled "__typename" or "typeCategory" depending on the
// export; both are accepted, "__typename" wins.
type Database struct {
	Name           string `json:"name"`
	ConnectionType string `json:"connectionType"`
	TypeName       string `json:"__typename"`
	TypeCategory   string `json:"typeCategory"`
}

// Kind returns the category of the connection target, whichever spelling
// the export used.
func (d Database) Kind() string {
	if d.TypeName != "" {
		return d.TypeName
	}
	return d.TypeCategory
}

// Datasource is a published (upstream) or embedded data source node.
type Datasource struct {
	ID                     string     `json:"id"`
	Name                   string     `json:"name"`
	URI                    string     `json:"uri"`
	HasExtracts            bool       `json:"hasExtracts"`
	ExtractLastRefreshTime string     `json:"extractLastRefreshTime"`
	UpstreamDatabases      []Database `json:"upstreamDatabases"`
	CreatedAt              string     `json:"createdAt"`
	UpdatedAt              string     `json:"updatedAt"`
}

// Tag is a label attached to a workbook.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Workbook is the root entity of the nested document.
type Workbook struct {
	ID                  string       `json:"id"`
	Name                string       `json:"name"`
	ProjectName         string       `json:"projectName"`
	URI                 string       `json:"uri"`
	Owner               Owner        `json:"owner"`
	Views               []View       `json:"views"`
	UpstreamDatasources []Datasource `json:"upstreamDatasources"`
	EmbeddedDatasources []Datasource `json:"embeddedDatasources"`
	Tags                []Tag        `json:"tags"`
	CreatedAt           string       `json:"createdAt"`
	UpdatedAt           string       `json:"updatedAt"`
}

// Document is the traversable collection of workbook nodes.
type Document struct {
	Workbooks []Workbook
}

// envelope matches both accepted top-level shapes. Pointer fields
// distinguish "absent" from "present but empty".
type envelope struct {
	Data *struct {
		Workbooks *[]Workbook `json:"workbooks"`
	} `json:"data"`
	Workbooks *[]Workbook `json:"workbooks"`
}

// Parse decodes a raw catalog export into a Document.
//
// Both the bare shape and the GraphQL envelope are accepted; when both are
// present the envelope wins. A document carrying neither shape, or invalid
// JSON, fails with tabmeta.ErrMalformedDocument - this is fatal for the
// whole run, not table-scoped.
func Parse(raw []byte) (*Document, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", tabmeta.ErrMalformedDocument, err)
	}

	switch {
	case env.Data != nil && env.Data.Workbooks != nil:
		return &Document{Workbooks: *env.Data.Workbooks}, nil
	case env.Workbooks != nil:
		return &Document{Workbooks: *env.Workbooks}, nil
	}

	return nil, fmt.Errorf("%w: no workbooks collection at top level", tabmeta.ErrMalformedDocument)
}
