package model

import (
	"encoding/json"
	"strconv"
)

// Kind identifies the entity type of a record.
type Kind string

const (
	// KindArea tags Area records.
	KindArea Kind = "area"

	// KindRoute tags Route records.
	KindRoute Kind = "route"
)

// String returns the kind name.
func (k Kind) String() string {
	return string(k)
}

// Record is a completed entity ready for persistence.
// Columns and Values always have the same length and order.
type Record interface {
	// Kind returns the entity type used for routing to a destination.
	Kind() Kind

	// RecordID returns the entity id derived from the URL.
	RecordID() string

	// Columns returns the field names in persisted order.
	Columns() []string

	// Values returns the field values rendered as strings, aligned with Columns.
	Values() []string
}

// Parent carries the linkage a child record inherits from the node that
// discovered it. A node cannot learn its parent's name from its own URL,
// so the crawler passes this down explicitly.
type Parent struct {
	// Name is the parent's display name (h1 text).
	Name string

	// ID is the parent's resolved id.
	ID string

	// URL is the parent's page URL. Empty for the root sentinel.
	URL string
}

// Root parent sentinel values for the seed node.
const (
	RootParentName = "ROOT"
	RootParentID   = "-1"
)

// RootParent returns the sentinel parent assigned to the crawl seed.
func RootParent() Parent {
	return Parent{Name: RootParentName, ID: RootParentID}
}

// formatFloat renders coordinates without trailing zeros.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatIDs renders an id list as a JSON array so it survives a single CSV cell.
func formatIDs(ids []string) string {
	if ids == nil {
		ids = []string{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return "[]"
	}
	return string(b)
}
