package model

// ChildType classifies what an area contains.
type ChildType string

const (
	// ChildNone marks an area with no children.
	ChildNone ChildType = "none"

	// ChildArea marks an area containing sub-areas.
	ChildArea ChildType = "area"

	// ChildRoute marks an area containing routes.
	ChildRoute ChildType = "route"
)

// String returns the child type name.
func (c ChildType) String() string {
	return string(c)
}

// ClassifyChildren derives the child type from the number of sub-area and
// route links found on an area page. Sub-areas win when both are present;
// callers are expected to flag that case as an anomaly.
func ClassifyChildren(areaLinks, routeLinks int) ChildType {
	switch {
	case areaLinks > 0:
		return ChildArea
	case routeLinks > 0:
		return ChildRoute
	default:
		return ChildNone
	}
}

// Area is a branch node of the content tree.
type Area struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Comment     string    `json:"comment"`
	Longitude   float64   `json:"longitude"`
	Latitude    float64   `json:"latitude"`
	URL         string    `json:"url"`
	ChildType   ChildType `json:"child_type"`
	ChildIDs    []string  `json:"child_ids"`
	ParentName  string    `json:"parent_name"`
	ParentID    string    `json:"parent_id"`
}

// areaColumns is the persisted field order for areas.
var areaColumns = []string{
	"id",
	"name",
	"description",
	"comment",
	"longitude",
	"latitude",
	"url",
	"child_type",
	"child_ids",
	"parent_name",
	"parent_id",
}

// AreaColumns returns the persisted field order for areas.
func AreaColumns() []string {
	return append([]string(nil), areaColumns...)
}

// Kind implements Record.
func (a Area) Kind() Kind { return KindArea }

// RecordID implements Record.
func (a Area) RecordID() string { return a.ID }

// Columns implements Record.
func (a Area) Columns() []string { return AreaColumns() }

// Values implements Record.
func (a Area) Values() []string {
	return []string{
		a.ID,
		a.Name,
		a.Description,
		a.Comment,
		formatFloat(a.Longitude),
		formatFloat(a.Latitude),
		a.URL,
		a.ChildType.String(),
		formatIDs(a.ChildIDs),
		a.ParentName,
		a.ParentID,
	}
}

// WithComment returns a copy of a with the comment thread merged in.
func (a Area) WithComment(comment string) Area {
	a.Comment = comment
	a.ChildIDs = append([]string(nil), a.ChildIDs...)
	return a
}
