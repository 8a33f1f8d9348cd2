package extract

import (
	"github.com/nao1215/cragscan/internal/identity"
	"github.com/nao1215/cragscan/internal/model"
)

// AreaPage is everything read from an area page before its comments are
// merged.
type AreaPage struct {
	// Area is the record with an empty Comment.
	Area model.Area

	// Links are the child links in discovery order.
	Links ChildLinks

	// Unresolved lists child links whose id could not be derived.
	// They are left out of Area.ChildIDs.
	Unresolved []string

	// Description reports heading/body pairing for the description.
	Description DescriptionStats
}

// ExtractArea builds an area record from its page. id is the identity
// resolved from the page URL, and parent is the node that discovered it.
func ExtractArea(doc *Document, id string, parent model.Parent) (AreaPage, error) {
	name, err := Name(doc)
	if err != nil {
		return AreaPage{}, err
	}
	lat, long, err := Coordinates(doc)
	if err != nil {
		return AreaPage{}, err
	}
	desc, stats := Description(doc)
	links := Children(doc)

	childIDs := make([]string, 0, links.Len())
	var unresolved []string
	for _, link := range append(append([]string(nil), links.Areas...), links.Routes...) {
		ident, err := identity.Resolve(link)
		if err != nil {
			unresolved = append(unresolved, link)
			continue
		}
		childIDs = append(childIDs, ident.ID)
	}

	return AreaPage{
		Area: model.Area{
			ID:          id,
			Name:        name,
			Description: desc,
			Latitude:    lat,
			Longitude:   long,
			URL:         doc.URL(),
			ChildType:   model.ClassifyChildren(len(links.Areas), len(links.Routes)),
			ChildIDs:    childIDs,
			ParentName:  parent.Name,
			ParentID:    parent.ID,
		},
		Links:       links,
		Unresolved:  unresolved,
		Description: stats,
	}, nil
}

// RoutePage is everything read from a route page before its comments are
// merged.
type RoutePage struct {
	// Route is the record with an empty Comment.
	Route model.Route

	// Description reports heading/body pairing for the description.
	Description DescriptionStats
}

// ExtractRoute builds a route record from its page.
func ExtractRoute(doc *Document, id string, parent model.Parent) (RoutePage, error) {
	name, err := Name(doc)
	if err != nil {
		return RoutePage{}, err
	}
	attrs := RouteAttributes(doc)
	desc, stats := Description(doc)

	return RoutePage{
		Route: model.Route{
			ID:              id,
			Name:            name,
			Grade:           Grades(doc),
			Type:            attrs.Types,
			Length:          attrs.Length,
			Pitch:           attrs.Pitch,
			CommitmentGrade: attrs.CommitmentGrade,
			Protection:      Protection(doc),
			UserRating:      UserRating(doc, id),
			Description:     desc,
			URL:             doc.URL(),
			ParentName:      parent.Name,
			ParentID:        parent.ID,
		},
		Description: stats,
	}, nil
}
