package extract

import (
	"github.com/PuerkitoBio/goquery"
)

// ChildLinks holds the absolute child URLs found in an area's navigation.
type ChildLinks struct {
	// Areas are links to sub-areas.
	Areas []string

	// Routes are links to routes.
	Routes []string
}

// Len returns the total number of links.
func (c ChildLinks) Len() int {
	return len(c.Areas) + len(c.Routes)
}

// Both reports whether the page links to sub-areas and routes at once.
func (c ChildLinks) Both() bool {
	return len(c.Areas) > 0 && len(c.Routes) > 0
}

// Children returns the child links of an area page, resolved against the
// page URL. Duplicate links within a region are collapsed.
func Children(doc *Document) ChildLinks {
	return ChildLinks{
		Areas:  doc.links(selAreaLinks),
		Routes: doc.links(selRouteLinks),
	}
}

func (d *Document) links(selector string) []string {
	var out []string
	seen := make(map[string]struct{})
	d.find(selector).Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		abs, ok := d.resolve(href)
		if !ok {
			return
		}
		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}
		out = append(out, abs)
	})
	return out
}
