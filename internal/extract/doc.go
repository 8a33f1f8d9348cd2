// Package extract turns fetched pages into typed record fields.
//
// All markup assumptions live here: selectors are declared in selectors.go
// and read through the Document accessors, so a change in site markup is a
// local edit to this package.
//
// # Required and optional fields
//
// Most fields are optional and an absent element yields a documented empty
// or default value:
//   - grades: every system present, nil when not shown
//   - type/length/commitment: empty string
//   - pitch: 1
//   - protection, user rating, description, comments: empty string
//
// Only structurally required elements fail extraction with ErrMalformedPage:
// the page title (h1) for every page and the GPS row for areas.
package extract
