// Package model defines the records produced by a crawl.
//
// There are two record kinds:
//   - Area: a branch node of the content tree (sub-areas or routes below it)
//   - Route: a leaf node describing a single climb
//
// Both implement Record, which exposes a fixed column order. Sinks use that
// order as table or CSV headers, so changing a field order here changes the
// persisted layout.
//
// Records are plain values. The crawler builds one per node, merges the
// comment thread into it once, and hands it to a sink.
package model
