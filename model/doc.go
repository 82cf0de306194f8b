// Package model provides the data types shared by every stage of table
// region detection and extraction.
//
// # Pages
//
// A [Page] is one rendered page: its 1-indexed number, the raster image, the
// DPI it was rendered at, and its size in points ([PageSize]).
//
// # Geometry
//
// Two coordinate systems are in play:
//
//   - [Rect] - integer pixel boxes with a top-left origin (raster space)
//   - [BBox] - float boxes in points with a bottom-left origin (page space)
//
// # Regions and Tables
//
// A [TableRegion] is a detected table box, identified by its page number and
// a 1-based sequence number in reading order. The pair is carried unchanged
// into the [ExtractedTable] produced from it, and all tables of a document
// are collected, in (page, sequence) order, into a [DocumentResult]:
//
//	result.Sort()
//	for _, t := range result.Tables {
//	    fmt.Printf("page %d table %d\n%s", t.Page, t.Sequence, t.ToMarkdown())
//	}
//
// # Status
//
// Failures never abort a document. They are recorded as [PageStatus] and
// [RegionStatus] entries in a [RunStatus], kept separate from the result.
// Failure causes are [*Error] values tagged with an [ErrorKind].
package model
