// Package report writes extraction results and debug images to disk.
//
// Tables are written in the order of the [model.DocumentResult]:
//
//   - [WriteJSON] - an array of {page, table_number, sequence, rows}
//   - [WriteMarkdown] - one "## Page: N, Table: M" section per table
//   - [WriteXLSX] - one worksheet per table
//
// [WriteAnalysis] writes the invoice analysis of package analysis as
// structured_document_with_pages.json.
//
// [SavePNG] and the [PagePath] / [OverlayPath] helpers store page rasters
// and detection overlays next to the reports.
package report
