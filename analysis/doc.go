// Package analysis pulls invoice fields out of recognised page text.
//
// [Analyze] applies keyword heuristics for Hebrew and English invoices and
// receipts to a block of text: the document type, invoice number, date,
// subtotal, VAT and total, and the lines that look like line items. An
// [Analyzer] reads the text of each page from a [TextSource] and builds a
// [Report] holding the analysis of the whole document and of every page:
//
//	report, status, err := analysis.New(hocr.NewSource(dir)).Run(ctx, []int{1, 2})
//
// A page whose text cannot be read is recorded in the status and skipped.
package analysis
