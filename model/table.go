package model

import (
	"sort"
	"strings"
)

// ExtractedTable is the parsing engine's output for one table region.
type ExtractedTable struct {
	Page     int        // 1-indexed page the region was found on
	Sequence int        // Region sequence number within the page
	Number   int        // 1-indexed position within the document result
	Rows     [][]string // Ordered rows of ordered cell values
}

// RowCount returns the number of rows
func (t *ExtractedTable) RowCount() int {
	return len(t.Rows)
}

// ColCount returns the width of the widest row
func (t *ExtractedTable) ColCount() int {
	cols := 0
	for _, row := range t.Rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	return cols
}

// ToMarkdown converts the table to markdown format. The first row is used
// as the header; short rows are padded with empty cells.
func (t *ExtractedTable) ToMarkdown() string {
	if len(t.Rows) == 0 {
		return ""
	}

	cols := t.ColCount()
	var sb strings.Builder

	writeRow := func(row []string) {
		for j := 0; j < cols; j++ {
			cell := ""
			if j < len(row) {
				cell = markdownCell(row[j])
			}
			sb.WriteString("| ")
			sb.WriteString(cell)
			sb.WriteString(" ")
		}
		sb.WriteString("|\n")
	}

	writeRow(t.Rows[0])
	for j := 0; j < cols; j++ {
		sb.WriteString("|---")
	}
	sb.WriteString("|\n")
	for _, row := range t.Rows[1:] {
		writeRow(row)
	}

	return sb.String()
}

func markdownCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", "\\|")
}

// ToCSV converts the table to CSV format
func (t *ExtractedTable) ToCSV() string {
	var sb strings.Builder
	for _, row := range t.Rows {
		for j, text := range row {
			// Escape quotes and wrap in quotes if necessary
			if strings.ContainsAny(text, ",\"\n") {
				text = "\"" + strings.ReplaceAll(text, "\"", "\"\"") + "\""
			}
			sb.WriteString(text)
			if j < len(row)-1 {
				sb.WriteString(",")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// DocumentResult is the ordered collection of every table extracted from a
// document.
type DocumentResult struct {
	Tables []ExtractedTable
}

// Add appends a table. Call Sort once all pages are in.
func (d *DocumentResult) Add(t ExtractedTable) {
	d.Tables = append(d.Tables, t)
}

// Len returns the number of tables.
func (d *DocumentResult) Len() int {
	return len(d.Tables)
}

// Sort orders the tables by (page, sequence) and renumbers them from 1.
func (d *DocumentResult) Sort() {
	sort.SliceStable(d.Tables, func(i, j int) bool {
		a, b := d.Tables[i], d.Tables[j]
		if a.Page != b.Page {
			return a.Page < b.Page
		}
		return a.Sequence < b.Sequence
	})
	for i := range d.Tables {
		d.Tables[i].Number = i + 1
	}
}

// PageTables returns the tables found on one page.
func (d *DocumentResult) PageTables(page int) []ExtractedTable {
	var out []ExtractedTable
	for _, t := range d.Tables {
		if t.Page == page {
			out = append(out, t)
		}
	}
	return out
}
