package report

import (
	"bufio"
	"fmt"
	"io"

	"github.com/tsawler/tabscan/model"
)

// WriteMarkdown writes one section per table, separated by rules.
func WriteMarkdown(w io.Writer, result *model.DocumentResult) error {
	bw := bufio.NewWriter(w)
	for _, t := range result.Tables {
		fmt.Fprintf(bw, "## Page: %d, Table: %d\n\n", t.Page, t.Number)
		bw.WriteString(t.ToMarkdown())
		bw.WriteString("\n---\n\n")
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write markdown: %w", err)
	}
	return nil
}
