package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/tsawler/tabscan/model"
)

// JSONTable is the JSON shape of one extracted table.
type JSONTable struct {
	Page        int        `json:"page"`
	TableNumber int        `json:"table_number"`
	Sequence    int        `json:"sequence"`
	Rows        [][]string `json:"rows"`
}

// WriteJSON writes the tables of result as an indented JSON array. An empty
// result is written as [].
func WriteJSON(w io.Writer, result *model.DocumentResult) error {
	out := make([]JSONTable, 0, result.Len())
	for _, t := range result.Tables {
		out = append(out, JSONTable{
			Page:        t.Page,
			TableNumber: t.Number,
			Sequence:    t.Sequence,
			Rows:        t.Rows,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
