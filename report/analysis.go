package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tsawler/tabscan/analysis"
)

// AnalysisFile is the name of the invoice analysis report.
const AnalysisFile = "structured_document_with_pages.json"

// WriteAnalysis writes the analysis report as indented JSON. Non-ASCII text
// such as Hebrew is written as UTF-8, not escaped.
func WriteAnalysis(w io.Writer, r *analysis.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode analysis: %w", err)
	}
	return nil
}

// WriteAnalysisFile writes the analysis report to dir/AnalysisFile and
// returns its path.
func WriteAnalysisFile(dir string, r *analysis.Report) (string, error) {
	path := filepath.Join(dir, AnalysisFile)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteAnalysis(f, r); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}
