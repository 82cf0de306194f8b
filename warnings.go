package tabscan

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tsawler/tabscan/model"
)

// Warning is a non-fatal problem met during a run: a page that could not be
// rendered or processed, or a region the parsing engine failed on.
type Warning struct {
	Page     int
	Sequence int // 0 for page-scoped warnings
	Kind     model.ErrorKind
	Message  string
}

func (w Warning) String() string {
	if w.Sequence > 0 {
		return fmt.Sprintf("page %d, table %d: %s (%s)", w.Page, w.Sequence, w.Message, w.Kind)
	}
	return fmt.Sprintf("page %d: %s (%s)", w.Page, w.Message, w.Kind)
}

// FormatWarnings joins warnings into a single string, one per line.
func FormatWarnings(warnings []Warning) string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}

// warningsFrom converts the failures recorded in status into warnings.
func warningsFrom(status *model.RunStatus) []Warning {
	if status == nil {
		return nil
	}
	var warnings []Warning
	for _, err := range status.Failures() {
		w := Warning{Message: err.Error()}
		var e *model.Error
		if errors.As(err, &e) {
			w.Page = e.Page
			w.Sequence = e.Sequence
			w.Kind = e.Kind
			if e.Err != nil {
				w.Message = e.Err.Error()
			}
		}
		warnings = append(warnings, w)
	}
	return warnings
}
