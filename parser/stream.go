package parser

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/tabscan/model"
)

// Word is a positioned word on a page, in points with a bottom-left origin.
type Word struct {
	Text       string
	BBox       model.BBox
	Confidence float64 // 0-100 for OCR sources, 100 when unknown
}

// WordSource supplies the positioned words of a page. size is the page's
// size in points; sources holding pixel boxes scale them onto it.
type WordSource interface {
	Words(ctx context.Context, page int, size model.PageSize) ([]Word, error)
}

// Config holds stream engine configuration.
type Config struct {
	// Minimum rows for a region to count as a table
	MinRows int

	// Minimum columns for a region to count as a table
	MinCols int

	// Two words share a row when their vertical overlap is at least this
	// fraction of the shorter word's height (0-1)
	RowOverlap float64

	// Minimum horizontal whitespace between columns (points)
	ColumnGap float64

	// Words below this confidence are ignored (0-100)
	MinConfidence float64
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		MinRows:       2,
		MinCols:       2,
		RowOverlap:    0.5,
		ColumnGap:     6.0,
		MinConfidence: 0,
	}
}

// StreamEngine parses tables without relying on ruling lines: rows come from
// vertically overlapping words and columns from vertical runs of whitespace.
// It caches the words of the last page it read and is not safe for
// concurrent use.
type StreamEngine struct {
	source WordSource
	config Config

	cachedPage  int
	cachedWords []Word
}

// NewStreamEngine creates a stream engine reading words from source.
func NewStreamEngine(source WordSource, config Config) *StreamEngine {
	return &StreamEngine{source: source, config: config}
}

// Parse returns the rows of the table inside req.Region, or nil when the
// words there do not form at least MinRows x MinCols.
func (e *StreamEngine) Parse(ctx context.Context, req Request) ([][]string, error) {
	if !req.Region.Mapped() {
		return nil, fmt.Errorf("region %d on page %d has no page-space area", req.Region.Sequence, req.Region.Page)
	}

	words, err := e.pageWords(ctx, req.Region.Page, req.PageSize)
	if err != nil {
		return nil, err
	}

	inside := e.wordsIn(words, req.Region.Area)
	if len(inside) == 0 {
		return nil, nil
	}

	rows := groupRows(inside, e.config.RowOverlap)
	if len(rows) < e.config.MinRows {
		return nil, nil
	}

	cols := columnSpans(inside, e.config.ColumnGap)
	if len(cols) < e.config.MinCols {
		return nil, nil
	}

	return assignCells(rows, cols), nil
}

func (e *StreamEngine) pageWords(ctx context.Context, page int, size model.PageSize) ([]Word, error) {
	if e.cachedWords != nil && e.cachedPage == page {
		return e.cachedWords, nil
	}
	words, err := e.source.Words(ctx, page, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read words for page %d: %w", page, err)
	}
	if words == nil {
		words = []Word{}
	}
	e.cachedPage, e.cachedWords = page, words
	return words, nil
}

func (e *StreamEngine) wordsIn(words []Word, area model.BBox) []Word {
	var out []Word
	for _, w := range words {
		text := norm.NFC.String(strings.TrimSpace(w.Text))
		if text == "" || w.Confidence < e.config.MinConfidence {
			continue
		}
		if !area.Contains(w.BBox.Center()) {
			continue
		}
		w.Text = text
		out = append(out, w)
	}
	return out
}

// groupRows clusters words into rows, top to bottom. Each row is sorted
// left to right.
func groupRows(words []Word, minOverlap float64) [][]Word {
	sorted := make([]Word, len(words))
	copy(sorted, words)

	// Sort by top edge (PDF coordinates: top is larger), then left edge
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].BBox.Top() != sorted[j].BBox.Top() {
			return sorted[i].BBox.Top() > sorted[j].BBox.Top()
		}
		return sorted[i].BBox.Left() < sorted[j].BBox.Left()
	})

	var rows [][]Word
	var top, bottom float64
	for _, w := range sorted {
		if len(rows) > 0 && verticalOverlap(w.BBox, top, bottom) >= minOverlap {
			rows[len(rows)-1] = append(rows[len(rows)-1], w)
			top = math.Max(top, w.BBox.Top())
			bottom = math.Min(bottom, w.BBox.Bottom())
			continue
		}
		rows = append(rows, []Word{w})
		top, bottom = w.BBox.Top(), w.BBox.Bottom()
	}

	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool {
			return row[i].BBox.Left() < row[j].BBox.Left()
		})
	}
	return rows
}

// verticalOverlap returns how much of the word's height overlaps the band
// [bottom, top], as a fraction of the shorter of the two.
func verticalOverlap(b model.BBox, top, bottom float64) float64 {
	overlap := math.Min(b.Top(), top) - math.Max(b.Bottom(), bottom)
	if overlap <= 0 {
		return 0
	}
	shorter := math.Min(b.Height, top-bottom)
	if shorter <= 0 {
		return 1
	}
	return overlap / shorter
}

// span is a horizontal extent occupied by a column.
type span struct {
	left, right float64
}

// columnSpans merges the horizontal extents of all words. Extents closer
// than gap fall into the same column.
func columnSpans(words []Word, gap float64) []span {
	spans := make([]span, len(words))
	for i, w := range words {
		spans[i] = span{w.BBox.Left(), w.BBox.Right()}
	}
	sort.Slice(spans, func(i, j int) bool {
		return spans[i].left < spans[j].left
	})

	merged := []span{spans[0]}
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s.left-last.right < gap {
			last.right = math.Max(last.right, s.right)
		} else {
			merged = append(merged, s)
		}
	}
	return merged
}

// assignCells places each word in the column whose span holds its centre
// and joins words sharing a cell with spaces.
func assignCells(rows [][]Word, cols []span) [][]string {
	table := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([][]string, len(cols))
		for _, w := range row {
			c := columnOf(w.BBox.Center().X, cols)
			cells[c] = append(cells[c], w.Text)
		}
		table[i] = make([]string, len(cols))
		for c, parts := range cells {
			table[i][c] = strings.Join(parts, " ")
		}
	}
	return table
}

func columnOf(x float64, cols []span) int {
	best, bestDist := 0, math.Inf(1)
	for i, c := range cols {
		if x >= c.left && x <= c.right {
			return i
		}
		d := math.Min(math.Abs(x-c.left), math.Abs(x-c.right))
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
