package hocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tsawler/tabscan/coords"
	"github.com/tsawler/tabscan/model"
	"github.com/tsawler/tabscan/parser"
)

// DefaultPattern names per-page hOCR files, matching the page_N.png files
// written for each rendered page.
const DefaultPattern = "page_%d.hocr"

// ErrNoPageBBox is returned for an ocr_page without a bbox, whose words
// cannot be placed on the page.
var ErrNoPageBBox = errors.New("ocr_page has no bbox")

// Source serves words and text from one hOCR file per page. The hOCR may come from a
// raster of any resolution: word boxes are scaled by the ratio between the
// ocr_page bbox and the page size in points.
type Source struct {
	dir     string
	pattern string
}

// NewSource creates a word source reading dir/page_N.hocr.
func NewSource(dir string) *Source {
	return &Source{dir: dir, pattern: DefaultPattern}
}

// WithPattern returns a copy of s using a different file name pattern. The
// pattern receives the 1-indexed page number.
func (s *Source) WithPattern(pattern string) *Source {
	c := *s
	c.pattern = pattern
	return &c
}

// Words implements parser.WordSource.
func (s *Source) Words(ctx context.Context, page int, size model.PageSize) ([]parser.Word, error) {
	p, path, err := s.read(ctx, page)
	if err != nil {
		return nil, err
	}
	words, err := PageWords(p, size)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return words, nil
}

// Text returns the recognised text of page, one line per hOCR line.
func (s *Source) Text(ctx context.Context, page int) (string, error) {
	p, _, err := s.read(ctx, page)
	if err != nil {
		return "", err
	}
	return p.Text(), nil
}

// read parses the first ocr_page of the file for page.
func (s *Source) read(ctx context.Context, page int) (Page, string, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, "", err
	}

	path := filepath.Join(s.dir, fmt.Sprintf(s.pattern, page))
	data, err := os.ReadFile(path)
	if err != nil {
		return Page{}, path, fmt.Errorf("failed to read hOCR: %w", err)
	}

	doc, err := Parse(data)
	if err != nil {
		return Page{}, path, fmt.Errorf("%s: %w", path, err)
	}
	return doc.Pages[0], path, nil
}

// PageWords converts the pixel boxes of a page's words to points on a page
// of the given size.
func PageWords(p Page, size model.PageSize) ([]parser.Word, error) {
	if p.BBox.Empty() {
		return nil, ErrNoPageBBox
	}
	mapper, err := coords.Fit(p.BBox.W, size.Width)
	if err != nil {
		return nil, err
	}

	words := make([]parser.Word, 0, len(p.Words))
	for _, w := range p.Words {
		box := w.BBox
		box.X -= p.BBox.X
		box.Y -= p.BBox.Y
		words = append(words, parser.Word{
			Text:       w.Text,
			BBox:       mapper.ToPoints(box, size),
			Confidence: w.Confidence,
		})
	}
	return words, nil
}
