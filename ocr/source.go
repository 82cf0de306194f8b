package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image/png"

	"github.com/tsawler/tabscan/coords"
	"github.com/tsawler/tabscan/model"
	"github.com/tsawler/tabscan/parser"
	"github.com/tsawler/tabscan/raster"
)

// Source is a parser.WordSource that renders each page and runs Tesseract
// over it.
type Source struct {
	rasterizer raster.Rasterizer
	mapper     coords.Mapper
	language   string
	mode       PageSegMode
}

// NewSource creates a word source. Pages are rendered at the mapper's DPI.
func NewSource(r raster.Rasterizer, mapper coords.Mapper, language string) *Source {
	if language == "" {
		language = "eng"
	}
	return &Source{rasterizer: r, mapper: mapper, language: language, mode: PSM_SPARSE_TEXT}
}

// Words implements parser.WordSource. Word boxes are scaled from the
// rendered raster onto size.
func (s *Source) Words(ctx context.Context, page int, size model.PageSize) ([]parser.Word, error) {
	p, data, err := renderPNG(ctx, s.rasterizer, page, s.mapper.DPI)
	if err != nil {
		return nil, err
	}
	if size.Width <= 0 || size.Height <= 0 {
		size = p.Size
	}
	mapper, err := coords.Fit(p.Width(), size.Width)
	if err != nil {
		return nil, err
	}

	client, err := newClient(s.language, s.mode)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	found, err := client.Words(data)
	if err != nil {
		return nil, err
	}

	words := make([]parser.Word, 0, len(found))
	for _, w := range found {
		words = append(words, parser.Word{
			Text:       w.Text,
			BBox:       mapper.ToPoints(w.BBox, size),
			Confidence: w.Confidence,
		})
	}
	return words, nil
}

// TextSource renders each page and returns Tesseract's plain text for it.
// It serves the invoice analysis in package analysis.
type TextSource struct {
	rasterizer raster.Rasterizer
	dpi        float64
	language   string
}

// NewTextSource creates a text source rendering pages at dpi. language
// takes Tesseract's "+" separated form, such as "heb+eng".
func NewTextSource(r raster.Rasterizer, dpi float64, language string) *TextSource {
	if language == "" {
		language = "eng"
	}
	return &TextSource{rasterizer: r, dpi: dpi, language: language}
}

// Text returns the recognised text of page.
func (s *TextSource) Text(ctx context.Context, page int) (string, error) {
	_, data, err := renderPNG(ctx, s.rasterizer, page, s.dpi)
	if err != nil {
		return "", err
	}

	client, err := newClient(s.language, PSM_AUTO)
	if err != nil {
		return "", err
	}
	defer client.Close()

	return client.RecognizeImage(data)
}

// renderPNG renders page and encodes it for Tesseract.
func renderPNG(ctx context.Context, r raster.Rasterizer, page int, dpi float64) (*model.Page, []byte, error) {
	p, err := r.Render(ctx, page, dpi)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to render page for OCR: %w", err)
	}
	if p == nil || p.Empty() {
		return nil, nil, fmt.Errorf("page %d: %w", page, model.ErrInvalidPage)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, p.Image); err != nil {
		return nil, nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return p, buf.Bytes(), nil
}

func newClient(language string, mode PageSegMode) (*Client, error) {
	client, err := New()
	if err != nil {
		return nil, err
	}
	if err := client.SetLanguage(language); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set language %q: %w", language, err)
	}
	if err := client.SetPageSegMode(mode); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	return client, nil
}
