package model

import "image"

// PageSize is the size of a page in points (1/72 inch).
type PageSize struct {
	Width  float64
	Height float64
}

// Page represents a single rendered page of a source document.
type Page struct {
	Number int         // 1-indexed page number
	Image  image.Image // Raster produced by the rasterizer
	DPI    float64     // Resolution the raster was rendered at
	Size   PageSize    // Page size in points
}

// NewPage creates a page for a raster rendered at dpi. The point size is
// derived from the pixel dimensions.
func NewPage(number int, img image.Image, dpi float64) *Page {
	p := &Page{Number: number, Image: img, DPI: dpi}
	if img != nil && dpi > 0 {
		b := img.Bounds()
		p.Size = PageSize{
			Width:  float64(b.Dx()) * 72 / dpi,
			Height: float64(b.Dy()) * 72 / dpi,
		}
	}
	return p
}

// Width returns the raster width in pixels.
func (p *Page) Width() int {
	if p == nil || p.Image == nil {
		return 0
	}
	return p.Image.Bounds().Dx()
}

// Height returns the raster height in pixels.
func (p *Page) Height() int {
	if p == nil || p.Image == nil {
		return 0
	}
	return p.Image.Bounds().Dy()
}

// Empty reports whether the page has no pixels to work with.
func (p *Page) Empty() bool {
	return p.Width() <= 0 || p.Height() <= 0
}
