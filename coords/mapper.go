// Package coords converts between raster pixels and page points.
//
// Rasters have their origin at the top-left and are measured in pixels at
// the render DPI. Parsing engines that read the source document work in PDF
// points (1/72 inch) with the origin at the bottom-left. A [Mapper] must be
// built from the same DPI the rasterizer rendered at, or every region comes
// out shifted and scaled.
package coords

import (
	"fmt"
	"math"

	"github.com/tsawler/tabscan/model"
)

// PointsPerInch is the PDF user space unit.
const PointsPerInch = 72.0

// Mapper converts boxes between pixel and point space for one DPI.
type Mapper struct {
	DPI float64
}

// New creates a Mapper for rasters rendered at dpi.
func New(dpi float64) (Mapper, error) {
	if dpi <= 0 || math.IsNaN(dpi) || math.IsInf(dpi, 0) {
		return Mapper{}, fmt.Errorf("invalid DPI %v", dpi)
	}
	return Mapper{DPI: dpi}, nil
}

// Fit returns the Mapper that stretches a raster widthPx pixels wide across
// a page width points wide. Word sources use it for pixel boxes measured on
// a raster of unknown DPI, such as the one an hOCR file was made from.
func Fit(widthPx int, width float64) (Mapper, error) {
	if widthPx <= 0 {
		return Mapper{}, fmt.Errorf("invalid raster width %d", widthPx)
	}
	if width <= 0 {
		return Mapper{}, fmt.Errorf("invalid page width %v", width)
	}
	return New(float64(widthPx) * PointsPerInch / width)
}

// Scale returns the number of points per pixel.
func (m Mapper) Scale() float64 {
	return PointsPerInch / m.DPI
}

// PageSize returns the point size of a widthPx x heightPx raster.
func (m Mapper) PageSize(widthPx, heightPx int) model.PageSize {
	s := m.Scale()
	return model.PageSize{Width: float64(widthPx) * s, Height: float64(heightPx) * s}
}

// ToPoints converts a pixel box to a page-space box.
func (m Mapper) ToPoints(r model.Rect, page model.PageSize) model.BBox {
	s := m.Scale()
	return model.BBox{
		X:      float64(r.X) * s,
		Y:      page.Height - float64(r.Bottom())*s,
		Width:  float64(r.W) * s,
		Height: float64(r.H) * s,
	}
}

// ToPixels converts a page-space box back to pixels, rounding each edge to
// the nearest pixel.
func (m Mapper) ToPixels(b model.BBox, page model.PageSize) model.Rect {
	inv := m.DPI / PointsPerInch
	left := math.Round(b.Left() * inv)
	right := math.Round(b.Right() * inv)
	top := math.Round((page.Height - b.Top()) * inv)
	bottom := math.Round((page.Height - b.Bottom()) * inv)
	return model.Rect{
		X: int(left),
		Y: int(top),
		W: int(right - left),
		H: int(bottom - top),
	}
}

// Map fills in the page-space area of a region. Page and sequence are left
// untouched.
func (m Mapper) Map(region model.TableRegion, page model.PageSize) model.TableRegion {
	region.Area = m.ToPoints(region.Box, page)
	return region
}

// MapAll maps every region of a page.
func (m Mapper) MapAll(regions []model.TableRegion, page model.PageSize) []model.TableRegion {
	out := make([]model.TableRegion, len(regions))
	for i, r := range regions {
		out[i] = m.Map(r, page)
	}
	return out
}
