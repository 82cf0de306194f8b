// Package raster defines the page rasterizer collaborator and an adapter
// that serves pages from image files.
//
// The core pipeline only depends on the [Rasterizer] interface. Any renderer
// (a PDF rasterizer, a scanner driver) can be plugged in, as long as it
// renders at the DPI it is asked for so the coordinate mapper and the
// rasterizer agree.
package raster

import (
	"context"
	"errors"

	"github.com/tsawler/tabscan/model"
)

// DefaultDPI is the render resolution the detection thresholds are tuned for.
const DefaultDPI = 300

// ErrPageRange is returned for a page number outside 1..PageCount.
var ErrPageRange = errors.New("page number out of range")

// Rasterizer renders pages of a source document.
type Rasterizer interface {
	// PageCount returns the number of pages. Pages are numbered from 1.
	PageCount() int

	// Render produces the raster for one page at dpi.
	Render(ctx context.Context, page int, dpi float64) (*model.Page, error)
}
