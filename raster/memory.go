package raster

import (
	"context"
	"fmt"
	"image"

	"github.com/tsawler/tabscan/model"
)

// Memory serves pages from images that are already decoded. The images are
// assumed to be rendered at the DPI passed to Render.
type Memory struct {
	images []image.Image
}

// NewMemory creates a rasterizer over images, in page order.
func NewMemory(images ...image.Image) *Memory {
	return &Memory{images: append([]image.Image(nil), images...)}
}

// PageCount returns the number of images.
func (m *Memory) PageCount() int {
	return len(m.images)
}

// Render returns the image for page.
func (m *Memory) Render(ctx context.Context, page int, dpi float64) (*model.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if page < 1 || page > len(m.images) {
		return nil, fmt.Errorf("%w: %d (document has %d pages)", ErrPageRange, page, len(m.images))
	}
	img := m.images[page-1]
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: page %d has zero area", model.ErrInvalidPage, page)
	}
	return model.NewPage(page, img, dpi), nil
}
