package pipeline

import (
	"fmt"
	"image"

	"github.com/rs/zerolog"

	"github.com/tsawler/tabscan/coords"
	"github.com/tsawler/tabscan/model"
	"github.com/tsawler/tabscan/tables"
	"github.com/tsawler/tabscan/vision"
)

// PageDetection is the outcome of region detection on one page.
type PageDetection struct {
	Page     int
	Size     model.PageSize
	Contours int                 // Contours traced before filtering
	Regions  []model.TableRegion // Mapped regions in reading order
	Overlay  *image.RGBA         // Page copy with the regions outlined
}

// PageProcessor runs preprocessing, contour extraction, filtering and
// coordinate mapping for one page at a time.
type PageProcessor struct {
	backend vision.Backend
	filter  tables.Config
	mapper  coords.Mapper
	logger  zerolog.Logger
}

// NewPageProcessor creates a page processor. The mapper's DPI is the render
// DPI for the whole run.
func NewPageProcessor(backend vision.Backend, filter tables.Config, mapper coords.Mapper, logger zerolog.Logger) (*PageProcessor, error) {
	if backend == nil {
		return nil, fmt.Errorf("no vision backend")
	}
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("invalid filter configuration: %w", err)
	}
	if mapper.DPI <= 0 {
		return nil, fmt.Errorf("invalid DPI %v", mapper.DPI)
	}
	return &PageProcessor{backend: backend, filter: filter, mapper: mapper, logger: logger}, nil
}

// DPI returns the render DPI the processor maps coordinates with.
func (p *PageProcessor) DPI() float64 {
	return p.mapper.DPI
}

// Process detects the table regions of page. Failures are *model.Error
// values scoped to the page.
func (p *PageProcessor) Process(page *model.Page) (*PageDetection, error) {
	if page == nil {
		return nil, model.PageError(model.KindInvalidPage, 0, model.ErrInvalidPage)
	}
	if page.DPI > 0 && page.DPI != p.mapper.DPI {
		err := fmt.Errorf("%w: rendered at %v DPI, mapping at %v DPI", model.ErrInvalidPage, page.DPI, p.mapper.DPI)
		return nil, model.PageError(model.KindInvalidPage, page.Number, err)
	}

	mask, err := p.backend.Preprocess(page)
	if err != nil {
		return nil, model.PageError(model.KindInvalidPage, page.Number, err)
	}

	contours, err := p.backend.Contours(mask)
	if err != nil {
		return nil, model.PageError(model.KindContourExtraction, page.Number, err)
	}

	size := page.Size
	if size.Width <= 0 || size.Height <= 0 {
		size = p.mapper.PageSize(page.Width(), page.Height())
	}

	regions := tables.Regions(page.Number, contours, page.Width(), page.Height(), p.filter)
	regions = p.mapper.MapAll(regions, size)

	p.logger.Debug().
		Int("page", page.Number).
		Int("contours", len(contours)).
		Int("regions", len(regions)).
		Msg("page processed")

	return &PageDetection{
		Page:     page.Number,
		Size:     size,
		Contours: len(contours),
		Regions:  regions,
		Overlay:  vision.DrawOverlay(page.Image, regions),
	}, nil
}
