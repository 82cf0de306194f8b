package tabscan

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tsawler/tabscan/coords"
	"github.com/tsawler/tabscan/model"
	"github.com/tsawler/tabscan/parser"
	"github.com/tsawler/tabscan/pipeline"
	"github.com/tsawler/tabscan/raster"
	"github.com/tsawler/tabscan/tables"
	"github.com/tsawler/tabscan/vision"
)

// Extractor provides a fluent interface for detecting and extracting tables.
// Each configuration method returns a new Extractor instance, making it
// safe for concurrent use and allowing method chaining.
type Extractor struct {
	// Source; images is set for file-backed extractors, rasterizer otherwise
	images     *raster.Images
	rasterizer raster.Rasterizer

	// Configuration
	options ExtractOptions

	// Accumulated error (fail-fast)
	err error
}

// clone creates a shallow copy of the Extractor with a deep copy of options.
func (e *Extractor) clone() *Extractor {
	return &Extractor{
		images:     e.images,
		rasterizer: e.rasterizer,
		options:    e.options.clone(),
		err:        e.err,
	}
}

// Pages restricts processing to the given 1-indexed pages.
//
// Example:
//
//	tabscan.Open(files...).Pages(1, 3).Tables(ctx)
func (e *Extractor) Pages(pages ...int) *Extractor {
	c := e.clone()
	for _, p := range pages {
		if p < 1 {
			c.err = fmt.Errorf("invalid page number %d", p)
			return c
		}
	}
	c.options.pages = append([]int(nil), pages...)
	return c
}

// DPI sets the render resolution. Pixel coordinates of detected regions are
// in units of this DPI. The filter's pixel thresholds are not rescaled; use
// ScaleThresholds for that.
func (e *Extractor) DPI(dpi float64) *Extractor {
	c := e.clone()
	if dpi <= 0 {
		c.err = fmt.Errorf("invalid DPI %v", dpi)
		return c
	}
	c.options.dpi = dpi
	return c
}

// SourceDPI sets the resolution image files were scanned at. Files are
// resampled to the render DPI when the two differ.
func (e *Extractor) SourceDPI(dpi float64) *Extractor {
	c := e.clone()
	if dpi <= 0 {
		c.err = fmt.Errorf("invalid source DPI %v", dpi)
		return c
	}
	c.options.sourceDPI = dpi
	return c
}

// ScaleThresholds scales the minimum box size from its 300 DPI defaults to
// the configured render DPI.
func (e *Extractor) ScaleThresholds() *Extractor {
	c := e.clone()
	scaled := tables.ScaledConfig(c.options.dpi)
	c.options.filter.MinWidth = scaled.MinWidth
	c.options.filter.MinHeight = scaled.MinHeight
	return c
}

// MinSize sets the minimum table width and height in pixels. Boxes must be
// strictly larger to survive.
func (e *Extractor) MinSize(width, height int) *Extractor {
	c := e.clone()
	c.options.filter.MinWidth = width
	c.options.filter.MinHeight = height
	return c
}

// MaxFractions sets the largest table size as fractions of the page size.
func (e *Extractor) MaxFractions(width, height float64) *Extractor {
	c := e.clone()
	c.options.filter.MaxWidthFraction = width
	c.options.filter.MaxHeightFraction = height
	return c
}

// Tolerance sets the containment slack in pixels.
func (e *Extractor) Tolerance(px int) *Extractor {
	c := e.clone()
	c.options.filter.Tolerance = px
	return c
}

// RequireQuadrilateral drops contours that do not simplify to four corners.
func (e *Extractor) RequireQuadrilateral() *Extractor {
	c := e.clone()
	c.options.filter.RequireQuadrilateral = true
	return c
}

// Filter replaces the whole region filter configuration.
func (e *Extractor) Filter(cfg tables.Config) *Extractor {
	c := e.clone()
	c.options.filter = cfg
	return c
}

// Threshold sets the adaptive threshold block size and constant.
func (e *Extractor) Threshold(blockSize int, constant float64) *Extractor {
	c := e.clone()
	c.options.threshold = vision.ThresholdConfig{BlockSize: blockSize, C: constant}
	return c
}

// Backend selects a registered vision backend by name.
func (e *Extractor) Backend(name string) *Extractor {
	c := e.clone()
	c.options.backend = name
	return c
}

// Engine sets the parsing engine used by Tables.
func (e *Extractor) Engine(engine parser.Engine) *Extractor {
	c := e.clone()
	c.options.engine = engine
	return c
}

// Logger sets the logger passed down to the pipeline.
func (e *Extractor) Logger(logger zerolog.Logger) *Extractor {
	c := e.clone()
	c.options.logger = logger
	return c
}

// OnPage registers a hook called with every processed page and its
// detections, e.g. to save overlays. Hooks run in registration order.
func (e *Extractor) OnPage(hook pipeline.PageHook) *Extractor {
	c := e.clone()
	c.options.hooks = append(c.options.hooks, hook)
	return c
}

// PageCount returns the number of pages in the source.
func (e *Extractor) PageCount() (int, error) {
	r, err := e.source()
	if err != nil {
		return 0, err
	}
	return r.PageCount(), nil
}

// Detect finds table regions without parsing them.
//
// Example:
//
//	pages, warnings, err := tabscan.Dir("./scans").Detect(ctx)
//	for _, p := range pages {
//	    for _, r := range p.Regions {
//	        fmt.Println(r.Page, r.Sequence, r.Spec())
//	    }
//	}
func (e *Extractor) Detect(ctx context.Context) ([]*pipeline.PageDetection, []Warning, error) {
	agg, err := e.aggregator(nil)
	if err != nil {
		return nil, nil, err
	}
	detections, status, err := agg.Detect(ctx)
	return detections, warningsFrom(status), err
}

// Tables detects table regions and parses each one with the configured
// engine. Pages and regions that fail are reported as warnings and do not
// stop the run.
func (e *Extractor) Tables(ctx context.Context) (*model.DocumentResult, []Warning, error) {
	if e.err == nil && e.options.engine == nil {
		return nil, nil, fmt.Errorf("no parsing engine configured")
	}
	agg, err := e.aggregator(e.options.engine)
	if err != nil {
		return nil, nil, err
	}
	result, status, err := agg.Run(ctx)
	return result, warningsFrom(status), err
}

// source returns the rasterizer the extractor reads pages from.
func (e *Extractor) source() (raster.Rasterizer, error) {
	if e.err != nil {
		return nil, e.err
	}
	if e.images != nil {
		imgs := raster.NewImages(e.images.Paths()...)
		imgs.SourceDPI = e.options.sourceDPI
		return imgs, nil
	}
	if e.rasterizer != nil {
		return e.rasterizer, nil
	}
	return nil, fmt.Errorf("no page source specified")
}

func (e *Extractor) aggregator(engine parser.Engine) (*pipeline.Aggregator, error) {
	r, err := e.source()
	if err != nil {
		return nil, err
	}

	mapper, err := coords.New(e.options.dpi)
	if err != nil {
		return nil, err
	}
	backend, err := vision.NewBackend(e.options.backend, e.options.threshold)
	if err != nil {
		return nil, err
	}
	proc, err := pipeline.NewPageProcessor(backend, e.options.filter, mapper, e.options.logger)
	if err != nil {
		return nil, err
	}

	opts := []pipeline.Option{pipeline.WithLogger(e.options.logger)}
	if len(e.options.pages) > 0 {
		opts = append(opts, pipeline.WithPages(e.options.pages...))
	}
	for _, hook := range e.options.hooks {
		opts = append(opts, pipeline.WithPageHook(hook))
	}
	return pipeline.NewAggregator(r, proc, engine, opts...), nil
}
