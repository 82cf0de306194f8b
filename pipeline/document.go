package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/tsawler/tabscan/model"
	"github.com/tsawler/tabscan/parser"
	"github.com/tsawler/tabscan/raster"
)

// PageHook is called for every page that was processed, after detection
// and before its regions are parsed. Returning an error stops the run.
type PageHook func(page *model.Page, det *PageDetection) error

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithPages restricts the run to the given 1-indexed pages.
func WithPages(pages ...int) Option {
	return func(a *Aggregator) {
		a.pages = append([]int(nil), pages...)
	}
}

// WithPageHook registers a hook called after each page is processed.
func WithPageHook(hook PageHook) Option {
	return func(a *Aggregator) {
		a.hooks = append(a.hooks, hook)
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

// Aggregator walks the pages of a document in order, detects their table
// regions and hands each region to the parsing engine.
//
// Pages are processed one at a time. A page that fails to render or process
// and a region the engine fails on are recorded in the RunStatus and
// skipped; neither stops the run.
type Aggregator struct {
	rasterizer raster.Rasterizer
	processor  *PageProcessor
	engine     parser.Engine
	pages      []int
	hooks      []PageHook
	logger     zerolog.Logger
}

// NewAggregator creates an aggregator. engine may be nil for detection-only
// use through Detect.
func NewAggregator(r raster.Rasterizer, p *PageProcessor, engine parser.Engine, opts ...Option) *Aggregator {
	a := &Aggregator{
		rasterizer: r,
		processor:  p,
		engine:     engine,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run processes the document and returns every extracted table in
// (page, sequence) order together with the per-page status. The returned
// error is only set when the run could not start, was cancelled, or a hook
// failed; the result then holds whatever completed before that.
func (a *Aggregator) Run(ctx context.Context) (*model.DocumentResult, *model.RunStatus, error) {
	if a.engine == nil {
		return nil, nil, errors.New("no parsing engine configured")
	}

	result := &model.DocumentResult{}
	status, err := a.walk(ctx, func(det *PageDetection, ps *model.PageStatus) {
		for _, region := range det.Regions {
			rs, table := a.parseRegion(ctx, det, region)
			ps.Regions = append(ps.Regions, rs)
			if table != nil {
				result.Add(*table)
			}
		}
	})

	result.Sort()
	a.logger.Info().
		Int("pages", len(status.Pages)).
		Int("regions", status.RegionCount()).
		Int("tables", result.Len()).
		Int("failures", len(status.Failures())).
		Msg("document processed")

	return result, status, err
}

// Detect runs region detection only and returns the detections of every
// page that was processed successfully. Overlays are only available to page
// hooks; the returned detections carry none.
func (a *Aggregator) Detect(ctx context.Context) ([]*PageDetection, *model.RunStatus, error) {
	var detections []*PageDetection
	status, err := a.walk(ctx, func(det *PageDetection, ps *model.PageStatus) {
		for _, region := range det.Regions {
			ps.Regions = append(ps.Regions, model.RegionStatus{
				Sequence: region.Sequence,
				Region:   region,
				State:    model.RegionOK,
			})
		}
		det.Overlay = nil
		detections = append(detections, det)
	})
	return detections, status, err
}

func (a *Aggregator) walk(ctx context.Context, visit func(*PageDetection, *model.PageStatus)) (*model.RunStatus, error) {
	status := &model.RunStatus{}
	if a.rasterizer == nil || a.processor == nil {
		return status, errors.New("aggregator needs a rasterizer and a page processor")
	}

	for _, n := range a.pageNumbers() {
		if err := ctx.Err(); err != nil {
			return status, err
		}

		ps := model.PageStatus{Page: n}
		log := a.logger.With().Int("page", n).Logger()

		page, err := a.rasterizer.Render(ctx, n, a.processor.DPI())
		if err != nil {
			if ctx.Err() != nil {
				return status, ctx.Err()
			}
			ps.State = model.PageRasterizationFailed
			ps.Err = model.PageError(model.KindRasterization, n, err)
			log.Warn().Err(err).Msg("rasterization failed, skipping page")
			status.Add(ps)
			continue
		}
		if page == nil {
			ps.State = model.PageInvalid
			ps.Err = model.PageError(model.KindInvalidPage, n, fmt.Errorf("%w: rasterizer returned no page", model.ErrInvalidPage))
			log.Warn().Msg("rasterizer returned no page, skipping page")
			status.Add(ps)
			continue
		}
		if page.Number == 0 {
			page.Number = n
		}

		det, err := a.processor.Process(page)
		if err != nil {
			ps.State = model.PageInvalid
			ps.Err = err
			log.Warn().Err(err).Msg("page processing failed, skipping page")
			status.Add(ps)
			continue
		}

		for _, hook := range a.hooks {
			if err := hook(page, det); err != nil {
				status.Add(ps)
				return status, fmt.Errorf("page %d: %w", n, err)
			}
		}

		ps.State = model.PageOK
		if len(det.Regions) == 0 {
			ps.State = model.PageNoRegions
			log.Debug().Msg("no table regions on page")
		}
		visit(det, &ps)
		status.Add(ps)
	}

	return status, nil
}

func (a *Aggregator) parseRegion(ctx context.Context, det *PageDetection, region model.TableRegion) (model.RegionStatus, *model.ExtractedTable) {
	rs := model.RegionStatus{Sequence: region.Sequence, Region: region}
	log := a.logger.With().Int("page", region.Page).Int("sequence", region.Sequence).Str("area", region.Spec()).Logger()

	rows, err := a.engine.Parse(ctx, parser.Request{Region: region, PageSize: det.Size})
	if err != nil {
		rs.State = model.RegionParseFailed
		rs.Err = model.RegionError(model.KindRegionParse, region.Page, region.Sequence, err)
		log.Warn().Err(err).Msg("parsing engine failed on region")
		return rs, nil
	}
	if len(rows) == 0 {
		rs.State = model.RegionEmpty
		log.Debug().Msg("no table found in region")
		return rs, nil
	}

	rs.State = model.RegionOK
	log.Debug().Int("rows", len(rows)).Msg("table extracted")
	return rs, &model.ExtractedTable{
		Page:     region.Page,
		Sequence: region.Sequence,
		Rows:     copyRows(rows),
	}
}

// pageNumbers returns the configured pages in ascending order without
// duplicates, or every page of the document.
func (a *Aggregator) pageNumbers() []int {
	if len(a.pages) == 0 {
		n := a.rasterizer.PageCount()
		pages := make([]int, n)
		for i := range pages {
			pages[i] = i + 1
		}
		return pages
	}

	seen := make(map[int]bool, len(a.pages))
	var pages []int
	for _, p := range a.pages {
		if !seen[p] {
			seen[p] = true
			pages = append(pages, p)
		}
	}
	sort.Ints(pages)
	return pages
}

func copyRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = append([]string(nil), row...)
	}
	return out
}
