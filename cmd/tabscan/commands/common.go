package commands

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/tsawler/tabscan"
	"github.com/tsawler/tabscan/model"
	"github.com/tsawler/tabscan/pipeline"
	"github.com/tsawler/tabscan/raster"
	"github.com/tsawler/tabscan/report"
)

// Flags shared by detect and extract
var (
	dpiFlag     float64
	pagesFlag   []int
	outputFlag  string
	backendFlag string
	imagesFlag  bool
)

// openPages builds a rasterizer from the positional arguments: a single
// directory, or a list of image files.
func openPages(args []string) (*raster.Images, error) {
	if len(args) == 1 {
		if fi, err := os.Stat(args[0]); err == nil && fi.IsDir() {
			return raster.Dir(args[0])
		}
	}
	for _, a := range args {
		if _, err := os.Stat(a); err != nil {
			return nil, fmt.Errorf("input %s: %w", a, err)
		}
	}
	return raster.NewImages(args...), nil
}

// applyFlags overrides configuration values with explicitly set flags.
func applyFlags() {
	if dpiFlag > 0 {
		cfg.Render.DPI = dpiFlag
	}
	if outputFlag != "" {
		cfg.Output.Dir = outputFlag
	}
	if backendFlag != "" {
		cfg.Detection.Backend = backendFlag
	}
	if imagesFlag {
		cfg.Output.SaveImages = true
	}
}

// newExtractor configures an extractor from the loaded configuration.
func newExtractor(r raster.Rasterizer) *tabscan.Extractor {
	f := cfg.Filter()
	ext := tabscan.FromRasterizer(r).
		DPI(cfg.Render.DPI).
		Backend(cfg.Detection.Backend).
		Threshold(cfg.Detection.BlockSize, cfg.Detection.Constant).
		Filter(f).
		Logger(logger)
	if len(pagesFlag) > 0 {
		ext = ext.Pages(pagesFlag...)
	}
	return ext
}

// progressHook advances a progress bar for every processed page.
func progressHook(total int) (pipeline.PageHook, func()) {
	if noProgress || total == 0 {
		return func(*model.Page, *pipeline.PageDetection) error { return nil }, func() {}
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription("pages"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionClearOnFinish(),
	)
	hook := func(*model.Page, *pipeline.PageDetection) error {
		return bar.Add(1)
	}
	return hook, func() { _ = bar.Finish() }
}

// imageHook saves the page raster and its detection overlay.
func imageHook(dir string) pipeline.PageHook {
	return func(page *model.Page, det *pipeline.PageDetection) error {
		if err := report.SavePNG(report.PagePath(dir, page.Number), page.Image); err != nil {
			return err
		}
		return report.SavePNG(report.OverlayPath(dir, page.Number), det.Overlay)
	}
}

// pageTotal returns the number of pages the run will visit.
func pageTotal(r raster.Rasterizer) int {
	if len(pagesFlag) > 0 {
		return len(pagesFlag)
	}
	return r.PageCount()
}

// logWarnings reports non-fatal problems from a run.
func logWarnings(warnings []tabscan.Warning) {
	for _, w := range warnings {
		logger.Warn().
			Int("page", w.Page).
			Int("sequence", w.Sequence).
			Str("kind", string(w.Kind)).
			Msg(w.Message)
	}
}
