// Package tabscan finds tables on scanned or rendered document pages and
// extracts their cell text.
//
// Basic usage:
//
//	result, warnings, err := tabscan.Open("page_1.png", "page_2.png").
//	    Engine(engine).
//	    Tables(ctx)
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", tabscan.FormatWarnings(warnings))
//	}
//
// Detection only:
//
//	pages, _, err := tabscan.Dir("./pages").DPI(200).MinSize(200, 70).Detect(ctx)
//
// For lower-level control, the pipeline, vision and tables packages are
// available directly.
package tabscan

import (
	"github.com/tsawler/tabscan/raster"
)

// Open returns an Extractor over the given image files, one page per file,
// in the order given.
//
// Example:
//
//	result, warnings, err := tabscan.Open("scan.png").Engine(engine).Tables(ctx)
func Open(paths ...string) *Extractor {
	return &Extractor{
		images:  raster.NewImages(paths...),
		options: defaultOptions(),
	}
}

// Dir returns an Extractor over every image file in dir, in natural order.
// A directory that cannot be read surfaces as an error from the terminal
// operation.
func Dir(dir string) *Extractor {
	imgs, err := raster.Dir(dir)
	return &Extractor{
		images:  imgs,
		options: defaultOptions(),
		err:     err,
	}
}

// FromRasterizer creates an Extractor over an existing page source, such as
// a PDF renderer. SourceDPI has no effect on it.
func FromRasterizer(r raster.Rasterizer) *Extractor {
	return &Extractor{
		rasterizer: r,
		options:    defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil.
//
// Example:
//
//	n := tabscan.Must(tabscan.Open("scan.png").PageCount())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustTables wraps a call to Tables() or Detect() and panics if the error is
// non-nil. Warnings are discarded.
//
// Example:
//
//	result := tabscan.MustTables(tabscan.Open("scan.png").Engine(e).Tables(ctx))
func MustTables[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
