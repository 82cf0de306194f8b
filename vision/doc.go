// Package vision provides the raster stages of table region detection:
// turning a page image into a binary mask and tracing the borders in it.
//
// # Preprocessing
//
// [Threshold] converts a page to grayscale and applies a Gaussian-weighted
// adaptive threshold (see [ThresholdConfig]). The result is an *image.Gray
// where ink is 255 and background is 0.
//
// # Contours
//
// [FindContours] implements Suzuki-Abe border following. It reports outer
// borders and hole borders with parent links, so table grids yield both the
// outline of the whole table and one contour per cell.
//
// # Backends
//
// Both stages sit behind the [Backend] interface. Backends are registered
// globally and built by name:
//
//	backend, err := vision.NewBackend("native", vision.DefaultThresholdConfig())
//	mask, err := backend.Preprocess(page)
//	contours, err := backend.Contours(mask)
//
// The "native" backend is pure Go. Building with -tags gocv adds an "opencv"
// backend backed by gocv.
//
// # Debug Overlays
//
// [DrawOverlay] copies a page and outlines each detected region in green,
// labelled with its sequence number, for checking detection quality by eye.
package vision
