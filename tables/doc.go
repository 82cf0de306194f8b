// Package tables decides which traced contours are table regions.
//
// # Filtering
//
// [Filter] takes the contours of one page and:
//
//  1. Computes each contour's bounding box
//  2. Keeps boxes larger than MinWidth x MinHeight and smaller than the
//     MaxWidthFraction / MaxHeightFraction share of the page
//  3. Drops boxes lying inside another kept box (within Tolerance pixels),
//     which removes the per-cell contours of a ruled table
//  4. Sorts the survivors top to bottom, then left to right
//
// [Regions] does the same and numbers the boxes from 1 as [model.TableRegion]
// values.
//
// # Configuration
//
// Thresholds are passed explicitly in a [Config]:
//
//	config := tables.DefaultConfig()
//	config.MinWidth = 200
//	boxes := tables.Filter(contours, page.Width(), page.Height(), config)
//
// Defaults assume 300 DPI renders; [ScaledConfig] rescales the pixel
// thresholds for other resolutions.
package tables
