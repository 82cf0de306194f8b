package tables

import (
	"sort"

	"github.com/tsawler/tabscan/model"
	"github.com/tsawler/tabscan/vision"
)

// Filter keeps the contours whose bounding boxes look like tables and
// returns those boxes in reading order (top to bottom, then left to right).
// A page without candidates yields an empty slice.
func Filter(contours []vision.Contour, pageWidth, pageHeight int, config Config) []model.Rect {
	var candidates []model.Rect
	for _, c := range contours {
		box := c.BoundingRect()
		if !config.accepts(box, pageWidth, pageHeight) {
			continue
		}
		if config.RequireQuadrilateral && !isQuadrilateral(c, config.ApproxEpsilon) {
			continue
		}
		candidates = append(candidates, box)
	}

	kept := suppressNested(candidates, config.Tolerance)
	sortReadingOrder(kept)
	return kept
}

// Regions runs Filter and numbers the surviving boxes from 1 in reading
// order.
func Regions(page int, contours []vision.Contour, pageWidth, pageHeight int, config Config) []model.TableRegion {
	boxes := Filter(contours, pageWidth, pageHeight, config)
	regions := make([]model.TableRegion, len(boxes))
	for i, box := range boxes {
		regions[i] = model.TableRegion{Page: page, Sequence: i + 1, Box: box}
	}
	return regions
}

// accepts applies the size thresholds to boxes lying on the page. The upper
// bounds reject the page border itself.
func (c Config) accepts(box model.Rect, pageWidth, pageHeight int) bool {
	return box.In(pageWidth, pageHeight) &&
		box.W > c.MinWidth &&
		box.H > c.MinHeight &&
		float64(box.W) < float64(pageWidth)*c.MaxWidthFraction &&
		float64(box.H) < float64(pageHeight)*c.MaxHeightFraction
}

func isQuadrilateral(c vision.Contour, epsilon float64) bool {
	approx := vision.ApproxPolygon(c.Points, epsilon*c.Perimeter())
	return len(approx) == 4
}

// suppressNested drops every box that lies inside a surviving box. Boxes
// are visited largest first, so when two boxes contain each other (equal
// within tolerance) the larger area survives, then the one earlier in
// reading order, then the first one given. A suppressed box never
// suppresses others.
func suppressNested(boxes []model.Rect, tol int) []model.Rect {
	ordered := append([]model.Rect(nil), boxes...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return outranks(ordered[i], ordered[j])
	})

	var kept []model.Rect
	for _, box := range ordered {
		inside := false
		for _, k := range kept {
			if k.ContainsWithin(box, tol) {
				inside = true
				break
			}
		}
		if inside {
			continue
		}

		// A box visited later can still enclose a kept one that is
		// slightly larger in area.
		survivors := kept[:0]
		for _, k := range kept {
			if !box.ContainsWithin(k, tol) {
				survivors = append(survivors, k)
			}
		}
		kept = append(survivors, box)
	}
	return kept
}

// outranks orders mutually containing boxes: larger area first, then
// reading order.
func outranks(a, b model.Rect) bool {
	if a.Area() != b.Area() {
		return a.Area() > b.Area()
	}
	return before(a, b)
}

func before(a, b model.Rect) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	if a.X != b.X {
		return a.X < b.X
	}
	if a.W != b.W {
		return a.W > b.W
	}
	return a.H > b.H
}

func sortReadingOrder(boxes []model.Rect) {
	sort.SliceStable(boxes, func(i, j int) bool {
		return before(boxes[i], boxes[j])
	})
}
