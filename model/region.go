package model

import "fmt"

// TableRegion is a bounding box believed to enclose a table.
//
// Box is in raster pixels. Area holds the same box in page points once the
// coordinate mapper has run; it is the zero BBox before that.
type TableRegion struct {
	Page     int
	Sequence int
	Box      Rect
	Area     BBox
}

// Mapped reports whether the region carries page-space coordinates.
func (r TableRegion) Mapped() bool {
	return r.Area.IsValid()
}

// Spec renders the page-space area as "x1,y1,x2,y2", where (x1,y1) is the
// top-left and (x2,y2) the bottom-right corner in PDF points.
func (r TableRegion) Spec() string {
	a := r.Area
	return fmt.Sprintf("%s,%s,%s,%s",
		formatPoints(a.Left()), formatPoints(a.Top()),
		formatPoints(a.Right()), formatPoints(a.Bottom()))
}

func (r TableRegion) String() string {
	return fmt.Sprintf("page %d table %d %s", r.Page, r.Sequence, r.Box)
}

func formatPoints(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
