package model

import (
	"fmt"
	"image"
)

// Point represents a 2D point
type Point struct {
	X, Y float64
}

// BBox represents a bounding box in page space (points, PDF coordinate
// system with the origin at the bottom-left corner).
type BBox struct {
	X      float64 // Left
	Y      float64 // Bottom
	Width  float64
	Height float64
}

// NewBBox creates a bounding box from coordinates
func NewBBox(x, y, width, height float64) BBox {
	return BBox{X: x, Y: y, Width: width, Height: height}
}

// Left returns the left edge X coordinate
func (b BBox) Left() float64 {
	return b.X
}

// Right returns the right edge X coordinate
func (b BBox) Right() float64 {
	return b.X + b.Width
}

// Bottom returns the bottom edge Y coordinate
func (b BBox) Bottom() float64 {
	return b.Y
}

// Top returns the top edge Y coordinate
func (b BBox) Top() float64 {
	return b.Y + b.Height
}

// Center returns the center point
func (b BBox) Center() Point {
	return Point{
		X: b.X + b.Width/2,
		Y: b.Y + b.Height/2,
	}
}

// Contains checks if a point is inside the bounding box
func (b BBox) Contains(p Point) bool {
	return p.X >= b.Left() && p.X <= b.Right() &&
		p.Y >= b.Bottom() && p.Y <= b.Top()
}

// IsValid returns true if the bounding box has positive dimensions
func (b BBox) IsValid() bool {
	return b.Width > 0 && b.Height > 0
}

// Rect is an axis-aligned box in raster space: integer pixels with the
// origin at the top-left corner of the page image.
type Rect struct {
	X, Y int
	W, H int
}

// RectFromImage converts an image.Rectangle into a Rect.
func RectFromImage(r image.Rectangle) Rect {
	return Rect{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()}
}

// Right returns the exclusive right edge.
func (r Rect) Right() int { return r.X + r.W }

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int { return r.Y + r.H }

// Area returns the pixel area of the box.
func (r Rect) Area() int { return r.W * r.H }

// Empty reports whether the box has no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Image returns the box as an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.Right(), r.Bottom())
}

// In reports whether the box lies inside a width x height raster.
func (r Rect) In(width, height int) bool {
	return !r.Empty() && r.X >= 0 && r.Y >= 0 && r.Right() <= width && r.Bottom() <= height
}

// ContainsWithin reports whether other lies inside r once r is grown by tol
// pixels on every side.
func (r Rect) ContainsWithin(other Rect, tol int) bool {
	return other.X >= r.X-tol &&
		other.Y >= r.Y-tol &&
		other.Right() <= r.Right()+tol &&
		other.Bottom() <= r.Bottom()+tol
}

func (r Rect) String() string {
	return fmt.Sprintf("{x=%d y=%d w=%d h=%d}", r.X, r.Y, r.W, r.H)
}
