package vision

import (
	"fmt"
	"image"
	"math"

	"github.com/tsawler/tabscan/model"
)

// Contour is a closed boundary traced in a mask.
type Contour struct {
	// Boundary pixels in tracing order.
	Points []image.Point

	// Hole is true for the inner boundary of a ring of ink.
	Hole bool

	// Parent is the index of the enclosing contour, or -1 at the top level.
	Parent int
}

// BoundingRect returns the smallest pixel box holding every boundary point.
func (c Contour) BoundingRect() model.Rect {
	if len(c.Points) == 0 {
		return model.Rect{}
	}
	minX, minY := c.Points[0].X, c.Points[0].Y
	maxX, maxY := minX, minY
	for _, p := range c.Points[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return model.Rect{X: minX, Y: minY, W: maxX - minX + 1, H: maxY - minY + 1}
}

// Perimeter returns the length of the closed polygon through the points.
func (c Contour) Perimeter() float64 {
	return perimeter(c.Points)
}

// Neighbour directions, counter-clockwise on screen starting east:
// E, NE, N, NW, W, SW, S, SE.
var (
	dirX = [8]int{1, 1, 0, -1, -1, -1, 0, 1}
	dirY = [8]int{0, -1, -1, -1, 0, 1, 1, 1}
)

const (
	dirEast = 0
	dirWest = 4
)

type borderInfo struct {
	hole   bool
	parent int32
}

// FindContours traces every outer and hole border of the ink (non-zero)
// regions in mask, including borders nested inside holes, using the
// Suzuki-Abe border following algorithm. Contours are returned in raster
// discovery order and the result is deterministic for a given mask.
func FindContours(mask *image.Gray) ([]Contour, error) {
	if mask == nil || mask.Bounds().Empty() {
		return nil, fmt.Errorf("%w: mask has zero area", model.ErrInvalidPage)
	}

	b := mask.Bounds()
	w, h := b.Dx(), b.Dy()

	// Work on a copy framed by one pixel of background so neighbour
	// lookups never leave the grid.
	pw, ph := w+2, h+2
	f := make([]int32, pw*ph)
	for y := 0; y < h; y++ {
		row := mask.Pix[mask.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := 0; x < w; x++ {
			if row[x] != 0 {
				f[(y+1)*pw+x+1] = 1
			}
		}
	}

	var offs [8]int
	for d := range offs {
		offs[d] = dirY[d]*pw + dirX[d]
	}

	toPoint := func(idx int) image.Point {
		return image.Point{X: idx%pw - 1 + b.Min.X, Y: idx/pw - 1 + b.Min.Y}
	}

	// Border 1 is the frame, treated as a hole with no parent.
	info := []borderInfo{{}, {hole: true, parent: 0}}
	var contours []Contour
	nbd := int32(1)

	for y := 1; y < ph-1; y++ {
		lnbd := int32(1)
		for x := 1; x < pw-1; x++ {
			p := y*pw + x
			v := f[p]
			if v == 0 {
				continue
			}

			startDir := -1
			hole := false
			if v == 1 && f[p-1] == 0 {
				startDir = dirWest
			} else if v >= 1 && f[p+1] == 0 {
				startDir = dirEast
				hole = true
				if v > 1 {
					lnbd = v
				}
			}

			if startDir >= 0 {
				nbd++
				parent := lnbd
				if info[lnbd].hole == hole {
					parent = info[lnbd].parent
				}
				info = append(info, borderInfo{hole: hole, parent: parent})

				points := followBorder(f, offs, p, startDir, nbd, toPoint)
				out := -1
				if parent > 1 {
					out = int(parent) - 2
				}
				contours = append(contours, Contour{Points: points, Hole: hole, Parent: out})
			}

			if f[p] != 1 {
				if f[p] < 0 {
					lnbd = -f[p]
				} else {
					lnbd = f[p]
				}
			}
		}
	}

	return contours, nil
}

// followBorder traces one border starting at pixel start, whose background
// neighbour lies in direction startDir, labelling visited pixels with nbd.
func followBorder(f []int32, offs [8]int, start, startDir int, nbd int32, toPoint func(int) image.Point) []image.Point {
	// Clockwise search for the first ink neighbour.
	first := -1
	firstDir := 0
	for k := 0; k < 8; k++ {
		d := (startDir - k + 8) % 8
		if f[start+offs[d]] != 0 {
			first = start + offs[d]
			firstDir = d
			break
		}
	}
	if first < 0 {
		// Isolated pixel.
		f[start] = -nbd
		return []image.Point{toPoint(start)}
	}

	var points []image.Point
	cur := start
	back := firstDir // direction from cur to the previous border pixel

	for {
		// Counter-clockwise search starting just past the previous pixel.
		next, nextDir := -1, 0
		eastIsBackground := false
		for k := 1; k <= 8; k++ {
			d := (back + k) % 8
			q := cur + offs[d]
			if f[q] != 0 {
				next, nextDir = q, d
				break
			}
			if d == dirEast {
				eastIsBackground = true
			}
		}

		if eastIsBackground {
			f[cur] = -nbd
		} else if f[cur] == 1 {
			f[cur] = nbd
		}
		points = append(points, toPoint(cur))

		if next == start && cur == first {
			break
		}
		back = (nextDir + 4) % 8
		cur = next
	}

	return points
}

// ApproxPolygon simplifies a closed contour with the Douglas-Peucker
// algorithm. Points closer than epsilon to the simplified outline are
// dropped.
func ApproxPolygon(points []image.Point, epsilon float64) []image.Point {
	n := len(points)
	if n < 3 {
		return append([]image.Point(nil), points...)
	}

	// Split the closed curve at the point farthest from the first one.
	far, best := 0, -1.0
	for i := 1; i < n; i++ {
		if d := dist(points[0], points[i]); d > best {
			far, best = i, d
		}
	}

	keep := make([]bool, n)
	keep[0], keep[far] = true, true
	simplify(points, 0, far, epsilon, keep)

	// Second half wraps back round to the first point.
	wrapped := append(append([]image.Point(nil), points[far:]...), points[0])
	keepWrapped := make([]bool, len(wrapped))
	simplify(wrapped, 0, len(wrapped)-1, epsilon, keepWrapped)
	for i := 1; i < len(wrapped)-1; i++ {
		if keepWrapped[i] {
			keep[far+i] = true
		}
	}

	var out []image.Point
	for i, k := range keep {
		if k {
			out = append(out, points[i])
		}
	}
	return out
}

func simplify(points []image.Point, lo, hi int, epsilon float64, keep []bool) {
	if hi <= lo+1 {
		return
	}
	idx, best := -1, -1.0
	for i := lo + 1; i < hi; i++ {
		if d := segmentDistance(points[i], points[lo], points[hi]); d > best {
			idx, best = i, d
		}
	}
	if best > epsilon {
		keep[idx] = true
		simplify(points, lo, idx, epsilon, keep)
		simplify(points, idx, hi, epsilon, keep)
	}
}

func segmentDistance(p, a, b image.Point) float64 {
	dx, dy := float64(b.X-a.X), float64(b.Y-a.Y)
	if dx == 0 && dy == 0 {
		return dist(p, a)
	}
	num := math.Abs(dy*float64(p.X-a.X) - dx*float64(p.Y-a.Y))
	return num / math.Hypot(dx, dy)
}

func dist(a, b image.Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

func perimeter(points []image.Point) float64 {
	if len(points) < 2 {
		return 0
	}
	total := 0.0
	for i := range points {
		total += dist(points[i], points[(i+1)%len(points)])
	}
	return total
}
