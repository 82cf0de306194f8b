package tables

import (
	"image"
	"testing"

	"github.com/tsawler/tabscan/model"
	"github.com/tsawler/tabscan/vision"
)

// boxContour returns a contour tracing the outline of r clockwise, one point
// per corner and edge pixel.
func boxContour(r model.Rect) vision.Contour {
	var pts []image.Point
	for x := r.X; x < r.Right(); x++ {
		pts = append(pts, image.Pt(x, r.Y))
	}
	for y := r.Y + 1; y < r.Bottom(); y++ {
		pts = append(pts, image.Pt(r.Right()-1, y))
	}
	for x := r.Right() - 2; x >= r.X; x-- {
		pts = append(pts, image.Pt(x, r.Bottom()-1))
	}
	for y := r.Bottom() - 2; y > r.Y; y-- {
		pts = append(pts, image.Pt(r.X, y))
	}
	return vision.Contour{Points: pts, Parent: -1}
}

func contoursOf(rects ...model.Rect) []vision.Contour {
	out := make([]vision.Contour, len(rects))
	for i, r := range rects {
		out[i] = boxContour(r)
	}
	return out
}

const (
	pageW = 2550
	pageH = 3300
)

func TestFilterEmpty(t *testing.T) {
	if got := Filter(nil, pageW, pageH, DefaultConfig()); len(got) != 0 {
		t.Errorf("Filter(nil) = %v, want empty", got)
	}
}

func TestFilterSizeThresholds(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		name string
		box  model.Rect
		keep bool
	}{
		{"typical table", model.Rect{X: 100, Y: 100, W: 1200, H: 400}, true},
		{"width at minimum", model.Rect{X: 100, Y: 100, W: 300, H: 400}, false},
		{"width just over minimum", model.Rect{X: 100, Y: 100, W: 301, H: 400}, true},
		{"height at minimum", model.Rect{X: 100, Y: 100, W: 600, H: 100}, false},
		{"page border width", model.Rect{X: 10, Y: 100, W: 2500, H: 400}, false},
		{"page border height", model.Rect{X: 100, Y: 10, W: 600, H: 3000}, false},
		{"small text block", model.Rect{X: 100, Y: 100, W: 80, H: 20}, false},
		{"past the right edge", model.Rect{X: 2000, Y: 100, W: 600, H: 400}, false},
		{"above the page", model.Rect{X: 100, Y: -5, W: 600, H: 400}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(contoursOf(tt.box), pageW, pageH, cfg)
			if tt.keep && (len(got) != 1 || got[0] != tt.box) {
				t.Errorf("Filter() = %v, want [%v]", got, tt.box)
			}
			if !tt.keep && len(got) != 0 {
				t.Errorf("Filter() = %v, want empty", got)
			}
		})
	}
}

func TestFilterOneLargeTenSmall(t *testing.T) {
	rects := []model.Rect{{X: 200, Y: 500, W: 1800, H: 900}}
	for i := 0; i < 10; i++ {
		rects = append(rects, model.Rect{X: 220 + i*170, Y: 520, W: 150, H: 60})
	}

	got := Filter(contoursOf(rects...), pageW, pageH, DefaultConfig())
	if len(got) != 1 || got[0] != rects[0] {
		t.Errorf("Filter() = %v, want only the large box", got)
	}
}

func TestFilterNested(t *testing.T) {
	outer := model.Rect{X: 100, Y: 100, W: 600, H: 400}
	inner := model.Rect{X: 105, Y: 105, W: 590, H: 390}

	// Order of the input must not matter.
	for _, in := range [][]model.Rect{{outer, inner}, {inner, outer}} {
		got := Filter(contoursOf(in...), pageW, pageH, DefaultConfig())
		if len(got) != 1 || got[0] != outer {
			t.Errorf("Filter(%v) = %v, want [%v]", in, got, outer)
		}
	}
}

func TestFilterTolerance(t *testing.T) {
	a := model.Rect{X: 100, Y: 100, W: 600, H: 400}
	// Sticks out of a by two pixels on the left: inside within tolerance.
	b := model.Rect{X: 98, Y: 150, W: 400, H: 200}

	cfg := DefaultConfig()
	if got := Filter(contoursOf(a, b), pageW, pageH, cfg); len(got) != 1 {
		t.Errorf("tolerance 3: got %d boxes, want 1", len(got))
	}

	cfg.Tolerance = 0
	if got := Filter(contoursOf(a, b), pageW, pageH, cfg); len(got) != 2 {
		t.Errorf("tolerance 0: got %d boxes, want 2", len(got))
	}
}

func TestFilterMutualContainment(t *testing.T) {
	// Each lies inside the other within three pixels; the larger one wins.
	small := model.Rect{X: 101, Y: 101, W: 598, H: 398}
	large := model.Rect{X: 100, Y: 100, W: 600, H: 400}

	got := Filter(contoursOf(small, large), pageW, pageH, DefaultConfig())
	if len(got) != 1 || got[0] != large {
		t.Errorf("Filter() = %v, want [%v]", got, large)
	}

	// Exact duplicates collapse to one.
	got = Filter(contoursOf(large, large), pageW, pageH, DefaultConfig())
	if len(got) != 1 {
		t.Errorf("duplicates: got %v, want one box", got)
	}
}

// b lies inside a and c lies inside b, each within tolerance, but c does
// not lie inside a. Only a survivor may suppress another box.
func TestFilterToleranceDoesNotChain(t *testing.T) {
	a := model.Rect{X: 100, Y: 100, W: 600, H: 400}
	b := model.Rect{X: 103, Y: 100, W: 600, H: 400}
	c := model.Rect{X: 106, Y: 100, W: 600, H: 400}

	if a.ContainsWithin(c, 3) {
		t.Fatal("c should not lie inside a")
	}
	got := Filter(contoursOf(c, b, a), pageW, pageH, DefaultConfig())
	if len(got) != 2 || got[0] != a || got[1] != c {
		t.Errorf("Filter() = %v, want [%v %v]", got, a, c)
	}
}

func TestFilterOverlappingKept(t *testing.T) {
	a := model.Rect{X: 100, Y: 100, W: 600, H: 400}
	b := model.Rect{X: 400, Y: 300, W: 600, H: 400}

	got := Filter(contoursOf(b, a), pageW, pageH, DefaultConfig())
	if len(got) != 2 {
		t.Fatalf("got %d boxes, want 2 overlapping boxes", len(got))
	}
	if got[0] != a || got[1] != b {
		t.Errorf("order = %v, want [%v %v]", got, a, b)
	}
}

func TestRegionsReadingOrder(t *testing.T) {
	lowLeft := model.Rect{X: 100, Y: 1500, W: 600, H: 400}
	topRight := model.Rect{X: 1300, Y: 200, W: 600, H: 400}
	topLeft := model.Rect{X: 100, Y: 200, W: 600, H: 400}

	regions := Regions(4, contoursOf(lowLeft, topRight, topLeft), pageW, pageH, DefaultConfig())
	want := []model.Rect{topLeft, topRight, lowLeft}
	if len(regions) != len(want) {
		t.Fatalf("got %d regions, want %d", len(regions), len(want))
	}
	for i, r := range regions {
		if r.Box != want[i] {
			t.Errorf("region %d box = %v, want %v", i, r.Box, want[i])
		}
		if r.Sequence != i+1 {
			t.Errorf("region %d sequence = %d, want %d", i, r.Sequence, i+1)
		}
		if r.Page != 4 {
			t.Errorf("region %d page = %d, want 4", i, r.Page)
		}
	}
}

func TestFilterNoSurvivorContainsAnother(t *testing.T) {
	var rects []model.Rect
	for i := 0; i < 6; i++ {
		rects = append(rects,
			model.Rect{X: 100 + i*50, Y: 100 + i*300, W: 900 - i*40, H: 500},
			model.Rect{X: 110 + i*50, Y: 110 + i*300, W: 700, H: 200},
		)
	}

	cfg := DefaultConfig()
	got := Filter(contoursOf(rects...), pageW, pageH, cfg)
	for i, a := range got {
		for j, b := range got {
			if i != j && a.ContainsWithin(b, cfg.Tolerance) {
				t.Errorf("%v contains %v", a, b)
			}
		}
	}
}

func TestFilterRequireQuadrilateral(t *testing.T) {
	rect := model.Rect{X: 100, Y: 100, W: 600, H: 400}

	// A triangle whose bounding box matches the rectangle.
	var tri []image.Point
	for i := 0; i < 600; i++ {
		tri = append(tri, image.Pt(100+i, 100+i*399/599))
	}
	for i := 598; i > 0; i-- {
		tri = append(tri, image.Pt(100+i, 499))
	}
	for y := 499; y > 100; y-- {
		tri = append(tri, image.Pt(100, y))
	}
	triangle := vision.Contour{Points: tri, Parent: -1}

	cfg := DefaultConfig()
	if got := Filter([]vision.Contour{triangle}, pageW, pageH, cfg); len(got) != 1 {
		t.Errorf("without shape check: got %d boxes, want 1", len(got))
	}

	cfg.RequireQuadrilateral = true
	if got := Filter([]vision.Contour{triangle}, pageW, pageH, cfg); len(got) != 0 {
		t.Errorf("triangle kept with shape check: %v", got)
	}
	if got := Filter(contoursOf(rect), pageW, pageH, cfg); len(got) != 1 {
		t.Errorf("rectangle dropped with shape check")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(c *Config) {}, false},
		{"negative width", func(c *Config) { c.MinWidth = -1 }, true},
		{"zero fraction", func(c *Config) { c.MaxWidthFraction = 0 }, true},
		{"fraction above one", func(c *Config) { c.MaxHeightFraction = 1.2 }, true},
		{"negative tolerance", func(c *Config) { c.Tolerance = -2 }, true},
		{"quad without epsilon", func(c *Config) { c.RequireQuadrilateral = true; c.ApproxEpsilon = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(&c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestScaledConfig(t *testing.T) {
	c := ScaledConfig(150)
	if c.MinWidth != 150 || c.MinHeight != 50 {
		t.Errorf("ScaledConfig(150) min size = %dx%d, want 150x50", c.MinWidth, c.MinHeight)
	}
	if c.Tolerance != DefaultConfig().Tolerance {
		t.Error("ScaledConfig should not change tolerance")
	}
}
