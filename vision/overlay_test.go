package vision

import (
	"image"
	"testing"

	"github.com/tsawler/tabscan/model"
)

func TestDrawOverlay(t *testing.T) {
	img := whitePage(200, 200)
	regions := []model.TableRegion{
		{Page: 1, Sequence: 1, Box: model.Rect{X: 20, Y: 20, W: 100, H: 60}},
	}

	out := DrawOverlay(img, regions)
	if out.Bounds() != img.Bounds() {
		t.Fatalf("overlay bounds = %v", out.Bounds())
	}

	green := OverlayColor
	for _, p := range []image.Point{{20, 50}, {119, 50}, {70, 20}, {70, 79}} {
		if got := out.RGBAAt(p.X, p.Y); got != green {
			t.Errorf("edge pixel %v = %v, want %v", p, got, green)
		}
	}
	if got := out.RGBAAt(100, 70); got.R != 255 || got.G != 255 || got.B != 255 {
		t.Errorf("interior pixel = %v, want white", got)
	}

	// The source image is left alone.
	if got := img.RGBAAt(20, 50); got.R != 255 || got.G != 255 || got.B != 255 {
		t.Errorf("source pixel changed to %v", got)
	}
}

func TestDrawOverlayNoRegions(t *testing.T) {
	img := whitePage(30, 30)
	out := DrawOverlay(img, nil)
	for i := range img.Pix {
		if out.Pix[i] != img.Pix[i] {
			t.Fatal("overlay without regions should equal the source")
		}
	}
}
