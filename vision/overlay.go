package vision

import (
	"image"
	"image/color"
	"strconv"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/tsawler/tabscan/model"
)

// OverlayColor is the colour used to outline detected regions.
var OverlayColor = color.RGBA{R: 0, G: 255, B: 0, A: 255}

// OverlayThickness is the outline width in pixels.
const OverlayThickness = 3

// DrawOverlay returns a copy of img with each region outlined and labelled
// with its sequence number. img itself is not modified.
func DrawOverlay(img image.Image, regions []model.TableRegion) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)

	ink := image.NewUniform(OverlayColor)
	for _, r := range regions {
		box := r.Box.Image().Intersect(dst.Bounds())
		if box.Empty() {
			continue
		}
		t := OverlayThickness
		edges := []image.Rectangle{
			image.Rect(box.Min.X, box.Min.Y, box.Max.X, box.Min.Y+t),
			image.Rect(box.Min.X, box.Max.Y-t, box.Max.X, box.Max.Y),
			image.Rect(box.Min.X, box.Min.Y, box.Min.X+t, box.Max.Y),
			image.Rect(box.Max.X-t, box.Min.Y, box.Max.X, box.Max.Y),
		}
		for _, e := range edges {
			draw.Draw(dst, e.Intersect(box), ink, image.Point{}, draw.Src)
		}

		d := font.Drawer{
			Dst:  dst,
			Src:  ink,
			Face: basicfont.Face7x13,
			Dot:  fixed.P(box.Min.X+t+2, box.Min.Y+t+13),
		}
		d.DrawString(strconv.Itoa(r.Sequence))
	}

	return dst
}
