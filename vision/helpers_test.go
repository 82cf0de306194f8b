package vision

import (
	"image"
	"image/color"
	"image/draw"
)

// newMask returns a blank w x h mask.
func newMask(w, h int) *image.Gray {
	return image.NewGray(image.Rect(0, 0, w, h))
}

// fillRect sets every pixel of r in m to ink.
func fillRect(m *image.Gray, r image.Rectangle) {
	draw.Draw(m, r, image.NewUniform(color.Gray{Y: 255}), image.Point{}, draw.Src)
}

// ringRect draws the outline of r, t pixels thick, in m.
func ringRect(m *image.Gray, r image.Rectangle, t int) {
	fillRect(m, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+t))
	fillRect(m, image.Rect(r.Min.X, r.Max.Y-t, r.Max.X, r.Max.Y))
	fillRect(m, image.Rect(r.Min.X, r.Min.Y, r.Min.X+t, r.Max.Y))
	fillRect(m, image.Rect(r.Max.X-t, r.Min.Y, r.Max.X, r.Max.Y))
}

// whitePage returns a white w x h RGBA page.
func whitePage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	return img
}

// strokeRect draws the black outline of r, t pixels thick, on img.
func strokeRect(img *image.RGBA, r image.Rectangle, t int) {
	black := image.NewUniform(color.Black)
	for _, e := range []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+t),
		image.Rect(r.Min.X, r.Max.Y-t, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+t, r.Max.Y),
		image.Rect(r.Max.X-t, r.Min.Y, r.Max.X, r.Max.Y),
	} {
		draw.Draw(img, e, black, image.Point{}, draw.Src)
	}
}
