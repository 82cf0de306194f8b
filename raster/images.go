package raster

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/tsawler/tabscan/model"
)

// Extensions lists the image file extensions Dir picks up.
var Extensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

// Images serves one page per image file, e.g. the page_N.png files written
// by a PDF-to-image converter or a scanner.
type Images struct {
	paths []string

	// SourceDPI is the resolution the files were scanned or rendered at.
	// Zero means "same as the requested DPI", so files are used as-is.
	SourceDPI float64
}

// NewImages creates a rasterizer over the given files, in page order.
func NewImages(paths ...string) *Images {
	return &Images{paths: append([]string(nil), paths...)}
}

// Dir creates a rasterizer over every image file in dir, sorted in natural
// order so page_2.png comes before page_10.png.
func Dir(dir string) (*Images, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !isImage(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no image files in %s", dir)
	}

	sort.SliceStable(paths, func(i, j int) bool {
		return naturalLess(filepath.Base(paths[i]), filepath.Base(paths[j]))
	})
	return NewImages(paths...), nil
}

// Paths returns the files backing each page.
func (r *Images) Paths() []string {
	return append([]string(nil), r.paths...)
}

// PageCount returns the number of files.
func (r *Images) PageCount() int {
	return len(r.paths)
}

// Render decodes the file for page. When SourceDPI differs from dpi the
// image is resampled so that pixel coordinates are in dpi units.
func (r *Images) Render(ctx context.Context, page int, dpi float64) (*model.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if page < 1 || page > len(r.paths) {
		return nil, fmt.Errorf("%w: %d (document has %d pages)", ErrPageRange, page, len(r.paths))
	}
	if dpi <= 0 {
		return nil, fmt.Errorf("invalid DPI %v", dpi)
	}

	img, err := decodeFile(r.paths[page-1])
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: %s has zero area", model.ErrInvalidPage, r.paths[page-1])
	}

	source := r.SourceDPI
	if source <= 0 {
		source = dpi
	}

	p := &model.Page{
		Number: page,
		DPI:    dpi,
		Size: model.PageSize{
			Width:  float64(b.Dx()) * 72 / source,
			Height: float64(b.Dy()) * 72 / source,
		},
		Image: img,
	}
	if source != dpi {
		scale := dpi / source
		w := int(math.Round(float64(b.Dx()) * scale))
		h := int(math.Round(float64(b.Dy()) * scale))
		p.Image = imaging.Resize(img, w, h, imaging.Lanczos)
	}
	return p, nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode %s: %v", model.ErrInvalidPage, path, err)
	}
	return img, nil
}

func isImage(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// naturalLess compares strings treating runs of digits as numbers.
func naturalLess(a, b string) bool {
	for a != "" && b != "" {
		ra, rb := rune(a[0]), rune(b[0])
		if unicode.IsDigit(ra) && unicode.IsDigit(rb) {
			na, restA := leadingNumber(a)
			nb, restB := leadingNumber(b)
			if na != nb {
				return na < nb
			}
			a, b = restA, restB
			continue
		}
		if ra != rb {
			return ra < rb
		}
		a, b = a[1:], b[1:]
	}
	return len(a) < len(b)
}

func leadingNumber(s string) (int, string) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	n, _ := strconv.Atoi(s[:i])
	return n, s[i:]
}
