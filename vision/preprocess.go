package vision

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/tsawler/tabscan/model"
)

// ThresholdConfig controls adaptive thresholding.
type ThresholdConfig struct {
	// Side of the local window, in pixels. Must be odd and at least 3.
	BlockSize int

	// A pixel is ink when it is darker than its local mean by more than C.
	C float64
}

// DefaultThresholdConfig returns the settings used for 300 DPI renders.
func DefaultThresholdConfig() ThresholdConfig {
	return ThresholdConfig{
		BlockSize: 15,
		C:         2,
	}
}

// Validate checks the configuration.
func (c ThresholdConfig) Validate() error {
	if c.BlockSize < 3 || c.BlockSize%2 == 0 {
		return fmt.Errorf("block size must be an odd number >= 3, got %d", c.BlockSize)
	}
	return nil
}

// Sigma returns the Gaussian sigma for the window, derived from the block
// size the same way OpenCV's getGaussianKernel does.
func (c ThresholdConfig) Sigma() float64 {
	return 0.3*((float64(c.BlockSize)-1)*0.5-1) + 0.8
}

// Preprocessor turns a page raster into a binary mask.
type Preprocessor struct {
	config ThresholdConfig
}

// NewPreprocessor creates a preprocessor with the given configuration.
func NewPreprocessor(config ThresholdConfig) *Preprocessor {
	return &Preprocessor{config: config}
}

// Preprocess converts the page to grayscale and applies a Gaussian-weighted
// adaptive threshold. Ink pixels are 255 in the returned mask, background
// pixels 0.
func (p *Preprocessor) Preprocess(page *model.Page) (*image.Gray, error) {
	if page == nil || page.Empty() {
		return nil, fmt.Errorf("%w: page has no pixels", model.ErrInvalidPage)
	}
	return Threshold(page.Image, p.config)
}

// Threshold computes the binary mask of img. Uneven lighting across a scan
// rules out a single global cut-off, so each pixel is compared against the
// Gaussian-weighted mean of its own neighbourhood.
func Threshold(img image.Image, config ThresholdConfig) (*image.Gray, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: image has zero area", model.ErrInvalidPage)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	gray := imaging.Grayscale(img)
	mean := imaging.Blur(gray, config.Sigma())

	w, h := gray.Bounds().Dx(), gray.Bounds().Dy()
	mask := image.NewGray(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		src := gray.Pix[y*gray.Stride:]
		avg := mean.Pix[y*mean.Stride:]
		dst := mask.Pix[y*mask.Stride:]
		for x := 0; x < w; x++ {
			// R, G and B are equal after Grayscale.
			if float64(src[x*4]) < float64(avg[x*4])-config.C {
				dst[x] = 255
			}
		}
	}

	return mask, nil
}
