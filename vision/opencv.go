//go:build gocv

package vision

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/tsawler/tabscan/model"
)

// OpenCVBackend implements Backend with OpenCV through gocv. It is only
// compiled with the "gocv" build tag and needs OpenCV installed:
//
//	go build -tags gocv
type OpenCVBackend struct {
	config ThresholdConfig
}

// NewOpenCVBackend creates the OpenCV backend.
func NewOpenCVBackend(config ThresholdConfig) *OpenCVBackend {
	return &OpenCVBackend{config: config}
}

// Name returns the backend's identifier ("opencv").
func (b *OpenCVBackend) Name() string {
	return "opencv"
}

// Preprocess runs cv::adaptiveThreshold on the inverted grayscale page.
func (b *OpenCVBackend) Preprocess(page *model.Page) (*image.Gray, error) {
	if page == nil || page.Empty() {
		return nil, fmt.Errorf("%w: page has no pixels", model.ErrInvalidPage)
	}

	src, err := gocv.ImageToMatRGB(page.Image)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidPage, err)
	}
	defer src.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)

	inverted := gocv.NewMat()
	defer inverted.Close()
	gocv.BitwiseNot(gray, &inverted)

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.AdaptiveThreshold(inverted, &binary, 255,
		gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinary,
		b.config.BlockSize, float32(-b.config.C))

	img, err := binary.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert mask: %w", err)
	}
	mask, ok := img.(*image.Gray)
	if !ok {
		return nil, fmt.Errorf("unexpected mask type %T", img)
	}
	return mask, nil
}

// Contours runs cv::findContours with RETR_TREE.
func (b *OpenCVBackend) Contours(mask *image.Gray) ([]Contour, error) {
	if mask == nil || mask.Bounds().Empty() {
		return nil, fmt.Errorf("%w: mask has zero area", model.ErrInvalidPage)
	}

	mat, err := gocv.ImageGrayToMatGray(mask)
	if err != nil {
		return nil, fmt.Errorf("failed to load mask: %w", err)
	}
	defer mat.Close()

	hierarchy := gocv.NewMat()
	defer hierarchy.Close()

	found := gocv.FindContoursWithParams(mat, &hierarchy, gocv.RetrievalTree, gocv.ChainApproxNone)
	defer found.Close()

	contours := make([]Contour, found.Size())
	for i := range contours {
		// Hierarchy rows are [next, previous, first child, parent].
		parent := int(hierarchy.GetVeciAt(0, i)[3])
		contours[i] = Contour{Points: found.At(i).ToPoints(), Parent: parent}
	}
	// Holes sit at odd nesting depths.
	for i := range contours {
		depth := 0
		for p := contours[i].Parent; p >= 0; p = contours[p].Parent {
			depth++
		}
		contours[i].Hole = depth%2 == 1
	}
	return contours, nil
}

func init() {
	RegisterBackend("opencv", func(config ThresholdConfig) Backend {
		return NewOpenCVBackend(config)
	})
}
