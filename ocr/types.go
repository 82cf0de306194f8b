package ocr

import (
	"errors"

	"github.com/tsawler/tabscan/model"
)

// ErrOCRNotEnabled is returned when OCR functions are called but OCR support
// was not compiled in. Rebuild with -tags ocr to enable OCR support.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Word is a recognised word in pixel space.
type Word struct {
	Text       string
	BBox       model.Rect
	Confidence float64 // 0-100
}

// PageSegMode represents page segmentation modes for OCR.
// These control how Tesseract analyzes the page layout.
type PageSegMode int

// Page segmentation modes (matching Tesseract's numbering).
const (
	PSM_AUTO          PageSegMode = 3  // Fully automatic (default)
	PSM_SINGLE_COLUMN PageSegMode = 4  // Single column of variable sizes
	PSM_SINGLE_BLOCK  PageSegMode = 6  // Single uniform block of text
	PSM_SPARSE_TEXT   PageSegMode = 11 // Find as much text as possible
)
