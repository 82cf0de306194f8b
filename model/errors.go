package model

import (
	"errors"
	"fmt"
)

// ErrInvalidPage is returned for a raster with no pixels or one that could
// not be decoded.
var ErrInvalidPage = errors.New("invalid page")

// ErrorKind classifies page- and region-scoped failures.
type ErrorKind string

const (
	KindInvalidPage       ErrorKind = "invalid_page"
	KindContourExtraction ErrorKind = "contour_extraction"
	KindRasterization     ErrorKind = "rasterization_failure"
	KindRegionParse       ErrorKind = "region_parse_failure"
	KindTextRecognition   ErrorKind = "text_recognition_failure"
)

// Error is a failure scoped to one page, or to one region when Sequence is
// non-zero. None of these abort a document run.
type Error struct {
	Kind     ErrorKind
	Page     int
	Sequence int
	Err      error
}

func (e *Error) Error() string {
	scope := fmt.Sprintf("page %d", e.Page)
	if e.Sequence > 0 {
		scope = fmt.Sprintf("page %d region %d", e.Page, e.Sequence)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, scope, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, scope)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// PageError creates a page-scoped error.
func PageError(kind ErrorKind, page int, err error) *Error {
	return &Error{Kind: kind, Page: page, Err: err}
}

// RegionError creates a region-scoped error.
func RegionError(kind ErrorKind, page, sequence int, err error) *Error {
	return &Error{Kind: kind, Page: page, Sequence: sequence, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
