// Package parser defines the table parsing engine collaborator and a
// stream-style engine that builds rows and columns from positioned words.
//
// The engine receives one detected region at a time, already mapped to page
// points, and returns the table inside it as rows of cell strings:
//
//	rows, err := engine.Parse(ctx, parser.Request{Region: region, PageSize: page.Size})
//
// A nil result with a nil error means the region held no table.
package parser

import (
	"context"

	"github.com/tsawler/tabscan/model"
)

// Request describes one region to parse.
type Request struct {
	// Region carries the page number, sequence and the area in points.
	Region model.TableRegion

	// PageSize is the size of the page in points.
	PageSize model.PageSize
}

// Engine converts a region of the source document into rows of cells.
type Engine interface {
	Parse(ctx context.Context, req Request) ([][]string, error)
}

// EngineFunc adapts a function to the Engine interface.
type EngineFunc func(ctx context.Context, req Request) ([][]string, error)

// Parse calls f.
func (f EngineFunc) Parse(ctx context.Context, req Request) ([][]string, error) {
	return f(ctx, req)
}
