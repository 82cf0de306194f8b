package tabscan

import (
	"github.com/rs/zerolog"

	"github.com/tsawler/tabscan/parser"
	"github.com/tsawler/tabscan/pipeline"
	"github.com/tsawler/tabscan/raster"
	"github.com/tsawler/tabscan/tables"
	"github.com/tsawler/tabscan/vision"
)

// ExtractOptions holds configuration for detection and extraction.
type ExtractOptions struct {
	// Page selection, 1-indexed; nil means all pages
	pages []int

	// Rendering
	dpi       float64
	sourceDPI float64

	// Detection
	backend   string
	threshold vision.ThresholdConfig
	filter    tables.Config

	// Parsing
	engine parser.Engine

	logger zerolog.Logger
	hooks  []pipeline.PageHook
}

// defaultOptions returns the default extraction options.
func defaultOptions() ExtractOptions {
	return ExtractOptions{
		dpi:       raster.DefaultDPI,
		backend:   vision.DefaultBackend,
		threshold: vision.DefaultThresholdConfig(),
		filter:    tables.DefaultConfig(),
		logger:    zerolog.Nop(),
	}
}

// clone creates a deep copy of ExtractOptions.
func (o ExtractOptions) clone() ExtractOptions {
	c := o
	if o.pages != nil {
		c.pages = make([]int, len(o.pages))
		copy(c.pages, o.pages)
	}
	if o.hooks != nil {
		c.hooks = make([]pipeline.PageHook, len(o.hooks))
		copy(c.hooks, o.hooks)
	}
	return c
}
