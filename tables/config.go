package tables

import "fmt"

// Config holds region filter configuration. These thresholds are the main
// tuning surface for detection and should be scaled with the render DPI.
type Config struct {
	// Minimum box width in pixels (exclusive)
	MinWidth int

	// Minimum box height in pixels (exclusive)
	MinHeight int

	// Maximum box width as a fraction of the page width (exclusive)
	MaxWidthFraction float64

	// Maximum box height as a fraction of the page height (exclusive)
	MaxHeightFraction float64

	// Slack in pixels when testing whether one box lies inside another
	Tolerance int

	// Keep only contours that simplify to a four-sided polygon
	RequireQuadrilateral bool

	// Douglas-Peucker epsilon as a fraction of the contour perimeter
	ApproxEpsilon float64
}

// DefaultConfig returns default configuration for 300 DPI renders.
func DefaultConfig() Config {
	return Config{
		MinWidth:             300,
		MinHeight:            100,
		MaxWidthFraction:     0.95,
		MaxHeightFraction:    0.90,
		Tolerance:            3,
		RequireQuadrilateral: false,
		ApproxEpsilon:        0.02,
	}
}

// ScaledConfig returns DefaultConfig with the pixel thresholds scaled from
// 300 DPI to dpi.
func ScaledConfig(dpi float64) Config {
	c := DefaultConfig()
	if dpi <= 0 {
		return c
	}
	scale := dpi / 300
	c.MinWidth = int(float64(c.MinWidth) * scale)
	c.MinHeight = int(float64(c.MinHeight) * scale)
	return c
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.MinWidth < 0 || c.MinHeight < 0 {
		return fmt.Errorf("minimum size must not be negative (got %dx%d)", c.MinWidth, c.MinHeight)
	}
	if c.MaxWidthFraction <= 0 || c.MaxWidthFraction > 1 {
		return fmt.Errorf("max width fraction must be in (0,1], got %g", c.MaxWidthFraction)
	}
	if c.MaxHeightFraction <= 0 || c.MaxHeightFraction > 1 {
		return fmt.Errorf("max height fraction must be in (0,1], got %g", c.MaxHeightFraction)
	}
	if c.Tolerance < 0 {
		return fmt.Errorf("tolerance must not be negative, got %d", c.Tolerance)
	}
	if c.RequireQuadrilateral && c.ApproxEpsilon <= 0 {
		return fmt.Errorf("approximation epsilon must be positive, got %g", c.ApproxEpsilon)
	}
	return nil
}
