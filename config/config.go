// Package config loads tabscan settings from a YAML file, a .env file and
// TABSCAN_* environment variables, in that order of precedence (last wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/tsawler/tabscan/internal/logging"
	"github.com/tsawler/tabscan/parser"
	"github.com/tsawler/tabscan/raster"
	"github.com/tsawler/tabscan/tables"
	"github.com/tsawler/tabscan/vision"
)

// Config holds all tabscan configuration.
type Config struct {
	Render    RenderConfig    `yaml:"render"`
	Detection DetectionConfig `yaml:"detection"`
	Parser    ParserConfig    `yaml:"parser"`
	Output    OutputConfig    `yaml:"output"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Log       LogConfig       `yaml:"log"`
}

// RenderConfig holds rasterization settings.
type RenderConfig struct {
	DPI       float64 `yaml:"dpi"`
	SourceDPI float64 `yaml:"source_dpi"` // 0 means same as dpi
}

// DetectionConfig holds preprocessing and region filter settings. Pixel
// values are in render DPI units.
type DetectionConfig struct {
	Backend              string  `yaml:"backend"`
	BlockSize            int     `yaml:"block_size"`
	Constant             float64 `yaml:"constant"`
	MinWidth             int     `yaml:"min_width"`
	MinHeight            int     `yaml:"min_height"`
	MaxWidthFraction     float64 `yaml:"max_width_fraction"`
	MaxHeightFraction    float64 `yaml:"max_height_fraction"`
	Tolerance            int     `yaml:"tolerance"`
	RequireQuadrilateral bool    `yaml:"require_quadrilateral"`
}

// ParserConfig holds parsing engine settings.
type ParserConfig struct {
	Source        string  `yaml:"source"` // hocr or ocr
	HOCRDir       string  `yaml:"hocr_dir"`
	Language      string  `yaml:"language"`
	MinRows       int     `yaml:"min_rows"`
	MinCols       int     `yaml:"min_cols"`
	RowOverlap    float64 `yaml:"row_overlap"`
	ColumnGap     float64 `yaml:"column_gap"`
	MinConfidence float64 `yaml:"min_confidence"`
}

// OutputConfig holds report settings.
type OutputConfig struct {
	Dir        string   `yaml:"dir"`
	Formats    []string `yaml:"formats"` // json, markdown, xlsx
	SaveImages bool     `yaml:"save_images"`
}

// AnalysisConfig holds invoice analysis settings.
type AnalysisConfig struct {
	Language string `yaml:"language"` // Tesseract languages, "+" separated
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Source names accepted in ParserConfig.Source.
const (
	SourceHOCR = "hocr"
	SourceOCR  = "ocr"
)

var validFormats = map[string]bool{"json": true, "markdown": true, "xlsx": true}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	threshold := vision.DefaultThresholdConfig()
	filter := tables.DefaultConfig()
	stream := parser.DefaultConfig()

	return &Config{
		Render: RenderConfig{
			DPI: raster.DefaultDPI,
		},
		Detection: DetectionConfig{
			Backend:              vision.DefaultBackend,
			BlockSize:            threshold.BlockSize,
			Constant:             threshold.C,
			MinWidth:             filter.MinWidth,
			MinHeight:            filter.MinHeight,
			MaxWidthFraction:     filter.MaxWidthFraction,
			MaxHeightFraction:    filter.MaxHeightFraction,
			Tolerance:            filter.Tolerance,
			RequireQuadrilateral: filter.RequireQuadrilateral,
		},
		Parser: ParserConfig{
			Source:        SourceHOCR,
			Language:      "eng",
			MinRows:       stream.MinRows,
			MinCols:       stream.MinCols,
			RowOverlap:    stream.RowOverlap,
			ColumnGap:     stream.ColumnGap,
			MinConfidence: stream.MinConfidence,
		},
		Output: OutputConfig{
			Dir:     "output",
			Formats: []string{"json", "markdown"},
		},
		Analysis: AnalysisConfig{
			Language: "heb+eng",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads the configuration. path may be empty, in which case only the
// defaults, .env and the environment apply. A missing .env is ignored.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Render.DPI <= 0 {
		return fmt.Errorf("render.dpi must be positive, got %v", c.Render.DPI)
	}
	if c.Render.SourceDPI < 0 {
		return fmt.Errorf("render.source_dpi must not be negative, got %v", c.Render.SourceDPI)
	}
	if err := c.Threshold().Validate(); err != nil {
		return fmt.Errorf("detection: %w", err)
	}
	if err := c.Filter().Validate(); err != nil {
		return fmt.Errorf("detection: %w", err)
	}

	switch c.Parser.Source {
	case SourceHOCR, SourceOCR:
	default:
		return fmt.Errorf("parser.source must be %q or %q, got %q", SourceHOCR, SourceOCR, c.Parser.Source)
	}
	if c.Parser.MinRows < 1 || c.Parser.MinCols < 1 {
		return errors.New("parser.min_rows and parser.min_cols must be at least 1")
	}
	if c.Parser.RowOverlap < 0 || c.Parser.RowOverlap > 1 {
		return fmt.Errorf("parser.row_overlap must be in [0,1], got %v", c.Parser.RowOverlap)
	}

	for _, f := range c.Output.Formats {
		if !validFormats[f] {
			return fmt.Errorf("unknown output format %q", f)
		}
	}
	return nil
}

// Threshold returns the preprocessing configuration.
func (c *Config) Threshold() vision.ThresholdConfig {
	return vision.ThresholdConfig{BlockSize: c.Detection.BlockSize, C: c.Detection.Constant}
}

// Filter returns the region filter configuration.
func (c *Config) Filter() tables.Config {
	f := tables.DefaultConfig()
	f.MinWidth = c.Detection.MinWidth
	f.MinHeight = c.Detection.MinHeight
	f.MaxWidthFraction = c.Detection.MaxWidthFraction
	f.MaxHeightFraction = c.Detection.MaxHeightFraction
	f.Tolerance = c.Detection.Tolerance
	f.RequireQuadrilateral = c.Detection.RequireQuadrilateral
	return f
}

// Stream returns the stream engine configuration.
func (c *Config) Stream() parser.Config {
	return parser.Config{
		MinRows:       c.Parser.MinRows,
		MinCols:       c.Parser.MinCols,
		RowOverlap:    c.Parser.RowOverlap,
		ColumnGap:     c.Parser.ColumnGap,
		MinConfidence: c.Parser.MinConfidence,
	}
}

// Logging returns the logger configuration.
func (c *Config) Logging() logging.Config {
	return logging.Config{Level: c.Log.Level, Format: c.Log.Format}
}

// applyEnvOverrides applies TABSCAN_* environment variables to cfg.
func applyEnvOverrides(cfg *Config) error {
	floats := map[string]*float64{
		"TABSCAN_DPI":                 &cfg.Render.DPI,
		"TABSCAN_SOURCE_DPI":          &cfg.Render.SourceDPI,
		"TABSCAN_THRESHOLD_CONSTANT":  &cfg.Detection.Constant,
		"TABSCAN_MAX_WIDTH_FRACTION":  &cfg.Detection.MaxWidthFraction,
		"TABSCAN_MAX_HEIGHT_FRACTION": &cfg.Detection.MaxHeightFraction,
	}
	for key, dst := range floats {
		if v := os.Getenv(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = f
		}
	}

	ints := map[string]*int{
		"TABSCAN_BLOCK_SIZE": &cfg.Detection.BlockSize,
		"TABSCAN_MIN_WIDTH":  &cfg.Detection.MinWidth,
		"TABSCAN_MIN_HEIGHT": &cfg.Detection.MinHeight,
		"TABSCAN_TOLERANCE":  &cfg.Detection.Tolerance,
	}
	for key, dst := range ints {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
		}
	}

	strs := map[string]*string{
		"TABSCAN_BACKEND":           &cfg.Detection.Backend,
		"TABSCAN_PARSER_SOURCE":     &cfg.Parser.Source,
		"TABSCAN_HOCR_DIR":          &cfg.Parser.HOCRDir,
		"TABSCAN_OCR_LANGUAGE":      &cfg.Parser.Language,
		"TABSCAN_ANALYSIS_LANGUAGE": &cfg.Analysis.Language,
		"TABSCAN_OUTPUT_DIR":        &cfg.Output.Dir,
		"TABSCAN_LOG_LEVEL":         &cfg.Log.Level,
		"TABSCAN_LOG_FORMAT":        &cfg.Log.Format,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("TABSCAN_OUTPUT_FORMATS"); v != "" {
		var formats []string
		for _, f := range strings.Split(v, ",") {
			if f = strings.TrimSpace(f); f != "" {
				formats = append(formats, f)
			}
		}
		cfg.Output.Formats = formats
	}
	return nil
}
