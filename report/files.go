package report

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/tsawler/tabscan/model"
)

// PagePath returns the path of the raster for page in dir.
func PagePath(dir string, page int) string {
	return filepath.Join(dir, fmt.Sprintf("page_%d.png", page))
}

// OverlayPath returns the path of the detection overlay for page in dir.
func OverlayPath(dir string, page int) string {
	return filepath.Join(dir, fmt.Sprintf("page_%d_detected.png", page))
}

// SavePNG encodes img to path, creating parent directories.
func SavePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}

// Writer is the signature shared by WriteJSON, WriteMarkdown and WriteXLSX.
type Writer func(w io.Writer, result *model.DocumentResult) error

// WriteFile creates path and writes result to it with write.
func WriteFile(path string, result *model.DocumentResult, write Writer) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f, result); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
