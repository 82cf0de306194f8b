package vision

import (
	"fmt"
	"image"
	"sort"

	"github.com/tsawler/tabscan/model"
)

// Backend is the interface for the raster stages of region detection.
type Backend interface {
	// Preprocess turns a page raster into a binary mask
	Preprocess(page *model.Page) (*image.Gray, error)

	// Contours finds the closed borders in a mask
	Contours(mask *image.Gray) ([]Contour, error)

	// Name returns the backend name
	Name() string
}

// Factory builds a backend for a threshold configuration.
type Factory func(config ThresholdConfig) Backend

// BackendRegistry holds registered backend factories
type BackendRegistry struct {
	factories map[string]Factory
}

// NewRegistry creates a new backend registry
func NewRegistry() *BackendRegistry {
	return &BackendRegistry{
		factories: make(map[string]Factory),
	}
}

// Register registers a backend factory under name
func (r *BackendRegistry) Register(name string, factory Factory) {
	r.factories[name] = factory
}

// New builds the named backend
func (r *BackendRegistry) New(name string, config ThresholdConfig) (Backend, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown vision backend %q (available: %v)", name, r.List())
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return factory(config), nil
}

// List returns all registered backend names in sorted order
func (r *BackendRegistry) List() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Global registry
var globalRegistry = NewRegistry()

// RegisterBackend registers a backend factory globally
func RegisterBackend(name string, factory Factory) {
	globalRegistry.Register(name, factory)
}

// NewBackend builds a globally registered backend
func NewBackend(name string, config ThresholdConfig) (Backend, error) {
	return globalRegistry.New(name, config)
}

// ListBackends returns all registered backend names
func ListBackends() []string {
	return globalRegistry.List()
}

// DefaultBackend is the name of the pure Go backend.
const DefaultBackend = "native"

// NativeBackend implements Backend in pure Go.
type NativeBackend struct {
	pre *Preprocessor
}

// NewNativeBackend creates the pure Go backend.
func NewNativeBackend(config ThresholdConfig) *NativeBackend {
	return &NativeBackend{pre: NewPreprocessor(config)}
}

// Name returns the backend's identifier ("native").
func (b *NativeBackend) Name() string {
	return DefaultBackend
}

// Preprocess thresholds the page. See [Threshold].
func (b *NativeBackend) Preprocess(page *model.Page) (*image.Gray, error) {
	return b.pre.Preprocess(page)
}

// Contours traces the mask. See [FindContours].
func (b *NativeBackend) Contours(mask *image.Gray) ([]Contour, error) {
	return FindContours(mask)
}

func init() {
	RegisterBackend(DefaultBackend, func(config ThresholdConfig) Backend {
		return NewNativeBackend(config)
	})
}
