package providers

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when an engine is missing credentials or a runtime dependency
var ErrNotConfigured = errors.New("engine not configured")

// Config represents the per-call configuration for an OCR engine
type Config struct {
	Model       string
	Language    string
	PageSegMode int
	Temperature float64
	Prompt      string
}

// Provider defines the interface for a text recognition engine.
// Image is a PNG-encoded, already pre-processed raster.
type Provider interface {
	ExtractText(ctx context.Context, image []byte, config Config) (string, error)
}

// Named is implemented by providers that report their engine name
type Named interface {
	Name() string
}
