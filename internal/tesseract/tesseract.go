package tesseract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/otiai10/gosseract/v2"
	"github.com/vinylcat/sleevescan/internal/providers"
)

// Tesseract is a provider backed by the local libtesseract install
type Tesseract struct{}

// New returns a new Tesseract provider
func New() *Tesseract {
	return &Tesseract{}
}

// Name reports the engine name
func (t *Tesseract) Name() string {
	return "tesseract"
}

// ExtractText runs Tesseract over the image in the configured page segmentation mode.
// A client is created per call because gosseract clients are not safe for concurrent use.
func (t *Tesseract) ExtractText(ctx context.Context, image []byte, config providers.Config) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if config.Language != "" {
		if err := client.SetLanguage(config.Language); err != nil {
			return "", fmt.Errorf("failed to set language %q: %w", config.Language, err)
		}
	}

	if err := client.SetPageSegMode(gosseract.PageSegMode(config.PageSegMode)); err != nil {
		return "", fmt.Errorf("failed to set page segmentation mode %d: %w", config.PageSegMode, err)
	}

	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("failed to load image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("failed to recognize text: %w", err)
	}

	slog.Debug("Extracted OCR text", "provider", "tesseract", "length", len(text))
	return text, nil
}
