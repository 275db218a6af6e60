// Package engines wires the configured OCR engine and the analysis pipeline.
package engines

import (
	"fmt"

	"github.com/vinylcat/sleevescan/internal/analysis"
	"github.com/vinylcat/sleevescan/internal/barcode"
	"github.com/vinylcat/sleevescan/internal/config"
	"github.com/vinylcat/sleevescan/internal/fields"
	"github.com/vinylcat/sleevescan/internal/gemini"
	"github.com/vinylcat/sleevescan/internal/ocr"
	"github.com/vinylcat/sleevescan/internal/ollama"
	"github.com/vinylcat/sleevescan/internal/openai"
	"github.com/vinylcat/sleevescan/internal/providers"
	"github.com/vinylcat/sleevescan/internal/tesseract"
	"github.com/vinylcat/sleevescan/internal/vision"
)

// New returns the provider for an engine name
func New(engine string) (providers.Provider, error) {
	switch engine {
	case "tesseract":
		return tesseract.New(), nil
	case "vision":
		return vision.New(), nil
	case "gemini":
		return gemini.New(), nil
	case "openai":
		return openai.New(), nil
	case "ollama":
		return ollama.New(), nil
	default:
		return nil, fmt.Errorf("unsupported OCR engine: %s", engine)
	}
}

// NewAnalyzer builds the full analysis service from cfg
func NewAnalyzer(cfg *config.Config) (*analysis.Service, error) {
	provider, err := New(cfg.OCR.Engine)
	if err != nil {
		return nil, err
	}

	guesser, err := fields.NewGuesser(cfg.Heuristics)
	if err != nil {
		return nil, err
	}

	return analysis.NewService(
		barcode.NewExtractor(barcode.NewZXingDecoder(cfg.Barcode.TryHarder)),
		ocr.NewService(provider, cfg.OCR),
		guesser,
		cfg.Imaging,
	), nil
}
