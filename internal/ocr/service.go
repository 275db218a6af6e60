// Package ocr turns a decoded sleeve image into raw text.
//
// The Service owns pre-processing and failure classification. The engine
// that actually reads the pixels is any providers.Provider.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"

	"github.com/vinylcat/sleevescan/internal/config"
	"github.com/vinylcat/sleevescan/internal/imaging"
	"github.com/vinylcat/sleevescan/internal/providers"
)

// Result is the outcome of one recognition. Text is empty whenever Err is set.
type Result struct {
	Text string
	Err  error
}

// Service handles OCR extraction from images
type Service struct {
	provider providers.Provider
	engine   string
	config   providers.Config
}

// NewService creates a new OCR service over provider
func NewService(provider providers.Provider, cfg config.OCRConfig) *Service {
	engine := cfg.Engine
	if n, ok := provider.(providers.Named); ok {
		engine = n.Name()
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel(engine)
	}

	return &Service{
		provider: provider,
		engine:   engine,
		config: providers.Config{
			Model:       model,
			Language:    cfg.Language,
			PageSegMode: cfg.PageSegMode,
			Temperature: cfg.Temperature,
			Prompt:      Prompt,
		},
	}
}

// Engine reports the name of the engine in use
func (s *Service) Engine() string {
	return s.engine
}

// Recognize extracts the text of img. It never returns an error directly;
// failures are classified into Result.Err and Result.Text is left empty.
func (s *Service) Recognize(ctx context.Context, img image.Image) Result {
	const op = "Recognize"

	if img == nil || img.Bounds().Empty() {
		return Result{Err: &Error{Op: op, Engine: s.engine, Err: ErrEmptyImage}}
	}

	data, err := imaging.EncodePNG(imaging.OCRInput(img))
	if err != nil {
		return Result{Err: &Error{Op: op, Engine: s.engine, Err: fmt.Errorf("%w: %v", ErrRecognitionFailed, err)}}
	}

	text, err := s.extract(ctx, data)
	if err != nil {
		return Result{Err: &Error{Op: op, Engine: s.engine, Err: classify(ctx, err)}}
	}

	slog.Debug("Extracted OCR text", "engine", s.engine, "length", len(text))
	return Result{Text: text}
}

func (s *Service) extract(ctx context.Context, data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("engine panic: %v", r)
		}
	}()
	return s.provider.ExtractText(ctx, data, s.config)
}

func classify(ctx context.Context, err error) error {
	switch {
	case ctx.Err() != nil, errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrCanceled, err)
	case errors.Is(err, providers.ErrNotConfigured):
		return fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	default:
		return fmt.Errorf("%w: %v", ErrRecognitionFailed, err)
	}
}

// DefaultModel returns the model used by an engine when none is configured
func DefaultModel(engine string) string {
	switch engine {
	case "openai":
		model := os.Getenv("OPENAI_MODEL")
		if model == "" {
			return "gpt-4o"
		}
		return model
	case "ollama":
		model := os.Getenv("OLLAMA_MODEL")
		if model == "" {
			return "mistral-small3.2:24b"
		}
		return model
	case "gemini":
		model := os.Getenv("GEMINI_MODEL")
		if model == "" {
			return "gemini-2.5-flash"
		}
		return model
	default:
		return ""
	}
}
