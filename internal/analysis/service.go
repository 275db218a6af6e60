// Package analysis orchestrates one analyze call: barcode first, OCR as the fallback.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sort"

	"github.com/vinylcat/sleevescan/internal/barcode"
	"github.com/vinylcat/sleevescan/internal/config"
	"github.com/vinylcat/sleevescan/internal/imaging"
	"github.com/vinylcat/sleevescan/internal/models"
	"github.com/vinylcat/sleevescan/internal/ocr"
	"golang.org/x/sync/errgroup"
)

// BarcodeFinder locates a valid retail barcode in an image
type BarcodeFinder interface {
	Find(img image.Image) (string, barcode.Extraction, bool)
}

// Recognizer extracts raw text from an image
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) ocr.Result
}

// FieldGuesser turns raw text into field guesses
type FieldGuesser interface {
	Guess(text string) models.Fields
}

// Service runs the analyze pipeline. It holds no per-call state.
type Service struct {
	barcodes   BarcodeFinder
	recognizer Recognizer
	guesser    FieldGuesser
	imaging    config.ImagingConfig
}

// NewService creates a new analysis service
func NewService(barcodes BarcodeFinder, recognizer Recognizer, guesser FieldGuesser, cfg config.ImagingConfig) *Service {
	return &Service{
		barcodes:   barcodes,
		recognizer: recognizer,
		guesser:    guesser,
		imaging:    cfg,
	}
}

type decoded struct {
	label models.Label
	img   image.Image
}

// Analyze examines up to two sleeve photographs. The result is always ok;
// component failures only reduce the number of fields returned.
func (s *Service) Analyze(ctx context.Context, uploads []models.Upload) models.AnalyzeResult {
	logger := LoggerFrom(ctx)
	result := models.AnalyzeResult{OK: true}

	images := s.decode(logger, uploads)
	if len(images) == 0 {
		logger.Info("No usable images", "uploads", len(uploads))
		return result
	}

	if code, ok := s.findBarcode(logger, images); ok {
		result.Data.Barcode = code
		return result
	}

	result.Data = s.recognize(ctx, logger, distinct(logger, images, s.imaging.DuplicateThreshold))
	return result
}

func (s *Service) decode(logger *slog.Logger, uploads []models.Upload) []decoded {
	opts := imaging.DecodeOptions{
		MaxDimension:     s.imaging.MaxDimension,
		ApplyOrientation: s.imaging.ApplyOrientation,
	}

	var images []decoded
	for _, u := range uploads {
		img, err := imaging.Decode(u.Data, opts)
		if err != nil {
			logger.Warn("Dropping undecodable image", "label", u.Label, "filename", u.Filename, "class", decodeClass(err), "err", err)
			continue
		}
		images = append(images, decoded{label: u.Label, img: img})
	}
	return images
}

// distinct drops images that duplicate an earlier one. It only applies to the
// OCR pass; every decoded image gets a barcode pass.
func distinct(logger *slog.Logger, images []decoded, threshold int) []decoded {
	if threshold < 0 {
		return images
	}

	var kept []decoded
	for _, d := range images {
		if dup := duplicateOf(kept, d.img, threshold); dup != "" {
			logger.Info("Skipping text recognition of duplicate image", "label", d.label, "duplicate_of", dup)
			continue
		}
		kept = append(kept, d)
	}
	return kept
}

func duplicateOf(images []decoded, img image.Image, threshold int) models.Label {
	for _, d := range images {
		if imaging.Duplicate(d.img, img, threshold) {
			return d.label
		}
	}
	return ""
}

func decodeClass(err error) string {
	switch {
	case errors.Is(err, imaging.ErrEmptyInput):
		return "empty"
	case errors.Is(err, imaging.ErrUnsupportedFormat):
		return "unsupported_format"
	default:
		return "corrupt"
	}
}

// findBarcode scans back images before front images and stops at the first valid code
func (s *Service) findBarcode(logger *slog.Logger, images []decoded) (string, bool) {
	ordered := make([]decoded, len(images))
	copy(ordered, images)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].label == models.LabelBack && ordered[j].label != models.LabelBack
	})

	for _, d := range ordered {
		code, ext, ok := s.barcodes.Find(d.img)
		for _, v := range ext.Variants {
			if v.Err != nil {
				logger.Debug("Barcode variant failed", "label", d.label, "variant", v.Variant, "class", barcode.Classify(v.Err))
			}
		}
		if ok {
			logger.Info("Found barcode", "label", d.label, "barcode", code)
			return code, true
		}
		if len(ext.Candidates) > 0 {
			logger.Debug("No valid barcode among candidates", "label", d.label, "candidates", ext.Candidates)
		}
	}
	return "", false
}

// recognize runs OCR on every image concurrently and merges in upload order
func (s *Service) recognize(ctx context.Context, logger *slog.Logger, images []decoded) models.Fields {
	guesses := make([]models.Fields, len(images))

	var g errgroup.Group
	for i, d := range images {
		g.Go(func() error {
			res := s.recognizer.Recognize(ctx, d.img)
			if res.Err != nil {
				logger.Debug("Text recognition failed", "label", d.label, "class", ocr.Classify(res.Err))
				return fmt.Errorf("%s image: %w", d.label, res.Err)
			}
			guesses[i] = s.guesser.Guess(res.Text)
			return nil
		})
	}
	// failed images contribute no fields; the first failure is reported
	if err := g.Wait(); err != nil {
		logger.Warn("Text recognition failed", "err", err)
	}

	var merged models.Fields
	for _, f := range guesses {
		merge(&merged, f)
	}
	return merged
}

// merge copies fields from src that dst does not have yet
func merge(dst *models.Fields, src models.Fields) {
	if dst.Artist == "" {
		dst.Artist = src.Artist
	}
	if dst.Title == "" {
		dst.Title = src.Title
	}
	if dst.Year == 0 {
		dst.Year = src.Year
	}
}
