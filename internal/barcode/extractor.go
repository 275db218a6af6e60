// Package barcode extracts retail barcodes from sleeve photographs.
//
// Extraction runs a symbol decoder over several pre-processing variants of
// one image, reduces every decoded payload to digits and keeps the first
// occurrence of each. Selection then validates EAN-13, UPC-A and EAN-8 check
// digits in that fixed priority order.
package barcode

import (
	"fmt"
	"image"
	"strings"

	"github.com/vinylcat/sleevescan/internal/imaging"
)

// SymbolDecoder decodes the payloads of every barcode symbol it finds in img
type SymbolDecoder interface {
	Decode(img image.Image) ([]string, error)
}

// VariantResult records what one pre-processing variant produced
type VariantResult struct {
	Variant  string
	Payloads []string
	Err      error
}

// Extraction is the outcome of running the decoder over one image
type Extraction struct {
	Candidates []string
	Variants   []VariantResult
}

// Extractor finds barcode candidates in decoded images
type Extractor struct {
	decoder SymbolDecoder
}

// NewExtractor creates an extractor backed by decoder
func NewExtractor(decoder SymbolDecoder) *Extractor {
	return &Extractor{decoder: decoder}
}

// Extract returns the de-duplicated digit candidates found in img, in discovery order.
// Decoding failures are recorded per variant and never abort extraction.
func (e *Extractor) Extract(img image.Image) Extraction {
	var ext Extraction
	var seen []string

	for _, v := range imaging.BarcodeVariants(img) {
		payloads, err := e.decodeVariant(v)
		ext.Variants = append(ext.Variants, VariantResult{Variant: v.Name, Payloads: payloads, Err: err})
		if err != nil {
			continue
		}

		for _, p := range payloads {
			if d := Normalize(strings.ToValidUTF8(p, "")); d != "" {
				seen = append(seen, d)
			}
		}
	}

	ext.Candidates = Dedup(seen)
	return ext
}

// Find extracts candidates from img and selects the best valid code
func (e *Extractor) Find(img image.Image) (string, Extraction, bool) {
	ext := e.Extract(img)
	code, _, ok := Select(ext.Candidates)
	return code, ext, ok
}

func (e *Extractor) decodeVariant(v imaging.Variant) (payloads []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			payloads = nil
			err = &VariantError{Variant: v.Name, Err: fmt.Errorf("%w: panic: %v", ErrDecoderInternal, r)}
		}
	}()

	payloads, err = e.decoder.Decode(v.Image)
	if err != nil {
		return nil, &VariantError{Variant: v.Name, Err: err}
	}
	return payloads, nil
}
