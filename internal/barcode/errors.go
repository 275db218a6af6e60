package barcode

import (
	"errors"
	"fmt"
)

// Symbol decoding failures, classified per pre-processing variant
var (
	// ErrNoSymbol is returned when no barcode pattern was located.
	ErrNoSymbol = errors.New("no barcode symbol found")

	// ErrChecksum is returned when a symbol was located but its internal checksum failed.
	ErrChecksum = errors.New("barcode symbol checksum mismatch")

	// ErrFormat is returned when a symbol or the bitmap could not be interpreted.
	ErrFormat = errors.New("barcode symbol format error")

	// ErrDecoderInternal is returned when the decoder itself failed unexpectedly.
	ErrDecoderInternal = errors.New("barcode decoder internal error")
)

// VariantError wraps a decoding failure with the variant it happened on
type VariantError struct {
	Variant string
	Err     error
}

func (e *VariantError) Error() string {
	return fmt.Sprintf("barcode: decoding %s variant failed: %v", e.Variant, e.Err)
}

func (e *VariantError) Unwrap() error {
	return e.Err
}

// Classify maps err onto one of the package sentinels
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNoSymbol):
		return ErrNoSymbol
	case errors.Is(err, ErrChecksum):
		return ErrChecksum
	case errors.Is(err, ErrFormat):
		return ErrFormat
	default:
		return ErrDecoderInternal
	}
}
