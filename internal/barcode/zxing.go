package barcode

import (
	"errors"
	"fmt"
	"image"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
)

// ZXingDecoder decodes one-dimensional retail symbols with gozxing
type ZXingDecoder struct {
	readers []gozxing.Reader
	hints   map[gozxing.DecodeHintType]interface{}
}

// NewZXingDecoder creates a decoder for EAN/UPC symbols plus Code 128
func NewZXingDecoder(tryHarder bool) *ZXingDecoder {
	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_POSSIBLE_FORMATS: []gozxing.BarcodeFormat{
			// UPC-A symbols are read by the EAN-13 reader. Listing UPC_A
			// would strip the leading zero and report 12 digits.
			gozxing.BarcodeFormat_EAN_13,
			gozxing.BarcodeFormat_EAN_8,
			gozxing.BarcodeFormat_UPC_E,
		},
	}
	if tryHarder {
		hints[gozxing.DecodeHintType_TRY_HARDER] = true
	}

	return &ZXingDecoder{
		readers: []gozxing.Reader{
			oned.NewMultiFormatUPCEANReader(hints),
			oned.NewCode128Reader(),
		},
		hints: hints,
	}
}

// Decode returns the text of every symbol any reader located in img
func (d *ZXingDecoder) Decode(img image.Image) ([]string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create bitmap: %v", ErrFormat, err)
	}

	var payloads []string
	var failure error
	for _, reader := range d.readers {
		result, err := reader.Decode(bmp, d.hints)
		reader.Reset()
		if err != nil {
			failure = worse(failure, classifyZXing(err))
			continue
		}
		payloads = append(payloads, result.GetText())
	}

	if len(payloads) == 0 {
		if failure == nil {
			failure = ErrNoSymbol
		}
		return nil, failure
	}
	return payloads, nil
}

// classifyZXing maps gozxing exceptions onto package sentinels
func classifyZXing(err error) error {
	var notFound gozxing.NotFoundException
	var checksum gozxing.ChecksumException
	var format gozxing.FormatException

	switch {
	case errors.As(err, &notFound):
		return fmt.Errorf("%w: %v", ErrNoSymbol, err)
	case errors.As(err, &checksum):
		return fmt.Errorf("%w: %v", ErrChecksum, err)
	case errors.As(err, &format):
		return fmt.Errorf("%w: %v", ErrFormat, err)
	default:
		return fmt.Errorf("%w: %v", ErrDecoderInternal, err)
	}
}

var severity = map[error]int{
	ErrNoSymbol:        1,
	ErrChecksum:        2,
	ErrFormat:          3,
	ErrDecoderInternal: 4,
}

// worse keeps the more informative of two classified failures
func worse(a, b error) error {
	if a == nil {
		return b
	}
	if severity[Classify(b)] > severity[Classify(a)] {
		return b
	}
	return a
}
