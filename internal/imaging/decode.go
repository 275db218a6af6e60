// Package imaging decodes sleeve photographs and derives the views used by
// the barcode decoder and the text recognizer.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrEmptyInput is returned when no bytes were uploaded.
	ErrEmptyInput = errors.New("empty image data")

	// ErrUnsupportedFormat is returned when no registered decoder recognizes the data.
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrCorruptImage is returned when the format is recognized but the data cannot be decoded.
	ErrCorruptImage = errors.New("corrupt image data")
)

// DecodeError wraps a decoding failure with the operation that failed
type DecodeError struct {
	Op      string
	Err     error
	Details string
}

func (e *DecodeError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("imaging: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("imaging: %s failed: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// DecodeOptions controls normalization applied after decoding
type DecodeOptions struct {
	// MaxDimension bounds the longest side; 0 keeps the original size.
	MaxDimension int
	// ApplyOrientation rotates the image according to its EXIF orientation tag.
	ApplyOrientation bool
}

// Decode parses raw upload bytes into an opaque RGBA raster
func Decode(data []byte, opts DecodeOptions) (*image.RGBA, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Op: "Decode", Err: ErrEmptyInput}
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, &DecodeError{Op: "Decode", Err: ErrUnsupportedFormat}
		}
		return nil, &DecodeError{Op: "Decode", Err: ErrCorruptImage, Details: fmt.Sprintf("%s: %v", format, err)}
	}

	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, &DecodeError{Op: "Decode", Err: ErrCorruptImage, Details: "zero-sized image"}
	}

	if opts.ApplyOrientation {
		img = Orient(img, ReadOrientation(data, format))
	}

	return toRGBA(bound(img, opts.MaxDimension)), nil
}

// bound downscales img so its longest side is at most maxDim
func bound(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return img
	}

	if w >= h {
		h = max(1, h*maxDim/w)
		w = maxDim
	} else {
		w = max(1, w*maxDim/h)
		h = maxDim
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// toRGBA copies img onto an opaque white canvas anchored at the origin.
// Transparent regions become white.
func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}
