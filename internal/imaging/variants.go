package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
)

// Variant is a derived view of a decoded image
type Variant struct {
	Name  string
	Image image.Image
}

// BarcodeVariants returns the views handed to the symbol decoder, in decoding order.
// Decoders are sensitive to contrast and polarity, so each view trades one for the other.
func BarcodeVariants(img image.Image) []Variant {
	gray := Grayscale(img)
	return []Variant{
		{Name: "original", Image: img},
		{Name: "grayscale", Image: gray},
		{Name: "autocontrast", Image: AutoContrast(gray)},
		{Name: "inverted", Image: Invert(gray)},
	}
}

// OCRInput returns the view handed to the text recognizer
func OCRInput(img image.Image) *image.Gray {
	return AutoContrast(Grayscale(img))
}

// Grayscale converts img to 8-bit luma
func Grayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			dst.SetGray(x, y, color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray))
		}
	}
	return dst
}

// AutoContrast stretches the intensity range of gray to span 0-255.
// A flat image is returned unchanged.
func AutoContrast(gray *image.Gray) *image.Gray {
	lo, hi := uint8(255), uint8(0)
	for _, v := range gray.Pix {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	dst := image.NewGray(gray.Rect)
	if hi <= lo {
		copy(dst.Pix, gray.Pix)
		return dst
	}

	var lut [256]uint8
	for i := range lut {
		v := (i - int(lo)) * 255 / int(hi-lo)
		lut[i] = uint8(min(255, max(0, v)))
	}
	for i, v := range gray.Pix {
		dst.Pix[i] = lut[v]
	}
	return dst
}

// Invert flips the polarity of gray
func Invert(gray *image.Gray) *image.Gray {
	dst := image.NewGray(gray.Rect)
	for i, v := range gray.Pix {
		dst.Pix[i] = 255 - v
	}
	return dst
}

// EncodePNG serializes img for engines that take encoded bytes
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}
