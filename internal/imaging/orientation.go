package imaging

import (
	"bytes"
	"image"
	"log/slog"

	"github.com/bep/imagemeta"
)

// Orientation is the EXIF orientation tag value (1-8)
type Orientation int

const OrientationNormal Orientation = 1

var metaFormats = map[string]imagemeta.ImageFormat{
	"jpeg": imagemeta.JPEG,
	"png":  imagemeta.PNG,
	"tiff": imagemeta.TIFF,
	"webp": imagemeta.WebP,
}

// ReadOrientation returns the EXIF orientation stored in data.
// Formats without EXIF support and unreadable metadata report OrientationNormal.
func ReadOrientation(data []byte, format string) Orientation {
	imageFormat, ok := metaFormats[format]
	if !ok {
		return OrientationNormal
	}

	orientation := OrientationNormal
	_, err := imagemeta.Decode(imagemeta.Options{
		R:           bytes.NewReader(data),
		ImageFormat: imageFormat,
		Sources:     imagemeta.EXIF,
		ShouldHandleTag: func(ti imagemeta.TagInfo) bool {
			return ti.Tag == "Orientation"
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			if v, ok := tagInt(ti.Value); ok && v >= 1 && v <= 8 {
				orientation = Orientation(v)
			}
			return nil
		},
	})
	if err != nil {
		slog.Debug("Unable to read image metadata", "format", format, "err", err)
		return OrientationNormal
	}

	return orientation
}

func tagInt(v any) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case uint16:
		return int(val), true
	case uint32:
		return int(val), true
	case uint8:
		return int(val), true
	case float64:
		return int(val), true
	case []any:
		if len(val) > 0 {
			return tagInt(val[0])
		}
	}
	return 0, false
}

// Orient applies an EXIF orientation so that the result is upright
func Orient(img image.Image, o Orientation) image.Image {
	if o <= OrientationNormal || o > 8 {
		return img
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	// orientations 5-8 swap width and height
	dw, dh := w, h
	if o >= 5 {
		dw, dh = h, w
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var dx, dy int
			switch o {
			case 2: // mirrored horizontally
				dx, dy = w-1-x, y
			case 3: // rotated 180
				dx, dy = w-1-x, h-1-y
			case 4: // mirrored vertically
				dx, dy = x, h-1-y
			case 5: // transposed
				dx, dy = y, x
			case 6: // rotated 90 clockwise
				dx, dy = h-1-y, x
			case 7: // transversed
				dx, dy = h-1-y, w-1-x
			case 8: // rotated 90 counter-clockwise
				dx, dy = y, w-1-x
			}
			dst.Set(dx, dy, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}

	return dst
}
