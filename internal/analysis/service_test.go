package analysis

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"sync"
	"testing"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/vinylcat/sleevescan/internal/barcode"
	"github.com/vinylcat/sleevescan/internal/config"
	"github.com/vinylcat/sleevescan/internal/fields"
	"github.com/vinylcat/sleevescan/internal/imaging"
	"github.com/vinylcat/sleevescan/internal/models"
	"github.com/vinylcat/sleevescan/internal/ocr"
)

// gradient renders a horizontal ramp; width identifies the image in fakes
func gradient(w, h int, ascending bool) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(x * 255 / (w - 1))
			if !ascending {
				v = 255 - v
			}
			img.Set(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	data, err := imaging.EncodePNG(img)
	if err != nil {
		t.Fatalf("failed to encode fixture: %v", err)
	}
	return data
}

// fakeFinder returns a code per image width
type fakeFinder struct {
	codes map[int]string
	calls []int
}

func (f *fakeFinder) Find(img image.Image) (string, barcode.Extraction, bool) {
	w := img.Bounds().Dx()
	f.calls = append(f.calls, w)
	code, ok := f.codes[w]
	return code, barcode.Extraction{}, ok
}

// fakeRecognizer returns text per image width
type fakeRecognizer struct {
	mu    sync.Mutex
	texts map[int]string
	calls int
}

func (f *fakeRecognizer) Recognize(_ context.Context, img image.Image) ocr.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	text, ok := f.texts[img.Bounds().Dx()]
	if !ok {
		return ocr.Result{Err: &ocr.Error{Op: "Recognize", Engine: "fake", Err: ocr.ErrRecognitionFailed}}
	}
	return ocr.Result{Text: text}
}

func imagingConfig() config.ImagingConfig {
	return config.Default().Imaging
}

func TestAnalyze_NoUploads(t *testing.T) {
	rec := &fakeRecognizer{}
	svc := NewService(&fakeFinder{}, rec, fields.Default(), imagingConfig())

	got := svc.Analyze(context.Background(), nil)
	if !got.OK || !got.Data.IsEmpty() {
		t.Errorf("expected ok with empty data, got %+v", got)
	}
	if rec.calls != 0 {
		t.Errorf("recognizer should not run without images")
	}
}

func TestAnalyze_BarcodeSkipsOCR(t *testing.T) {
	front := pngBytes(t, gradient(40, 20, true))
	back := pngBytes(t, gradient(30, 20, false))

	tests := []struct {
		name    string
		uploads []models.Upload
		codes   map[int]string
		want    string
	}{
		{
			name:    "back preferred even when uploaded second",
			uploads: []models.Upload{{Label: models.LabelFront, Data: front}, {Label: models.LabelBack, Data: back}},
			codes:   map[int]string{40: "4006381333931", 30: "036000291452"},
			want:    "036000291452",
		},
		{
			name:    "front used when back has none",
			uploads: []models.Upload{{Label: models.LabelFront, Data: front}, {Label: models.LabelBack, Data: back}},
			codes:   map[int]string{40: "4006381333931"},
			want:    "4006381333931",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &fakeRecognizer{texts: map[int]string{40: "PINK FLOYD\nANIMALS"}}
			finder := &fakeFinder{codes: tt.codes}
			got := NewService(finder, rec, fields.Default(), imagingConfig()).Analyze(context.Background(), tt.uploads)

			if got.Data != (models.Fields{Barcode: tt.want}) {
				t.Errorf("expected only barcode %s, got %+v", tt.want, got.Data)
			}
			if rec.calls != 0 {
				t.Errorf("recognizer must not run when a barcode is found, ran %d times", rec.calls)
			}
			if finder.calls[0] != 30 {
				t.Errorf("expected back image to be scanned first, got order %v", finder.calls)
			}
		})
	}
}

func TestAnalyze_RenderedBarcode(t *testing.T) {
	matrix, err := oned.NewEAN13Writer().Encode("4006381333931", gozxing.BarcodeFormat_EAN_13, 400, 120, nil)
	if err != nil {
		t.Fatal(err)
	}
	code := image.NewRGBA(matrix.Bounds())
	draw.Draw(code, code.Bounds(), matrix, matrix.Bounds().Min, draw.Src)

	rec := &fakeRecognizer{}
	svc := NewService(barcode.NewExtractor(barcode.NewZXingDecoder(true)), rec, fields.Default(), imagingConfig())

	got := svc.Analyze(context.Background(), []models.Upload{
		{Label: models.LabelFront, Data: pngBytes(t, gradient(40, 20, true))},
		{Label: models.LabelBack, Data: pngBytes(t, code)},
	})
	if !got.OK || got.Data != (models.Fields{Barcode: "4006381333931"}) {
		t.Errorf("expected barcode only, got %+v", got)
	}
	if rec.calls != 0 {
		t.Errorf("recognizer ran %d times", rec.calls)
	}
}

func TestAnalyze_OCRMerge(t *testing.T) {
	front := pngBytes(t, gradient(40, 20, true))
	back := pngBytes(t, gradient(30, 20, false))

	tests := []struct {
		name    string
		uploads []models.Upload
		texts   map[int]string
		want    models.Fields
	}{
		{
			name:    "front only text",
			uploads: []models.Upload{{Label: models.LabelFront, Data: front}, {Label: models.LabelBack, Data: back}},
			texts:   map[int]string{40: "THE CLASH\nLondon Calling\n1979", 30: ""},
			want:    models.Fields{Artist: "THE CLASH", Title: "London Calling", Year: 1979},
		},
		{
			name:    "first upload wins per field",
			uploads: []models.Upload{{Label: models.LabelFront, Data: front}, {Label: models.LabelBack, Data: back}},
			texts:   map[int]string{40: "THE CLASH\nLondon Calling", 30: "CBS RECORDS\nBack Cover\n1980"},
			want:    models.Fields{Artist: "THE CLASH", Title: "London Calling", Year: 1980},
		},
		{
			name:    "upload order decides, not label",
			uploads: []models.Upload{{Label: models.LabelBack, Data: back}, {Label: models.LabelFront, Data: front}},
			texts:   map[int]string{40: "THE CLASH\nLondon Calling", 30: "CBS RECORDS\nBack Cover"},
			want:    models.Fields{Artist: "CBS RECORDS", Title: "Back Cover"},
		},
		{
			name:    "failed recognition contributes nothing",
			uploads: []models.Upload{{Label: models.LabelFront, Data: front}, {Label: models.LabelBack, Data: back}},
			texts:   map[int]string{30: "KIND OF BLUE"},
			want:    models.Fields{Title: "KIND OF BLUE"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &fakeRecognizer{texts: tt.texts}
			got := NewService(&fakeFinder{}, rec, fields.Default(), imagingConfig()).Analyze(context.Background(), tt.uploads)
			if !got.OK || got.Data != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got.Data)
			}
			if rec.calls != 2 {
				t.Errorf("expected 2 recognitions, got %d", rec.calls)
			}
		})
	}
}

func TestAnalyze_UndecodableDropped(t *testing.T) {
	rec := &fakeRecognizer{texts: map[int]string{30: "MILES DAVIS\nKind of Blue"}}
	svc := NewService(&fakeFinder{}, rec, fields.Default(), imagingConfig())

	got := svc.Analyze(context.Background(), []models.Upload{
		{Label: models.LabelFront, Data: []byte("not an image")},
		{Label: models.LabelBack, Data: pngBytes(t, gradient(30, 20, false))},
	})
	if got.Data != (models.Fields{Artist: "MILES DAVIS", Title: "Kind of Blue"}) {
		t.Errorf("unexpected data %+v", got.Data)
	}
	if rec.calls != 1 {
		t.Errorf("expected 1 recognition, got %d", rec.calls)
	}

	rec = &fakeRecognizer{}
	got = NewService(&fakeFinder{}, rec, fields.Default(), imagingConfig()).Analyze(context.Background(), []models.Upload{
		{Label: models.LabelFront, Data: nil},
		{Label: models.LabelBack, Data: []byte{0xff, 0xd8, 0xff}},
	})
	if !got.OK || !got.Data.IsEmpty() || rec.calls != 0 {
		t.Errorf("expected empty ok result without recognition, got %+v (calls %d)", got, rec.calls)
	}
}

func TestAnalyze_DuplicateSkipsOnlyOCR(t *testing.T) {
	same := pngBytes(t, gradient(40, 20, true))
	uploads := []models.Upload{
		{Label: models.LabelFront, Data: same},
		{Label: models.LabelBack, Data: same},
	}

	tests := []struct {
		name      string
		threshold int
		wantOCR   int
	}{
		{"disabled by default", imagingConfig().DuplicateThreshold, 2},
		{"enabled", 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := imagingConfig()
			cfg.DuplicateThreshold = tt.threshold
			rec := &fakeRecognizer{texts: map[int]string{40: "THE CLASH"}}
			finder := &fakeFinder{}

			got := NewService(finder, rec, fields.Default(), cfg).Analyze(context.Background(), uploads)
			if got.Data.Title != "THE CLASH" {
				t.Errorf("unexpected data %+v", got.Data)
			}
			if len(finder.calls) != 2 {
				t.Errorf("expected both images to get a barcode pass, got %d", len(finder.calls))
			}
			if rec.calls != tt.wantOCR {
				t.Errorf("expected %d recognitions, got %d", tt.wantOCR, rec.calls)
			}
		})
	}
}

// renderOn draws an EAN-13 symbol into the top-left corner of a white canvas
func renderOn(t *testing.T, canvas image.Rectangle, contents string) *image.RGBA {
	t.Helper()
	img := image.NewRGBA(canvas)
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	if contents == "" {
		return img
	}

	matrix, err := oned.NewEAN13Writer().Encode(contents, gozxing.BarcodeFormat_EAN_13, 300, 100, nil)
	if err != nil {
		t.Fatal(err)
	}
	draw.Draw(img, matrix.Bounds().Add(image.Pt(40, 40)), matrix, matrix.Bounds().Min, draw.Src)
	return img
}

func TestAnalyze_PlainSidesKeepBackBarcode(t *testing.T) {
	canvas := image.Rect(0, 0, 1200, 1200)
	front := pngBytes(t, renderOn(t, canvas, ""))
	back := pngBytes(t, renderOn(t, canvas, "4006381333931"))

	for _, threshold := range []int{-1, 2} {
		cfg := imagingConfig()
		cfg.DuplicateThreshold = threshold
		rec := &fakeRecognizer{}
		svc := NewService(barcode.NewExtractor(barcode.NewZXingDecoder(true)), rec, fields.Default(), cfg)

		got := svc.Analyze(context.Background(), []models.Upload{
			{Label: models.LabelFront, Data: front},
			{Label: models.LabelBack, Data: back},
		})
		if got.Data != (models.Fields{Barcode: "4006381333931"}) {
			t.Errorf("threshold %d: expected the back barcode, got %+v", threshold, got.Data)
		}
		if rec.calls != 0 {
			t.Errorf("threshold %d: recognizer ran %d times", threshold, rec.calls)
		}
	}
}

func TestAnalyze_LeadingZeroBarcodeKeepsThirteenDigits(t *testing.T) {
	back := pngBytes(t, renderOn(t, image.Rect(0, 0, 400, 200), "0012345678905"))

	svc := NewService(barcode.NewExtractor(barcode.NewZXingDecoder(true)), &fakeRecognizer{}, fields.Default(), imagingConfig())
	got := svc.Analyze(context.Background(), []models.Upload{{Label: models.LabelBack, Data: back}})
	if got.Data != (models.Fields{Barcode: "0012345678905"}) {
		t.Errorf("expected the encoded 13 digits, got %+v", got.Data)
	}
}
