package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/vinylcat/sleevescan/internal/config"
	"github.com/vinylcat/sleevescan/internal/providers"
)

type fakeProvider struct {
	text   string
	err    error
	panics bool
	got    []byte
	config providers.Config
}

func (f *fakeProvider) ExtractText(ctx context.Context, image []byte, config providers.Config) (string, error) {
	if f.panics {
		panic("engine crashed")
	}
	f.got = image
	f.config = config
	return f.text, f.err
}

func (f *fakeProvider) Name() string {
	return "fake"
}

func sample() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for x := 0; x < 8; x++ {
		img.Set(x, 0, color.RGBA{R: 200, G: 10, B: 10, A: 255})
	}
	return img
}

func TestRecognize(t *testing.T) {
	fake := &fakeProvider{text: "ABBEY ROAD\n1969"}
	svc := NewService(fake, config.OCRConfig{Engine: "tesseract", Language: "eng", PageSegMode: 6})

	res := svc.Recognize(context.Background(), sample())
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Text != "ABBEY ROAD\n1969" {
		t.Errorf("unexpected text %q", res.Text)
	}
	if svc.Engine() != "fake" {
		t.Errorf("expected engine name from provider, got %s", svc.Engine())
	}
	if fake.config.PageSegMode != 6 || fake.config.Language != "eng" || fake.config.Prompt != Prompt {
		t.Errorf("unexpected provider config %+v", fake.config)
	}

	decoded, err := png.Decode(bytes.NewReader(fake.got))
	if err != nil {
		t.Fatalf("engine did not receive a PNG: %v", err)
	}
	if _, ok := decoded.(*image.Gray); !ok {
		t.Errorf("expected grayscale input, got %T", decoded)
	}
}

func TestRecognize_Failures(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name     string
		ctx      context.Context
		provider *fakeProvider
		img      image.Image
		want     error
	}{
		{"nil image", context.Background(), &fakeProvider{}, nil, ErrEmptyImage},
		{"empty image", context.Background(), &fakeProvider{}, image.NewRGBA(image.Rect(0, 0, 0, 0)), ErrEmptyImage},
		{"not configured", context.Background(), &fakeProvider{err: providers.ErrNotConfigured}, sample(), ErrEngineUnavailable},
		{"engine error", context.Background(), &fakeProvider{err: errors.New("boom"), text: "partial"}, sample(), ErrRecognitionFailed},
		{"engine panic", context.Background(), &fakeProvider{panics: true}, sample(), ErrRecognitionFailed},
		{"canceled", canceled, &fakeProvider{err: context.Canceled}, sample(), ErrCanceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewService(tt.provider, config.OCRConfig{}).Recognize(tt.ctx, tt.img)
			if res.Text != "" {
				t.Errorf("expected empty text on failure, got %q", res.Text)
			}
			if !errors.Is(res.Err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, res.Err)
			}
			var ocrErr *Error
			if !errors.As(res.Err, &ocrErr) || ocrErr.Engine != "fake" {
				t.Errorf("expected *Error from fake engine, got %#v", res.Err)
			}
		})
	}
}

func TestDefaultModel(t *testing.T) {
	t.Setenv("OPENAI_MODEL", "")
	t.Setenv("OLLAMA_MODEL", "llava")

	tests := map[string]string{
		"openai":    "gpt-4o",
		"ollama":    "llava",
		"tesseract": "",
	}
	for engine, want := range tests {
		if got := DefaultModel(engine); got != want {
			t.Errorf("%s: expected %q, got %q", engine, want, got)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want error
	}{
		{nil, nil},
		{&Error{Op: "Recognize", Err: ErrEmptyImage}, ErrEmptyImage},
		{&Error{Op: "Recognize", Engine: "vision", Err: fmt.Errorf("%w: no credentials", ErrEngineUnavailable)}, ErrEngineUnavailable},
		{fmt.Errorf("back image: %w", &Error{Op: "Recognize", Err: ErrCanceled}), ErrCanceled},
		{errors.New("boom"), ErrRecognitionFailed},
	}
	for _, tt := range tests {
		if got := Classify(tt.err); got != tt.want {
			t.Errorf("Classify(%v): expected %v, got %v", tt.err, tt.want, got)
		}
	}
}
