// Package images loads sleeve photographs from local paths or HTTP(S) URLs.
package images

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/vinylcat/sleevescan/internal/models"
)

// Fetcher retrieves sleeve images from files or URLs
type Fetcher struct {
	HTTPClient *http.Client
	MaxBytes   int64
}

// NewFetcher creates a new image fetcher limited to maxBytes per image
func NewFetcher(maxBytes int64) *Fetcher {
	return &Fetcher{
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		MaxBytes: maxBytes,
	}
}

// IsURL reports whether source should be downloaded instead of read from disk
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Fetch returns the upload for source, or nil when source is empty
func (f *Fetcher) Fetch(ctx context.Context, label models.Label, source string) (*models.Upload, error) {
	if source == "" {
		return nil, nil
	}

	var data []byte
	var name string
	var err error
	if IsURL(source) {
		data, err = f.download(ctx, source)
		name = path.Base(strings.SplitN(source, "?", 2)[0])
	} else {
		data, err = f.readFile(source)
		name = filepath.Base(source)
	}
	if err != nil {
		return nil, err
	}

	return &models.Upload{Label: label, Filename: name, Data: data}, nil
}

// FetchPair loads the front and back sources, skipping empty ones
func (f *Fetcher) FetchPair(ctx context.Context, front, back string) ([]models.Upload, error) {
	var uploads []models.Upload
	for _, src := range []struct {
		label  models.Label
		source string
	}{
		{models.LabelFront, front},
		{models.LabelBack, back},
	} {
		u, err := f.Fetch(ctx, src.label, src.source)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s image: %w", src.label, err)
		}
		if u != nil {
			uploads = append(uploads, *u)
		}
	}
	return uploads, nil
}

func (f *Fetcher) readFile(p string) ([]byte, error) {
	file, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	return f.limit(file)
}

// download downloads an image from a URL
func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image URL returned status %d", resp.StatusCode)
	}

	return f.limit(resp.Body)
}

func (f *Fetcher) limit(r io.Reader) ([]byte, error) {
	if f.MaxBytes <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read image data: %w", err)
		}
		return data, nil
	}

	data, err := io.ReadAll(io.LimitReader(r, f.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	if int64(len(data)) > f.MaxBytes {
		return nil, fmt.Errorf("image too large (max %d bytes)", f.MaxBytes)
	}
	return data, nil
}
