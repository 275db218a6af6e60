// Package client calls a remote sleevescan server the way the collection
// application's proxy does.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/vinylcat/sleevescan/internal/models"
)

// DefaultTimeout matches the proxy timeout of the calling application
const DefaultTimeout = 60 * time.Second

// Client represents a remote analyze API client
type Client struct {
	BaseURL    string
	httpClient *http.Client
}

// NewClient creates a new analyze client
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Analyze posts uploads as multipart "front"/"back" parts to /analyze
func (c *Client) Analyze(ctx context.Context, uploads []models.Upload) (*models.AnalyzeResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, u := range uploads {
		name := u.Filename
		if name == "" {
			name = string(u.Label) + ".jpg"
		}
		fw, err := mw.CreateFormFile(string(u.Label), name)
		if err != nil {
			return nil, fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := fw.Write(u.Data); err != nil {
			return nil, fmt.Errorf("failed to write form file: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/analyze", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call analyze API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("analyze API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var result models.AnalyzeResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode analyze response: %w", err)
	}

	return &result, nil
}
