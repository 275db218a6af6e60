package ollama

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vinylcat/sleevescan/internal/providers"
)

func TestExtractText(t *testing.T) {
	image := []byte("png bytes")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body struct {
			Model  string   `json:"model"`
			Prompt string   `json:"prompt"`
			Images []string `json:"images"`
			Stream bool     `json:"stream"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if body.Model != "llava" || body.Prompt != "read it" || body.Stream {
			t.Errorf("unexpected request %+v", body)
		}
		if len(body.Images) != 1 || body.Images[0] != base64.StdEncoding.EncodeToString(image) {
			t.Errorf("image not forwarded: %v", body.Images)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"response": "THE BEATLES\nABBEY ROAD"})
	}))
	defer server.Close()

	t.Setenv("OLLAMA_URL", server.URL)

	text, err := New().ExtractText(context.Background(), image, providers.Config{Model: "llava", Prompt: "read it"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "THE BEATLES\nABBEY ROAD" {
		t.Errorf("unexpected text %q", text)
	}
}

func TestExtractText_ErrorStatus(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		notConfigured bool
	}{
		{"missing model", http.StatusNotFound, true},
		{"server error", http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			defer server.Close()

			t.Setenv("OLLAMA_URL", server.URL)

			_, err := New().ExtractText(context.Background(), []byte("x"), providers.Config{Model: "missing"})
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := errors.Is(err, providers.ErrNotConfigured); got != tt.notConfigured {
				t.Errorf("expected not-configured=%v, got %v (%v)", tt.notConfigured, got, err)
			}
		})
	}
}

func TestExtractText_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	t.Setenv("OLLAMA_URL", url)

	_, err := New().ExtractText(context.Background(), []byte("x"), providers.Config{Model: "llava"})
	if !errors.Is(err, providers.ErrNotConfigured) {
		t.Errorf("expected not-configured error, got %v", err)
	}
}

func TestBaseURL(t *testing.T) {
	t.Setenv("OLLAMA_URL", "")
	t.Setenv("OLLAMA_HOST", "http://ollama:11434")
	if got := baseURL(); got != "http://ollama:11434" {
		t.Errorf("expected OLLAMA_HOST fallback, got %s", got)
	}

	t.Setenv("OLLAMA_HOST", "")
	if got := baseURL(); got != defaultURL {
		t.Errorf("expected default, got %s", got)
	}
}
