package images

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vinylcat/sleevescan/internal/models"
)

func TestFetchPair(t *testing.T) {
	dir := t.TempDir()
	frontPath := filepath.Join(dir, "front.jpg")
	if err := os.WriteFile(frontPath, []byte("front bytes"), 0644); err != nil {
		t.Fatal(err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.jpg" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("back bytes"))
	}))
	defer server.Close()

	f := NewFetcher(1024)

	uploads, err := f.FetchPair(context.Background(), frontPath, server.URL+"/back.jpg?size=large")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(uploads) != 2 {
		t.Fatalf("expected 2 uploads, got %d", len(uploads))
	}
	if uploads[0].Label != models.LabelFront || string(uploads[0].Data) != "front bytes" || uploads[0].Filename != "front.jpg" {
		t.Errorf("unexpected front upload %+v", uploads[0])
	}
	if uploads[1].Label != models.LabelBack || string(uploads[1].Data) != "back bytes" || uploads[1].Filename != "back.jpg" {
		t.Errorf("unexpected back upload %+v", uploads[1])
	}

	uploads, err = f.FetchPair(context.Background(), "", "")
	if err != nil || len(uploads) != 0 {
		t.Errorf("expected no uploads, got %d (%v)", len(uploads), err)
	}

	if _, err := f.FetchPair(context.Background(), "", server.URL+"/missing.jpg"); err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("expected 404 error, got %v", err)
	}
	if _, err := f.FetchPair(context.Background(), filepath.Join(dir, "nope.jpg"), ""); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFetch_TooLarge(t *testing.T) {
	p := filepath.Join(t.TempDir(), "big.png")
	if err := os.WriteFile(p, []byte(strings.Repeat("x", 20)), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFetcher(10).Fetch(context.Background(), models.LabelFront, p); err == nil {
		t.Error("expected size limit error")
	}
	if _, err := NewFetcher(20).Fetch(context.Background(), models.LabelFront, p); err != nil {
		t.Errorf("file at the limit should load: %v", err)
	}
}
