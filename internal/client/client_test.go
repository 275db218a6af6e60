package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vinylcat/sleevescan/internal/models"
)

func TestAnalyze(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/analyze" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		file, header, err := r.FormFile("back")
		if err != nil {
			t.Fatalf("missing back part: %v", err)
		}
		data, _ := io.ReadAll(file)
		if string(data) != "img" || header.Filename != "back.jpg" {
			t.Errorf("unexpected part %s %q", header.Filename, data)
		}
		if _, _, err := r.FormFile("front"); err == nil {
			t.Error("front part should be absent")
		}
		_ = json.NewEncoder(w).Encode(models.AnalyzeResult{OK: true, Data: models.Fields{Barcode: "4006381333931"}})
	}))
	defer server.Close()

	res, err := NewClient(server.URL+"/", time.Second).Analyze(context.Background(), []models.Upload{
		{Label: models.LabelBack, Data: []byte("img")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.OK || res.Data.Barcode != "4006381333931" {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestAnalyze_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}},
		{"invalid json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>"))
		}},
		{"timeout", func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			if _, err := NewClient(server.URL, 50*time.Millisecond).Analyze(context.Background(), nil); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
