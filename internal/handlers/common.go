package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/vinylcat/sleevescan/internal/models"
)

// Analyzer runs the sleeve analysis pipeline
type Analyzer interface {
	Analyze(ctx context.Context, uploads []models.Upload) models.AnalyzeResult
}

type Handler struct {
	analyzer       Analyzer
	maxUploadBytes int64
}

// New creates a handler serving analyzer with a per-file size limit
func New(analyzer Analyzer, maxUploadBytes int64) *Handler {
	return &Handler{
		analyzer:       analyzer,
		maxUploadBytes: maxUploadBytes,
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

// HandleHealthcheck reports liveness
func (h *Handler) HandleHealthcheck(w http.ResponseWriter, r *http.Request) {
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Unable to write healthcheck", "err", err)
	}
}
