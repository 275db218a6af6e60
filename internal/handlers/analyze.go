package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/vinylcat/sleevescan/internal/analysis"
	"github.com/vinylcat/sleevescan/internal/models"
)

// multipart parts beyond this size are buffered to temporary files
const maxMemory = 32 << 20

// room for multipart boundaries, headers and small form fields
const bodySlack = 1 << 20

// HandleAnalyze accepts optional "front" and "back" image parts and always
// answers with {"ok": true, "data": {...}}.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	logger := analysis.LoggerFrom(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes())
	uploads := h.readUploads(logger, r)

	h.writeJSON(w, h.analyzer.Analyze(r.Context(), uploads))
}

// maxBodyBytes bounds the whole request: two images plus multipart overhead
func (h *Handler) maxBodyBytes() int64 {
	return 2*h.maxUploadBytes + bodySlack
}

func (h *Handler) readUploads(logger *slog.Logger, r *http.Request) []models.Upload {
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		logger.Info("Request carries no multipart images", "err", err)
		return nil
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			logger.Warn("Unable to remove multipart temp files", "err", err)
		}
	}()

	var uploads []models.Upload
	for _, label := range []models.Label{models.LabelFront, models.LabelBack} {
		u, err := h.readPart(r, label)
		switch {
		case errors.Is(err, http.ErrMissingFile):
			continue
		case err != nil:
			logger.Warn("Dropping unreadable upload", "label", label, "err", err)
			continue
		}
		uploads = append(uploads, u)
	}
	return uploads
}

var errTooLarge = errors.New("file exceeds upload limit")

func (h *Handler) readPart(r *http.Request, label models.Label) (models.Upload, error) {
	file, header, err := r.FormFile(string(label))
	if err != nil {
		return models.Upload{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		return models.Upload{}, err
	}
	if int64(len(data)) > h.maxUploadBytes {
		return models.Upload{}, errTooLarge
	}

	return models.Upload{Label: label, Filename: header.Filename, Data: data}, nil
}
