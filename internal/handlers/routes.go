package handlers

import "net/http"

// Routes registers the service endpoints
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/analyze", h.HandleAnalyze)
	mux.HandleFunc("/healthcheck", h.HandleHealthcheck)
	return RequestID(mux)
}
