package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/vinylcat/sleevescan/internal/config"
	"github.com/vinylcat/sleevescan/internal/engines"
	"github.com/vinylcat/sleevescan/internal/handlers"
)

func newServeCmd() *cobra.Command {
	var port string
	var configPath string
	var engine string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the analyze HTTP server",
		Long: `Starts the sleeve analysis server.

POST /analyze accepts a multipart form with optional "front" and "back"
image parts and answers {"ok": true, "data": {...}} with whichever of
barcode, artist, title and year could be guessed.`,
		Example: `  # Start server on the configured port (default 8090)
  sleevescan serve

  # Start server on a custom port with Cloud Vision OCR
  sleevescan serve --port 3000 --engine vision`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Server.Port = port
			}
			if engine != "" {
				cfg.OCR.Engine = engine
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			analyzer, err := engines.NewAnalyzer(cfg)
			if err != nil {
				return err
			}

			handler := handlers.Deadline(cfg.Server.RequestTimeout, handlers.New(analyzer, cfg.Server.MaxUploadBytes).Routes())

			addr := ":" + cfg.Server.Port
			server := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Sleevescan server listening", "addr", addr, "engine", cfg.OCR.Engine, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides config and PORT)")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	cmd.Flags().StringVar(&engine, "engine", "", "OCR engine override (tesseract, vision, gemini, openai, ollama)")

	return cmd
}
