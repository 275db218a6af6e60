package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/vinylcat/sleevescan/internal/client"
	"github.com/vinylcat/sleevescan/internal/config"
	"github.com/vinylcat/sleevescan/internal/engines"
	"github.com/vinylcat/sleevescan/internal/images"
)

func newAnalyzeCmd() *cobra.Command {
	var front string
	var back string
	var server string
	var configPath string
	var engine string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze one sleeve and print the guessed fields as JSON",
		Long: `Runs the analysis pipeline on a front and/or back sleeve photograph.

Images may be local paths or HTTP(S) URLs. With --server the images are
posted to a running sleevescan server instead of being analyzed locally.`,
		Example: `  # Analyze locally
  sleevescan analyze --front front.jpg --back back.jpg

  # Ask a running server
  sleevescan analyze --back back.jpg --server http://localhost:8090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if front == "" && back == "" {
				return errors.New("at least one of --front or --back is required")
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if engine != "" {
				cfg.OCR.Engine = engine
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			uploads, err := images.NewFetcher(cfg.Server.MaxUploadBytes).FetchPair(cmd.Context(), front, back)
			if err != nil {
				return err
			}

			if server != "" {
				result, err := client.NewClient(server, timeout).Analyze(cmd.Context(), uploads)
				if err != nil {
					slog.Error("Remote analysis failed", "server", server, "err", err)
					_ = printJSON(cmd.OutOrStdout(), map[string]any{"ok": false, "error": err.Error()})
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			}

			analyzer, err := engines.NewAnalyzer(cfg)
			if err != nil {
				return err
			}
			result := analyzer.Analyze(cmd.Context(), uploads)
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&front, "front", "", "Front sleeve image path or URL")
	cmd.Flags().StringVar(&back, "back", "", "Back sleeve image path or URL")
	cmd.Flags().StringVar(&server, "server", "", "Base URL of a sleevescan server to analyze remotely")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	cmd.Flags().StringVar(&engine, "engine", "", "OCR engine override (tesseract, vision, gemini, openai, ollama)")
	cmd.Flags().DurationVar(&timeout, "timeout", client.DefaultTimeout, "Remote request timeout")

	return cmd
}

func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}
