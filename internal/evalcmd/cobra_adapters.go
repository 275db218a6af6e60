package evalcmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vinylcat/sleevescan/internal/config"
	"github.com/vinylcat/sleevescan/internal/engines"
	"github.com/vinylcat/sleevescan/internal/images"
)

// NewRunCmd creates the run command
func NewRunCmd() *cobra.Command {
	var datasetPath string
	var configPath string
	var engine string
	var outputDir string
	var reportPath string
	var sampleSize int
	var concurrency int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate the analyzer against a labelled sleeve dataset",
		Long: `Runs the full analyze pipeline over every item of a labelled dataset and
compares the guessed barcode, artist, title and year with the labels.

The dataset is a JSONL or Parquet file with the columns
id, front, back, barcode, artist, title, year. Image paths are relative to
the dataset file or absolute; HTTP(S) URLs are downloaded.`,
		Example: `  # Evaluate 50 sleeves with the default Tesseract engine
  sleevescan eval run --dataset ./sleeves.jsonl --sample 50

  # Evaluate the full Parquet dataset with Cloud Vision, 8 at a time
  sleevescan eval run --dataset ./sleeves.parquet --sample -1 --engine vision --concurrency 8`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(datasetPath); os.IsNotExist(err) {
				return fmt.Errorf("dataset file not found: %s", datasetPath)
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

			analyzer, err := engines.NewAnalyzer(cfg)
			if err != nil {
				return err
			}

			runner := NewRunner(analyzer, images.NewFetcher(cfg.Server.MaxUploadBytes), concurrency)
			_, err = Execute(cmd.Context(), runner, RunOptions{
				DatasetPath: datasetPath,
				SampleSize:  sampleSize,
				Engine:      cfg.OCR.Engine,
				Model:       cfg.OCR.Model,
				OutputDir:   outputDir,
				ReportPath:  reportPath,
			}, cmd.OutOrStdout())
			return err
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "", "Path to a .jsonl or .parquet dataset (required)")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	cmd.Flags().StringVar(&engine, "engine", "", "OCR engine override (tesseract, vision, gemini, openai, ollama)")
	cmd.Flags().StringVar(&outputDir, "output", "evals", "Directory for the YAML results file")
	cmd.Flags().StringVar(&reportPath, "output-report", "", "Optional path for a detailed text report")
	cmd.Flags().IntVar(&sampleSize, "sample", 10, "Number of items to evaluate (-1 for all)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "Number of items processed in parallel")

	_ = cmd.MarkFlagRequired("dataset")
	return cmd
}

// NewReportCmd creates the report command
func NewReportCmd() *cobra.Command {
	var resultsPath string
	var detailed bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a summary of a saved evaluation",
		Example: `  sleevescan eval report --results evals/tesseract-2025-01-02_03-04-05.yaml --detailed`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeReport(resultsPath, detailed, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&resultsPath, "results", "", "Path to a results YAML file (required)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "Include per-item comparisons")

	_ = cmd.MarkFlagRequired("results")
	return cmd
}
