package evaluation

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/vinylcat/sleevescan/internal/models"
	"gopkg.in/yaml.v3"
)

// Result represents the outcome for a single dataset item
type Result struct {
	ID             string        `yaml:"id"`
	Expected       models.Fields `yaml:"expected"`
	Actual         models.Fields `yaml:"actual"`
	Comparison     Comparison    `yaml:"comparison"`
	ProcessingTime time.Duration `yaml:"processing_time"`
	Error          string        `yaml:"error,omitempty"`
}

// FieldStats contains statistics for one field across the dataset
type FieldStats struct {
	Labelled     int     `yaml:"labelled"`
	ExactMatches int     `yaml:"exact_matches"`
	FuzzyMatches int     `yaml:"fuzzy_matches"`
	NoMatches    int     `yaml:"no_matches"`
	Missing      int     `yaml:"missing"`
	AverageScore float64 `yaml:"average_score"`
}

// Summary aggregates an evaluation run
type Summary struct {
	TotalRecords          int                   `yaml:"total_records"`
	SuccessCount          int                   `yaml:"success_count"`
	FailureCount          int                   `yaml:"failure_count"`
	BarcodeHits           int                   `yaml:"barcode_hits"`
	Fields                map[string]FieldStats `yaml:"fields"`
	OverallAccuracy       float64               `yaml:"overall_accuracy"`
	AverageProcessingTime time.Duration         `yaml:"average_processing_time"`
	TotalProcessingTime   time.Duration         `yaml:"total_processing_time"`
}

// Aggregate computes summary statistics over results
func Aggregate(results []Result) Summary {
	s := Summary{
		TotalRecords: len(results),
		Fields:       make(map[string]FieldStats),
	}

	var overall float64
	var successDuration time.Duration
	scores := make(map[string]float64)

	for _, r := range results {
		s.TotalProcessingTime += r.ProcessingTime
		if r.Error != "" {
			s.FailureCount++
			continue
		}

		s.SuccessCount++
		successDuration += r.ProcessingTime
		overall += r.Comparison.OverallScore
		if r.Actual.Barcode != "" {
			s.BarcodeHits++
		}

		for name, m := range r.Comparison.Fields() {
			if !m.Labelled() {
				continue
			}
			st := s.Fields[name]
			st.Labelled++
			switch m.Method {
			case MethodExact:
				st.ExactMatches++
			case MethodSubstring, MethodFuzzyHigh, MethodFuzzyMedium:
				st.FuzzyMatches++
			case MethodMissing:
				st.Missing++
			default:
				st.NoMatches++
			}
			scores[name] += m.Score
			s.Fields[name] = st
		}
	}

	for name, st := range s.Fields {
		st.AverageScore = scores[name] / float64(st.Labelled)
		s.Fields[name] = st
	}
	if s.SuccessCount > 0 {
		s.OverallAccuracy = overall / float64(s.SuccessCount)
		s.AverageProcessingTime = successDuration / time.Duration(s.SuccessCount)
	}

	return s
}

// RunConfig represents the configuration section of the eval YAML
type RunConfig struct {
	Engine      string `yaml:"engine"`
	Model       string `yaml:"model,omitempty"`
	DatasetPath string `yaml:"dataset_path"`
	SampleSize  int    `yaml:"sample_size"`
	Timestamp   string `yaml:"timestamp"`
}

// Report is the complete evaluation document written to disk
type Report struct {
	Config  RunConfig `yaml:"config"`
	Summary Summary   `yaml:"summary"`
	Results []Result  `yaml:"results"`
}

// SaveToYAML writes the report to <dir>/<engine>-<timestamp>.yaml and returns the path
func SaveToYAML(dir string, report *Report) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create evals directory: %w", err)
	}

	if report.Config.Timestamp == "" {
		report.Config.Timestamp = time.Now().Format("2006-01-02_15-04-05")
	}

	name := report.Config.Engine
	if report.Config.Model != "" {
		name += "-" + strings.ReplaceAll(report.Config.Model, "/", "_")
	}
	filename := filepath.Join(dir, fmt.Sprintf("%s-%s.yaml", name, report.Config.Timestamp))

	data, err := yaml.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}

	return filename, nil
}

// LoadFromYAML reads a report written by SaveToYAML
func LoadFromYAML(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read results file: %w", err)
	}

	var report Report
	if err := yaml.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse results file: %w", err)
	}
	return &report, nil
}

var fieldOrder = []string{"barcode", "artist", "title", "year"}

// PrintSummary writes a human-readable summary
func (r *Report) PrintSummary(w io.Writer) {
	s := r.Summary
	fmt.Fprintln(w, "\n"+strings.Repeat("=", 70))
	fmt.Fprintln(w, "SLEEVESCAN EVALUATION SUMMARY")
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintf(w, "Engine: %s\n", r.Config.Engine)
	if r.Config.Model != "" {
		fmt.Fprintf(w, "Model: %s\n", r.Config.Model)
	}
	fmt.Fprintf(w, "Dataset: %s\n", r.Config.DatasetPath)
	fmt.Fprintf(w, "Total Records: %d\n", s.TotalRecords)
	fmt.Fprintf(w, "Successful: %d\n", s.SuccessCount)
	fmt.Fprintf(w, "Failed: %d\n", s.FailureCount)
	fmt.Fprintf(w, "Barcode Hits: %d\n", s.BarcodeHits)
	fmt.Fprintf(w, "Average Processing Time: %s\n", s.AverageProcessingTime)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "FIELD-LEVEL ACCURACY")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	for _, name := range fieldOrder {
		st, ok := s.Fields[name]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%-8s %6.2f%%  exact %d, fuzzy %d, wrong %d, missing %d (of %d)\n",
			name, st.AverageScore*100, st.ExactMatches, st.FuzzyMatches, st.NoMatches, st.Missing, st.Labelled)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Overall Accuracy: %.2f%%\n", s.OverallAccuracy*100)
	fmt.Fprintln(w, strings.Repeat("=", 70))
}

// WriteDetailedReport writes one block per item, worst scores first
func (r *Report) WriteDetailedReport(w io.Writer) {
	results := make([]Result, len(r.Results))
	copy(results, r.Results)
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Comparison.OverallScore < results[j].Comparison.OverallScore
	})

	separator := strings.Repeat("=", 80)
	fmt.Fprintf(w, "SLEEVESCAN EVALUATION DETAILED REPORT\n")
	fmt.Fprintf(w, "Engine: %s, Dataset: %s\n", r.Config.Engine, r.Config.DatasetPath)
	fmt.Fprintf(w, "%s\n\n", separator)

	for _, res := range results {
		fmt.Fprintf(w, "RECORD %s\n", res.ID)
		if res.Error != "" {
			fmt.Fprintf(w, "ERROR: %s\n\n", res.Error)
			continue
		}
		fields := res.Comparison.Fields()
		for _, name := range fieldOrder {
			m := fields[name]
			if !m.Labelled() {
				continue
			}
			fmt.Fprintf(w, "  %-8s %.2f (%s) - Expected: %s, Actual: %s\n", name, m.Score, m.Method, m.Expected, m.Actual)
		}
		fmt.Fprintf(w, "  Overall Score: %.2f%%\n\n", res.Comparison.OverallScore*100)
	}
}
