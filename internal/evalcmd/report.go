package evalcmd

import (
	"fmt"
	"io"
	"os"

	"github.com/vinylcat/sleevescan/internal/evaluation"
)

func writeReportFile(path string, report *evaluation.Report) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	report.WriteDetailedReport(file)
	return nil
}

func executeReport(resultsPath string, detailed bool, out io.Writer) error {
	report, err := evaluation.LoadFromYAML(resultsPath)
	if err != nil {
		return fmt.Errorf("failed to load results: %w", err)
	}

	report.PrintSummary(out)
	if detailed {
		fmt.Fprintln(out)
		report.WriteDetailedReport(out)
	}
	return nil
}
