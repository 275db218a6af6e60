// Package evaluation measures analyzer accuracy against labelled sleeve photographs.
package evaluation

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
	"github.com/vinylcat/sleevescan/internal/models"
)

// Item is one labelled record sleeve. Front and Back are file paths
// (relative to the dataset file) or HTTP(S) URLs.
type Item struct {
	ID      string `json:"id" parquet:"id"`
	Front   string `json:"front,omitempty" parquet:"front,optional"`
	Back    string `json:"back,omitempty" parquet:"back,optional"`
	Barcode string `json:"barcode,omitempty" parquet:"barcode,optional"`
	Artist  string `json:"artist,omitempty" parquet:"artist,optional"`
	Title   string `json:"title,omitempty" parquet:"title,optional"`
	Year    int64  `json:"year,omitempty" parquet:"year,optional"`
}

// Expected returns the labelled fields of the item
func (i Item) Expected() models.Fields {
	return models.Fields{
		Barcode: i.Barcode,
		Artist:  i.Artist,
		Title:   i.Title,
		Year:    int(i.Year),
	}
}

// LoadDataset loads up to limit items (all when limit < 0) from a JSONL or Parquet file.
// Relative image paths are resolved against the dataset's directory.
func LoadDataset(path string, limit int) ([]Item, error) {
	var items []Item
	var err error

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".parquet":
		items, err = loadParquet(path, limit)
	case ".jsonl", ".json":
		items, err = loadJSONL(path, limit)
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .parquet, .jsonl)", ext)
	}
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	for i := range items {
		items[i].Front = resolve(base, items[i].Front)
		items[i].Back = resolve(base, items[i].Back)
	}
	return items, nil
}

func resolve(base, source string) string {
	if source == "" || filepath.IsAbs(source) || strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return source
	}
	return filepath.Join(base, source)
}

func loadJSONL(path string, limit int) ([]Item, error) {
	slog.Debug("Opening JSONL file", "path", path)

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer file.Close()

	var items []Item
	scanner := bufio.NewScanner(file)

	lineNum := 0
	for scanner.Scan() {
		if limit >= 0 && len(items) >= limit {
			break
		}
		lineNum++
		line := scanner.Bytes()

		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var item Item
		if err := json.Unmarshal(line, &item); err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}
		items = append(items, item)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading dataset: %w", err)
	}

	slog.Debug("Finished reading JSONL file", "total_items", len(items), "total_lines", lineNum)
	return items, nil
}

func loadParquet(path string, limit int) ([]Item, error) {
	slog.Debug("Opening Parquet file", "path", path, "limit", limit)

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet file opened successfully", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[Item](pf)
	defer reader.Close()

	var items []Item
	rows := make([]Item, 128)

	for limit < 0 || len(items) < limit {
		n, err := reader.Read(rows)
		if n > 0 {
			if limit >= 0 && n > limit-len(items) {
				n = limit - len(items)
			}
			items = append(items, rows[:n]...)
		}
		if err != nil {
			break
		}
	}

	slog.Debug("Finished reading Parquet file", "total_items", len(items))
	return items, nil
}
