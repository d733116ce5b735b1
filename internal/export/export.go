// Package export writes batch run results to CSV or JSON files for
// record keeping and downstream reconciliation.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/pumpbatch/engine/internal/batch"
)

// Format represents the export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Options configures the export behavior.
type Options struct {
	Format      Format
	TypeFilter  batch.OpType // keep only this operation type
	OnlyFailed  bool         // keep only failed operations
	OnlySuccess bool         // keep only successful operations
	OutputDir   string
}

// ResultExporter writes BatchResults to disk.
type ResultExporter struct {
	logger *zap.Logger
}

// NewResultExporter creates a result exporter.
func NewResultExporter(logger *zap.Logger) *ResultExporter {
	return &ResultExporter{
		logger: logger.Named("export"),
	}
}

// Export filters the results and writes them in the requested format.
// Returns the path of the written file.
func (re *ResultExporter) Export(results []batch.BatchResult, options Options) (string, error) {
	filtered := re.filterResults(results, options)
	if len(filtered) == 0 {
		return "", fmt.Errorf("no results match the export criteria")
	}

	outputPath := filepath.Join(options.OutputDir, re.generateFilename(options))
	if err := os.MkdirAll(options.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	var err error
	switch options.Format {
	case FormatCSV:
		err = re.exportToCSV(filtered, outputPath)
	case FormatJSON:
		err = re.exportToJSON(filtered, outputPath)
	default:
		err = fmt.Errorf("unsupported format: %s", options.Format)
	}
	if err != nil {
		return "", err
	}

	re.logger.Info("Results exported",
		zap.String("file", outputPath),
		zap.Int("count", len(filtered)),
		zap.String("format", string(options.Format)))

	return outputPath, nil
}

func (re *ResultExporter) filterResults(results []batch.BatchResult, options Options) []batch.BatchResult {
	var filtered []batch.BatchResult
	for _, result := range results {
		if options.TypeFilter != "" && result.Type != options.TypeFilter {
			continue
		}
		if options.OnlySuccess && !result.Success {
			continue
		}
		if options.OnlyFailed && result.Success {
			continue
		}
		filtered = append(filtered, result)
	}
	return filtered
}

func (re *ResultExporter) generateFilename(options Options) string {
	timestamp := time.Now().Format("20060102_150405")

	prefix := "results_all"
	if options.TypeFilter != "" {
		prefix = fmt.Sprintf("results_%s", options.TypeFilter)
	}
	if options.OnlySuccess {
		prefix += "_ok"
	}
	if options.OnlyFailed {
		prefix += "_failed"
	}

	return fmt.Sprintf("%s_%s.%s", prefix, timestamp, options.Format)
}

func csvHeaders() []string {
	return []string{"operation_id", "type", "success", "signature", "error"}
}

func toCSVRow(result batch.BatchResult) []string {
	return []string{
		result.OperationID,
		string(result.Type),
		fmt.Sprintf("%t", result.Success),
		result.Signature,
		result.Error,
	}
}

func (re *ResultExporter) exportToCSV(results []batch.BatchResult, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(csvHeaders()); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, result := range results {
		if err := writer.Write(toCSVRow(result)); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
	}
	return nil
}

func (re *ResultExporter) exportToJSON(results []batch.BatchResult, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(results); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	return nil
}
