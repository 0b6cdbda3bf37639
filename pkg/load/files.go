package load

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/kennelos/kennel-etl/pkg/models"
	"github.com/kennelos/kennel-etl/pkg/transform"
)

// Output file names.
const (
	FailuresFile      = "validation_failures.json"
	SummaryReportFile = "summary_report.txt"
	QualityReportFile = "data_quality_report.txt"
)

// jsonTables are the tables additionally written as JSON arrays.
var jsonTables = map[string]bool{
	models.TablePetActivities: true,
	models.TableDailySummary:  true,
}

// FileWriter writes a run's tables and reports into an output directory.
type FileWriter struct {
	outputDir string
	logger    *zap.Logger
}

// NewFileWriter creates a FileWriter rooted at outputDir.
func NewFileWriter(outputDir string, logger *zap.Logger) *FileWriter {
	return &FileWriter{
		outputDir: outputDir,
		logger:    logger.Named("files"),
	}
}

// Name identifies the sink in run reports.
func (w *FileWriter) Name() string {
	return "files"
}

// Load writes every output. A failed file does not stop the others; all
// failures are returned joined.
func (w *FileWriter) Load(ctx context.Context, run models.RunInfo, res *transform.Result) error {
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var errs []error
	for _, table := range Tables(res) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if table.Len() == 0 {
			// Header only, so a file from an earlier run is not left behind.
			w.logger.Debug("Writing empty table", zap.String("table", table.Name))
		}
		errs = append(errs, w.write(table.Name+".csv", func(out io.Writer) error {
			return WriteCSV(out, table)
		}))
		if jsonTables[table.Name] {
			errs = append(errs, w.write(table.Name+".json", func(out io.Writer) error {
				return writeTableJSON(out, table.Name, res)
			}))
		}
	}

	errs = append(errs,
		w.write(FailuresFile, func(out io.Writer) error {
			return WriteFailures(out, run, res)
		}),
		w.write(SummaryReportFile, func(out io.Writer) error {
			return WriteSummaryReport(out, run, res)
		}),
		w.write(QualityReportFile, func(out io.Writer) error {
			return WriteQualityReport(out, run, res)
		}),
	)

	return errors.Join(errs...)
}

// write creates name in the output directory and fills it through fn.
func (w *FileWriter) write(name string, fn func(io.Writer) error) error {
	path := filepath.Join(w.outputDir, name)
	f, err := os.Create(path)
	if err != nil {
		w.logger.Error("Failed to create output file", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("failed to create %s: %w", name, err)
	}

	buf := bufio.NewWriter(f)
	err = fn(buf)
	if err == nil {
		err = buf.Flush()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		w.logger.Error("Failed to write output file", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	w.logger.Info("Wrote output file", zap.String("path", path))
	return nil
}

// WriteCSV writes table with a header row. Nulls are empty cells.
func WriteCSV(out io.Writer, table Table) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(table.Columns); err != nil {
		return err
	}
	record := make([]string, len(table.Columns))
	for _, row := range table.Rows {
		for i, v := range row {
			record[i] = FormatCell(v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeTableJSON(out io.Writer, table string, res *transform.Result) error {
	var v any
	switch table {
	case models.TablePetActivities:
		v = nonNil(res.Activities)
	case models.TableDailySummary:
		v = nonNil(res.DailySummary)
	default:
		return fmt.Errorf("no JSON form for table %s", table)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// nonNil makes empty tables encode as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// FailureDocument is the content of validation_failures.json.
type FailureDocument struct {
	RunID       string                     `json:"run_id"`
	GeneratedAt string                     `json:"generated_at"`
	Stats       transform.Stats            `json:"stats"`
	FailureRate float64                    `json:"failure_rate"`
	Failures    []models.ValidationFailure `json:"failures"`
}

// WriteFailures writes the run's validation failures as indented JSON.
func WriteFailures(out io.Writer, run models.RunInfo, res *transform.Result) error {
	failures := res.Failures
	if failures == nil {
		failures = []models.ValidationFailure{}
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(FailureDocument{
		RunID:       run.ID.String(),
		GeneratedAt: run.StartedAt.Format(reportTimeLayout),
		Stats:       res.Stats,
		FailureRate: res.FailureRate(),
		Failures:    failures,
	})
}
