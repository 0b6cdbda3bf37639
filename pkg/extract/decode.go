package extract

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kennelos/kennel-etl/pkg/apperrors"
	"github.com/kennelos/kennel-etl/pkg/models"
)

// Format identifies how a source file is encoded.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
)

// FormatOf picks the decoder for path by its extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %s", apperrors.ErrUnsupportedFormat, filepath.Base(path))
	}
}

// Decode reads every raw record from r in the given format.
func Decode(format Format, r io.Reader) ([]models.RawRecord, error) {
	switch format {
	case FormatJSON:
		return DecodeJSON(r)
	case FormatYAML:
		return DecodeYAML(r)
	case FormatCSV:
		return DecodeCSV(r)
	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnsupportedFormat, format)
	}
}

// DecodeJSON reads a JSON array of objects. Numbers are kept as json.Number
// so integral values are not rounded through float64. Elements that are not
// objects become nil records.
func DecodeJSON(r io.Reader) ([]models.RawRecord, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var items []json.RawMessage
	if err := dec.Decode(&items); err != nil {
		if errors.Is(err, io.EOF) {
			return []models.RawRecord{}, nil
		}
		return nil, fmt.Errorf("failed to decode JSON array: %w", err)
	}

	records := make([]models.RawRecord, len(items))
	for i, item := range items {
		trimmed := bytes.TrimSpace(item)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			continue
		}
		itemDec := json.NewDecoder(bytes.NewReader(trimmed))
		itemDec.UseNumber()
		var rec map[string]any
		if err := itemDec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("failed to decode record %d: %w", i, err)
		}
		records[i] = rec
	}
	return records, nil
}

// DecodeYAML reads a YAML sequence of mappings. Elements that are not
// mappings become nil records.
func DecodeYAML(r io.Reader) ([]models.RawRecord, error) {
	var items []any
	if err := yaml.NewDecoder(r).Decode(&items); err != nil {
		if errors.Is(err, io.EOF) {
			return []models.RawRecord{}, nil
		}
		return nil, fmt.Errorf("failed to decode YAML sequence: %w", err)
	}

	records := make([]models.RawRecord, len(items))
	for i, item := range items {
		if m, ok := item.(map[string]any); ok {
			records[i] = m
		}
	}
	return records, nil
}

const utf8BOM = "\uFEFF"

// DecodeCSV reads a header row followed by data rows. Each row becomes a
// record keyed by header; empty cells and cells missing from short rows are
// left out of the record, and cells beyond the header are ignored.
func DecodeCSV(r io.Reader) ([]models.RawRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []models.RawRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		header[i] = strings.TrimSpace(h)
	}

	records := make([]models.RawRecord, 0)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", len(records)+1, err)
		}

		rec := make(models.RawRecord, len(header))
		for i, cell := range row {
			if i >= len(header) || header[i] == "" || cell == "" {
				continue
			}
			rec[header[i]] = cell
		}
		records = append(records, rec)
	}
	return records, nil
}
