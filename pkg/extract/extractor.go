// Package extract discovers the raw source files of a run and decodes them
// into raw records for the transform stage.
package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kennelos/kennel-etl/pkg/apperrors"
	"github.com/kennelos/kennel-etl/pkg/config"
	"github.com/kennelos/kennel-etl/pkg/models"
	"github.com/kennelos/kennel-etl/pkg/transform"
)

// Extractor reads the three raw sources from a data directory.
type Extractor struct {
	dataDir string
	sources config.SourcesConfig
	logger  *zap.Logger
}

// NewExtractor creates an Extractor for the files named in sources,
// resolved relative to dataDir.
func NewExtractor(dataDir string, sources config.SourcesConfig, logger *zap.Logger) *Extractor {
	return &Extractor{
		dataDir: dataDir,
		sources: sources,
		logger:  logger.Named("extract"),
	}
}

// Extract reads all sources concurrently. A missing source contributes no
// records and is logged; when every source is missing or empty the result
// is ErrNoInput.
func (e *Extractor) Extract(ctx context.Context) (transform.Input, error) {
	var in transform.Input

	g, ctx := errgroup.WithContext(ctx)
	targets := []struct {
		kind models.EntityKind
		file string
		dst  *[]models.RawRecord
	}{
		{models.KindActivity, e.sources.PetActivities, &in.Activities},
		{models.KindEnvironment, e.sources.Environment, &in.Environment},
		{models.KindStaff, e.sources.StaffLogs, &in.StaffLogs},
	}

	for _, target := range targets {
		g.Go(func() error {
			records, err := e.extractSource(ctx, target.kind, target.file)
			if err != nil {
				return err
			}
			*target.dst = records
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return transform.Input{}, err
	}

	if in.Len() == 0 {
		return transform.Input{}, fmt.Errorf("%w (data dir %s)", apperrors.ErrNoInput, e.dataDir)
	}
	return in, nil
}

func (e *Extractor) extractSource(ctx context.Context, kind models.EntityKind, file string) ([]models.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(e.dataDir, file)
	records, err := ReadFile(path)
	if errors.Is(err, apperrors.ErrSourceNotFound) {
		e.logger.Warn("Source file not found, continuing without it",
			zap.String("source", kind.String()),
			zap.String("path", path))
		return []models.RawRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", kind, err)
	}

	e.logger.Info("Extracted records",
		zap.String("source", kind.String()),
		zap.String("path", path),
		zap.Int("records", len(records)))
	return records, nil
}

// ReadFile decodes the file at path using the format implied by its
// extension. A missing file is reported as ErrSourceNotFound.
func ReadFile(path string) ([]models.RawRecord, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrSourceNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	records, err := Decode(format, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return records, nil
}
