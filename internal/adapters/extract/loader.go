// Package extract reads NEO and close-approach source files into model records.
package extract

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/okian/neodb/internal/domain/model"
	"github.com/okian/neodb/pkg/logger"
	"github.com/okian/neodb/pkg/metrics"
)

// Metric/log source labels.
const (
	SourceNEOs       = "neos"
	SourceApproaches = "approaches"
)

// ctxCheckEvery is how many rows are read between context checks.
const ctxCheckEvery = 1024

// Loader reads the NEO CSV and close-approach JSON formats.
type Loader struct {
	logger logger.Logger
	strict bool
}

// NewLoader creates a Loader.
func NewLoader(opts ...Option) *Loader {
	ld := &Loader{logger: logger.Nop()}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// NEOFile loads NEOs from the CSV file at path.
func (ld *Loader) NEOFile(ctx context.Context, path string) ([]*model.NearEarthObject, error) {
	start := time.Now()
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open neo file: %w", err)
	}
	defer func() { _ = f.Close() }()

	neos, err := ld.NEOs(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	metrics.RecordLoadDuration(SourceNEOs, float64(time.Since(start).Milliseconds()))
	ld.logger.Info(ctx, "loaded neos", logger.String("path", path), logger.Int("count", len(neos)))
	return neos, nil
}

// ApproachFile loads close approaches from the JSON file at path.
func (ld *Loader) ApproachFile(ctx context.Context, path string) ([]*model.CloseApproach, error) {
	start := time.Now()
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open approach file: %w", err)
	}
	defer func() { _ = f.Close() }()

	approaches, err := ld.Approaches(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	metrics.RecordLoadDuration(SourceApproaches, float64(time.Since(start).Milliseconds()))
	ld.logger.Info(ctx, "loaded approaches", logger.String("path", path), logger.Int("count", len(approaches)))
	return approaches, nil
}

// skip records a dropped row; in strict mode it becomes an error.
func (ld *Loader) skip(ctx context.Context, source string, row int, reason error) error {
	metrics.RecordLoadError(source)
	if ld.strict {
		return fmt.Errorf("%w: %s row %d: %w", ErrMalformedInput, source, row, reason)
	}
	ld.logger.Debug(ctx, "skipping row",
		logger.String("source", source),
		logger.Int("row", row),
		logger.Error(reason),
	)
	return nil
}
