// Package pipeline runs one extract, transform and load pass.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kennelos/kennel-etl/pkg/apperrors"
	"github.com/kennelos/kennel-etl/pkg/models"
	"github.com/kennelos/kennel-etl/pkg/transform"
)

// Extractor produces the raw input of a run.
type Extractor interface {
	Extract(ctx context.Context) (transform.Input, error)
}

// Sink receives the result of a run.
type Sink interface {
	Name() string
	Load(ctx context.Context, run models.RunInfo, res *transform.Result) error
}

// Options tune a Pipeline.
type Options struct {
	// MaxFailureRate halts the run before any sink is called when the share
	// of rejected records exceeds it. Values >= 1 never halt.
	MaxFailureRate float64
	Thresholds     transform.Thresholds
}

// DefaultOptions never halts and uses the default comfort thresholds.
func DefaultOptions() Options {
	return Options{
		MaxFailureRate: 1,
		Thresholds:     transform.DefaultThresholds(),
	}
}

// Pipeline wires an extractor to a set of sinks around the transform stage.
type Pipeline struct {
	extractor Extractor
	sinks     []Sink
	opts      Options
	logger    *zap.Logger

	now   func() time.Time
	newID func() uuid.UUID
}

// New creates a Pipeline.
func New(extractor Extractor, sinks []Sink, opts Options, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		sinks:     sinks,
		opts:      opts,
		logger:    logger.Named("pipeline"),
		now:       time.Now,
		newID:     uuid.New,
	}
}

// RunReport describes a finished run.
type RunReport struct {
	RunID       uuid.UUID         `json:"run_id"`
	StartedAt   time.Time         `json:"started_at"`
	FinishedAt  time.Time         `json:"finished_at"`
	Stats       transform.Stats   `json:"stats"`
	FailureRate float64           `json:"failure_rate"`
	Halted      bool              `json:"halted"`
	Sinks       map[string]error  `json:"-"`
	Result      *transform.Result `json:"-"`
}

// Run executes one pass. The report is returned whenever extraction
// succeeded, including when the run halted or a sink failed, so callers
// can print what happened.
func (p *Pipeline) Run(ctx context.Context) (*RunReport, error) {
	run := models.RunInfo{ID: p.newID(), StartedAt: p.now()}
	logger := p.logger.With(zap.String("run_id", run.ID.String()))
	logger.Info("Starting pipeline run")

	in, err := p.extractor.Extract(ctx)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	res := transform.TransformWith(p.opts.Thresholds, in)
	report := &RunReport{
		RunID:       run.ID,
		StartedAt:   run.StartedAt,
		Stats:       res.Stats,
		FailureRate: res.FailureRate(),
		Sinks:       make(map[string]error, len(p.sinks)),
		Result:      &res,
	}

	logger.Info("Transformed records",
		zap.Int("input", res.Stats.Total().Input),
		zap.Int("valid", res.Stats.Total().Valid),
		zap.Int("rejected", res.Stats.Total().Rejected),
		zap.Int("daily_summaries", len(res.DailySummary)),
		zap.Float64("failure_rate", report.FailureRate))

	if report.FailureRate > p.opts.MaxFailureRate {
		report.Halted = true
		report.FinishedAt = p.now()
		logger.Error("Failure rate above threshold, nothing written",
			zap.Float64("failure_rate", report.FailureRate),
			zap.Float64("max_failure_rate", p.opts.MaxFailureRate))
		return report, fmt.Errorf("%w: %.3f > %.3f",
			apperrors.ErrFailureThresholdExceeded, report.FailureRate, p.opts.MaxFailureRate)
	}

	if err := p.load(ctx, run, &res, report, logger); err != nil {
		report.FinishedAt = p.now()
		return report, err
	}

	report.FinishedAt = p.now()
	logger.Info("Pipeline run completed", zap.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)))
	return report, nil
}

// load runs every sink concurrently. One sink failing does not cancel the
// others; all failures are recorded in the report and returned joined.
func (p *Pipeline) load(ctx context.Context, run models.RunInfo, res *transform.Result, report *RunReport, logger *zap.Logger) error {
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, sink := range p.sinks {
		wg.Go(func() {
			err := sink.Load(ctx, run, res)
			if err != nil {
				logger.Error("Sink failed", zap.String("sink", sink.Name()), zap.Error(err))
			} else {
				logger.Debug("Sink completed", zap.String("sink", sink.Name()))
			}
			mu.Lock()
			report.Sinks[sink.Name()] = err
			mu.Unlock()
		})
	}
	wg.Wait()

	var errs []error
	for _, sink := range p.sinks {
		if err := report.Sinks[sink.Name()]; err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Failed reports whether any sink returned an error.
func (r *RunReport) Failed() bool {
	for _, err := range r.Sinks {
		if err != nil {
			return true
		}
	}
	return r.Halted
}
