// Package pipeline runs one batch moving-average computation:
// validate -> load -> filter -> aggregate -> write.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/PratikDhanave/delivery-time-analytics/internal/config"
	"github.com/PratikDhanave/delivery-time-analytics/internal/filter"
	"github.com/PratikDhanave/delivery-time-analytics/internal/loader"
	"github.com/PratikDhanave/delivery-time-analytics/internal/logging"
	"github.com/PratikDhanave/delivery-time-analytics/internal/metrics"
	"github.com/PratikDhanave/delivery-time-analytics/internal/models"
	"github.com/PratikDhanave/delivery-time-analytics/internal/window"
	"github.com/PratikDhanave/delivery-time-analytics/internal/writer"
)

// Result describes a completed run.
type Result struct {
	RunID      string
	OutputPath string
	Events     int
	Samples    []models.Sample
}

// Run executes cfg end to end. The window and the output policy are checked
// before the input is opened; nothing is written unless every earlier step
// succeeded.
func Run(ctx context.Context, cfg config.Run) (res Result, err error) {
	res.RunID = uuid.New().String()
	log := logging.FromContext(ctx).With("run_id", res.RunID)
	defer func() {
		outcome := metrics.OutcomeOK
		if err != nil {
			outcome = metrics.OutcomeError
			log.Errorw("Run failed", "error", err)
		}
		metrics.RunsTotal.WithLabelValues(metrics.SourceFile, outcome).Inc()
	}()

	if err = cfg.Validate(); err != nil {
		return res, err
	}
	f, err := filter.Compile(cfg.Filter)
	if err != nil {
		return res, err
	}
	if err = writer.CheckDestination(cfg.Output(), cfg.Overwrite); err != nil {
		return res, err
	}

	log.Infow("Starting run", "input", cfg.InputPath, "output", cfg.Output(), "window_size", cfg.WindowMinutes)
	events, err := loader.LoadFile(cfg.InputPath)
	if err != nil {
		return res, err
	}
	events, err = f.Apply(events)
	if err != nil {
		return res, err
	}
	res.Events = len(events)
	metrics.EventsLoaded.WithLabelValues(metrics.SourceFile).Add(float64(len(events)))

	res.Samples, err = Compute(events, cfg.WindowMinutes, metrics.SourceFile)
	if err != nil {
		return res, err
	}

	res.OutputPath, err = writer.WriteFile(cfg.Output(), cfg.Overwrite, res.Samples)
	if err != nil {
		return res, err
	}
	log.Infow("Run complete", "events", res.Events, "samples", len(res.Samples), "output", res.OutputPath)
	return res, nil
}

// Compute aggregates events and records the aggregation metrics under source.
func Compute(events []models.Event, windowMinutes int, source string) ([]models.Sample, error) {
	start := time.Now()
	samples, err := window.Aggregate(events, windowMinutes)
	if err != nil {
		return nil, err
	}
	metrics.AggregationDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	metrics.SamplesEmitted.WithLabelValues(source).Add(float64(len(samples)))
	return samples, nil
}
