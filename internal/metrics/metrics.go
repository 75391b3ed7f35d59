package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	LabelSource  = "source"
	LabelOutcome = "outcome"
	LabelPath    = "path"
	LabelCode    = "code"
)

// Sources of an aggregation run.
const (
	SourceFile  = "file"
	SourceStore = "store"
	SourceHTTP  = "http"
)

const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

var (
	// RunsTotal counts aggregation runs by source and outcome.
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "movingavg",
		Name:      "runs_total",
		Help:      "Total number of moving-average runs",
	}, []string{LabelSource, LabelOutcome})

	EventsLoaded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "movingavg",
		Name:      "events_loaded_total",
		Help:      "Total number of delivery events fed into the aggregator",
	}, []string{LabelSource})

	SamplesEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "movingavg",
		Name:      "samples_emitted_total",
		Help:      "Total number of per-minute samples emitted",
	}, []string{LabelSource})

	AggregationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "movingavg",
		Name:      "aggregation_duration_seconds",
		Help:      "Time spent computing the moving average",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
	}, []string{LabelSource})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "movingavg",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests served",
	}, []string{LabelPath, LabelCode})
)
