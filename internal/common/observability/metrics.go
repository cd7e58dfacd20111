package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"

	"alternator-reqgen/internal/common/logger"
)

// Phases recorded by the pipeline.
const (
	PhaseGenerate = "generate"
	PhaseMerge    = "merge"
	PhaseSplit    = "split"
	PhaseClassify = "classify"
)

type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	phaseCounter  otelmetric.Int64Counter
	phaseDuration otelmetric.Float64Histogram
}

// New wires an otel meter provider onto the prometheus default registerer.
// On exporter failure it returns a no-op instance and logs the error.
func New(serviceName string, log logger.Logger) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Warn("Failed to create Prometheus exporter", map[string]interface{}{"error": err})
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	phaseCounter, _ := meter.Int64Counter(
		"reqgen.phase.runs",
		otelmetric.WithDescription("Number of pipeline phases executed"),
	)

	phaseDuration, _ := meter.Float64Histogram(
		"reqgen.phase.duration",
		otelmetric.WithDescription("Pipeline phase duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider: provider,
		meter:         meter,
		phaseCounter:  phaseCounter,
		phaseDuration: phaseDuration,
	}
}

// Noop returns an instance that records nothing.
func Noop() *Observability { return &Observability{} }

func (o *Observability) RecordPhase(ctx context.Context, phase string, duration time.Duration, status string) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("phase", phase),
		attribute.String("status", status),
	)
	if o.phaseCounter != nil {
		o.phaseCounter.Add(ctx, 1, attrs)
	}
	if o.phaseDuration != nil {
		o.phaseDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

// Track times fn as phase and records its outcome.
func (o *Observability) Track(ctx context.Context, phase string, fn func() error) error {
	start := time.Now()
	err := fn()
	status := "ok"
	if err != nil {
		status = "error"
	}
	o.RecordPhase(ctx, phase, time.Since(start), status)
	return err
}

func (o *Observability) Shutdown() {
	if o != nil && o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = o.meterProvider.Shutdown(ctx)
	}
}
