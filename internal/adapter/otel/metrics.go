package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "apploom"

// Metrics holds all AppLoom metric instruments.
type Metrics struct {
	ToolInvocations metric.Int64Counter
	ToolFailures    metric.Int64Counter
	ToolDuration    metric.Float64Histogram
	StoreFiles      metric.Int64Gauge
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.ToolInvocations, err = meter.Int64Counter("apploom.toolcalls",
		metric.WithDescription("Number of tool invocations"))
	if err != nil {
		return nil, err
	}

	m.ToolFailures, err = meter.Int64Counter("apploom.toolcalls.failed",
		metric.WithDescription("Number of failed tool invocations"))
	if err != nil {
		return nil, err
	}

	m.ToolDuration, err = meter.Float64Histogram("apploom.toolcall.duration_seconds",
		metric.WithDescription("Tool invocation duration in seconds"))
	if err != nil {
		return nil, err
	}

	m.StoreFiles, err = meter.Int64Gauge("apploom.store.files",
		metric.WithDescription("Files currently held in the virtual codebase store"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
