// Package observe holds the OpenTelemetry instruments of the lab and the
// HTTP middleware that records request latency.
//
// Components record through a [Metrics] value. [DefaultMetrics] binds to the
// global meter provider, which is a no-op until prom.InitProvider installs
// the SDK. Tests should build their own with [NewMetrics] and a manual
// reader.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope of every lab instrument.
const meterName = "github.com/cwbudde/acoustics-lab"

// Metrics holds all instruments. The OTel types synchronise themselves.
type Metrics struct {
	// ModeTransitions counts engine mode changes. Attributes: from, to.
	ModeTransitions metric.Int64Counter

	// ControlRequests counts control messages received by the web surface.
	// Attributes: type, status.
	ControlRequests metric.Int64Counter

	// ActiveClients tracks connected WebSocket clients.
	ActiveClients metric.Int64UpDownCounter

	// SnapshotDuration tracks the time to gather and encode one tap snapshot.
	SnapshotDuration metric.Float64Histogram

	// HTTPRequestDuration tracks HTTP handling time. Attributes: method, path.
	HTTPRequestDuration metric.Float64Histogram
}

var snapshotBuckets = []float64{
	0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05,
}

// NewMetrics creates every instrument from mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.ModeTransitions, err = m.Int64Counter("acoustics_lab.mode.transitions",
		metric.WithDescription("Engine mode transitions by source and target mode."),
	); err != nil {
		return nil, err
	}
	if met.ControlRequests, err = m.Int64Counter("acoustics_lab.control.requests",
		metric.WithDescription("Control messages by type and status."),
	); err != nil {
		return nil, err
	}
	if met.ActiveClients, err = m.Int64UpDownCounter("acoustics_lab.web.clients",
		metric.WithDescription("Connected WebSocket clients."),
	); err != nil {
		return nil, err
	}
	if met.SnapshotDuration, err = m.Float64Histogram("acoustics_lab.snapshot.duration",
		metric.WithDescription("Time to gather and encode one tap snapshot."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(snapshotBuckets...),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("acoustics_lab.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level instance bound to
// [otel.GetMeterProvider]. The global provider delegates to whatever SDK is
// installed later, so the instance may be created before the SDK.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordTransition counts one engine mode change.
func (m *Metrics) RecordTransition(ctx context.Context, from, to string) {
	m.ModeTransitions.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("from", from),
			attribute.String("to", to),
		),
	)
}

// RecordControl counts one control message. A nil err records status "ok".
func (m *Metrics) RecordControl(ctx context.Context, msgType string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}

	m.ControlRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("type", msgType),
			attribute.String("status", status),
		),
	)
}
