// Package prom installs the OpenTelemetry SDK with a Prometheus exporter and
// serves the collected metrics.
package prom

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// ProviderConfig configures the OpenTelemetry SDK.
type ProviderConfig struct {
	// ServiceName is reported in the target_info series. Default: "acoustics-lab".
	ServiceName string

	// ServiceVersion is reported in the target_info series.
	ServiceVersion string
}

// Provider is an SDK meter provider exported through its own Prometheus
// registry.
type Provider struct {
	mp       *sdkmetric.MeterProvider
	registry *prometheus.Registry
}

// NewProvider builds a meter provider and a Prometheus registry the
// exporter writes into. It does not touch the global provider.
func NewProvider(cfg ProviderConfig) (*Provider, error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "acoustics-lab"
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()

	exp, err := promexporter.New(promexporter.WithRegisterer(reg))
	if err != nil {
		return nil, err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exp),
	)

	return &Provider{mp: mp, registry: reg}, nil
}

// InitProvider builds a provider and installs it as the global meter
// provider, so observe.DefaultMetrics records into it.
func InitProvider(cfg ProviderConfig) (*Provider, error) {
	p, err := NewProvider(cfg)
	if err != nil {
		return nil, err
	}

	otel.SetMeterProvider(p.mp)

	return p, nil
}

// MeterProvider returns the SDK provider.
func (p *Provider) MeterProvider() *sdkmetric.MeterProvider {
	return p.mp
}

// Handler serves the registry in the Prometheus text format.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Shutdown flushes and stops the provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if err := p.mp.Shutdown(ctx); err != nil && !errors.Is(err, sdkmetric.ErrReaderShutdown) {
		return err
	}

	return nil
}
