package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cactuscoin/events"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// Config selects the metrics exporter
type Config struct {
	Exporter       string // "none", "console" or "otlp"
	OTLPEndpoint   string
	Environment    string
	ExportInterval time.Duration
}

// MetricsProvider records ledger and wager metrics from bus events
type MetricsProvider struct {
	config        Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	enabled       bool
	mu            sync.RWMutex

	balanceChangesCounter metric.Int64Counter
	coinMovedCounter      metric.Int64Counter
	wagersResolvedCounter metric.Int64Counter
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg Config) *MetricsProvider {
	if cfg.ExportInterval <= 0 {
		cfg.ExportInterval = 30 * time.Second
	}
	return &MetricsProvider{config: cfg}
}

// Initialize sets up the exporter named in the config
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	var exporter sdkmetric.Exporter
	var err error

	switch mp.config.Exporter {
	case "", "none":
		log.Info("Metrics export disabled")
		return nil

	case "console":
		exporter, err = stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console exporter: %w", err)
		}
		log.Info("Using console metric exporter")

	case "otlp":
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if mp.config.OTLPEndpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(mp.config.OTLPEndpoint))
		}
		exporter, err = otlpmetricgrpc.New(ctx, opts...)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.WithField("endpoint", mp.config.OTLPEndpoint).Info("Using OTLP metric exporter")

	default:
		return fmt.Errorf("unknown exporter type: %s", mp.config.Exporter)
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(mp.config.ExportInterval))
	if err := mp.initWithReader(reader); err != nil {
		return err
	}
	otel.SetMeterProvider(mp.meterProvider)
	return nil
}

func (mp *MetricsProvider) initWithReader(reader sdkmetric.Reader) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			attribute.String("service.name", "cactuscoin"),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	mp.meter = mp.meterProvider.Meter("cactuscoin")

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.enabled = true
	return nil
}

func (mp *MetricsProvider) createInstruments() error {
	var err error

	mp.balanceChangesCounter, err = mp.meter.Int64Counter(
		BalanceChangesTotal,
		metric.WithDescription("Total number of committed balance changes"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create balance changes counter: %w", err)
	}

	mp.coinMovedCounter, err = mp.meter.Int64Counter(
		BalanceDeltaTotal,
		metric.WithDescription("Absolute coin moved by balance changes"),
		metric.WithUnit("{coin}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create coin moved counter: %w", err)
	}

	mp.wagersResolvedCounter, err = mp.meter.Int64Counter(
		WagersResolvedTotal,
		metric.WithDescription("Total number of wagers reaching a terminal state"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create wagers resolved counter: %w", err)
	}

	return nil
}

// ObserveActiveWagers reports count as the live wager gauge
func (mp *MetricsProvider) ObserveActiveWagers(count func() int) error {
	if !mp.isEnabled() {
		return nil
	}

	_, err := mp.meter.Int64ObservableGauge(
		WagersActive,
		metric.WithDescription("Current number of wagers awaiting confirmation or outcome"),
		metric.WithUnit("1"),
		metric.WithInt64Callback(func(ctx context.Context, o metric.Int64Observer) error {
			o.Observe(int64(count()))
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to create active wagers gauge: %w", err)
	}
	return nil
}

// Subscribe records metrics for bus events
func (mp *MetricsProvider) Subscribe(bus *events.Bus) {
	if !mp.isEnabled() {
		return
	}

	bus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.BalanceChangeEvent); ok {
			mp.RecordBalanceChange(ctx, e.Delta, e.Persisted)
		}
	})
	bus.Subscribe(events.EventTypeWagerResolved, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.WagerResolvedEvent); ok {
			mp.RecordWagerResolved(ctx, string(e.State))
		}
	})
}

// RecordBalanceChange records one committed balance change
func (mp *MetricsProvider) RecordBalanceChange(ctx context.Context, delta int64, persisted bool) {
	if !mp.isEnabled() {
		return
	}

	direction := DirectionGain
	if delta < 0 {
		direction, delta = DirectionLoss, -delta
	}
	attrs := metric.WithAttributes(
		attribute.Bool(LabelPersisted, persisted),
		attribute.String(LabelDirection, direction),
	)

	mp.balanceChangesCounter.Add(ctx, 1, attrs)
	mp.coinMovedCounter.Add(ctx, delta, attrs)
}

// RecordWagerResolved records a wager reaching state
func (mp *MetricsProvider) RecordWagerResolved(ctx context.Context, state string) {
	if !mp.isEnabled() {
		return
	}

	mp.wagersResolvedCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String(LabelState, state),
	))
}

// Shutdown flushes and stops the exporter
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

func (mp *MetricsProvider) isEnabled() bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.enabled
}
