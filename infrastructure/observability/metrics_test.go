package observability

import (
	"context"
	"testing"
	"time"

	"cactuscoin/events"
	"cactuscoin/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestProvider(t *testing.T) (*MetricsProvider, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := NewMetricsProvider(Config{Environment: "test"})
	require.NoError(t, mp.initWithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return mp, reader
}

// sumOf totals an int64 sum or gauge across all data points
func sumOf(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					total += dp.Value
				}
			case metricdata.Gauge[int64]:
				for _, dp := range data.DataPoints {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func TestMetricsProvider_DisabledIsNoop(t *testing.T) {
	mp := NewMetricsProvider(Config{Exporter: "none"})
	require.NoError(t, mp.Initialize(context.Background()))

	mp.RecordBalanceChange(context.Background(), 10, true)
	mp.RecordWagerResolved(context.Background(), "settled")
	assert.NoError(t, mp.ObserveActiveWagers(func() int { return 1 }))
	assert.NoError(t, mp.Shutdown(context.Background()))
}

func TestMetricsProvider_UnknownExporter(t *testing.T) {
	mp := NewMetricsProvider(Config{Exporter: "carrier-pigeon"})
	assert.Error(t, mp.Initialize(context.Background()))
}

func TestMetricsProvider_RecordsBalanceChanges(t *testing.T) {
	mp, reader := newTestProvider(t)

	mp.RecordBalanceChange(context.Background(), 250, true)
	mp.RecordBalanceChange(context.Background(), -100, true)
	mp.RecordBalanceChange(context.Background(), 5, false)

	assert.Equal(t, int64(3), sumOf(t, reader, BalanceChangesTotal))
	assert.Equal(t, int64(355), sumOf(t, reader, BalanceDeltaTotal))
}

func TestMetricsProvider_SubscribeCountsBusEvents(t *testing.T) {
	mp, reader := newTestProvider(t)
	bus := events.NewBus()
	mp.Subscribe(bus)

	bus.Emit(context.Background(), events.WagerResolvedEvent{State: models.WagerStateSettled, Amount: 100})
	bus.Emit(context.Background(), events.WagerResolvedEvent{State: models.WagerStateDeclined})
	bus.Emit(context.Background(), events.BalanceChangeEvent{Delta: 100, Persisted: true})

	assert.Eventually(t, func() bool {
		return sumOf(t, reader, WagersResolvedTotal) == 2 && sumOf(t, reader, BalanceChangesTotal) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestMetricsProvider_ObserveActiveWagers(t *testing.T) {
	mp, reader := newTestProvider(t)

	active := 3
	require.NoError(t, mp.ObserveActiveWagers(func() int { return active }))
	assert.Equal(t, int64(3), sumOf(t, reader, WagersActive))

	active = 1
	assert.Equal(t, int64(1), sumOf(t, reader, WagersActive))
}
