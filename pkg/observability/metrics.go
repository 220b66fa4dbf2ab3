package observability

import (
	"context"
	"io"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// ScopeName is the instrumentation scope of every jirascope instrument.
const ScopeName = "github.com/matzehuels/jirascope"

// MetricHooks records batch and cache events as OpenTelemetry metrics.
// It implements both [BatchHooks] and [CacheHooks]:
//
//	jirascope.batch.runs           batches finished, by outcome
//	jirascope.batch.duration       batch wall time (ms)
//	jirascope.subgraph.writes      DOT files written, by outcome
//	jirascope.subgraph.renders     images produced, by outcome and source
//	jirascope.render.duration      per-image render time (ms), by format
//	jirascope.cache.lookups        cache lookups, by result
//	jirascope.cache.stored.bytes   bytes stored in the render cache
type MetricHooks struct {
	runs        metric.Int64Counter
	batchDur    metric.Float64Histogram
	writes      metric.Int64Counter
	renders     metric.Int64Counter
	renderDur   metric.Float64Histogram
	lookups     metric.Int64Counter
	storedBytes metric.Int64Counter
}

// NewMetricHooks creates the instruments on m.
func NewMetricHooks(m metric.Meter) (*MetricHooks, error) {
	h := &MetricHooks{}
	var err error
	if h.runs, err = m.Int64Counter("jirascope.batch.runs",
		metric.WithDescription("Batches finished")); err != nil {
		return nil, err
	}
	if h.batchDur, err = m.Float64Histogram("jirascope.batch.duration",
		metric.WithDescription("Batch wall time"), metric.WithUnit("ms")); err != nil {
		return nil, err
	}
	if h.writes, err = m.Int64Counter("jirascope.subgraph.writes",
		metric.WithDescription("DOT files written")); err != nil {
		return nil, err
	}
	if h.renders, err = m.Int64Counter("jirascope.subgraph.renders",
		metric.WithDescription("Images produced")); err != nil {
		return nil, err
	}
	if h.renderDur, err = m.Float64Histogram("jirascope.render.duration",
		metric.WithDescription("Time to produce one image"), metric.WithUnit("ms")); err != nil {
		return nil, err
	}
	if h.lookups, err = m.Int64Counter("jirascope.cache.lookups",
		metric.WithDescription("Render cache lookups")); err != nil {
		return nil, err
	}
	if h.storedBytes, err = m.Int64Counter("jirascope.cache.stored.bytes",
		metric.WithDescription("Bytes stored in the render cache"), metric.WithUnit("By")); err != nil {
		return nil, err
	}
	return h, nil
}

func outcome(err error) attribute.KeyValue {
	if err != nil {
		return attribute.String("outcome", "error")
	}
	return attribute.String("outcome", "ok")
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func (h *MetricHooks) OnBatchStart(context.Context, string, int) {}

func (h *MetricHooks) OnWriteComplete(ctx context.Context, _ string, _ int, err error) {
	h.writes.Add(ctx, 1, metric.WithAttributes(outcome(err)))
}

func (h *MetricHooks) OnRenderComplete(ctx context.Context, _, format string, cached bool, d time.Duration, err error) {
	source := "engine"
	if cached {
		source = "cache"
	}
	h.renders.Add(ctx, 1, metric.WithAttributes(outcome(err), attribute.String("source", source)))
	h.renderDur.Record(ctx, ms(d), metric.WithAttributes(attribute.String("format", format)))
}

func (h *MetricHooks) OnBatchComplete(ctx context.Context, _ string, _ int, d time.Duration, err error) {
	h.runs.Add(ctx, 1, metric.WithAttributes(outcome(err)))
	h.batchDur.Record(ctx, ms(d))
}

func (h *MetricHooks) OnCacheHit(ctx context.Context, keyType string) {
	h.lookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "hit"), attribute.String("type", keyType)))
}

func (h *MetricHooks) OnCacheMiss(ctx context.Context, keyType string) {
	h.lookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "miss"), attribute.String("type", keyType)))
}

func (h *MetricHooks) OnCacheSet(ctx context.Context, keyType string, size int) {
	h.storedBytes.Add(ctx, int64(size), metric.WithAttributes(attribute.String("type", keyType)))
}

var (
	_ BatchHooks = (*MetricHooks)(nil)
	_ CacheHooks = (*MetricHooks)(nil)
)

// InstallStdoutMetrics registers [MetricHooks] backed by a meter provider
// that writes all collected metrics to w when the returned shutdown
// function runs. The shutdown function also restores no-op hooks.
func InstallStdoutMetrics(w io.Writer) (shutdown func(context.Context) error, err error) {
	exp, err := stdoutmetric.New(stdoutmetric.WithWriter(w), stdoutmetric.WithPrettyPrint())
	if err != nil {
		return nil, err
	}
	// The interval only matters for very long runs; shutdown always flushes.
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(time.Minute))),
	)
	hooks, err := NewMetricHooks(provider.Meter(ScopeName))
	if err != nil {
		_ = provider.Shutdown(context.Background())
		return nil, err
	}
	SetBatchHooks(hooks)
	SetCacheHooks(hooks)
	return func(ctx context.Context) error {
		Reset()
		return provider.Shutdown(ctx)
	}, nil
}
