package cache

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RegisterMetrics exports the counters of c as observable instruments on
// meter. The returned registration is unregistered when the cache is no
// longer reported.
func RegisterMetrics(meter metric.Meter, c *LRU, name string) (metric.Registration, error) {
	if c == nil {
		return nil, ErrNilCache
	}
	if meter == nil {
		return nil, errors.New("cache: meter is nil")
	}

	entries, err := meter.Int64ObservableGauge(
		"recipeguard.cache.entries",
		metric.WithDescription("Number of cached responses"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}
	hits, err := meter.Int64ObservableCounter(
		"recipeguard.cache.hits",
		metric.WithDescription("Cache lookups served from memory"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}
	misses, err := meter.Int64ObservableCounter(
		"recipeguard.cache.misses",
		metric.WithDescription("Cache lookups that found nothing"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}
	evictions, err := meter.Int64ObservableCounter(
		"recipeguard.cache.evictions",
		metric.WithDescription("Entries dropped to make room"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}

	opt := metric.WithAttributes(attribute.String("cache.name", name))
	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := c.Stats()
		o.ObserveInt64(entries, int64(s.TotalEntries), opt)
		o.ObserveInt64(hits, int64(s.HitCount), opt)
		o.ObserveInt64(misses, int64(s.MissCount), opt)
		o.ObserveInt64(evictions, int64(s.EvictionCount), opt)
		return nil
	}, entries, hits, misses, evictions)
}
