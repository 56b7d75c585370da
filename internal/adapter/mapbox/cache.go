package mapbox

import (
	"container/list"
	"context"
	"math"
	"sync"

	"github.com/Chuchoruto/ISS-Tracker/internal/domain"
	"github.com/Chuchoruto/ISS-Tracker/internal/observability"
)

// cachePrecision is the coordinate grid, in degrees, that shares a cache
// entry. 0.001° is roughly 100 m at the equator.
const cachePrecision = 1e-3

// CachedGeocoder wraps a Geocoder with a bounded LRU cache keyed by rounded
// coordinates. Empty results are cached too; errors never are.
type CachedGeocoder struct {
	inner   domain.Geocoder
	metrics *observability.Metrics

	mu      sync.Mutex
	max     int
	order   *list.List // front is most recently used
	entries map[cell]*list.Element
}

type cell struct {
	lat, lon int64
}

type cached struct {
	key    cell
	result domain.GeocodingResult
}

// NewCachedGeocoder creates a cache decorator holding at most maxEntries places.
func NewCachedGeocoder(inner domain.Geocoder, maxEntries int, metrics *observability.Metrics) *CachedGeocoder {
	return &CachedGeocoder{
		inner:   inner,
		metrics: metrics,
		max:     maxEntries,
		order:   list.New(),
		entries: make(map[cell]*list.Element, maxEntries),
	}
}

func (c *CachedGeocoder) ReverseGeocode(ctx context.Context, lat, lon float64) (domain.GeocodingResult, error) {
	key := cellOf(lat, lon)
	if result, ok := c.lookup(key); ok {
		c.metrics.GeocodeCache.WithLabelValues("hit").Inc()
		return result, nil
	}
	c.metrics.GeocodeCache.WithLabelValues("miss").Inc()

	result, err := c.inner.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		return result, err
	}
	c.store(key, result)
	return result, nil
}

// Len reports the number of cached places.
func (c *CachedGeocoder) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *CachedGeocoder) lookup(key cell) (domain.GeocodingResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return domain.GeocodingResult{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cached).result, true
}

func (c *CachedGeocoder) store(key cell, result domain.GeocodingResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*cached).result = result
		c.order.MoveToFront(el)
		return
	}
	c.entries[key] = c.order.PushFront(&cached{key: key, result: result})

	for c.order.Len() > c.max {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cached).key)
	}
}

func cellOf(lat, lon float64) cell {
	return cell{
		lat: int64(math.Round(lat / cachePrecision)),
		lon: int64(math.Round(lon / cachePrecision)),
	}
}
