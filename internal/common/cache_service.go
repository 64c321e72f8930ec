package common

import (
	"time"

	"github.com/patrickmn/go-cache"

	"portal-united/directory/internal/metrics"
)

// CacheService is the in-process cache. It holds typed values, so it backs the
// tag list and, without Redis, used invitation ids.
type CacheService struct {
	cache   *cache.Cache
	metrics *metrics.MetricsRegistry
}

var _ CacheInterface = (*CacheService)(nil)

func NewCacheService(defaultExpiration, cleanupInterval time.Duration, metricsReg *metrics.MetricsRegistry) *CacheService {
	return &CacheService{
		cache:   cache.New(defaultExpiration, cleanupInterval),
		metrics: metricsReg,
	}
}

func (cs *CacheService) Set(key string, value interface{}, duration time.Duration) {
	cs.cache.Set(key, value, duration)
}

func (cs *CacheService) Get(key string) (interface{}, bool) {
	return cs.cache.Get(key)
}

func (cs *CacheService) Add(key string, value interface{}, duration time.Duration) bool {
	return cs.cache.Add(key, value, duration) == nil
}

func (cs *CacheService) Delete(key string) {
	cs.cache.Delete(key)
}

func (cs *CacheService) GetOrSet(
	key string,
	duration time.Duration,
	loader func() (any, error)) (interface{}, error) {
	if val, found := cs.Get(key); found {
		cs.metrics.CacheLookup(key, true)
		return val, nil
	}
	cs.metrics.CacheLookup(key, false)

	val, err := loader()
	if err != nil {
		return nil, err
	}

	cs.Set(key, val, duration)
	return val, nil
}

// Close is a no-op for the in-memory cache
func (cs *CacheService) Close() error {
	return nil
}
