package core

import (
	cache "github.com/go-pkgz/expirable-cache"
	lru "github.com/hashicorp/golang-lru"

	"github.com/hitsdb/hitsdb/core/internal/qcode"
)

// planCache holds compiled plans keyed on the query text.
type planCache struct {
	cache *lru.TwoQueueCache
}

func (hdb *HitsDB) initCache() (err error) {
	if hdb.plans.cache, err = lru.New2Q(hdb.conf.PlanCacheSize); err != nil {
		return
	}
	if hdb.conf.ResultCacheSize > 0 {
		hdb.results, err = cache.NewCache(
			cache.MaxKeys(hdb.conf.ResultCacheSize),
			cache.TTL(hdb.conf.ResultCacheTTL))
	}
	return
}

// Get returns the compiled plan from the cache
func (c planCache) Get(key string) (qc *qcode.QCode, fromCache bool) {
	if v, ok := c.cache.Get(key); ok {
		qc = v.(*qcode.QCode)
		fromCache = true
	}
	return
}

// Set sets the compiled plan in the cache
func (c planCache) Set(key string, qc *qcode.QCode) {
	c.cache.Add(key, qc)
}
