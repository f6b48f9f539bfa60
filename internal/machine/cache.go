package machine

import (
	"time"

	"github.com/patrickmn/go-cache"
)

const listKey = "machines:active"

// ListCache: GET /api/machines cevabını kısa süre tutar. Yönetim yazmalarında Flush çağrılır.
type ListCache struct {
	store *cache.Cache
	ttl   time.Duration
}

// NewListCache: ttl <= 0 ise önbellek kapalıdır
func NewListCache(ttl time.Duration) *ListCache {
	return &ListCache{
		store: cache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

func (lc *ListCache) Get() ([]MachineResponse, bool) {
	if lc == nil || lc.ttl <= 0 {
		return nil, false
	}
	v, ok := lc.store.Get(listKey)
	if !ok {
		return nil, false
	}
	list, ok := v.([]MachineResponse)
	return list, ok
}

func (lc *ListCache) Set(list []MachineResponse) {
	if lc == nil || lc.ttl <= 0 {
		return
	}
	lc.store.Set(listKey, list, cache.DefaultExpiration)
}

func (lc *ListCache) Flush() {
	if lc == nil {
		return
	}
	lc.store.Flush()
}
