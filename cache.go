package gridcalc

import (
	"container/list"
	"sync"

	"github.com/google/uuid"
)

// cacheEntry is one LRU slot: an evaluated cell result tagged with the
// workbook instance id and generation it was computed under, so
// a stale entry from before a structural edit is never served (spec.md
// §4.9, §9). This mirrors _examples/OmniMCP-AI-excelize/lru_cache.go's
// lruEntry/list.Element shape, generalized to carry the generation tag.
type cacheEntry struct {
	key        string
	instanceID uuid.UUID
	generation uint64
	result     CalcResult
}

// engineCache is a fixed-capacity LRU cache of evaluated cell results,
// keyed by "Sheet!A1" text. It is grounded directly on
// _examples/OmniMCP-AI-excelize/lru_cache.go's lruCache type (a
// sync.RWMutex plus a map[string]*list.Element over a container/list
// lruList), extended with the (instanceID, generation) tag this engine
// uses for invalidation instead of the teacher's plain capacity eviction
// alone.
type engineCache struct {
	mu       sync.RWMutex
	capacity int
	cache    map[string]*list.Element
	lruList  *list.List

	instanceID uuid.UUID
	generation uint64
}

func newEngineCache(capacity int) *engineCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &engineCache{
		capacity: capacity,
		cache:    make(map[string]*list.Element),
		lruList:  list.New(),
	}
}

// invalidate bumps the cache's accepted (instanceID, generation) pair.
// Entries tagged with an older generation are treated as misses on next
// Load and lazily evicted, rather than walked and removed eagerly —
// matching the teacher's Load-time staleness check.
func (c *engineCache) invalidate(instanceID uuid.UUID, generation uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.instanceID = instanceID
	c.generation = generation
}

// Load returns the cached result for key if present and still current.
func (c *engineCache) Load(key string) (CalcResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.cache[key]
	if !ok {
		return CalcResult{}, false
	}
	entry := elem.Value.(*cacheEntry)
	if entry.instanceID != c.instanceID || entry.generation != c.generation {
		c.lruList.Remove(elem)
		delete(c.cache, key)
		return CalcResult{}, false
	}
	c.lruList.MoveToFront(elem)
	return entry.result, true
}

// Store inserts or refreshes key's cached result under the cache's
// current generation, evicting the least-recently-used entry if the
// cache is at capacity.
func (c *engineCache) Store(key string, instanceID uuid.UUID, generation uint64, result CalcResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.cache[key]; ok {
		elem.Value = &cacheEntry{key: key, instanceID: instanceID, generation: generation, result: result}
		c.lruList.MoveToFront(elem)
		return
	}
	entry := &cacheEntry{key: key, instanceID: instanceID, generation: generation, result: result}
	elem := c.lruList.PushFront(entry)
	c.cache[key] = elem
	if c.lruList.Len() > c.capacity {
		oldest := c.lruList.Back()
		if oldest != nil {
			c.lruList.Remove(oldest)
			delete(c.cache, oldest.Value.(*cacheEntry).key)
		}
	}
}

// Evict removes key unconditionally, whatever its generation tag. The
// workbook does not call it: every workbook edit bumps the generation
// instead.
func (c *engineCache) Evict(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.cache[key]; ok {
		c.lruList.Remove(elem)
		delete(c.cache, key)
	}
}

// Len reports how many entries (fresh or stale) the cache currently
// holds, for tests.
func (c *engineCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lruList.Len()
}
