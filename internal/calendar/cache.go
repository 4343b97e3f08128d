package calendar

import (
	"container/list"
	"sync"

	"github.com/fiscalsim/engine/internal/domain"
)

// Cache memoizes Compute results for process-wide reuse, bounded to avoid
// unbounded growth, per spec.md §9 ("make the cache bounded, e.g. LRU of 64
// entries"). A (year, region) holiday set is immutable once computed, so
// the cache may be shared safely across concurrent simulation runs (see
// spec.md §5's shared-resource policy).
type Cache struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List
	index    map[cacheKey]*list.Element
}

type cacheKey struct {
	year   int
	region domain.HolidayRegion
}

type cacheEntry struct {
	key cacheKey
	set HolidaySet
}

// DefaultCapacity matches spec.md §9's recommendation.
const DefaultCapacity = 64

// NewCache builds a bounded holiday cache.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		ll:       list.New(),
		index:    make(map[cacheKey]*list.Element),
	}
}

// Get returns the holiday set for (year, region), computing and caching it
// on first use.
func (c *Cache) Get(year int, region domain.HolidayRegion) HolidaySet {
	key := cacheKey{year: year, region: region}

	c.mu.Lock()
	if el, ok := c.index[key]; ok {
		c.ll.MoveToFront(el)
		set := el.Value.(*cacheEntry).set
		c.mu.Unlock()
		return set
	}
	c.mu.Unlock()

	// Compute outside the lock: Compute is pure and safe to race, it just
	// means two concurrent misses for the same key do redundant work once.
	set := Compute(year, region)

	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.index[key]; ok {
		c.ll.MoveToFront(el)
		return el.Value.(*cacheEntry).set
	}
	el := c.ll.PushFront(&cacheEntry{key: key, set: set})
	c.index[key] = el
	if c.ll.Len() > c.capacity {
		oldest := c.ll.Back()
		if oldest != nil {
			c.ll.Remove(oldest)
			delete(c.index, oldest.Value.(*cacheEntry).key)
		}
	}
	return set
}

// shared is the process-wide default cache instance used by package-level
// Get.
var shared = NewCache(DefaultCapacity)

// Get is a convenience wrapper around the process-wide shared cache.
func Get(year int, region domain.HolidayRegion) HolidaySet {
	return shared.Get(year, region)
}
