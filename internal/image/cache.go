package imagepkg

import (
	"container/list"
	"context"
	"image"
	"sync"
)

const DefaultCacheSize = 10

// Loader decodes the background at an index. It is expected to report
// out-of-range indices as *InvalidIndexError.
type Loader interface {
	Decode(ctx context.Context, index int) (image.Image, error)
}

type cacheEntry struct {
	index int
	img   image.Image
}

// CacheStats counts lookups since the cache was created.
type CacheStats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// Cache is a bounded LRU of decoded backgrounds keyed by background index.
type Cache struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List // front is most recently used
	items    map[int]*list.Element
	loader   Loader
	gen      uint64 // bumped whenever keys are invalidated
	hits     int64
	misses   int64
}

func NewCache(capacity int, loader Loader) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	return &Cache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[int]*list.Element),
		loader:   loader,
	}
}

// Get returns the image for index, decoding and inserting it on a miss.
// Decode failures are returned and never cached.
func (c *Cache) Get(ctx context.Context, index int) (image.Image, error) {
	c.mu.Lock()
	if el, ok := c.items[index]; ok {
		c.ll.MoveToFront(el)
		c.hits++
		img := el.Value.(*cacheEntry).img
		c.mu.Unlock()
		return img, nil
	}
	c.misses++
	gen := c.gen
	c.mu.Unlock()

	img, err := c.loader.Decode(ctx, index)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		// keys moved while decoding; the index may now name another file
		return img, nil
	}
	if el, ok := c.items[index]; ok {
		c.ll.MoveToFront(el)
		return el.Value.(*cacheEntry).img, nil
	}
	if c.ll.Len() >= c.capacity {
		c.evictOldest()
	}
	c.items[index] = c.ll.PushFront(&cacheEntry{index: index, img: img})
	return img, nil
}

func (c *Cache) evictOldest() {
	el := c.ll.Back()
	if el == nil {
		return
	}
	c.ll.Remove(el)
	delete(c.items, el.Value.(*cacheEntry).index)
}

// RemoveAt drops key index and shifts every greater key down by one,
// keeping the recency order of the survivors.
func (c *Cache) RemoveAt(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++

	if el, ok := c.items[index]; ok {
		c.ll.Remove(el)
	}
	items := make(map[int]*list.Element, c.ll.Len())
	for el := c.ll.Front(); el != nil; el = el.Next() {
		e := el.Value.(*cacheEntry)
		if e.index > index {
			e.index--
		}
		items[e.index] = el
	}
	c.items = items
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.ll.Init()
	c.items = make(map[int]*list.Element)
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

func (c *Cache) Capacity() int { return c.capacity }

// Keys lists cached indices from most to least recently used.
func (c *Cache) Keys() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]int, 0, c.ll.Len())
	for el := c.ll.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*cacheEntry).index)
	}
	return keys
}

func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{Entries: c.ll.Len(), Hits: c.hits, Misses: c.misses}
}
