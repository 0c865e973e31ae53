package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Entry is a cached response body.
type Entry struct {
	Status      int
	ContentType string
	Body        []byte
}

// QueryCache holds one entry per (entity, filter) pair. Writers call
// Invalidate for the entity they changed; readers that started before the
// invalidation cannot store their now stale result afterwards.
type QueryCache struct {
	lru *expirable.LRU[string, Entry]

	mu          sync.Mutex
	generations map[string]uint64
}

func New(size int, ttl time.Duration) *QueryCache {
	return &QueryCache{
		lru:         expirable.NewLRU[string, Entry](size, nil, ttl),
		generations: make(map[string]uint64),
	}
}

// Key builds the cache key of a filter on entity.
func Key(entity, filter string) string {
	return fmt.Sprintf("%s:%016x", entity, xxhash.Sum64String(filter))
}

func (q *QueryCache) Get(entity, filter string) (Entry, bool) {
	return q.lru.Get(Key(entity, filter))
}

// Generation returns a token to pass to Set for entity.
func (q *QueryCache) Generation(entity string) uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.generations[entity]
}

// Set stores e unless entity was invalidated after gen was taken.
func (q *QueryCache) Set(entity, filter string, gen uint64, e Entry) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.generations[entity] != gen {
		return false
	}
	q.lru.Add(Key(entity, filter), e)
	return true
}

// Invalidate drops every entry cached for the given entities.
func (q *QueryCache) Invalidate(entities ...string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, entity := range entities {
		q.generations[entity]++
		prefix := entity + ":"
		for _, key := range q.lru.Keys() {
			if strings.HasPrefix(key, prefix) {
				q.lru.Remove(key)
			}
		}
	}
}

// Len returns the number of live entries.
func (q *QueryCache) Len() int {
	return q.lru.Len()
}
