package cache

import (
	"hash/fnv"
	"math"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

const defaultShards = 16

type entry struct {
	value     []byte
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

type shard struct {
	mu    sync.Mutex
	items *simplelru.LRU[string, entry]
}

// Store is a process-local key/value store for synthesized audio. Entries
// expire lazily: an entry is only checked (and dropped) when it is read.
type Store struct {
	shards []*shard
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a Store. maxEntries bounds the total number of entries
// (least recently used entries are evicted first, per shard); zero means
// unbounded. The per-shard capacities sum to exactly maxEntries, so small
// caps get fewer shards.
func NewStore(maxEntries int, opts ...Option) *Store {
	n := defaultShards
	if maxEntries > 0 && maxEntries < n {
		n = maxEntries
	}
	s := &Store{
		shards: make([]*shard, n),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	for i := range s.shards {
		size := math.MaxInt
		if maxEntries > 0 {
			size = maxEntries / n
			if i < maxEntries%n {
				size++
			}
		}
		// simplelru only fails on a non-positive size.
		items, _ := simplelru.NewLRU[string, entry](size, nil)
		s.shards[i] = &shard{items: items}
	}
	return s
}

func (s *Store) shardFor(key string) *shard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return s.shards[h.Sum32()%uint32(len(s.shards))]
}

// Get returns the value stored at key. It reports false when the key was
// never stored or its TTL has elapsed.
func (s *Store) Get(key string) ([]byte, bool) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	e, ok := sh.items.Get(key)
	if !ok {
		return nil, false
	}
	if e.expired(s.now()) {
		sh.items.Remove(key)
		return nil, false
	}
	return e.value, true
}

// Put stores value at key for ttl. A non-positive ttl never expires.
func (s *Store) Put(key string, value []byte, ttl time.Duration) {
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}

	sh := s.shardFor(key)
	sh.mu.Lock()
	sh.items.Add(key, e)
	sh.mu.Unlock()
}

// Len returns the number of stored entries, including expired entries
// that have not been read since they expired.
func (s *Store) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		n += sh.items.Len()
		sh.mu.Unlock()
	}
	return n
}
