package ratelimit

import (
	"hash/fnv"
	"sync"
	"time"
)

const shardCount = 16

type clientWindow struct {
	count int
	start time.Time
}

type shard struct {
	mu       sync.Mutex
	visitors map[string]*clientWindow
}

// FixedWindow admits at most limit requests per client in each window.
// A client's window opens on its first request and rolls over once the
// window duration has elapsed.
type FixedWindow struct {
	shards [shardCount]*shard
	limit  int
	window time.Duration
	now    func() time.Time

	sweepEvery time.Duration
	stop       chan struct{}
	closeOnce  sync.Once
}

// Option configures a FixedWindow.
type Option func(*FixedWindow)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(l *FixedWindow) { l.now = now }
}

// WithSweep starts a goroutine that drops windows idle for longer than a
// full window, checking every interval. Close stops it.
func WithSweep(interval time.Duration) Option {
	return func(l *FixedWindow) { l.sweepEvery = interval }
}

func NewFixedWindow(limit int, d time.Duration, opts ...Option) *FixedWindow {
	if limit < 1 {
		limit = 1
	}
	l := &FixedWindow{
		limit:  limit,
		window: d,
		now:    time.Now,
		stop:   make(chan struct{}),
	}
	for i := range l.shards {
		l.shards[i] = &shard{visitors: make(map[string]*clientWindow)}
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.sweepEvery > 0 {
		go l.sweep(l.sweepEvery)
	}
	return l
}

func (l *FixedWindow) shardFor(client string) *shard {
	h := fnv.New32a()
	h.Write([]byte(client))
	return l.shards[h.Sum32()%shardCount]
}

// Allow reports whether a request from client is admitted, counting it
// against the client's current window when it is.
func (l *FixedWindow) Allow(client string) bool {
	now := l.now()
	sh := l.shardFor(client)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	w, ok := sh.visitors[client]
	if !ok || now.Sub(w.start) >= l.window {
		sh.visitors[client] = &clientWindow{count: 1, start: now}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Window returns the configured window duration.
func (l *FixedWindow) Window() time.Duration { return l.window }

// Len returns the number of tracked clients.
func (l *FixedWindow) Len() int {
	n := 0
	for _, sh := range l.shards {
		sh.mu.Lock()
		n += len(sh.visitors)
		sh.mu.Unlock()
	}
	return n
}

// Prune drops windows that have already rolled over.
func (l *FixedWindow) Prune() {
	now := l.now()
	for _, sh := range l.shards {
		sh.mu.Lock()
		for client, w := range sh.visitors {
			if now.Sub(w.start) >= l.window {
				delete(sh.visitors, client)
			}
		}
		sh.mu.Unlock()
	}
}

// Close stops the sweeper, if any.
func (l *FixedWindow) Close() {
	l.closeOnce.Do(func() { close(l.stop) })
}

func (l *FixedWindow) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.Prune()
		}
	}
}
