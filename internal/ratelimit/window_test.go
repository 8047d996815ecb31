package ratelimit

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestFixedWindow_OnePerWindow(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	l := NewFixedWindow(1, 10*time.Second, WithClock(clock.Now))
	defer l.Close()

	assert.Equal(t, 10*time.Second, l.Window())
	assert.True(t, l.Allow("1.2.3.4"))
	assert.False(t, l.Allow("1.2.3.4"))

	clock.Advance(9 * time.Second)
	assert.False(t, l.Allow("1.2.3.4"), "still inside the window")

	clock.Advance(time.Second)
	assert.True(t, l.Allow("1.2.3.4"), "window rolled over")
	assert.False(t, l.Allow("1.2.3.4"))
}

func TestFixedWindow_ClientsAreIndependent(t *testing.T) {
	l := NewFixedWindow(1, time.Minute)
	defer l.Close()

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))
	assert.False(t, l.Allow("a"))
	assert.False(t, l.Allow("b"))
	assert.Equal(t, 2, l.Len())
}

func TestFixedWindow_Limit(t *testing.T) {
	l := NewFixedWindow(3, time.Minute)
	defer l.Close()

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("a"), "request %d", i)
	}
	assert.False(t, l.Allow("a"))
}

func TestFixedWindow_Prune(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	l := NewFixedWindow(1, 10*time.Second, WithClock(clock.Now))
	defer l.Close()

	l.Allow("old")
	clock.Advance(5 * time.Second)
	l.Allow("new")
	clock.Advance(5 * time.Second)

	l.Prune()
	assert.Equal(t, 1, l.Len())
	assert.False(t, l.Allow("new"))
}

func TestFixedWindow_ConcurrentSingleAdmit(t *testing.T) {
	l := NewFixedWindow(1, time.Hour)
	defer l.Close()

	var admitted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("same") {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), admitted.Load())
}

func TestFixedWindow_CloseIsIdempotent(t *testing.T) {
	l := NewFixedWindow(1, time.Second, WithSweep(time.Millisecond))
	for i := 0; i < 5; i++ {
		l.Allow(fmt.Sprintf("c%d", i))
	}
	l.Close()
	l.Close()
}
