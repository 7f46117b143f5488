package session

import (
	"sync"
	"time"
)

// Clock delivers periodic ticks while started. Start replaces any previous callback. After Stop
// a tick already in flight may still arrive, so callbacks carry the run they were armed for.
type Clock interface {
	Start(onTick func())
	Stop()
}

// TickerClock is a Clock backed by time.Ticker.
type TickerClock struct {
	interval time.Duration

	mu   sync.Mutex
	stop chan struct{}
}

// NewTickerClock returns a clock that ticks every interval.
func NewTickerClock(interval time.Duration) *TickerClock {
	if interval <= 0 {
		interval = time.Second
	}
	return &TickerClock{interval: interval}
}

// Start begins ticking, stopping any previous run first.
func (c *TickerClock) Start(onTick func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	stop := make(chan struct{})
	c.stop = stop
	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
			}
			select {
			case <-stop:
				return
			default:
			}
			onTick()
		}
	}()
}

// Stop halts the current run. It is safe to call when not running.
func (c *TickerClock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *TickerClock) stopLocked() {
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}

// ManualClock is a Clock driven by explicit Fire calls.
type ManualClock struct {
	onTick func()
	starts int
}

// Start arms the clock.
func (c *ManualClock) Start(onTick func()) {
	c.onTick = onTick
	c.starts++
}

// Stop disarms the clock.
func (c *ManualClock) Stop() {
	c.onTick = nil
}

// Active reports whether the clock is armed.
func (c *ManualClock) Active() bool {
	return c.onTick != nil
}

// Starts reports how many times the clock was started.
func (c *ManualClock) Starts() int {
	return c.starts
}

// Fire delivers one tick if armed and reports whether it did.
func (c *ManualClock) Fire() bool {
	if c.onTick == nil {
		return false
	}
	c.onTick()
	return true
}
