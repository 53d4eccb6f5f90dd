package recording

import (
	"sync"
	"time"
)

// Countdown drives the per-second recording timer. It counts down from the
// configured number of seconds and invokes onZero exactly once when the time
// is up, then resets itself for the next session.
type Countdown struct {
	seconds      int
	tickInterval time.Duration // one second in production, shorter in tests
	onTick       func(remaining int)
	onZero       func()

	mu        sync.Mutex
	remaining int
	active    bool
	stopChan  chan struct{}
}

// NewCountdown creates a countdown over the given number of seconds. onTick
// and onZero may be nil. A zero tickInterval means one tick per second.
func NewCountdown(seconds int, tickInterval time.Duration, onTick func(remaining int), onZero func()) *Countdown {
	if tickInterval <= 0 {
		tickInterval = time.Second
	}
	return &Countdown{
		seconds:      seconds,
		tickInterval: tickInterval,
		onTick:       onTick,
		onZero:       onZero,
		remaining:    seconds,
	}
}

// Remaining returns the seconds left in the current countdown. When no
// countdown is running it reports the full duration.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Start begins ticking. Starting an active countdown is a no-op.
func (c *Countdown) Start() {
	c.mu.Lock()
	if c.active {
		c.mu.Unlock()
		return
	}
	c.active = true
	c.remaining = c.seconds
	c.stopChan = make(chan struct{})
	stopChan := c.stopChan
	c.mu.Unlock()

	go c.run(stopChan)
}

// Stop ends the countdown without firing onZero and resets the remaining
// time for the next session. Stopping an inactive countdown is a no-op.
func (c *Countdown) Stop() {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	c.active = false
	c.remaining = c.seconds
	close(c.stopChan)
	c.mu.Unlock()
}

func (c *Countdown) run(stopChan chan struct{}) {
	ticker := time.NewTicker(c.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			if !c.active {
				c.mu.Unlock()
				return
			}
			c.remaining--
			remaining := c.remaining
			expired := remaining <= 0
			if expired {
				// Reset for the next session before handing control
				// to onZero
				c.active = false
				c.remaining = c.seconds
			}
			c.mu.Unlock()

			if c.onTick != nil && !expired {
				c.onTick(remaining)
			}
			if expired {
				if c.onZero != nil {
					c.onZero()
				}
				return
			}
		case <-stopChan:
			return
		}
	}
}
