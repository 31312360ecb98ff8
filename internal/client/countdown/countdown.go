// Package countdown models timer-driven UI state as an explicit integer
// decremented by a recurring callback. Stopping a countdown turns every
// later callback into a no-op, so a screen that is gone is never updated.
package countdown

import (
	"sync"
	"time"
)

// Countdown counts from a start value down to zero, one step per tick.
type Countdown struct {
	mu        sync.Mutex
	remaining int
	interval  time.Duration
	onTick    func(remaining int)
	onDone    func()
	stop      chan struct{}
	running   bool
	stopped   bool
}

// New creates a stopped countdown. onTick runs after every decrement and
// onDone once the value reaches zero; either may be nil.
func New(interval time.Duration, onTick func(remaining int), onDone func()) *Countdown {
	return &Countdown{interval: interval, onTick: onTick, onDone: onDone}
}

// Ticks splits d into whole-second steps, rounding up. A d shorter than a
// second is one step of d; a non-positive d is one immediate step.
func Ticks(d time.Duration) (int, time.Duration) {
	if d >= time.Second {
		return int((d + time.Second - 1) / time.Second), time.Second
	}
	if d <= 0 {
		d = time.Millisecond
	}
	return 1, d
}

// Start (re)starts the countdown from n. A running countdown is restarted.
func (c *Countdown) Start(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.halt()
	c.stopped = false
	c.remaining = n
	if n <= 0 {
		return
	}

	c.stop = make(chan struct{})
	c.running = true
	go c.loop(c.stop)
}

func (c *Countdown) loop(stop <-chan struct{}) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if c.tick(stop) == 0 {
				return
			}
		case <-stop:
			return
		}
	}
}

// Tick decrements the value by one and fires the callbacks. It is what the
// background loop calls; tests may call it directly. After Stop it does
// nothing and returns 0.
func (c *Countdown) Tick() int {
	return c.tick(nil)
}

// tick ignores ticks from a loop that a restart has replaced.
func (c *Countdown) tick(from <-chan struct{}) int {
	c.mu.Lock()
	if c.stopped || c.remaining == 0 || (from != nil && from != c.stop) {
		c.mu.Unlock()
		return 0
	}
	c.remaining--
	remaining := c.remaining
	if remaining == 0 {
		c.halt()
	}
	onTick, onDone := c.onTick, c.onDone
	c.mu.Unlock()

	if onTick != nil {
		onTick(remaining)
	}
	if remaining == 0 && onDone != nil {
		onDone()
	}
	return remaining
}

// Remaining returns the current value.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Active is true while the value is above zero and the countdown is not stopped.
func (c *Countdown) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.stopped && c.remaining > 0
}

// Stop cancels the countdown. Pending and future callbacks become no-ops.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.halt()
	c.stopped = true
	c.remaining = 0
}

// halt ends the background loop. The caller holds c.mu.
func (c *Countdown) halt() {
	if c.running {
		close(c.stop)
		c.running = false
	}
}
