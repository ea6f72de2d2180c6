package score

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Cooldown enforces a minimum delay between consecutive scorer calls so a
// large batch does not hammer an external scoring service.
type Cooldown struct {
	mu       sync.Mutex
	lastCall time.Time
	minDelay time.Duration
}

// NewCooldown creates a limiter with the given minimum gap between calls.
// A zero or negative delay disables waiting entirely.
func NewCooldown(minDelay time.Duration) *Cooldown {
	return &Cooldown{minDelay: minDelay}
}

// Wait blocks until enough time has passed since the previous call.
// Returns an error if the context is cancelled while waiting.
func (c *Cooldown) Wait(ctx context.Context) error {
	if c.minDelay <= 0 {
		return nil
	}

	c.mu.Lock()
	now := time.Now()
	if c.lastCall.IsZero() || now.Sub(c.lastCall) >= c.minDelay {
		c.lastCall = now
		c.mu.Unlock()
		return nil
	}
	remaining := c.minDelay - now.Sub(c.lastCall)
	c.mu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("cooldown wait: %w", ctx.Err())
	case <-time.After(remaining):
	}

	c.mu.Lock()
	c.lastCall = time.Now()
	c.mu.Unlock()

	return nil
}
