package gesture

import (
	"sync"
	"time"
)

// DefaultCooldown is the minimum time between two firings of one gesture.
const DefaultCooldown = time.Second

// CooldownGate rate-limits named gestures independently.
type CooldownGate struct {
	mu       sync.Mutex
	cooldown time.Duration
	now      func() time.Time
	last     map[string]time.Time
}

// NewCooldownGate creates a gate. A nil clock uses time.Now.
func NewCooldownGate(cooldown time.Duration, clock func() time.Time) *CooldownGate {
	if clock == nil {
		clock = time.Now
	}
	return &CooldownGate{
		cooldown: cooldown,
		now:      clock,
		last:     make(map[string]time.Time),
	}
}

// CanTrigger reports whether name may fire now. A successful call records
// the current time as the gesture's last trigger; a refused call changes
// nothing.
func (g *CooldownGate) CanTrigger(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if last, ok := g.last[name]; ok && now.Sub(last) < g.cooldown {
		return false
	}
	g.last[name] = now
	return true
}

// Cooldown returns the configured cooldown.
func (g *CooldownGate) Cooldown() time.Duration {
	return g.cooldown
}
