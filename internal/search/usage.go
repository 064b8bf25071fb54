package search

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Window is the span over which a provider's call count resets
type Window int

const (
	WindowMonthly Window = iota
	WindowDaily
	WindowNone // Unlimited providers (scraping)
)

// periodKey renders the calendar period a timestamp falls in
func (w Window) periodKey(t time.Time) string {
	switch w {
	case WindowMonthly:
		return t.Format("2006-01")
	case WindowDaily:
		return t.Format("2006-01-02")
	default:
		return ""
	}
}

// counter is one provider's quota state, guarded by its own lock so
// unrelated providers never contend.
type counter struct {
	mu       sync.Mutex
	limit    int // 0 means unlimited
	window   Window
	period   string
	calls    int
	failures int
}

// Tracker tracks per-provider API usage with lazy window resets.
// Quota is reserved before the network call (check-then-increment as one
// critical section), so concurrent callers can never overshoot the limit.
type Tracker struct {
	mu       sync.RWMutex // Guards the registry map, not the counters
	counters map[string]*counter
	path     string // Snapshot file; empty disables persistence
	now      func() time.Time
}

// UsageStatus is a read-only view of one provider's quota state
type UsageStatus struct {
	Used      int    `json:"used"`
	Remaining int    `json:"remaining"` // -1 for unlimited providers
	Failures  int    `json:"failures"`
	Period    string `json:"period,omitempty"`
}

// NewTracker creates a usage tracker, restoring counters from the snapshot
// file when one exists. Counters from an expired period are discarded on
// first use, not at load time.
func NewTracker(path string) *Tracker {
	t := &Tracker{
		counters: make(map[string]*counter),
		path:     path,
		now:      time.Now,
	}
	return t
}

// Register adds a provider with its quota rule. Limit 0 means unlimited.
func (t *Tracker) Register(provider string, limit int, window Window) {
	t.mu.Lock()
	defer t.mu.Unlock()

	c := &counter{
		limit:  limit,
		window: window,
		period: window.periodKey(t.now()),
	}
	if saved, ok := t.loadSnapshot()[provider]; ok && saved.Period == c.period {
		c.calls = saved.Used
		c.failures = saved.Failures
	}
	t.counters[provider] = c
}

// TryReserve atomically checks the provider's quota and claims one call.
// Returns false when the quota is exhausted or the provider is unknown.
// The expired-window reset happens here, by wall-clock comparison, so the
// state is correct even if the process slept across a boundary.
func (t *Tracker) TryReserve(provider string) bool {
	c := t.lookup(provider)
	if c == nil {
		return false
	}

	c.mu.Lock()
	c.resetIfExpired(t.now())
	granted := c.limit <= 0 || c.calls < c.limit
	if granted {
		c.calls++
	}
	c.mu.Unlock()

	if granted {
		t.save()
	}
	return granted
}

// RecordFailure refunds the reservation for a failed call and counts the
// failure separately, so a flaky provider does not burn quota.
func (t *Tracker) RecordFailure(provider string) {
	c := t.lookup(provider)
	if c == nil {
		return
	}

	c.mu.Lock()
	c.resetIfExpired(t.now())
	if c.calls > 0 {
		c.calls--
	}
	c.failures++
	c.mu.Unlock()

	t.save()
}

// Status reports the current usage of every registered provider
func (t *Tracker) Status() map[string]UsageStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]UsageStatus, len(t.counters))
	for name, c := range t.counters {
		c.mu.Lock()
		c.resetIfExpired(t.now())
		remaining := -1
		if c.limit > 0 {
			remaining = c.limit - c.calls
			if remaining < 0 {
				remaining = 0
			}
		}
		out[name] = UsageStatus{
			Used:      c.calls,
			Remaining: remaining,
			Failures:  c.failures,
			Period:    c.period,
		}
		c.mu.Unlock()
	}
	return out
}

func (t *Tracker) lookup(provider string) *counter {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.counters[provider]
}

// resetIfExpired zeroes the counter when its calendar period has rolled over.
// Caller holds c.mu.
func (c *counter) resetIfExpired(now time.Time) {
	if c.window == WindowNone {
		return
	}
	if current := c.window.periodKey(now); current != c.period {
		c.period = current
		c.calls = 0
		c.failures = 0
	}
}

// loadSnapshot reads the persisted usage file. Missing or corrupt files are
// treated as empty.
func (t *Tracker) loadSnapshot() map[string]UsageStatus {
	if t.path == "" {
		return nil
	}
	data, err := os.ReadFile(t.path)
	if err != nil {
		return nil
	}
	var snap map[string]UsageStatus
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil
	}
	return snap
}

// save persists the current counters. Best effort: quota enforcement never
// fails because the snapshot could not be written.
func (t *Tracker) save() {
	if t.path == "" {
		return
	}

	t.mu.RLock()
	snap := make(map[string]UsageStatus, len(t.counters))
	for name, c := range t.counters {
		c.mu.Lock()
		snap[name] = UsageStatus{
			Used:      c.calls,
			Remaining: c.limit - c.calls,
			Failures:  c.failures,
			Period:    c.period,
		}
		c.mu.Unlock()
	}
	t.mu.RUnlock()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(t.path), 0755); err != nil {
		return
	}
	if err := os.WriteFile(t.path, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not persist usage snapshot: %v\n", err)
	}
}
