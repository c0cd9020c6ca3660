// Package cooldown tracks per-(command, user) invocation timestamps to
// enforce minimum intervals between repeated command uses.
package cooldown

import (
	"sync"
	"time"
)

// staleAfter bounds tracker memory: any entry older than this is removed by
// Sweep regardless of its command's own cooldown window.
const staleAfter = time.Hour

type key struct {
	command string
	user    string
}

// Result of a cooldown check.
type Result struct {
	Allowed  bool
	TimeLeft time.Duration
}

// Tracker is a mutex-guarded timestamp store. Events arrive concurrently on
// discordgo's handler goroutines.
type Tracker struct {
	mu      sync.Mutex
	entries map[key]time.Time

	// Now is the clock; tests override it.
	Now func() time.Time
}

// New returns an empty tracker.
func New() *Tracker {
	return &Tracker{
		entries: make(map[key]time.Time),
		Now:     time.Now,
	}
}

// Check records an invocation if the user is outside the cooldown window for
// the command and reports the outcome. An entry older than the window counts
// as absent. On block, TimeLeft is the fractional time until the window ends.
func (t *Tracker) Check(userID, command string, window time.Duration) Result {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.Now()
	k := key{command: command, user: userID}

	if last, ok := t.entries[k]; ok {
		expiry := last.Add(window)
		if now.Before(expiry) {
			return Result{Allowed: false, TimeLeft: expiry.Sub(now)}
		}
	}

	t.entries[k] = now
	return Result{Allowed: true}
}

// Reset removes any recorded invocation for the user and command.
func (t *Tracker) Reset(userID, command string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, key{command: command, user: userID})
}

// Sweep purges entries older than the staleness bound. Run it periodically;
// it exists to cap memory, not to implement cooldown expiry (Check treats
// expired entries as absent on its own).
func (t *Tracker) Sweep() {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.Now().Add(-staleAfter)
	for k, ts := range t.entries {
		if ts.Before(cutoff) {
			delete(t.entries, k)
		}
	}
}

// Len returns the number of live entries.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
