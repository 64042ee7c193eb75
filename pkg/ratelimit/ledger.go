package ratelimit

import (
	"errors"
	"sync"
	"time"
)

var ErrEntryNotFound = errors.New("no rate limit entry for identifier")

type Status int

const (
	StatusAllowed Status = iota
	StatusRateLimited
	StatusBlacklisted
)

// Outcome is the admission decision for a single request. Admit never fails:
// every identifier and clock value maps to exactly one outcome.
type Outcome struct {
	Status     Status
	RetryAfter time.Duration
}

func (o Outcome) Allowed() bool {
	return o.Status == StatusAllowed
}

type Config struct {
	// Window is the span during which request counts accumulate.
	Window time.Duration
	// SoftThreshold is the per-window count above which requests are
	// rejected without blacklisting.
	SoftThreshold int
	// AbuseThreshold is the count above which the identifier is blocked
	// outright for BlacklistDuration.
	AbuseThreshold int
	// BlacklistDuration is how long a blacklisted identifier stays blocked.
	BlacklistDuration time.Duration
}

func DefaultConfig() Config {
	return Config{
		Window:            time.Minute,
		SoftThreshold:     30,
		AbuseThreshold:    100,
		BlacklistDuration: time.Hour,
	}
}

type entry struct {
	count         int
	windowStart   time.Time
	blacklisted   bool
	blacklistedAt time.Time
}

// Ledger tracks per-identifier request counters and blacklist state. It is
// purely in-memory and single-process; admission checks are serialized by the
// internal mutex because fiber runs handlers on many goroutines.
type Ledger struct {
	mu           sync.Mutex
	entries      map[string]*entry
	config       Config
	timeProvider func() time.Time
	sweepDone    chan struct{}
	sweepOnce    sync.Once
}

type LedgerOpts struct {
	TimeProvider func() time.Time
}

func NewLedger(config Config, opts *LedgerOpts) *Ledger {
	timeProvider := time.Now
	if opts != nil && opts.TimeProvider != nil {
		timeProvider = opts.TimeProvider
	}
	return &Ledger{
		entries:      make(map[string]*entry),
		config:       config,
		timeProvider: timeProvider,
		sweepDone:    make(chan struct{}),
	}
}

// Admit decides whether a request from identifier is allowed at time now and
// updates the counters that drive the decision.
//
// The soft and abuse thresholds deliberately share one counter: rejected
// attempts keep accumulating, so a client hovering over the soft limit still
// escalates to the blacklist eventually.
func (l *Ledger) Admit(identifier string, now time.Time) Outcome {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[identifier]
	if !ok {
		l.entries[identifier] = &entry{count: 1, windowStart: now}
		return Outcome{Status: StatusAllowed}
	}

	if e.blacklisted {
		elapsed := now.Sub(e.blacklistedAt)
		if elapsed < l.config.BlacklistDuration {
			return Outcome{
				Status:     StatusBlacklisted,
				RetryAfter: l.config.BlacklistDuration - elapsed,
			}
		}
		// Penalty served: the identifier regains its full quota at once.
		e.blacklisted = false
		e.blacklistedAt = time.Time{}
		e.count = 1
		e.windowStart = now
		return Outcome{Status: StatusAllowed}
	}

	if now.Sub(e.windowStart) > l.config.Window {
		e.count = 1
		e.windowStart = now
		return Outcome{Status: StatusAllowed}
	}

	e.count++
	if e.count > l.config.AbuseThreshold {
		e.blacklisted = true
		e.blacklistedAt = now
		return Outcome{
			Status:     StatusBlacklisted,
			RetryAfter: l.config.BlacklistDuration,
		}
	}
	if e.count > l.config.SoftThreshold {
		remaining := l.config.Window - now.Sub(e.windowStart)
		if remaining < 0 {
			remaining = 0
		}
		return Outcome{Status: StatusRateLimited, RetryAfter: remaining}
	}
	return Outcome{Status: StatusAllowed}
}

// BlacklistedEntry is a snapshot of an identifier under an active penalty.
type BlacklistedEntry struct {
	Identifier    string
	BlacklistedAt time.Time
	TimeRemaining time.Duration
	RequestCount  int
}

// ListBlacklisted returns identifiers whose penalty has not yet lapsed.
// Entries whose penalty expired but have not been reset by a subsequent
// Admit call are excluded.
func (l *Ledger) ListBlacklisted(now time.Time) []BlacklistedEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []BlacklistedEntry
	for identifier, e := range l.entries {
		if !e.blacklisted {
			continue
		}
		remaining := l.config.BlacklistDuration - now.Sub(e.blacklistedAt)
		if remaining <= 0 {
			continue
		}
		out = append(out, BlacklistedEntry{
			Identifier:    identifier,
			BlacklistedAt: e.blacklistedAt,
			TimeRemaining: remaining,
			RequestCount:  e.count,
		})
	}
	return out
}

// ForceBlacklist puts an identifier under penalty unconditionally, creating
// an entry when none exists.
func (l *Ledger) ForceBlacklist(identifier string, now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[identifier]
	if !ok {
		e = &entry{windowStart: now}
		l.entries[identifier] = e
	}
	e.blacklisted = true
	e.blacklistedAt = now
}

// ClearBlacklist lifts the penalty for an identifier. The counter is left
// untouched; the next Admit call applies the normal window-expiry rule.
func (l *Ledger) ClearBlacklist(identifier string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[identifier]
	if !ok {
		return ErrEntryNotFound
	}
	e.blacklisted = false
	e.blacklistedAt = time.Time{}
	return nil
}

// StartSweeper periodically drops entries that have been idle longer than
// idleAfter and are not under an active penalty. Without a sweep the map
// grows for the life of the process.
func (l *Ledger) StartSweeper(interval, idleAfter time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.Sweep(l.timeProvider(), idleAfter)
			case <-l.sweepDone:
				return
			}
		}
	}()
}

// Sweep drops entries idle longer than idleAfter, keeping active penalties.
func (l *Ledger) Sweep(now time.Time, idleAfter time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for identifier, e := range l.entries {
		if e.blacklisted && now.Sub(e.blacklistedAt) < l.config.BlacklistDuration {
			continue
		}
		if now.Sub(e.windowStart) > idleAfter {
			delete(l.entries, identifier)
		}
	}
}

func (l *Ledger) Stop() {
	l.sweepOnce.Do(func() {
		close(l.sweepDone)
	})
}

// Size reports the number of tracked identifiers.
func (l *Ledger) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
