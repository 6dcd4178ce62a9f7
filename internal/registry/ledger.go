package registry

import (
	"sync"
	"time"
)

// defaultLedgerCapacity bounds the ledger's memory; old wagers scroll
// out once enough new ones arrive.
const defaultLedgerCapacity = 1000

// LedgerEntry is the placement metadata kept per attempted wager.
type LedgerEntry struct {
	Signature string
	Home      string
	Away      string
	Odds      float64
	Stake     float64
	PlacedAt  time.Time
}

// BetLedger is the idempotency store for attempted wagers: one entry
// per BetSignature, capacity-bounded with FIFO eviction of the oldest
// entry. It prevents re-submitting an identical wager when the
// orchestrator revisits an alert that already reached the attempted
// stage.
type BetLedger struct {
	entries  map[string]LedgerEntry
	order    []string // insertion order, oldest first
	capacity int
	mu       sync.Mutex
}

// NewBetLedger creates a ledger bounded to capacity entries; a
// non-positive capacity selects the default of 1000.
func NewBetLedger(capacity int) *BetLedger {
	if capacity <= 0 {
		capacity = defaultLedgerCapacity
	}
	return &BetLedger{
		entries:  make(map[string]LedgerEntry),
		capacity: capacity,
	}
}

// IsDuplicate reports whether the signature has already been recorded.
func (l *BetLedger) IsDuplicate(signature string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.entries[signature]
	return ok
}

// Record stores the entry under its signature. Recording a signature
// that is already present refreshes its metadata without adding a
// second entry or disturbing the eviction order. At capacity the single
// oldest entry is evicted first.
func (l *BetLedger) Record(entry LedgerEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.entries[entry.Signature]; ok {
		l.entries[entry.Signature] = entry
		return
	}

	if len(l.order) >= l.capacity {
		oldest := l.order[0]
		l.order = l.order[1:]
		delete(l.entries, oldest)
	}
	l.entries[entry.Signature] = entry
	l.order = append(l.order, entry.Signature)
}

// Get returns the entry recorded under signature, if any.
func (l *BetLedger) Get(signature string) (LedgerEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[signature]
	return e, ok
}

// Len returns the number of recorded wagers.
func (l *BetLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
