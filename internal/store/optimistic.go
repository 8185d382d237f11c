package store

import "sync"

// Mutation identifies one optimistic change recorded in a Ledger
type Mutation struct {
	Key     string
	Version uint64
}

type ledgerEntry[S any] struct {
	version  uint64
	snapshot S
}

type ledgerKey[S any] struct {
	pending       []*ledgerEntry[S] // ascending version
	lastSucceeded uint64
}

// Ledger records the pre-mutation snapshot of every in-flight optimistic
// change, per key (e.g. "post:<id>").
//
// When a mutation fails:
//   - if a later mutation on the key already succeeded, its state stands
//     and nothing is restored or handed down;
//   - if a later mutation on the key is still pending, the failed one's
//     snapshot is handed down to it and nothing is restored yet;
//   - otherwise the snapshot is returned for the caller to restore.
//
// A burst of mutations that all fail therefore ends at the state before
// the burst, and a failure never undoes a later success.
type Ledger[S any] struct {
	mu   sync.Mutex
	next uint64
	keys map[string]*ledgerKey[S]
}

func NewLedger[S any]() *Ledger[S] {
	return &Ledger[S]{keys: make(map[string]*ledgerKey[S])}
}

// Begin records snapshot as the state before a new mutation on key
func (l *Ledger[S]) Begin(key string, snapshot S) Mutation {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next++
	k, ok := l.keys[key]
	if !ok {
		k = &ledgerKey[S]{}
		l.keys[key] = k
	}
	k.pending = append(k.pending, &ledgerEntry[S]{version: l.next, snapshot: snapshot})
	return Mutation{Key: key, Version: l.next}
}

// Succeed settles m. The local state it applied is kept.
func (l *Ledger[S]) Succeed(m Mutation) {
	l.mu.Lock()
	defer l.mu.Unlock()
	k, ok := l.keys[m.Key]
	if !ok {
		return
	}
	if _, found := k.take(m.Version); !found {
		return
	}
	k.lastSucceeded = max(k.lastSucceeded, m.Version)
	l.cleanup(m.Key, k)
}

// Fail settles m and returns the snapshot to restore, if any
func (l *Ledger[S]) Fail(m Mutation) (S, bool) {
	var zero S
	l.mu.Lock()
	defer l.mu.Unlock()
	k, ok := l.keys[m.Key]
	if !ok {
		return zero, false
	}
	entry, found := k.take(m.Version)
	if !found {
		return zero, false
	}
	defer l.cleanup(m.Key, k)

	// A later success pins the state. Pending mutations after it already
	// hold snapshots that include it, so nothing is handed down.
	if k.lastSucceeded > m.Version {
		return zero, false
	}
	failed := entry.snapshot
	for _, e := range k.pending {
		if e.version > m.Version {
			e.snapshot = failed
			return zero, false
		}
	}
	return failed, true
}

// Pending returns the number of unsettled mutations on key
func (l *Ledger[S]) Pending(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if k, ok := l.keys[key]; ok {
		return len(k.pending)
	}
	return 0
}

// take removes the entry with version from pending
func (k *ledgerKey[S]) take(version uint64) (*ledgerEntry[S], bool) {
	for i, e := range k.pending {
		if e.version == version {
			k.pending = append(k.pending[:i], k.pending[i+1:]...)
			return e, true
		}
	}
	return nil, false
}

// cleanup forgets a key once nothing is pending on it. No earlier mutation
// can fail afterwards, so lastSucceeded is no longer needed.
func (l *Ledger[S]) cleanup(key string, k *ledgerKey[S]) {
	if len(k.pending) == 0 {
		delete(l.keys, key)
	}
}
