// Package state holds the in-memory application state shared by the sync
// cycle, the CLI and the UI: the quote collection, pending conflicts, the
// active filter and connection health.
package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/quotebox/internal/quote"
	"github.com/five82/quotebox/internal/reconcile"
)

// Snapshot represents the latest data available to readers.
type Snapshot struct {
	Records             []quote.Record
	Categories          []string
	Filter              string
	Conflicts           []reconcile.Conflict
	LastViewed          *quote.Record // session scoped
	LastSync            time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive failed sync cycles
	Revision            uint64
}

// IsOffline returns true when the remote has been unreachable for multiple cycles.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent access to the collection. Every
// read-modify-write of the records happens under its lock.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// NewStore returns a store seeded with records and filter.
func NewStore(records []quote.Record, filter string) *Store {
	s := &Store{}
	s.snapshot.Filter = quote.FilterAll
	s.setRecordsLocked(records)
	s.snapshot.Filter = quote.ResolveFilter(filter, s.snapshot.Categories)
	return s
}

// Mutate runs fn with a private copy of the records while holding the write
// lock. When fn reports a change, the returned slice replaces the collection,
// categories are recomputed and the revision advances.
func (s *Store) Mutate(fn func(records []quote.Record) ([]quote.Record, bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed, err := fn(quote.Clone(s.snapshot.Records))
	if err != nil {
		return err
	}
	if changed {
		s.setRecordsLocked(next)
	}
	return nil
}

// Replace swaps the whole collection, as an import does.
func (s *Store) Replace(records []quote.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setRecordsLocked(records)
}

func (s *Store) setRecordsLocked(records []quote.Record) {
	s.snapshot.Records = quote.Clone(records)
	s.snapshot.Categories = quote.Categories(records)
	s.snapshot.Filter = quote.ResolveFilter(s.snapshot.Filter, s.snapshot.Categories)
	s.snapshot.Revision++
}

// SetFilter selects a category. Unknown categories fall back to "all"; the
// effective filter is returned.
func (s *Store) SetFilter(category string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Filter = quote.ResolveFilter(category, s.snapshot.Categories)
	return s.snapshot.Filter
}

// SetLastViewed records the quote currently on display.
func (s *Store) SetLastViewed(r quote.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dup := r
	s.snapshot.LastViewed = &dup
}

// SetConflicts merges newly detected conflicts into the pending set. A new
// conflict replaces a pending one for the same record.
func (s *Store) SetConflicts(conflicts []reconcile.Conflict) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range conflicts {
		replaced := false
		for i, pending := range s.snapshot.Conflicts {
			if pending.ID == c.ID {
				s.snapshot.Conflicts[i] = c
				replaced = true
				break
			}
		}
		if !replaced {
			s.snapshot.Conflicts = append(s.snapshot.Conflicts, c)
		}
	}
}

// TakeConflict removes and returns the pending conflict for id.
func (s *Store) TakeConflict(id string) (reconcile.Conflict, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.snapshot.Conflicts {
		if c.ID == id {
			s.snapshot.Conflicts = append(s.snapshot.Conflicts[:i:i], s.snapshot.Conflicts[i+1:]...)
			return c, true
		}
	}
	return reconcile.Conflict{}, false
}

// RecordSync notes a successful cycle.
func (s *Store) RecordSync(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.LastSync = at
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// RecordFailure keeps the previous data but records err for visibility.
func (s *Store) RecordFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.LastError = err
	s.snapshot.ConsecutiveFailures++
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Records = quote.Clone(s.snapshot.Records)
	if len(s.snapshot.Categories) > 0 {
		snap.Categories = append([]string(nil), s.snapshot.Categories...)
	}
	if len(s.snapshot.Conflicts) > 0 {
		snap.Conflicts = append([]reconcile.Conflict(nil), s.snapshot.Conflicts...)
	}
	if s.snapshot.LastViewed != nil {
		dup := *s.snapshot.LastViewed
		snap.LastViewed = &dup
	}
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}
