package ratetable

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rgehrsitz/payrate/internal/domain"
)

// Loader produces a freshly built table, typically by re-reading seed files.
type Loader func() (*Table, error)

// Store publishes table snapshots to concurrent readers. Readers call
// Current once per evaluation and keep using that snapshot; a refresh swaps
// the pointer and never edits a published table.
type Store struct {
	current atomic.Pointer[Table]
	mu      sync.Mutex // serializes refreshes
}

// NewStore creates a store, optionally with an initial snapshot.
func NewStore(initial *Table) *Store {
	s := &Store{}
	if initial != nil {
		s.current.Store(initial)
	}
	return s
}

// Current returns the published snapshot, or nil before the first publish.
func (s *Store) Current() *Table {
	return s.current.Load()
}

// Publish replaces the current snapshot.
func (s *Store) Publish(t *Table) error {
	if t == nil {
		return errors.New("cannot publish a nil rate table")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Store(t)
	return nil
}

// Refresh loads a new table and publishes it. When loading or validation
// fails the previous snapshot stays in place and the error is returned.
func (s *Store) Refresh(load Loader) (*Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := load()
	if err != nil {
		return s.current.Load(), fmt.Errorf("rate table refresh failed: %w", err)
	}
	if t == nil {
		return s.current.Load(), fmt.Errorf("rate table refresh failed: %w", domain.ErrNoRateTable)
	}
	s.current.Store(t)
	return t, nil
}
