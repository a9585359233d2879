package memory

import (
	"context"
	"sync"

	"github.com/finbooks/general_ledger/internal/core/domain"
)

// memTxKey marks a context as running inside a store transaction so nested
// repository calls join it instead of deadlocking on the store lock.
type memTxKey struct{}

// Store is an in-memory backing store sharing one lock across all
// repositories. It enforces the same invariants as the PostgreSQL adapter:
// reference uniqueness per (entity, fiscal period), the status state machine
// guards, optimistic last-updated checks and the reversal cascade rule.
type Store struct {
	mu sync.RWMutex

	accounts  map[string]domain.Account
	entities  map[string]domain.Entity
	entries   map[string]domain.JournalEntry
	groups    map[string]domain.ConsolidationGroup
	sequences map[string]int64
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		accounts:  make(map[string]domain.Account),
		entities:  make(map[string]domain.Entity),
		entries:   make(map[string]domain.JournalEntry),
		groups:    make(map[string]domain.ConsolidationGroup),
		sequences: make(map[string]int64),
	}
}

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(memTxKey{}).(bool)
	return ok
}

// lock acquires the write lock unless the context already runs inside a
// transaction, which holds the lock for its whole extent.
func (s *Store) lock(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) rlock(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

// WithinTransaction executes fn while holding the store lock, with a snapshot
// taken first. fn returning an error restores the snapshot, so the rollback
// semantics match a database transaction. A nested call snapshots again and
// restores only its own changes, mirroring the savepoint behavior of the
// PostgreSQL adapter.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		snapshot := s.clone()
		if err := fn(ctx); err != nil {
			s.restore(snapshot)
			return err
		}
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.clone()
	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

type storeSnapshot struct {
	accounts  map[string]domain.Account
	entities  map[string]domain.Entity
	entries   map[string]domain.JournalEntry
	groups    map[string]domain.ConsolidationGroup
	sequences map[string]int64
}

func (s *Store) clone() storeSnapshot {
	snap := storeSnapshot{
		accounts:  make(map[string]domain.Account, len(s.accounts)),
		entities:  make(map[string]domain.Entity, len(s.entities)),
		entries:   make(map[string]domain.JournalEntry, len(s.entries)),
		groups:    make(map[string]domain.ConsolidationGroup, len(s.groups)),
		sequences: make(map[string]int64, len(s.sequences)),
	}
	for k, v := range s.accounts {
		snap.accounts[k] = v
	}
	for k, v := range s.entities {
		snap.entities[k] = v
	}
	for k, v := range s.entries {
		snap.entries[k] = copyEntry(v)
	}
	for k, v := range s.groups {
		snap.groups[k] = copyGroup(v)
	}
	for k, v := range s.sequences {
		snap.sequences[k] = v
	}
	return snap
}

func (s *Store) restore(snap storeSnapshot) {
	s.accounts = snap.accounts
	s.entities = snap.entities
	s.entries = snap.entries
	s.groups = snap.groups
	s.sequences = snap.sequences
}

// copyEntry deep-copies an entry so callers never alias stored line slices.
func copyEntry(e domain.JournalEntry) domain.JournalEntry {
	lines := make([]domain.EntryLine, len(e.Lines))
	copy(lines, e.Lines)
	e.Lines = lines
	if e.ReversesEntryID != nil {
		id := *e.ReversesEntryID
		e.ReversesEntryID = &id
	}
	if e.ReversedByEntryID != nil {
		id := *e.ReversedByEntryID
		e.ReversedByEntryID = &id
	}
	return e
}

func copyGroup(g domain.ConsolidationGroup) domain.ConsolidationGroup {
	members := make([]string, len(g.MemberEntityIDs))
	copy(members, g.MemberEntityIDs)
	g.MemberEntityIDs = members
	return g
}
