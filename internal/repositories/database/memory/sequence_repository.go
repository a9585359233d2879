package memory

import (
	"context"

	portsrepo "github.com/finbooks/general_ledger/internal/core/ports/repositories"
)

// SequenceRepository is the in-memory reference sequence adapter.
type SequenceRepository struct {
	store *Store
}

func newSequenceRepository(store *Store) portsrepo.ReferenceSequencer {
	return &SequenceRepository{store: store}
}

var _ portsrepo.ReferenceSequencer = (*SequenceRepository)(nil)

// Next atomically increments and returns the sequence for the scope. The
// first allocation for a scope returns 1.
func (r *SequenceRepository) Next(ctx context.Context, entityID string, fiscalPeriod string) (int64, error) {
	defer r.store.lock(ctx)()
	key := entityID + "|" + fiscalPeriod
	r.store.sequences[key]++
	return r.store.sequences[key], nil
}
