package repositories

import "context"

// ReferenceSequencer allocates monotonically increasing sequence numbers per
// (entity, fiscal period). Implementations must be safe under concurrent
// callers: two racing allocations never observe the same number. The entry
// table's unique reference index is the backstop; callers retry a bounded
// number of times on ErrConflict before giving up.
type ReferenceSequencer interface {
	// Next atomically increments and returns the sequence for the scope.
	// The first allocation for a scope returns 1.
	Next(ctx context.Context, entityID string, fiscalPeriod string) (int64, error)
}
