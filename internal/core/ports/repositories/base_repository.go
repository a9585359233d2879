package repositories

import "context"

// TransactionManager defines the unit-of-work boundary shared by every
// backing store. All state-changing operations execute inside exactly one
// transaction; no partial mutation is observable outside it.
type TransactionManager interface {
	// WithinTransaction executes fn inside a single atomic transaction.
	// Repository calls made with the context passed to fn join that
	// transaction. fn returning an error rolls everything back.
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// RepositoryWithTx is a marker interface for repositories that support transactions.
type RepositoryWithTx interface {
	TransactionManager
}
