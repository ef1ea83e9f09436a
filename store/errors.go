package store

import "errors"

var (
	// ErrConfigNotFound indicates the ledger has not been instantiated.
	ErrConfigNotFound = errors.New("store: config not found")

	// ErrCollectionNotFound indicates the collection is not in the registry.
	ErrCollectionNotFound = errors.New("store: collection not found")

	// ErrStakingNotFound indicates no staking record has the requested id.
	ErrStakingNotFound = errors.New("store: staking record not found")

	// ErrAlreadyInitialized indicates the ledger config has already been written.
	ErrAlreadyInitialized = errors.New("store: ledger already initialized")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("store: required parameter is nil")

	// ErrOwnerChanged indicates an attempt to move an existing record to another owner.
	ErrOwnerChanged = errors.New("store: staking record owner is immutable")
)

// ErrReadOnly indicates a write inside a View transaction.
var ErrReadOnly = errors.New("store: transaction is read-only")
