package store

import "github.com/bitfsorg/libstake-go/ledger"

// Store holds the ledger state: the config singleton, the collection registry
// and the staking records indexed by owner.
//
// Every call runs in its own transaction. Update commits only when fn returns
// nil; any error discards every write fn made.
type Store interface {
	// View runs fn in a read-only transaction.
	View(fn func(tx Tx) error) error

	// Update runs fn in a read-write transaction.
	Update(fn func(tx Tx) error) error

	// Close releases the underlying resources.
	Close() error
}

// Tx is the set of reads and writes available inside a transaction.
// Returned values are copies; mutate them and Put them back to persist.
type Tx interface {
	// Config returns the ledger config or ErrConfigNotFound.
	Config() (*ledger.Config, error)

	// PutConfig stores the ledger config.
	PutConfig(cfg *ledger.Config) error

	// Collection returns a registry entry or ErrCollectionNotFound.
	Collection(address string) (*ledger.Collection, error)

	// PutCollection creates or replaces a registry entry.
	PutCollection(c *ledger.Collection) error

	// Collections returns every registry entry in ascending address order.
	Collections() ([]*ledger.Collection, error)

	// Staking returns a staking record by id or ErrStakingNotFound.
	Staking(id uint64) (*ledger.Staking, error)

	// PutStaking creates or replaces a staking record and indexes it by owner.
	PutStaking(s *ledger.Staking) error

	// StakingsByOwner returns the owner's records in creation order.
	StakingsByOwner(owner string) ([]*ledger.Staking, error)

	// NextStakingID allocates a fresh record id. Ids start at 0 and are never reused.
	NextStakingID() (uint64, error)
}
