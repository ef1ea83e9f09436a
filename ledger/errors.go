package ledger

import "errors"

var (
	// ErrUnauthorized indicates the caller is not the ledger owner.
	ErrUnauthorized = errors.New("ledger: unauthorized address")

	// ErrNotWhitelisted indicates the collection is not registered or not accepting stakes.
	ErrNotWhitelisted = errors.New("ledger: collection not whitelisted")

	// ErrAlreadyUnstaked indicates the staking record has already been closed.
	ErrAlreadyUnstaked = errors.New("ledger: already unstaked")

	// ErrNotUnstaked indicates a claim against a record whose token is still in custody.
	ErrNotUnstaked = errors.New("ledger: not unstaked")

	// ErrRewardAlreadyClaimed indicates the record has already been settled.
	ErrRewardAlreadyClaimed = errors.New("ledger: reward already claimed")

	// ErrWrongIndex indicates the staking record does not exist or belongs to another staker.
	ErrWrongIndex = errors.New("ledger: wrong staking index")

	// ErrNotEnoughRewardPool indicates the collection pool cannot cover the payout.
	ErrNotEnoughRewardPool = errors.New("ledger: not enough reward pool")

	// ErrNotEnoughFeeCollected indicates a fee withdrawal larger than the collected balance.
	ErrNotEnoughFeeCollected = errors.New("ledger: not enough fee collected")

	// ErrNotEnoughUnstakeFee indicates an early unstake without exactly the configured fee.
	ErrNotEnoughUnstakeFee = errors.New("ledger: not enough unstake fee")

	// ErrLocked indicates the lockup period has not elapsed and cannot be bought out.
	ErrLocked = errors.New("ledger: lockup period not elapsed")

	// ErrUnknown indicates an unroutable or malformed request.
	ErrUnknown = errors.New("ledger: unknown request")

	// ErrNoSpotsAvailable indicates the collection has reached its staking capacity.
	ErrNoSpotsAvailable = errors.New("ledger: no staking spots available")

	// ErrInvalidCollection indicates whitelist parameters that cannot describe a collection.
	ErrInvalidCollection = errors.New("ledger: invalid collection parameters")

	// ErrDenomMismatch indicates a denomination change while a balance in the old one exists.
	ErrDenomMismatch = errors.New("ledger: denomination mismatch")

	// ErrInvalidTimestamp indicates a block time that cannot close a staking record.
	ErrInvalidTimestamp = errors.New("ledger: invalid timestamp")

	// ErrPoolOverflow indicates a credit that would overflow a balance.
	ErrPoolOverflow = errors.New("ledger: balance overflow")

	// ErrInvalidIdentity indicates an empty or malformed address.
	ErrInvalidIdentity = errors.New("ledger: invalid identity")
)
