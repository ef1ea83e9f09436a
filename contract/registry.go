package contract

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/bitfsorg/libstake-go/ledger"
	"github.com/bitfsorg/libstake-go/store"
)

// whitelistCollection creates a registry entry or reconfigures an existing one.
// Re-whitelisting keeps the pool balance and the custody count.
func (c *Contract) whitelistCollection(x *execution, m WhitelistCollection) (*Response, error) {
	if _, err := x.ownerConfig(); err != nil {
		return nil, err
	}
	if err := nonPayable(x.info); err != nil {
		return nil, err
	}

	next := ledger.Collection{
		Address:       m.Address,
		Reward:        m.Reward,
		Cycle:         m.Cycle,
		IsWhitelisted: m.IsWhitelisted,
		Spots:         m.Spots,
		LockupPeriod:  m.LockupPeriod,
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}

	coll, err := x.tx.Collection(m.Address)
	switch {
	case err == nil:
		if err := coll.Reconfigure(next); err != nil {
			return nil, err
		}
	case errors.Is(err, store.ErrCollectionNotFound):
		coll = &next
	default:
		return nil, err
	}

	if err := x.tx.PutCollection(coll); err != nil {
		return nil, err
	}
	x.touchCollection(coll)
	x.logWith(zap.String("collection", coll.Address), zap.Bool("is_whitelisted", coll.IsWhitelisted))

	resp := newResponse("whitelist_collection")
	resp.addEvent(newEvent("collection_whitelisted").
		add("address", coll.Address).
		add("reward", coll.Reward.String()).
		addUint("cycle", coll.Cycle).
		addBool("is_whitelisted", coll.IsWhitelisted).
		addUint("spots", coll.Spots).
		addUint("lockup_period", coll.LockupPeriod).
		addUint("pool_amount", coll.PoolAmount))
	return resp, nil
}

// depositReward credits the attached reward-denomination coin to the pool.
// This is the only credit path to a pool. Any caller may fund a collection.
func (c *Contract) depositReward(x *execution, m DepositCollectionReward) (*Response, error) {
	coll, err := x.tx.Collection(m.Address)
	if errors.Is(err, store.ErrCollectionNotFound) {
		return nil, fmt.Errorf("%w: %s", ledger.ErrNotWhitelisted, m.Address)
	}
	if err != nil {
		return nil, err
	}

	deposit, ok := ledger.FindCoin(x.info.Funds, coll.Reward.Denom)
	if !ok || deposit.IsZero() {
		return nil, fmt.Errorf("%w: deposit requires %s funds, got %q",
			ledger.ErrUnknown, coll.Reward.Denom, ledger.FormatCoins(x.info.Funds))
	}
	if len(x.info.Funds) != 1 {
		return nil, fmt.Errorf("%w: deposit accepts only %s, got %q",
			ledger.ErrUnknown, coll.Reward.Denom, ledger.FormatCoins(x.info.Funds))
	}

	if err := coll.Deposit(deposit.Amount); err != nil {
		return nil, err
	}
	if err := x.tx.PutCollection(coll); err != nil {
		return nil, err
	}
	x.touchCollection(coll)
	x.logWith(zap.String("collection", coll.Address),
		zap.Uint64("deposit", deposit.Amount), zap.Uint64("pool_amount", coll.PoolAmount))

	resp := newResponse("deposit_collection_reward")
	resp.addEvent(newEvent("collection_reward_deposited").
		add("address", coll.Address).
		add("depositor", x.info.Sender).
		add("amount", deposit.String()).
		addUint("pool_amount", coll.PoolAmount))
	return resp, nil
}
