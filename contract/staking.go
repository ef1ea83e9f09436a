package contract

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/bitfsorg/libstake-go/ledger"
	"github.com/bitfsorg/libstake-go/store"
)

// stake opens a record for a token the collection contract has already moved
// into custody. The sender of the notification is the collection itself.
func (c *Contract) stake(x *execution, m ReceiveNft) (*Response, error) {
	if err := nonPayable(x.info); err != nil {
		return nil, err
	}
	if err := ledger.ValidateIdentity(m.Sender); err != nil {
		return nil, err
	}
	if m.TokenID == "" {
		return nil, fmt.Errorf("%w: empty token id", ledger.ErrUnknown)
	}

	coll, err := x.tx.Collection(x.info.Sender)
	if errors.Is(err, store.ErrCollectionNotFound) {
		return nil, fmt.Errorf("%w: %s", ledger.ErrNotWhitelisted, x.info.Sender)
	}
	if err != nil {
		return nil, err
	}
	if err := coll.Admit(); err != nil {
		return nil, err
	}

	id, err := x.tx.NextStakingID()
	if err != nil {
		return nil, err
	}
	s := ledger.NewStaking(id, m.Sender, coll.Address, m.TokenID, x.env.BlockTime)
	if err := x.tx.PutStaking(s); err != nil {
		return nil, err
	}
	if err := x.tx.PutCollection(coll); err != nil {
		return nil, err
	}
	x.touchCollection(coll)
	x.logWith(zap.String("collection", coll.Address), zap.String("staker", s.Owner),
		zap.String("token_id", s.TokenID), zap.Uint64("staking_id", s.ID))

	resp := newResponse("stake")
	resp.addEvent(newEvent("nft_staked").
		add("staker", s.Owner).
		add("token_address", s.TokenAddress).
		add("token_id", s.TokenID).
		addUint("index", s.ID).
		addUint("start_timestamp", s.StartTimestamp))
	return resp, nil
}

// ownedStaking loads record id and checks it belongs to the sender.
// A missing record and someone else's record are indistinguishable to the caller.
func (x *execution) ownedStaking(id uint64) (*ledger.Staking, error) {
	s, err := x.tx.Staking(id)
	if errors.Is(err, store.ErrStakingNotFound) {
		return nil, fmt.Errorf("%w: %d", ledger.ErrWrongIndex, id)
	}
	if err != nil {
		return nil, err
	}
	if s.Owner != x.info.Sender {
		return nil, fmt.Errorf("%w: %d", ledger.ErrWrongIndex, id)
	}
	return s, nil
}

// unstake closes a record and returns the token to its staker. Inside the
// lockup the exact unstake fee must be attached; it is credited to the config.
func (c *Contract) unstake(x *execution, m Unstake) (*Response, error) {
	s, err := x.ownedStaking(m.Index)
	if err != nil {
		return nil, err
	}
	if !s.IsStaked() {
		return nil, fmt.Errorf("%w: record %d ended at %d", ledger.ErrAlreadyUnstaked, s.ID, s.EndTimestamp)
	}

	cfg, err := x.tx.Config()
	if err != nil {
		return nil, err
	}
	coll, err := x.tx.Collection(s.TokenAddress)
	if err != nil {
		return nil, err
	}

	fee, err := ledger.UnstakeFeeDue(cfg, coll, s, x.env.BlockTime, x.info.Funds)
	if err != nil {
		return nil, err
	}
	if err := s.MarkUnstaked(x.env.BlockTime); err != nil {
		return nil, err
	}
	coll.Release()

	if fee > 0 {
		if err := cfg.CollectFee(fee); err != nil {
			return nil, err
		}
		if err := x.tx.PutConfig(cfg); err != nil {
			return nil, err
		}
		x.touchConfig(cfg)
	}
	if err := x.tx.PutStaking(s); err != nil {
		return nil, err
	}
	if err := x.tx.PutCollection(coll); err != nil {
		return nil, err
	}
	x.touchCollection(coll)
	x.logWith(zap.String("collection", coll.Address), zap.String("staker", s.Owner),
		zap.Uint64("staking_id", s.ID), zap.Uint64("fee", fee))

	resp := newResponse("unstake")
	resp.addMessage(TransferNft{Contract: s.TokenAddress, Recipient: s.Owner, TokenID: s.TokenID})
	resp.addEvent(newEvent("nft_unstaked").
		add("staker", s.Owner).
		add("token_address", s.TokenAddress).
		add("token_id", s.TokenID).
		addUint("index", s.ID).
		addUint("start_timestamp", s.StartTimestamp).
		addUint("end_timestamp", s.EndTimestamp).
		add("fee", ledger.NewCoin(fee, cfg.UnstakeFee.Denom).String()))
	return resp, nil
}

// claim settles an unstaked record. The reward is computed and the pool
// checked before the record is marked paid, so a pool shortfall leaves the
// record claimable once the pool is refilled.
func (c *Contract) claim(x *execution, m ClaimReward) (*Response, error) {
	if err := nonPayable(x.info); err != nil {
		return nil, err
	}
	s, err := x.ownedStaking(m.Index)
	if err != nil {
		return nil, err
	}
	switch s.State() {
	case ledger.StateStaked:
		return nil, fmt.Errorf("%w: record %d", ledger.ErrNotUnstaked, s.ID)
	case ledger.StatePaid:
		return nil, fmt.Errorf("%w: record %d", ledger.ErrRewardAlreadyClaimed, s.ID)
	}

	coll, err := x.tx.Collection(s.TokenAddress)
	if err != nil {
		return nil, err
	}
	reward := s.Reward(coll)
	if reward > 0 {
		if err := coll.Payout(reward); err != nil {
			return nil, err
		}
	}
	if err := s.MarkPaid(); err != nil {
		return nil, err
	}

	if err := x.tx.PutStaking(s); err != nil {
		return nil, err
	}
	if err := x.tx.PutCollection(coll); err != nil {
		return nil, err
	}
	x.touchCollection(coll)
	x.logWith(zap.String("collection", coll.Address), zap.String("staker", s.Owner),
		zap.Uint64("staking_id", s.ID), zap.Uint64("reward", reward))

	payout := ledger.NewCoin(reward, coll.Reward.Denom)
	resp := newResponse("claim_reward")
	if reward > 0 {
		resp.addMessage(BankSend{ToAddress: s.Owner, Amount: []ledger.Coin{payout}})
	}
	resp.addEvent(newEvent("reward_claimed").
		add("staker", s.Owner).
		add("token_address", s.TokenAddress).
		add("token_id", s.TokenID).
		addUint("index", s.ID).
		add("reward", payout.String()).
		addUint("pool_amount", coll.PoolAmount))
	return resp, nil
}
