package ledger

import "fmt"

// DefaultCycle is one week in seconds.
const DefaultCycle = 604_800

// Config is the ledger-wide singleton.
type Config struct {
	Owner        string // only identity allowed to run admin operations
	UnstakeFee   Coin   // price of leaving before the lockup elapses
	FeeCollected uint64 // early-exit fees not yet withdrawn, in UnstakeFee.Denom
}

// Collection is a registered NFT contract whose tokens may be staked.
type Collection struct {
	Address       string // token contract address, registry key
	Reward        Coin   // full reward per cycle
	Cycle         uint64 // seconds for one full reward to accrue
	IsWhitelisted bool   // accepting new stakes
	Spots         uint64 // maximum tokens in custody at once
	LockupPeriod  uint64 // seconds before a fee-free unstake
	PoolAmount    uint64 // reward balance in Reward.Denom
	Staked        uint64 // tokens of this collection currently in custody
}

// StakingState is the position of a record in its lifecycle.
type StakingState int

const (
	// StateStaked means the token is in custody.
	StateStaked StakingState = iota
	// StateUnstaked means the token was returned and the reward is unsettled.
	StateUnstaked
	// StatePaid is terminal.
	StatePaid
)

// String implements fmt.Stringer.
func (s StakingState) String() string {
	switch s {
	case StateStaked:
		return "staked"
	case StateUnstaked:
		return "unstaked"
	case StatePaid:
		return "paid"
	default:
		return fmt.Sprintf("StakingState(%d)", int(s))
	}
}

// Staking describes one deposited token. EndTimestamp zero means still staked.
type Staking struct {
	ID             uint64
	Owner          string
	TokenAddress   string
	TokenID        string
	StartTimestamp uint64
	EndTimestamp   uint64
	IsPaid         bool
}

// NewStaking opens a record for a token that has just entered custody.
func NewStaking(id uint64, owner, tokenAddress, tokenID string, now uint64) *Staking {
	return &Staking{
		ID:             id,
		Owner:          owner,
		TokenAddress:   tokenAddress,
		TokenID:        tokenID,
		StartTimestamp: now,
	}
}

// State returns the lifecycle state of the record.
func (s *Staking) State() StakingState {
	switch {
	case s.EndTimestamp == 0:
		return StateStaked
	case !s.IsPaid:
		return StateUnstaked
	default:
		return StatePaid
	}
}

// IsStaked reports whether the token is still in custody.
func (s *Staking) IsStaked() bool {
	return s.EndTimestamp == 0
}

// Duration returns the custody window in seconds. Zero while still staked.
func (s *Staking) Duration() uint64 {
	if s.IsStaked() || s.EndTimestamp < s.StartTimestamp {
		return 0
	}
	return s.EndTimestamp - s.StartTimestamp
}

// MarkUnstaked closes the custody window at now.
func (s *Staking) MarkUnstaked(now uint64) error {
	if !s.IsStaked() {
		return ErrAlreadyUnstaked
	}
	if now == 0 {
		return fmt.Errorf("%w: cannot close a record at time 0", ErrInvalidTimestamp)
	}
	s.EndTimestamp = now
	return nil
}

// MarkPaid settles the record. Only an unstaked, unpaid record can be settled.
func (s *Staking) MarkPaid() error {
	if s.IsStaked() {
		return ErrNotUnstaked
	}
	if s.IsPaid {
		return ErrRewardAlreadyClaimed
	}
	s.IsPaid = true
	return nil
}
