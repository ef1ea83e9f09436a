package ledger

import (
	"fmt"

	"github.com/holiman/uint256"
)

// ComputeReward returns floor(amount*duration/cycle), capped at one full amount.
// A record never earns more than the configured reward, however many cycles it
// spent in custody. A zero cycle earns nothing.
func ComputeReward(amount, cycle, duration uint64) uint64 {
	if amount == 0 || cycle == 0 || duration == 0 {
		return 0
	}
	if duration >= cycle {
		return amount
	}
	// duration < cycle keeps the quotient below amount, so it fits in 64 bits.
	q, _ := new(uint256.Int).MulDivOverflow(
		uint256.NewInt(amount), uint256.NewInt(duration), uint256.NewInt(cycle))
	return q.Uint64()
}

// Reward returns the amount s has earned against c.
func (s *Staking) Reward(c *Collection) uint64 {
	return ComputeReward(c.Reward.Amount, c.Cycle, s.Duration())
}

// InLockup reports whether a token staked at start is still locked at now.
func (c *Collection) InLockup(start, now uint64) bool {
	if now < start {
		return c.LockupPeriod > 0
	}
	return now-start < c.LockupPeriod
}

// UnstakeFeeDue applies the early-exit policy and returns the fee to credit.
//
// Within the lockup the caller must attach exactly the configured fee; with no
// fee configured the lockup cannot be bought out. After the lockup no funds
// may be attached.
func UnstakeFeeDue(cfg *Config, c *Collection, s *Staking, now uint64, funds []Coin) (uint64, error) {
	if !c.InLockup(s.StartTimestamp, now) {
		if len(funds) > 0 {
			return 0, fmt.Errorf("%w: unexpected funds %s", ErrUnknown, FormatCoins(funds))
		}
		return 0, nil
	}
	if cfg.UnstakeFee.IsZero() {
		var elapsed uint64
		if now > s.StartTimestamp {
			elapsed = now - s.StartTimestamp
		}
		return 0, fmt.Errorf("%w: %d of %d seconds elapsed", ErrLocked, elapsed, c.LockupPeriod)
	}
	if len(funds) != 1 || funds[0] != cfg.UnstakeFee {
		return 0, fmt.Errorf("%w: want exactly %s, got %q",
			ErrNotEnoughUnstakeFee, cfg.UnstakeFee, FormatCoins(funds))
	}
	return cfg.UnstakeFee.Amount, nil
}
