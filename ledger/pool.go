package ledger

import "fmt"

// Validate checks the parameters supplied by a whitelist call.
func (c *Collection) Validate() error {
	if err := ValidateIdentity(c.Address); err != nil {
		return fmt.Errorf("%w: address: %w", ErrInvalidCollection, err)
	}
	if c.Cycle == 0 {
		return fmt.Errorf("%w: cycle must be > 0", ErrInvalidCollection)
	}
	if c.Reward.Denom == "" {
		return fmt.Errorf("%w: reward denom must not be empty", ErrInvalidCollection)
	}
	return nil
}

// Reconfigure overwrites the admin-supplied parameters of c with those of next,
// preserving the pool balance and custody count.
func (c *Collection) Reconfigure(next Collection) error {
	if c.PoolAmount > 0 && next.Reward.Denom != c.Reward.Denom {
		return fmt.Errorf("%w: pool holds %d%s, new reward denom %q",
			ErrDenomMismatch, c.PoolAmount, c.Reward.Denom, next.Reward.Denom)
	}
	c.Reward = next.Reward
	c.Cycle = next.Cycle
	c.IsWhitelisted = next.IsWhitelisted
	c.Spots = next.Spots
	c.LockupPeriod = next.LockupPeriod
	return nil
}

// Deposit credits amount to the reward pool.
func (c *Collection) Deposit(amount uint64) error {
	sum := c.PoolAmount + amount
	if sum < c.PoolAmount {
		return fmt.Errorf("%w: pool %d + deposit %d", ErrPoolOverflow, c.PoolAmount, amount)
	}
	c.PoolAmount = sum
	return nil
}

// Payout debits amount from the reward pool. The pool is left untouched on failure.
func (c *Collection) Payout(amount uint64) error {
	if amount > c.PoolAmount {
		return fmt.Errorf("%w: pool %d, reward %d", ErrNotEnoughRewardPool, c.PoolAmount, amount)
	}
	c.PoolAmount -= amount
	return nil
}

// Admit reserves a custody spot for one more token.
func (c *Collection) Admit() error {
	if !c.IsWhitelisted {
		return fmt.Errorf("%w: %s", ErrNotWhitelisted, c.Address)
	}
	if c.Staked >= c.Spots {
		return fmt.Errorf("%w: %d/%d in custody", ErrNoSpotsAvailable, c.Staked, c.Spots)
	}
	c.Staked++
	return nil
}

// Release frees the custody spot of a returned token.
func (c *Collection) Release() {
	if c.Staked > 0 {
		c.Staked--
	}
}

// SetUnstakeFee replaces the early-exit fee. The denomination may only change
// while no fee in the old denomination is waiting to be withdrawn.
func (cfg *Config) SetUnstakeFee(fee Coin) error {
	if cfg.FeeCollected > 0 && fee.Denom != cfg.UnstakeFee.Denom {
		return fmt.Errorf("%w: %d%s collected, new fee denom %q",
			ErrDenomMismatch, cfg.FeeCollected, cfg.UnstakeFee.Denom, fee.Denom)
	}
	cfg.UnstakeFee = fee
	return nil
}

// CollectFee credits an early-exit fee.
func (cfg *Config) CollectFee(amount uint64) error {
	sum := cfg.FeeCollected + amount
	if sum < cfg.FeeCollected {
		return fmt.Errorf("%w: fee collected %d + %d", ErrPoolOverflow, cfg.FeeCollected, amount)
	}
	cfg.FeeCollected = sum
	return nil
}

// WithdrawFee debits fee from the collected balance before it is paid out.
func (cfg *Config) WithdrawFee(fee Coin) error {
	if fee.Amount == 0 {
		return fmt.Errorf("%w: zero fee withdrawal", ErrUnknown)
	}
	if fee.Denom != cfg.UnstakeFee.Denom {
		return fmt.Errorf("%w: fee is collected in %q, requested %q",
			ErrDenomMismatch, cfg.UnstakeFee.Denom, fee.Denom)
	}
	if fee.Amount > cfg.FeeCollected {
		return fmt.Errorf("%w: collected %d, requested %d",
			ErrNotEnoughFeeCollected, cfg.FeeCollected, fee.Amount)
	}
	cfg.FeeCollected -= fee.Amount
	return nil
}

// IsOwner reports whether addr is the ledger owner.
func (cfg *Config) IsOwner(addr string) bool {
	return cfg.Owner == addr
}
