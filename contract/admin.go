package contract

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/bitfsorg/libstake-go/ledger"
)

// checkOwnerOnly fails with ledger.ErrUnauthorized unless caller owns the ledger.
func checkOwnerOnly(cfg *ledger.Config, caller string) error {
	if !cfg.IsOwner(caller) {
		return fmt.Errorf("%w: %q", ledger.ErrUnauthorized, caller)
	}
	return nil
}

// ownerConfig loads the config and authorizes the sender as its owner.
func (x *execution) ownerConfig() (*ledger.Config, error) {
	cfg, err := x.tx.Config()
	if err != nil {
		return nil, err
	}
	if err := checkOwnerOnly(cfg, x.info.Sender); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Contract) transferOwnership(x *execution, m TransferOwnership) (*Response, error) {
	cfg, err := x.ownerConfig()
	if err != nil {
		return nil, err
	}
	if err := nonPayable(x.info); err != nil {
		return nil, err
	}
	if err := ledger.ValidateIdentity(m.Address); err != nil {
		return nil, err
	}

	previous := cfg.Owner
	cfg.Owner = m.Address
	if err := x.tx.PutConfig(cfg); err != nil {
		return nil, err
	}
	x.touchConfig(cfg)
	x.logWith(zap.String("previous_owner", previous), zap.String("new_owner", cfg.Owner))

	resp := newResponse("transfer_ownership")
	resp.addEvent(newEvent("ownership_transferred").
		add("previous_owner", previous).
		add("new_owner", cfg.Owner))
	return resp, nil
}

func (c *Contract) changeFee(x *execution, m ChangeFee) (*Response, error) {
	cfg, err := x.ownerConfig()
	if err != nil {
		return nil, err
	}
	if err := nonPayable(x.info); err != nil {
		return nil, err
	}
	if err := validateFee(m.Fee); err != nil {
		return nil, err
	}

	old := cfg.UnstakeFee
	if err := cfg.SetUnstakeFee(m.Fee); err != nil {
		return nil, err
	}
	if err := x.tx.PutConfig(cfg); err != nil {
		return nil, err
	}
	x.touchConfig(cfg)
	x.logWith(zap.Stringer("old_fee", old), zap.Stringer("new_fee", cfg.UnstakeFee))

	resp := newResponse("change_fee")
	resp.addEvent(newEvent("fee_changed").
		add("old_fee", old.String()).
		add("new_fee", cfg.UnstakeFee.String()))
	return resp, nil
}

// withdrawFee debits fee_collected before issuing the payout so the same
// collected fee can never be sent twice.
func (c *Contract) withdrawFee(x *execution, m WithdrawFee) (*Response, error) {
	cfg, err := x.ownerConfig()
	if err != nil {
		return nil, err
	}
	if err := nonPayable(x.info); err != nil {
		return nil, err
	}
	if err := cfg.WithdrawFee(m.Fee); err != nil {
		return nil, err
	}
	if err := x.tx.PutConfig(cfg); err != nil {
		return nil, err
	}
	x.touchConfig(cfg)
	x.logWith(zap.Stringer("fee", m.Fee), zap.Uint64("fee_collected", cfg.FeeCollected))

	resp := newResponse("withdraw_fee")
	resp.addMessage(BankSend{ToAddress: cfg.Owner, Amount: []ledger.Coin{m.Fee}})
	resp.addEvent(newEvent("fee_withdrawn").
		add("recipient", cfg.Owner).
		add("amount", m.Fee.String()).
		addUint("fee_collected", cfg.FeeCollected))
	return resp, nil
}
