package contract

import (
	"context"
	"errors"
	"fmt"

	"github.com/bitfsorg/libstake-go/ledger"
	"github.com/bitfsorg/libstake-go/store"
	"github.com/bitfsorg/libstake-go/tokensvc"
)

// ConfigResponse is the answer to GetConfig.
type ConfigResponse struct {
	Owner        string      `json:"owner"`
	UnstakeFee   ledger.Coin `json:"unstake_fee"`
	FeeCollected uint64      `json:"fee_collected"`
}

// CollectionResponse is one registry entry, enriched with live collection data
// when a token service is configured.
type CollectionResponse struct {
	Address       string      `json:"address"`
	Reward        ledger.Coin `json:"reward"`
	Cycle         uint64      `json:"cycle"`
	IsWhitelisted bool        `json:"is_whitelisted"`
	Spots         uint64      `json:"spots"`
	LockupPeriod  uint64      `json:"lockup_period"`
	PoolAmount    uint64      `json:"pool_amount"`
	Staked        uint64      `json:"staked"`
	Name          string      `json:"name,omitempty"`
	Symbol        string      `json:"symbol,omitempty"`
	NumTokens     uint64      `json:"num_tokens,omitempty"`
}

// StakingResponse is one staking record.
type StakingResponse struct {
	Index          uint64 `json:"index"`
	Owner          string `json:"owner"`
	TokenAddress   string `json:"token_address"`
	TokenID        string `json:"token_id"`
	StartTimestamp uint64 `json:"start_timestamp"`
	EndTimestamp   uint64 `json:"end_timestamp"`
	IsPaid         bool   `json:"is_paid"`
	State          string `json:"state"`
}

// StakingStateResponse is the custody metadata attached to a token held by the ledger.
type StakingStateResponse struct {
	Index          uint64 `json:"index"`
	StartTimestamp uint64 `json:"start_timestamp"`
	EndTimestamp   uint64 `json:"end_timestamp"`
	IsPaid         bool   `json:"is_paid"`
}

// TokenResponse is a token of a collection. StakingState is nil for tokens
// the owner holds directly.
type TokenResponse struct {
	TokenID      string                `json:"token_id"`
	TokenURI     *string               `json:"token_uri"`
	StakingState *StakingStateResponse `json:"staking_state"`
}

// CollectionTokensResponse groups an owner's tokens by collection.
type CollectionTokensResponse struct {
	TokenAddress string          `json:"token_address"`
	Tokens       []TokenResponse `json:"tokens"`
}

func newStakingResponse(s *ledger.Staking) StakingResponse {
	return StakingResponse{
		Index:          s.ID,
		Owner:          s.Owner,
		TokenAddress:   s.TokenAddress,
		TokenID:        s.TokenID,
		StartTimestamp: s.StartTimestamp,
		EndTimestamp:   s.EndTimestamp,
		IsPaid:         s.IsPaid,
		State:          s.State().String(),
	}
}

// GetConfig returns the ledger config.
func (c *Contract) GetConfig() (*ConfigResponse, error) {
	var resp *ConfigResponse
	err := c.store.View(func(tx store.Tx) error {
		cfg, err := tx.Config()
		if err != nil {
			return err
		}
		resp = &ConfigResponse{Owner: cfg.Owner, UnstakeFee: cfg.UnstakeFee, FeeCollected: cfg.FeeCollected}
		return nil
	})
	return resp, err
}

// GetCollections returns every registry entry in ascending address order.
// With a token service configured each entry carries the collection's name,
// symbol and minted supply.
func (c *Contract) GetCollections(ctx context.Context) ([]CollectionResponse, error) {
	var colls []*ledger.Collection
	err := c.store.View(func(tx store.Tx) error {
		var err error
		colls, err = tx.Collections()
		return err
	})
	if err != nil {
		return nil, err
	}

	resp := make([]CollectionResponse, 0, len(colls))
	for _, coll := range colls {
		r := CollectionResponse{
			Address:       coll.Address,
			Reward:        coll.Reward,
			Cycle:         coll.Cycle,
			IsWhitelisted: coll.IsWhitelisted,
			Spots:         coll.Spots,
			LockupPeriod:  coll.LockupPeriod,
			PoolAmount:    coll.PoolAmount,
			Staked:        coll.Staked,
		}
		if c.tokens != nil {
			info, err := c.tokens.ContractInfo(ctx, coll.Address)
			if err != nil {
				return nil, fmt.Errorf("contract: contract info %s: %w", coll.Address, err)
			}
			n, err := c.tokens.NumTokens(ctx, coll.Address)
			if err != nil {
				return nil, fmt.Errorf("contract: num tokens %s: %w", coll.Address, err)
			}
			r.Name, r.Symbol, r.NumTokens = info.Name, info.Symbol, n
		}
		resp = append(resp, r)
	}
	return resp, nil
}

// GetStakingsByOwner returns owner's records in creation order, or an empty list.
func (c *Contract) GetStakingsByOwner(owner string) ([]StakingResponse, error) {
	resp := []StakingResponse{}
	err := c.store.View(func(tx store.Tx) error {
		stakings, err := tx.StakingsByOwner(owner)
		if err != nil {
			return err
		}
		for _, s := range stakings {
			resp = append(resp, newStakingResponse(s))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// GetStaking returns a single record.
func (c *Contract) GetStaking(index uint64) (*StakingResponse, error) {
	var resp StakingResponse
	err := c.store.View(func(tx store.Tx) error {
		s, err := tx.Staking(index)
		if errors.Is(err, store.ErrStakingNotFound) {
			return fmt.Errorf("%w: %d", ledger.ErrWrongIndex, index)
		}
		if err != nil {
			return err
		}
		resp = newStakingResponse(s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetAllCollectionTokensByOwner lists, for every whitelisted collection, the
// tokens owner holds directly followed by the tokens the ledger holds in
// custody on owner's behalf. Requires a token service.
func (c *Contract) GetAllCollectionTokensByOwner(ctx context.Context, owner string) ([]CollectionTokensResponse, error) {
	if c.tokens == nil {
		return nil, fmt.Errorf("contract: collection tokens: %w", tokensvc.ErrNotConfigured)
	}

	var (
		colls   []*ledger.Collection
		custody = make(map[string][]*ledger.Staking)
	)
	err := c.store.View(func(tx store.Tx) error {
		all, err := tx.Collections()
		if err != nil {
			return err
		}
		for _, coll := range all {
			if coll.IsWhitelisted {
				colls = append(colls, coll)
			}
		}
		stakings, err := tx.StakingsByOwner(owner)
		if err != nil {
			return err
		}
		for _, s := range stakings {
			if s.IsStaked() {
				custody[s.TokenAddress] = append(custody[s.TokenAddress], s)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := make([]CollectionTokensResponse, 0, len(colls))
	for _, coll := range colls {
		entry := CollectionTokensResponse{TokenAddress: coll.Address, Tokens: []TokenResponse{}}

		held, err := c.tokens.Tokens(ctx, coll.Address, owner)
		if err != nil {
			return nil, fmt.Errorf("contract: tokens of %s in %s: %w", owner, coll.Address, err)
		}
		for _, id := range held {
			uri, err := c.tokenURI(ctx, coll.Address, id)
			if err != nil {
				return nil, err
			}
			entry.Tokens = append(entry.Tokens, TokenResponse{TokenID: id, TokenURI: uri})
		}

		for _, s := range custody[coll.Address] {
			uri, err := c.tokenURI(ctx, coll.Address, s.TokenID)
			if err != nil {
				return nil, err
			}
			entry.Tokens = append(entry.Tokens, TokenResponse{
				TokenID:  s.TokenID,
				TokenURI: uri,
				StakingState: &StakingStateResponse{
					Index:          s.ID,
					StartTimestamp: s.StartTimestamp,
					EndTimestamp:   s.EndTimestamp,
					IsPaid:         s.IsPaid,
				},
			})
		}
		resp = append(resp, entry)
	}
	return resp, nil
}

func (c *Contract) tokenURI(ctx context.Context, contract, tokenID string) (*string, error) {
	info, err := c.tokens.NftInfo(ctx, contract, tokenID)
	if err != nil {
		return nil, fmt.Errorf("contract: nft info %s/%s: %w", contract, tokenID, err)
	}
	return info.TokenURI, nil
}
