package tokensvc

import "context"

// Service is the read side of an external NFT contract. The staking ledger
// never mutates token state through it; custody moves are emitted as
// outgoing instructions instead.
type Service interface {
	// ContractInfo returns the collection's name and symbol.
	ContractInfo(ctx context.Context, contract string) (*ContractInfo, error)

	// NumTokens returns the number of tokens minted by the collection.
	NumTokens(ctx context.Context, contract string) (uint64, error)

	// NftInfo returns metadata for a single token.
	NftInfo(ctx context.Context, contract, tokenID string) (*NftInfo, error)

	// Tokens returns every token id of the collection held by owner.
	Tokens(ctx context.Context, contract, owner string) ([]string, error)
}

// ContractInfo describes a collection.
type ContractInfo struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// NftInfo describes a single token.
type NftInfo struct {
	TokenURI *string `json:"token_uri"`
}
