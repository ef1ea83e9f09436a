package contract

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libstake-go/ledger"
	"github.com/bitfsorg/libstake-go/store"
	"github.com/bitfsorg/libstake-go/tokensvc"
)

func strPtr(s string) *string { return &s }

// mockTokens serves a single collection whose tokens all carry "token_uri".
func mockTokens(held map[string][]string) *tokensvc.MockService {
	return &tokensvc.MockService{
		ContractInfoFn: func(_ context.Context, contract string) (*tokensvc.ContractInfo, error) {
			return &tokensvc.ContractInfo{Name: "CW721 Base", Symbol: "CWB"}, nil
		},
		NumTokensFn: func(_ context.Context, contract string) (uint64, error) {
			return 2, nil
		},
		NftInfoFn: func(_ context.Context, contract, tokenID string) (*tokensvc.NftInfo, error) {
			return &tokensvc.NftInfo{TokenURI: strPtr("token_uri")}, nil
		},
		TokensFn: func(_ context.Context, contract, owner string) ([]string, error) {
			return held[owner], nil
		},
	}
}

func TestGetCollections_Enriched(t *testing.T) {
	c := New(store.NewMemStore(), mockTokens(nil))
	setup(t, c, nil, 0, 0)

	colls, err := c.GetCollections(context.Background())
	require.NoError(t, err)
	require.Len(t, colls, 1)
	assert.Equal(t, CollectionResponse{
		Address:       testCollection,
		Reward:        ledger.NewCoin(10, "inj"),
		Cycle:         ledger.DefaultCycle,
		IsWhitelisted: true,
		Spots:         1000,
		Name:          "CW721 Base",
		Symbol:        "CWB",
		NumTokens:     2,
	}, colls[0])
}

func TestGetCollections_AscendingOrder(t *testing.T) {
	c := newTestContract(t)
	instantiate(t, c, nil)
	for _, addr := range []string{"inj1c", "inj1a", "inj1b"} {
		msg := whitelistMsg(0)
		msg.Address = addr
		_, err := execAt(c, 0, testOwner, nil, msg)
		require.NoError(t, err)
	}

	colls, err := c.GetCollections(context.Background())
	require.NoError(t, err)
	require.Len(t, colls, 3)
	assert.Equal(t, "inj1a", colls[0].Address)
	assert.Equal(t, "inj1b", colls[1].Address)
	assert.Equal(t, "inj1c", colls[2].Address)
}

func TestGetCollections_TokenServiceError(t *testing.T) {
	tokens := mockTokens(nil)
	tokens.NumTokensFn = func(context.Context, string) (uint64, error) {
		return 0, tokensvc.ErrConnectionFailed
	}
	c := New(store.NewMemStore(), tokens)
	setup(t, c, nil, 0, 0)

	_, err := c.GetCollections(context.Background())
	assert.ErrorIs(t, err, tokensvc.ErrConnectionFailed)
}

func TestGetStakingsByOwner_Empty(t *testing.T) {
	c := newTestContract(t)
	setup(t, c, nil, 0, 0)

	resp, err := c.GetStakingsByOwner("inj1nobody")
	require.NoError(t, err)
	assert.NotNil(t, resp)
	assert.Empty(t, resp)
}

func TestGetStaking(t *testing.T) {
	c := newTestContract(t)
	setup(t, c, nil, 0, 0)
	id := stakeAt(t, c, 42, testStaker, "7")

	s, err := c.GetStaking(id)
	require.NoError(t, err)
	assert.Equal(t, &StakingResponse{
		Index:          id,
		Owner:          testStaker,
		TokenAddress:   testCollection,
		TokenID:        "7",
		StartTimestamp: 42,
		State:          "staked",
	}, s)

	_, err = c.GetStaking(id + 1)
	assert.ErrorIs(t, err, ledger.ErrWrongIndex)
}

func TestGetAllCollectionTokensByOwner(t *testing.T) {
	c := New(store.NewMemStore(), mockTokens(map[string][]string{testOwner: {"1"}}))
	setup(t, c, nil, 0, 0)

	// The owner stakes token "0" and keeps token "1".
	_, err := execAt(c, 5, testCollection, nil, ReceiveNft{Sender: testOwner, TokenID: "0"})
	require.NoError(t, err)

	resp, err := c.GetAllCollectionTokensByOwner(context.Background(), testOwner)
	require.NoError(t, err)
	require.Len(t, resp, 1)
	assert.Equal(t, testCollection, resp[0].TokenAddress)
	require.Len(t, resp[0].Tokens, 2)

	assert.Equal(t, "1", resp[0].Tokens[0].TokenID)
	assert.Equal(t, strPtr("token_uri"), resp[0].Tokens[0].TokenURI)
	assert.Nil(t, resp[0].Tokens[0].StakingState)

	assert.Equal(t, "0", resp[0].Tokens[1].TokenID)
	assert.Equal(t, strPtr("token_uri"), resp[0].Tokens[1].TokenURI)
	require.NotNil(t, resp[0].Tokens[1].StakingState)
	assert.Equal(t, &StakingStateResponse{Index: 0, StartTimestamp: 5}, resp[0].Tokens[1].StakingState)
}

func TestGetAllCollectionTokensByOwner_SkipsReturnedAndDeWhitelisted(t *testing.T) {
	c := New(store.NewMemStore(), mockTokens(nil))
	setup(t, c, nil, 0, 0)

	other := whitelistMsg(0)
	other.Address = "inj1retired"
	_, err := execAt(c, 0, testOwner, nil, other)
	require.NoError(t, err)
	_, err = execAt(c, 1, "inj1retired", nil, ReceiveNft{Sender: testStaker, TokenID: "9"})
	require.NoError(t, err)
	other.IsWhitelisted = false
	_, err = execAt(c, 2, testOwner, nil, other)
	require.NoError(t, err)

	id := stakeAt(t, c, 3, testStaker, "0")
	_, err = execAt(c, 4, testStaker, nil, Unstake{Index: id})
	require.NoError(t, err)
	stakeAt(t, c, 5, testStaker, "1")

	resp, err := c.GetAllCollectionTokensByOwner(context.Background(), testStaker)
	require.NoError(t, err)
	require.Len(t, resp, 1)
	assert.Equal(t, testCollection, resp[0].TokenAddress)
	require.Len(t, resp[0].Tokens, 1)
	assert.Equal(t, "1", resp[0].Tokens[0].TokenID)
}

func TestGetAllCollectionTokensByOwner_NoTokenService(t *testing.T) {
	c := newTestContract(t)
	setup(t, c, nil, 0, 0)

	_, err := c.GetAllCollectionTokensByOwner(context.Background(), testStaker)
	assert.True(t, errors.Is(err, tokensvc.ErrNotConfigured))
}

func TestQueryJSON(t *testing.T) {
	c := newTestContract(t)
	setup(t, c, nil, 0, 0)
	stakeAt(t, c, 1, testStaker, "0")

	out, err := c.QueryJSON(context.Background(), []byte(`{"get_config":{}}`))
	require.NoError(t, err)
	var cfg ConfigResponse
	require.NoError(t, json.Unmarshal(out, &cfg))
	assert.Equal(t, testOwner, cfg.Owner)

	out, err = c.QueryJSON(context.Background(), []byte(`{"get_stakings_by_owner":{"owner":"inj1alice"}}`))
	require.NoError(t, err)
	var stakings []StakingResponse
	require.NoError(t, json.Unmarshal(out, &stakings))
	require.Len(t, stakings, 1)
	assert.Equal(t, "0", stakings[0].TokenID)
	assert.Equal(t, uint64(0), stakings[0].EndTimestamp)

	_, err = c.QueryJSON(context.Background(), []byte(`{"get_everything":{}}`))
	assert.ErrorIs(t, err, ledger.ErrUnknown)
}
