package contract

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/bitfsorg/libstake-go/ledger"
)

// InstantiateMsg configures a new ledger. A nil UnstakeFee disables early exit.
type InstantiateMsg struct {
	UnstakeFee *ledger.Coin `json:"unstake_fee,omitempty"`
}

// ExecuteMsg is one of the state-changing entry points.
type ExecuteMsg interface {
	executeMsg() string
}

// TransferOwnership hands the admin role to Address.
type TransferOwnership struct {
	Address string `json:"address"`
}

// ChangeFee replaces the early-unstake fee.
type ChangeFee struct {
	Fee ledger.Coin `json:"fee"`
}

// WhitelistCollection registers or reconfigures a collection.
type WhitelistCollection struct {
	Address       string      `json:"address"`
	Reward        ledger.Coin `json:"reward"`
	Cycle         uint64      `json:"cycle"`
	IsWhitelisted bool        `json:"is_whitelisted"`
	Spots         uint64      `json:"spots"`
	LockupPeriod  uint64      `json:"lockup_period,omitempty"`
}

// DepositCollectionReward credits the attached funds to a collection's pool.
type DepositCollectionReward struct {
	Address string `json:"address"`
}

// ReceiveNft is the deposit notification sent by a collection contract after
// it has moved TokenID into the ledger's custody on behalf of Sender.
type ReceiveNft struct {
	Sender  string          `json:"sender"`
	TokenID string          `json:"token_id"`
	Msg     json.RawMessage `json:"msg,omitempty"`
}

// Unstake returns the token of record Index to its staker.
type Unstake struct {
	Index uint64 `json:"index"`
}

// ClaimReward settles record Index.
type ClaimReward struct {
	Index uint64 `json:"index"`
}

// WithdrawFee pays collected unstake fees to the owner.
type WithdrawFee struct {
	Fee ledger.Coin `json:"fee"`
}

func (TransferOwnership) executeMsg() string       { return "transfer_ownership" }
func (ChangeFee) executeMsg() string               { return "change_fee" }
func (WhitelistCollection) executeMsg() string     { return "whitelist_collection" }
func (DepositCollectionReward) executeMsg() string { return "deposit_collection_reward" }
func (ReceiveNft) executeMsg() string              { return "receive_nft" }
func (Unstake) executeMsg() string                 { return "unstake" }
func (ClaimReward) executeMsg() string             { return "claim_reward" }
func (WithdrawFee) executeMsg() string             { return "withdraw_fee" }

// QueryMsg is one of the read-only entry points.
type QueryMsg interface {
	queryMsg() string
}

// GetConfig returns the ledger config.
type GetConfig struct{}

// GetCollections returns every registered collection.
type GetCollections struct{}

// GetStakingsByOwner returns every record of Owner.
type GetStakingsByOwner struct {
	Owner string `json:"owner"`
}

// GetStaking returns a single record.
type GetStaking struct {
	Index uint64 `json:"index"`
}

// GetAllCollectionTokensByOwner lists Owner's tokens per whitelisted collection,
// both held externally and in custody.
type GetAllCollectionTokensByOwner struct {
	Owner string `json:"owner"`
}

func (GetConfig) queryMsg() string                     { return "get_config" }
func (GetCollections) queryMsg() string                { return "get_collections" }
func (GetStakingsByOwner) queryMsg() string            { return "get_stakings_by_owner" }
func (GetStaking) queryMsg() string                    { return "get_staking" }
func (GetAllCollectionTokensByOwner) queryMsg() string { return "get_all_collection_tokens_by_owner" }

var executeDecoders = map[string]func(json.RawMessage) (ExecuteMsg, error){
	"transfer_ownership":        decodeAs[TransferOwnership, ExecuteMsg],
	"change_fee":                decodeAs[ChangeFee, ExecuteMsg],
	"whitelist_collection":      decodeAs[WhitelistCollection, ExecuteMsg],
	"deposit_collection_reward": decodeAs[DepositCollectionReward, ExecuteMsg],
	"receive_nft":               decodeAs[ReceiveNft, ExecuteMsg],
	"unstake":                   decodeAs[Unstake, ExecuteMsg],
	"claim_reward":              decodeAs[ClaimReward, ExecuteMsg],
	"withdraw_fee":              decodeAs[WithdrawFee, ExecuteMsg],
}

var queryDecoders = map[string]func(json.RawMessage) (QueryMsg, error){
	"get_config":                         decodeAs[GetConfig, QueryMsg],
	"get_collections":                    decodeAs[GetCollections, QueryMsg],
	"get_stakings_by_owner":              decodeAs[GetStakingsByOwner, QueryMsg],
	"get_staking":                        decodeAs[GetStaking, QueryMsg],
	"get_all_collection_tokens_by_owner": decodeAs[GetAllCollectionTokensByOwner, QueryMsg],
}

// DecodeExecuteMsg parses an externally tagged message such as
// {"unstake":{"index":0}}. Unroutable or malformed input yields ledger.ErrUnknown.
func DecodeExecuteMsg(data []byte) (ExecuteMsg, error) {
	return decodeTagged(data, executeDecoders)
}

// DecodeQueryMsg parses an externally tagged query such as {"get_config":{}}.
func DecodeQueryMsg(data []byte) (QueryMsg, error) {
	return decodeTagged(data, queryDecoders)
}

// EncodeExecuteMsg renders msg in the tagged form accepted by DecodeExecuteMsg.
func EncodeExecuteMsg(msg ExecuteMsg) ([]byte, error) {
	return json.Marshal(map[string]ExecuteMsg{msg.executeMsg(): msg})
}

func decodeTagged[M any](data []byte, decoders map[string]func(json.RawMessage) (M, error)) (M, error) {
	var zero M
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return zero, fmt.Errorf("%w: %w", ledger.ErrUnknown, err)
	}
	if len(envelope) != 1 {
		return zero, fmt.Errorf("%w: expected exactly one variant, got %d", ledger.ErrUnknown, len(envelope))
	}
	for tag, body := range envelope {
		decode, ok := decoders[tag]
		if !ok {
			return zero, fmt.Errorf("%w: variant %q", ledger.ErrUnknown, tag)
		}
		return decode(body)
	}
	return zero, ledger.ErrUnknown
}

// decodeAs strictly decodes body into T and returns it as the interface type M.
func decodeAs[T any, M any](body json.RawMessage) (M, error) {
	var zero M
	var v T
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return zero, fmt.Errorf("%w: %w", ledger.ErrUnknown, err)
	}
	m, ok := any(v).(M)
	if !ok {
		return zero, fmt.Errorf("%w: %T", ledger.ErrUnknown, v)
	}
	return m, nil
}
