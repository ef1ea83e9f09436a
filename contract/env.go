package contract

import "github.com/bitfsorg/libstake-go/ledger"

// Env describes the block a call executes in.
type Env struct {
	BlockTime       uint64 // seconds since epoch; used as "now" by every transition
	ContractAddress string // custody address of the ledger itself
}

// MessageInfo identifies the caller of an entry point and the funds it attached.
type MessageInfo struct {
	Sender string
	Funds  []ledger.Coin
}
