package ledger

import (
	"strconv"
	"strings"
)

// Coin is an amount in a single denomination.
type Coin struct {
	Denom  string `json:"denom"`
	Amount uint64 `json:"amount"`
}

// NewCoin returns a coin of amount in denom.
func NewCoin(amount uint64, denom string) Coin {
	return Coin{Denom: denom, Amount: amount}
}

// String renders the coin as "<amount><denom>", e.g. "10inj".
func (c Coin) String() string {
	return strconv.FormatUint(c.Amount, 10) + c.Denom
}

// IsZero reports whether the coin carries no amount.
func (c Coin) IsZero() bool {
	return c.Amount == 0
}

// FindCoin returns the first coin in funds with the given denomination.
func FindCoin(funds []Coin, denom string) (Coin, bool) {
	for _, c := range funds {
		if c.Denom == denom {
			return c, true
		}
	}
	return Coin{}, false
}

// FormatCoins renders funds as a comma separated list.
func FormatCoins(funds []Coin) string {
	parts := make([]string, len(funds))
	for i, c := range funds {
		parts[i] = c.String()
	}
	return strings.Join(parts, ",")
}

// ValidateIdentity checks that addr can be used as an owner, staker or collection key.
// NUL is reserved as the separator of composite store keys.
func ValidateIdentity(addr string) error {
	if addr == "" {
		return ErrInvalidIdentity
	}
	if strings.IndexByte(addr, 0) >= 0 {
		return ErrInvalidIdentity
	}
	return nil
}
