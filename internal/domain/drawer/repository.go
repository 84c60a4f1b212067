package drawer

import (
	"context"
	"math/big"
)

type Repository interface {
	// Get returns a zero balance (not an error) for an asset never credited.
	Get(ctx context.Context, asset string) (*Balance, error)
	Credit(ctx context.Context, asset string, amount *big.Int) error
	// Debit fails with ErrInsufficientFunds when amount exceeds the balance.
	Debit(ctx context.Context, asset string, amount *big.Int) error
}
