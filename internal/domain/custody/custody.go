package custody

import (
	"context"
	"errors"
	"math/big"
)

// ErrTransferRejected is what adapter implementations wrap when the external
// asset refuses or fails a movement. The ledger treats any adapter error as
// fatal to the enclosing operation; the surrounding transaction rolls back.
var ErrTransferRejected = errors.New("custody transfer rejected")

// Adapter moves asset value between ledger custody and external holders. The
// ledger never implements token semantics itself; implementations bridge to
// whatever settlement system holds the real assets.
type Adapter interface {
	// Collateral items are non-fungible: identified by (asset, itemID).
	CollateralIn(ctx context.Context, asset string, itemID uint64, from string) error
	CollateralOut(ctx context.Context, asset string, itemID uint64, to string) error

	// Loan assets are fungible: identified by asset and base-unit amount.
	FundsIn(ctx context.Context, asset string, from string, amount *big.Int) error
	FundsOut(ctx context.Context, asset string, to string, amount *big.Int) error
}
