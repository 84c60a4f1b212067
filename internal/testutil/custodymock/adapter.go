package custodymock

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"backed-protocol/internal/domain/custody"
)

// Ensure compile-time compliance
var _ custody.Adapter = (*Adapter)(nil)

// Call records one custody movement for assertions.
type Call struct {
	Op     string // "collateral_in", "collateral_out", "funds_in", "funds_out"
	Asset  string
	ItemID uint64
	Party  string // from or to, depending on direction
	Amount *big.Int
}

// Adapter is a function-backed mock that satisfies custody.Adapter. Unset
// function fields succeed and record the call; set the ones a test needs to
// fail or inspect.
type Adapter struct {
	mu    sync.Mutex
	calls []Call

	CollateralInFn  func(ctx context.Context, asset string, itemID uint64, from string) error
	CollateralOutFn func(ctx context.Context, asset string, itemID uint64, to string) error
	FundsInFn       func(ctx context.Context, asset string, from string, amount *big.Int) error
	FundsOutFn      func(ctx context.Context, asset string, to string, amount *big.Int) error
}

func New() *Adapter { return &Adapter{} }

func (a *Adapter) record(c Call) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, c)
}

// Calls returns a copy of everything recorded so far.
func (a *Adapter) Calls() []Call {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Call, len(a.calls))
	copy(out, a.calls)
	return out
}

// CallsFor filters recorded calls by op.
func (a *Adapter) CallsFor(op string) []Call {
	var out []Call
	for _, c := range a.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (a *Adapter) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = nil
}

func (a *Adapter) CollateralIn(ctx context.Context, asset string, itemID uint64, from string) error {
	if a.CollateralInFn != nil {
		if err := a.CollateralInFn(ctx, asset, itemID, from); err != nil {
			return err
		}
	}
	a.record(Call{Op: "collateral_in", Asset: asset, ItemID: itemID, Party: from})
	return nil
}

func (a *Adapter) CollateralOut(ctx context.Context, asset string, itemID uint64, to string) error {
	if a.CollateralOutFn != nil {
		if err := a.CollateralOutFn(ctx, asset, itemID, to); err != nil {
			return err
		}
	}
	a.record(Call{Op: "collateral_out", Asset: asset, ItemID: itemID, Party: to})
	return nil
}

func (a *Adapter) FundsIn(ctx context.Context, asset string, from string, amount *big.Int) error {
	if a.FundsInFn != nil {
		if err := a.FundsInFn(ctx, asset, from, amount); err != nil {
			return err
		}
	}
	a.record(Call{Op: "funds_in", Asset: asset, Party: from, Amount: new(big.Int).Set(amount)})
	return nil
}

func (a *Adapter) FundsOut(ctx context.Context, asset string, to string, amount *big.Int) error {
	if a.FundsOutFn != nil {
		if err := a.FundsOutFn(ctx, asset, to, amount); err != nil {
			return err
		}
	}
	a.record(Call{Op: "funds_out", Asset: asset, Party: to, Amount: new(big.Int).Set(amount)})
	return nil
}

// Reject returns an error suitable for simulating an external asset refusing
// a movement.
func Reject(op string) error {
	return fmt.Errorf("%w: %s", custody.ErrTransferRejected, op)
}
