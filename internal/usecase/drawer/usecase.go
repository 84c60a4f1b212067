package drawer

import (
	"context"
	"math/big"

	"backed-protocol/internal/domain/custody"
	domain "backed-protocol/internal/domain/drawer"
	"backed-protocol/internal/domain/protocol"
	"backed-protocol/internal/domain/uow"
)

type BalanceDTO struct {
	Asset   string `json:"asset"`
	Balance string `json:"balance"`
}

// Usecase manages the origination fee drawer: one balance per loan asset,
// credited by underwrites and withdrawable only by the administrator.
type Usecase struct {
	uow      uow.UnitOfWork
	custody  custody.Adapter
	settings *protocol.Settings
}

func NewUsecase(tx uow.UnitOfWork, adapter custody.Adapter, settings *protocol.Settings) *Usecase {
	return &Usecase{uow: tx, custody: adapter, settings: settings}
}

func (u *Usecase) Balance(ctx context.Context, asset string) (*BalanceDTO, error) {
	var dto *BalanceDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		b, err := r.Drawer.Get(ctx, asset)
		if err != nil {
			return err
		}
		dto = &BalanceDTO{Asset: asset, Balance: b.Balance.String()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Withdraw pays accumulated fees out to recipient. The debit and the custody
// transfer share one transaction; a rejected transfer leaves the drawer
// untouched.
func (u *Usecase) Withdraw(ctx context.Context, caller, asset string, amount *big.Int, recipient string) (*BalanceDTO, error) {
	if !u.settings.IsAdmin(caller) {
		return nil, protocol.ErrNotAdministrator
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if recipient == "" {
		recipient = caller
	}
	var dto *BalanceDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Drawer.Debit(ctx, asset, amount); err != nil {
			return err
		}
		if err := u.custody.FundsOut(ctx, asset, recipient, amount); err != nil {
			return err
		}
		b, err := r.Drawer.Get(ctx, asset)
		if err != nil {
			return err
		}
		dto = &BalanceDTO{Asset: asset, Balance: b.Balance.String()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}
