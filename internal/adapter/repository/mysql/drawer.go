package mysql

import (
	"context"
	"errors"
	"math/big"

	drawerDomain "backed-protocol/internal/domain/drawer"

	"gorm.io/gorm"
)

type DrawerRepository struct{ db *gorm.DB }

func NewDrawerRepository(db *gorm.DB) *DrawerRepository { return &DrawerRepository{db: db} }

func (r *DrawerRepository) Get(ctx context.Context, asset string) (*drawerDomain.Balance, error) {
	var out drawerDomain.Balance
	res := lockForUpdate(r.db.WithContext(ctx)).
		Where("asset = ?", asset).
		First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return &drawerDomain.Balance{Asset: asset}, nil
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

func (r *DrawerRepository) Credit(ctx context.Context, asset string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return nil
	}
	bal, err := r.Get(ctx, asset)
	if err != nil {
		return err
	}
	bal.Balance.Set(new(big.Int).Add(bal.Balance.Int(), amount))
	if bal.ID == 0 {
		return r.db.WithContext(ctx).Create(bal).Error
	}
	return r.db.WithContext(ctx).Save(bal).Error
}

func (r *DrawerRepository) Debit(ctx context.Context, asset string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return drawerDomain.ErrInvalidAmount
	}
	bal, err := r.Get(ctx, asset)
	if err != nil {
		return err
	}
	if bal.ID == 0 || bal.Balance.Cmp(amount) < 0 {
		return drawerDomain.ErrInsufficientFunds
	}
	bal.Balance.Set(new(big.Int).Sub(bal.Balance.Int(), amount))
	return r.db.WithContext(ctx).Save(bal).Error
}
