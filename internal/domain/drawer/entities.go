package drawer

import (
	"errors"
	"time"

	"backed-protocol/pkg/numeric"
)

var (
	ErrInsufficientFunds = errors.New("insufficient cash drawer funds")
	ErrInvalidAmount     = errors.New("withdrawal amount must be positive")
)

// Balance accumulates protocol-owned origination fee revenue per loan asset.
// Credits come only from the ledger; debits only from administrator
// withdrawal, so the balance never exceeds fees credited minus withdrawals.
type Balance struct {
	ID        uint64         `gorm:"primaryKey;column:id" json:"-"`
	Asset     string         `gorm:"size:64;column:asset;uniqueIndex:ux_drawer_asset" json:"asset"`
	Balance   numeric.BigInt `gorm:"type:decimal(65,0);column:balance" json:"balance"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"-"`
}

func (Balance) TableName() string { return "drawer_balances" }
