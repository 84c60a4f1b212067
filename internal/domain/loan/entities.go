package loan

import (
	"errors"
	"time"

	"backed-protocol/pkg/numeric"
)

var (
	ErrNotFound                = errors.New("loan not found")
	ErrClosed                  = errors.New("loan closed")
	ErrHasLender               = errors.New("loan is underwritten, use repay")
	ErrNoLender                = errors.New("loan has no lender")
	ErrNotBorrower             = errors.New("caller does not hold the borrow ticket")
	ErrNotLender               = errors.New("caller does not hold the lend ticket")
	ErrPaymentNotLate          = errors.New("payment is not late")
	ErrTermsRejected           = errors.New("proposed terms do not qualify")
	ErrInsufficientImprovement = errors.New("proposed terms must be better than existing terms")
	ErrForbiddenCollateral     = errors.New("claim contracts cannot be used as collateral")
	ErrInsufficientDrawable    = errors.New("insufficient drawable balance")
	ErrInvalidInput            = errors.New("invalid loan input")
)

// Loan is the ledger row for one collateralized position. The auto-increment
// primary key doubles as the public loan id: ids are assigned strictly
// increasing at creation and never reused.
type Loan struct {
	ID uint64 `gorm:"primaryKey;column:id" json:"loan_id"`

	// Collateral and loan asset are set at creation and never change.
	CollateralAsset  string `gorm:"size:64;column:collateral_asset;index:idx_loans_collateral" json:"collateral_asset"`
	CollateralItemID uint64 `gorm:"column:collateral_item_id;index:idx_loans_collateral" json:"collateral_item_id"`
	LoanAsset        string `gorm:"size:64;column:loan_asset" json:"loan_asset"`

	// Current terms. After creation the amount only grows, the rate only
	// falls and the duration only grows (buyout improvement rule).
	LoanAmount      numeric.BigInt `gorm:"type:decimal(65,0);column:loan_amount" json:"loan_amount"`
	RatePerSecond   uint64         `gorm:"column:rate_per_second" json:"rate_per_second"`
	DurationSeconds uint64         `gorm:"column:duration_seconds" json:"duration_seconds"`

	// Accrual checkpoint: interest frozen at LastAccrualAt. The pair is only
	// ever written together.
	AccumulatedInterest numeric.BigInt `gorm:"type:decimal(65,0);column:accumulated_interest" json:"accumulated_interest"`
	LastAccrualAt       int64          `gorm:"column:last_accrual_at" json:"last_accrual_at"`

	// AmountDrawn is the principal already released to the borrower side.
	// OriginationFeeRate is captured at first underwrite and bounds the
	// drawable balance from then on.
	AmountDrawn        numeric.BigInt `gorm:"type:decimal(65,0);column:amount_drawn" json:"amount_drawn"`
	OriginationFeeRate uint64         `gorm:"column:origination_fee_rate" json:"origination_fee_rate"`

	Closed           bool `gorm:"column:closed" json:"closed"`
	CollateralSeized bool `gorm:"column:collateral_seized" json:"collateral_seized"`
	HasLender        bool `gorm:"column:has_lender" json:"has_lender"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}

func (Loan) TableName() string { return "loans" }
