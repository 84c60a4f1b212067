package loan

import (
	"math/big"
	"time"

	domain "backed-protocol/internal/domain/loan"
)

type CreateLoanInput struct {
	Caller           string
	CollateralAsset  string
	CollateralItemID uint64
	LoanAsset        string
	Amount           *big.Int
	RatePerSecond    uint64
	DurationSeconds  uint64
	Recipient        string // borrow ticket recipient
}

// UnderwriteInput carries the proposed terms. They double as the caller's
// slippage guard: the operation fails unless they meet or beat the loan's
// current terms at execution time.
type UnderwriteInput struct {
	Caller          string
	Amount          *big.Int
	RatePerSecond   uint64
	DurationSeconds uint64
	Recipient       string // lend ticket recipient
}

type DrawInput struct {
	Caller    string
	Amount    *big.Int
	Recipient string
}

type LoanDTO struct {
	LoanID              uint64    `json:"loan_id"`
	CollateralAsset     string    `json:"collateral_asset"`
	CollateralItemID    uint64    `json:"collateral_item_id"`
	LoanAsset           string    `json:"loan_asset"`
	LoanAmount          string    `json:"loan_amount"`
	RatePerSecond       uint64    `json:"rate_per_second"`
	DurationSeconds     uint64    `json:"duration_seconds"`
	AccumulatedInterest string    `json:"accumulated_interest"`
	LastAccrualAt       int64     `json:"last_accrual_at"`
	AmountDrawn         string    `json:"amount_drawn"`
	OriginationFeeRate  uint64    `json:"origination_fee_rate"`
	Closed              bool      `json:"closed"`
	CollateralSeized    bool      `json:"collateral_seized"`
	HasLender           bool      `json:"has_lender"`
	CreatedAt           time.Time `json:"created_at"`
}

// InterestDTO is the read-only view of what paying off the loan costs at the
// caller-observed clock.
type InterestDTO struct {
	LoanID       uint64 `json:"loan_id"`
	InterestOwed string `json:"interest_owed"`
	TotalOwed    string `json:"total_owed"`
}

func toDTO(l *domain.Loan) *LoanDTO {
	return &LoanDTO{
		LoanID:              l.ID,
		CollateralAsset:     l.CollateralAsset,
		CollateralItemID:    l.CollateralItemID,
		LoanAsset:           l.LoanAsset,
		LoanAmount:          l.LoanAmount.String(),
		RatePerSecond:       l.RatePerSecond,
		DurationSeconds:     l.DurationSeconds,
		AccumulatedInterest: l.AccumulatedInterest.String(),
		LastAccrualAt:       l.LastAccrualAt,
		AmountDrawn:         l.AmountDrawn.String(),
		OriginationFeeRate:  l.OriginationFeeRate,
		Closed:              l.Closed,
		CollateralSeized:    l.CollateralSeized,
		HasLender:           l.HasLender,
		CreatedAt:           l.CreatedAt,
	}
}
