package mysql

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"backed-protocol/pkg/numeric"
)

// --- SQLite-friendly schemas only for tests ---
// Money columns are TEXT here: sqlite's NUMERIC affinity would coerce
// decimal(65,0) values beyond 2^63 into floats and lose digits.

type loanSQLite struct {
	ID                  uint64         `gorm:"primaryKey;column:id;autoIncrement"`
	CollateralAsset     string         `gorm:"column:collateral_asset;index"`
	CollateralItemID    uint64         `gorm:"column:collateral_item_id"`
	LoanAsset           string         `gorm:"column:loan_asset"`
	LoanAmount          numeric.BigInt `gorm:"type:text;column:loan_amount"`
	RatePerSecond       uint64         `gorm:"column:rate_per_second"`
	DurationSeconds     uint64         `gorm:"column:duration_seconds"`
	AccumulatedInterest numeric.BigInt `gorm:"type:text;column:accumulated_interest"`
	LastAccrualAt       int64          `gorm:"column:last_accrual_at"`
	AmountDrawn         numeric.BigInt `gorm:"type:text;column:amount_drawn"`
	OriginationFeeRate  uint64         `gorm:"column:origination_fee_rate"`
	Closed              bool           `gorm:"column:closed"`
	CollateralSeized    bool           `gorm:"column:collateral_seized"`
	HasLender           bool           `gorm:"column:has_lender"`
	CreatedAt           time.Time      `gorm:"column:created_at"`
	UpdatedAt           time.Time      `gorm:"column:updated_at"`
}

func (loanSQLite) TableName() string { return "loans" }

type ticketSQLite struct {
	ID        uint64    `gorm:"primaryKey;column:id;autoIncrement"`
	LoanID    uint64    `gorm:"column:loan_id;uniqueIndex:ux_tickets_loan_side"`
	Side      string    `gorm:"column:side;uniqueIndex:ux_tickets_loan_side"`
	Owner     string    `gorm:"column:owner;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (ticketSQLite) TableName() string { return "tickets" }

type balanceSQLite struct {
	ID        uint64         `gorm:"primaryKey;column:id;autoIncrement"`
	Asset     string         `gorm:"column:asset;uniqueIndex"`
	Balance   numeric.BigInt `gorm:"type:text;column:balance"`
	CreatedAt time.Time      `gorm:"column:created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
}

func (balanceSQLite) TableName() string { return "drawer_balances" }

// openTestDB creates an in-memory sqlite DB and migrates the sqlite-safe
// schemas, NOT the domain models.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&loanSQLite{}, &ticketSQLite{}, &balanceSQLite{}); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}
