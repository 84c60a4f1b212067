package ticket

import (
	"errors"
	"time"
)

// Side distinguishes the two claim registries. A borrow ticket confers the
// borrower-side rights over a loan (draw, repay, close-before-underwrite); a
// lend ticket confers the lender-side rights (receive payoff, seize).
type Side string

const (
	SideBorrow Side = "borrow"
	SideLend   Side = "lend"
)

func (s Side) Valid() bool { return s == SideBorrow || s == SideLend }

var (
	ErrAlreadyMinted    = errors.New("ticket already minted for loan")
	ErrNotMinted        = errors.New("ticket not minted for loan")
	ErrNotOwner         = errors.New("caller is not the ticket owner")
	ErrInvalidRecipient = errors.New("invalid ticket recipient")
	ErrInvalidSide      = errors.New("invalid ticket side")
)

// Ticket is a bearer claim over one loan. Rows are minted exactly once per
// (loan, side) and never deleted; after a loan closes they remain as the
// ownership trail.
type Ticket struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"-"`
	LoanID    uint64    `gorm:"column:loan_id;uniqueIndex:ux_tickets_loan_side" json:"loan_id"`
	Side      Side      `gorm:"size:8;column:side;uniqueIndex:ux_tickets_loan_side" json:"side"`
	Owner     string    `gorm:"size:32;column:owner;index:idx_tickets_owner" json:"owner"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}

func (Ticket) TableName() string { return "tickets" }
