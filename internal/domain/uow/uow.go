package uow

import (
	"context"

	"backed-protocol/internal/domain/drawer"
	"backed-protocol/internal/domain/loan"
	"backed-protocol/internal/domain/ticket"
)

type Repos struct {
	Loans   loan.Repository
	Tickets ticket.Registry
	Drawer  drawer.Repository
}

// UnitOfWork runs ledger mutations inside one transaction: every operation is
// all-or-nothing, including the custody calls issued from within fn — an
// error from any of them rolls back the whole operation.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// WithinLoanTx locks the loan row first, serializing every mutation of
	// the same loan; a re-entrant call sees either the pre- or post-operation
	// state, never a partial one.
	WithinLoanTx(ctx context.Context, loanID uint64, fn func(r Repos, l *loan.Loan) error) error
}
