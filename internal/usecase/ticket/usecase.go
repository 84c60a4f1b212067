package ticket

import (
	"context"

	domain "backed-protocol/internal/domain/ticket"
	"backed-protocol/internal/domain/uow"
)

type TicketDTO struct {
	LoanID uint64      `json:"loan_id"`
	Side   domain.Side `json:"side"`
	Owner  string      `json:"owner"`
}

// Usecase exposes the claim registry: resolving and moving ownership of the
// borrow and lend tickets independently of any ledger operation.
type Usecase struct {
	uow uow.UnitOfWork
}

func NewUsecase(tx uow.UnitOfWork) *Usecase {
	return &Usecase{uow: tx}
}

func (u *Usecase) Owner(ctx context.Context, loanID uint64, side domain.Side) (*TicketDTO, error) {
	if !side.Valid() {
		return nil, domain.ErrInvalidSide
	}
	var dto *TicketDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		owner, err := r.Tickets.OwnerOf(ctx, loanID, side)
		if err != nil {
			return err
		}
		dto = &TicketDTO{LoanID: loanID, Side: side, Owner: owner}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Transfer moves a claim from caller to recipient. Claims transfer freely;
// whoever holds the ticket at the next ledger operation holds the rights.
func (u *Usecase) Transfer(ctx context.Context, loanID uint64, side domain.Side, caller, to string) (*TicketDTO, error) {
	if !side.Valid() {
		return nil, domain.ErrInvalidSide
	}
	if caller == "" || to == "" {
		return nil, domain.ErrInvalidRecipient
	}
	var dto *TicketDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Tickets.Transfer(ctx, loanID, side, caller, to); err != nil {
			return err
		}
		dto = &TicketDTO{LoanID: loanID, Side: side, Owner: to}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (u *Usecase) ListByOwner(ctx context.Context, owner string) ([]*TicketDTO, error) {
	var dtos []*TicketDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		tickets, err := r.Tickets.ListByOwner(ctx, owner)
		if err != nil {
			return err
		}
		dtos = make([]*TicketDTO, 0, len(tickets))
		for _, t := range tickets {
			dtos = append(dtos, &TicketDTO{LoanID: t.LoanID, Side: t.Side, Owner: t.Owner})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dtos, nil
}
