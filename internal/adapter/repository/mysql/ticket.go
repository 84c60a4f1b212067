package mysql

import (
	"context"
	"errors"

	ticketDomain "backed-protocol/internal/domain/ticket"

	"gorm.io/gorm"
)

type TicketRegistry struct{ db *gorm.DB }

func NewTicketRegistry(db *gorm.DB) *TicketRegistry { return &TicketRegistry{db: db} }

func (r *TicketRegistry) Mint(ctx context.Context, loanID uint64, side ticketDomain.Side, owner string) error {
	if !side.Valid() {
		return ticketDomain.ErrInvalidSide
	}
	if owner == "" {
		return ticketDomain.ErrInvalidRecipient
	}
	var existing ticketDomain.Ticket
	res := r.db.WithContext(ctx).
		Where("loan_id = ? AND side = ?", loanID, side).
		First(&existing)
	if res.Error == nil {
		return ticketDomain.ErrAlreadyMinted
	}
	if !errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return res.Error
	}
	return r.db.WithContext(ctx).Create(&ticketDomain.Ticket{
		LoanID: loanID,
		Side:   side,
		Owner:  owner,
	}).Error
}

func (r *TicketRegistry) OwnerOf(ctx context.Context, loanID uint64, side ticketDomain.Side) (string, error) {
	if !side.Valid() {
		return "", ticketDomain.ErrInvalidSide
	}
	var out ticketDomain.Ticket
	res := r.db.WithContext(ctx).
		Where("loan_id = ? AND side = ?", loanID, side).
		First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return "", ticketDomain.ErrNotMinted
	}
	if res.Error != nil {
		return "", res.Error
	}
	return out.Owner, nil
}

func (r *TicketRegistry) Transfer(ctx context.Context, loanID uint64, side ticketDomain.Side, from, to string) error {
	if !side.Valid() {
		return ticketDomain.ErrInvalidSide
	}
	if to == "" {
		return ticketDomain.ErrInvalidRecipient
	}
	var out ticketDomain.Ticket
	res := lockForUpdate(r.db.WithContext(ctx)).
		Where("loan_id = ? AND side = ?", loanID, side).
		First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return ticketDomain.ErrNotMinted
	}
	if res.Error != nil {
		return res.Error
	}
	if out.Owner != from {
		return ticketDomain.ErrNotOwner
	}
	out.Owner = to
	return r.db.WithContext(ctx).Save(&out).Error
}

func (r *TicketRegistry) ListByOwner(ctx context.Context, owner string) ([]*ticketDomain.Ticket, error) {
	var out []*ticketDomain.Ticket
	res := r.db.WithContext(ctx).
		Where("owner = ?", owner).
		Order("loan_id ASC, side ASC").
		Find(&out)
	return out, res.Error
}
