package ticket

import "context"

// Registry is the ownership registry for one-or-both claim sides. Ownership
// is exclusive per (loan, side); the unique index backs the invariant.
type Registry interface {
	// Mint records the first owner. Fails with ErrAlreadyMinted if the
	// (loan, side) pair already has one.
	Mint(ctx context.Context, loanID uint64, side Side, owner string) error
	// OwnerOf fails with ErrNotMinted if the claim was never minted. Callers
	// must re-resolve ownership at every operation; claims transfer freely
	// outside ledger operations.
	OwnerOf(ctx context.Context, loanID uint64, side Side) (string, error)
	// Transfer fails with ErrNotOwner unless from is the current owner and
	// with ErrInvalidRecipient when to is empty.
	Transfer(ctx context.Context, loanID uint64, side Side, from, to string) error
	ListByOwner(ctx context.Context, owner string) ([]*Ticket, error)
}
