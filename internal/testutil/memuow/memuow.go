package memuow

import (
	"context"
	"math/big"
	"sort"
	"sync"

	"backed-protocol/internal/domain/drawer"
	"backed-protocol/internal/domain/loan"
	"backed-protocol/internal/domain/ticket"
	"backed-protocol/internal/domain/uow"
	"backed-protocol/pkg/numeric"
)

var _ uow.UnitOfWork = (*UoW)(nil)

type ticketKey struct {
	loanID uint64
	side   ticket.Side
}

// UoW is a map-backed unit of work for usecase tests. A failing transaction
// restores the pre-transaction snapshot, mirroring a database rollback.
type UoW struct {
	mu      sync.Mutex
	nextID  uint64
	loans   map[uint64]*loan.Loan
	tickets map[ticketKey]*ticket.Ticket
	drawer  map[string]*big.Int
}

func New() *UoW {
	return &UoW{
		nextID:  1,
		loans:   make(map[uint64]*loan.Loan),
		tickets: make(map[ticketKey]*ticket.Ticket),
		drawer:  make(map[string]*big.Int),
	}
}

func cloneLoan(l *loan.Loan) *loan.Loan {
	c := *l
	c.LoanAmount = numeric.NewBigInt(l.LoanAmount.Int())
	c.AccumulatedInterest = numeric.NewBigInt(l.AccumulatedInterest.Int())
	c.AmountDrawn = numeric.NewBigInt(l.AmountDrawn.Int())
	return &c
}

func (u *UoW) snapshot() (map[uint64]*loan.Loan, map[ticketKey]*ticket.Ticket, map[string]*big.Int, uint64) {
	loans := make(map[uint64]*loan.Loan, len(u.loans))
	for id, l := range u.loans {
		loans[id] = cloneLoan(l)
	}
	tickets := make(map[ticketKey]*ticket.Ticket, len(u.tickets))
	for k, t := range u.tickets {
		c := *t
		tickets[k] = &c
	}
	balances := make(map[string]*big.Int, len(u.drawer))
	for asset, b := range u.drawer {
		balances[asset] = new(big.Int).Set(b)
	}
	return loans, tickets, balances, u.nextID
}

func (u *UoW) repos() uow.Repos {
	return uow.Repos{
		Loans:   &loanRepo{u: u},
		Tickets: &ticketRegistry{u: u},
		Drawer:  &drawerRepo{u: u},
	}
}

func (u *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	loans, tickets, balances, next := u.snapshot()
	if err := fn(u.repos()); err != nil {
		u.loans, u.tickets, u.drawer, u.nextID = loans, tickets, balances, next
		return err
	}
	return nil
}

func (u *UoW) WithinLoanTx(ctx context.Context, loanID uint64, fn func(r uow.Repos, l *loan.Loan) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	stored, ok := u.loans[loanID]
	if !ok {
		return loan.ErrNotFound
	}
	loans, tickets, balances, next := u.snapshot()
	if err := fn(u.repos(), cloneLoan(stored)); err != nil {
		u.loans, u.tickets, u.drawer, u.nextID = loans, tickets, balances, next
		return err
	}
	return nil
}

// Loan returns a copy of the stored loan, for assertions outside a tx.
func (u *UoW) Loan(id uint64) (*loan.Loan, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	l, ok := u.loans[id]
	if !ok {
		return nil, false
	}
	return cloneLoan(l), true
}

// Owner returns the current claim owner, or "" when not minted.
func (u *UoW) Owner(loanID uint64, side ticket.Side) string {
	u.mu.Lock()
	defer u.mu.Unlock()
	t, ok := u.tickets[ticketKey{loanID, side}]
	if !ok {
		return ""
	}
	return t.Owner
}

// DrawerBalance returns the accumulated fee balance for asset.
func (u *UoW) DrawerBalance(asset string) *big.Int {
	u.mu.Lock()
	defer u.mu.Unlock()
	b, ok := u.drawer[asset]
	if !ok {
		return new(big.Int)
	}
	return new(big.Int).Set(b)
}

type loanRepo struct{ u *UoW }

func (r *loanRepo) Create(ctx context.Context, l *loan.Loan) error {
	l.ID = r.u.nextID
	r.u.nextID++
	r.u.loans[l.ID] = cloneLoan(l)
	return nil
}

func (r *loanRepo) GetByID(ctx context.Context, id uint64) (*loan.Loan, error) {
	l, ok := r.u.loans[id]
	if !ok {
		return nil, loan.ErrNotFound
	}
	return cloneLoan(l), nil
}

func (r *loanRepo) GetByIDForUpdate(ctx context.Context, id uint64) (*loan.Loan, error) {
	return r.GetByID(ctx, id)
}

func (r *loanRepo) Save(ctx context.Context, l *loan.Loan) error {
	if _, ok := r.u.loans[l.ID]; !ok {
		return loan.ErrNotFound
	}
	r.u.loans[l.ID] = cloneLoan(l)
	return nil
}

func (r *loanRepo) ListOpenByCollateral(ctx context.Context, asset string) ([]*loan.Loan, error) {
	var out []*loan.Loan
	for _, l := range r.u.loans {
		if l.CollateralAsset == asset && !l.Closed {
			out = append(out, cloneLoan(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type ticketRegistry struct{ u *UoW }

func (r *ticketRegistry) Mint(ctx context.Context, loanID uint64, side ticket.Side, owner string) error {
	k := ticketKey{loanID, side}
	if _, ok := r.u.tickets[k]; ok {
		return ticket.ErrAlreadyMinted
	}
	r.u.tickets[k] = &ticket.Ticket{LoanID: loanID, Side: side, Owner: owner}
	return nil
}

func (r *ticketRegistry) OwnerOf(ctx context.Context, loanID uint64, side ticket.Side) (string, error) {
	t, ok := r.u.tickets[ticketKey{loanID, side}]
	if !ok {
		return "", ticket.ErrNotMinted
	}
	return t.Owner, nil
}

func (r *ticketRegistry) Transfer(ctx context.Context, loanID uint64, side ticket.Side, from, to string) error {
	if to == "" {
		return ticket.ErrInvalidRecipient
	}
	t, ok := r.u.tickets[ticketKey{loanID, side}]
	if !ok {
		return ticket.ErrNotMinted
	}
	if t.Owner != from {
		return ticket.ErrNotOwner
	}
	t.Owner = to
	return nil
}

func (r *ticketRegistry) ListByOwner(ctx context.Context, owner string) ([]*ticket.Ticket, error) {
	var out []*ticket.Ticket
	for _, t := range r.u.tickets {
		if t.Owner == owner {
			c := *t
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LoanID != out[j].LoanID {
			return out[i].LoanID < out[j].LoanID
		}
		return out[i].Side < out[j].Side
	})
	return out, nil
}

type drawerRepo struct{ u *UoW }

func (r *drawerRepo) Get(ctx context.Context, asset string) (*drawer.Balance, error) {
	b, ok := r.u.drawer[asset]
	if !ok {
		return &drawer.Balance{Asset: asset}, nil
	}
	return &drawer.Balance{Asset: asset, Balance: numeric.NewBigInt(b)}, nil
}

func (r *drawerRepo) Credit(ctx context.Context, asset string, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return drawer.ErrInvalidAmount
	}
	b, ok := r.u.drawer[asset]
	if !ok {
		b = new(big.Int)
		r.u.drawer[asset] = b
	}
	b.Add(b, amount)
	return nil
}

func (r *drawerRepo) Debit(ctx context.Context, asset string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return drawer.ErrInvalidAmount
	}
	b, ok := r.u.drawer[asset]
	if !ok || b.Cmp(amount) < 0 {
		return drawer.ErrInsufficientFunds
	}
	b.Sub(b, amount)
	return nil
}
