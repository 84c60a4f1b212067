package loan

import (
	"context"
	"math/big"
	"time"

	"backed-protocol/internal/domain/custody"
	domain "backed-protocol/internal/domain/loan"
	"backed-protocol/internal/domain/protocol"
	"backed-protocol/internal/domain/ticket"
	"backed-protocol/internal/domain/uow"
	"backed-protocol/pkg/rate"
)

// Usecase is the loan ledger state machine. Every mutation runs inside a
// unit-of-work transaction together with its custody transfers: a rejected
// transfer rolls the whole operation back, so no fee is ever credited and no
// ticket ever minted for an operation that did not settle.
type Usecase struct {
	uow      uow.UnitOfWork
	custody  custody.Adapter
	settings *protocol.Settings
	now      func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, adapter custody.Adapter, settings *protocol.Settings) *Usecase {
	return &Usecase{uow: tx, custody: adapter, settings: settings, now: time.Now}
}

// SetNow overrides the ledger clock. Tests use it to drive accrual
// deterministically.
func (u *Usecase) SetNow(fn func() time.Time) {
	if fn != nil {
		u.now = fn
	}
}

func (u *Usecase) Create(ctx context.Context, in CreateLoanInput) (*LoanDTO, error) {
	if in.Caller == "" || in.CollateralAsset == "" || in.LoanAsset == "" || in.Recipient == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Amount == nil || in.Amount.Sign() <= 0 || in.DurationSeconds == 0 {
		return nil, domain.ErrInvalidInput
	}
	// Claims over loans cannot themselves be pawned; recursive
	// collateralization is a known exploit class.
	if u.settings.ForbiddenCollateral(in.CollateralAsset) {
		return nil, domain.ErrForbiddenCollateral
	}

	var dto *LoanDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := u.custody.CollateralIn(ctx, in.CollateralAsset, in.CollateralItemID, in.Caller); err != nil {
			return err
		}
		l := &domain.Loan{
			CollateralAsset:  in.CollateralAsset,
			CollateralItemID: in.CollateralItemID,
			LoanAsset:        in.LoanAsset,
			RatePerSecond:    in.RatePerSecond,
			DurationSeconds:  in.DurationSeconds,
		}
		l.LoanAmount.Set(in.Amount)
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		if err := r.Tickets.Mint(ctx, l.ID, ticket.SideBorrow, in.Recipient); err != nil {
			return err
		}
		dto = toDTO(l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (u *Usecase) Underwrite(ctx context.Context, loanID uint64, in UnderwriteInput) (*LoanDTO, error) {
	if in.Caller == "" || in.Amount == nil || in.Amount.Sign() <= 0 || in.DurationSeconds == 0 {
		return nil, domain.ErrInvalidInput
	}
	recipient := in.Recipient
	if recipient == "" {
		recipient = in.Caller
	}

	var dto *LoanDTO
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domain.Loan) error {
		if l.Closed {
			return domain.ErrClosed
		}
		// Slippage guard: the proposal must meet or beat the terms as they
		// stand right now, whether those are the listed or a previous
		// underwriter's terms.
		if in.RatePerSecond > l.RatePerSecond ||
			in.Amount.Cmp(l.LoanAmount.Int()) < 0 ||
			in.DurationSeconds < l.DurationSeconds {
			return domain.ErrTermsRejected
		}

		now := u.now().Unix()
		if !l.HasLender {
			return u.underwriteListed(ctx, r, l, in, recipient, now, &dto)
		}
		return u.buyOut(ctx, r, l, in, recipient, now, &dto)
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// underwriteListed funds a loan that never had a lender. The origination fee
// goes to the cash drawer; the net principal stays in ledger custody as the
// borrower's drawable balance.
func (u *Usecase) underwriteListed(ctx context.Context, r uow.Repos, l *domain.Loan, in UnderwriteInput, recipient string, now int64, out **LoanDTO) error {
	feeRate := u.settings.OriginationFeeRate()
	if err := u.custody.FundsIn(ctx, l.LoanAsset, in.Caller, in.Amount); err != nil {
		return err
	}
	if fee := rate.Fee(in.Amount, feeRate); fee.Sign() > 0 {
		if err := r.Drawer.Credit(ctx, l.LoanAsset, fee); err != nil {
			return err
		}
	}
	if err := r.Tickets.Mint(ctx, l.ID, ticket.SideLend, recipient); err != nil {
		return err
	}

	l.LoanAmount.Set(in.Amount)
	l.RatePerSecond = in.RatePerSecond
	l.DurationSeconds = in.DurationSeconds
	l.AccumulatedInterest.Set(big.NewInt(0))
	l.LastAccrualAt = now
	l.OriginationFeeRate = feeRate
	l.HasLender = true
	if err := r.Loans.Save(ctx, l); err != nil {
		return err
	}
	*out = toDTO(l)
	return nil
}

// buyOut displaces the current lender with strictly better terms. The old
// lender is made whole out of the new lender's funds; the fee applies only to
// the principal increase, never to the rolled-over amount.
func (u *Usecase) buyOut(ctx context.Context, r uow.Repos, l *domain.Loan, in UnderwriteInput, recipient string, now int64, out **LoanDTO) error {
	pct := u.settings.ImprovementPercent()
	oldAmount := l.LoanAmount.Int()
	improved := rate.AmountImprovedBy(oldAmount, in.Amount, pct) ||
		rate.ImprovedBy(l.RatePerSecond, in.RatePerSecond, pct, -1) ||
		rate.ImprovedBy(l.DurationSeconds, in.DurationSeconds, pct, +1)
	if !improved {
		return domain.ErrInsufficientImprovement
	}

	interestOwed := u.interestOwed(l, now)
	oldLender, err := r.Tickets.OwnerOf(ctx, l.ID, ticket.SideLend)
	if err != nil {
		return err
	}

	if err := u.custody.FundsIn(ctx, l.LoanAsset, in.Caller, in.Amount); err != nil {
		return err
	}
	payout := new(big.Int).Add(oldAmount, interestOwed)
	if err := u.custody.FundsOut(ctx, l.LoanAsset, oldLender, payout); err != nil {
		return err
	}
	increase := new(big.Int).Sub(in.Amount, oldAmount)
	if fee := rate.Fee(increase, u.settings.OriginationFeeRate()); fee.Sign() > 0 {
		if err := r.Drawer.Credit(ctx, l.LoanAsset, fee); err != nil {
			return err
		}
	}
	if err := r.Tickets.Transfer(ctx, l.ID, ticket.SideLend, oldLender, recipient); err != nil {
		return err
	}

	l.LoanAmount.Set(in.Amount)
	l.RatePerSecond = in.RatePerSecond
	l.DurationSeconds = in.DurationSeconds
	l.AccumulatedInterest.Set(interestOwed)
	l.LastAccrualAt = now
	if err := r.Loans.Save(ctx, l); err != nil {
		return err
	}
	*out = toDTO(l)
	return nil
}

// Draw releases undisbursed principal to the borrower side. The cap is the
// principal net of the origination fee captured when the loan was first
// underwritten.
func (u *Usecase) Draw(ctx context.Context, loanID uint64, in DrawInput) (*LoanDTO, error) {
	if in.Caller == "" || in.Amount == nil || in.Amount.Sign() <= 0 {
		return nil, domain.ErrInvalidInput
	}
	recipient := in.Recipient
	if recipient == "" {
		recipient = in.Caller
	}

	var dto *LoanDTO
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domain.Loan) error {
		if l.Closed {
			return domain.ErrClosed
		}
		borrower, err := r.Tickets.OwnerOf(ctx, l.ID, ticket.SideBorrow)
		if err != nil {
			return err
		}
		if borrower != in.Caller {
			return domain.ErrNotBorrower
		}
		drawn := new(big.Int).Add(l.AmountDrawn.Int(), in.Amount)
		if drawn.Cmp(u.drawable(l)) > 0 {
			return domain.ErrInsufficientDrawable
		}
		if err := u.custody.FundsOut(ctx, l.LoanAsset, recipient, in.Amount); err != nil {
			return err
		}
		l.AmountDrawn.Set(drawn)
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		dto = toDTO(l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// RepayAndClose settles the loan: the borrower pays principal plus interest,
// the lend ticket holder is paid directly, and the collateral returns to the
// borrow ticket holder.
func (u *Usecase) RepayAndClose(ctx context.Context, loanID uint64, caller string) (*LoanDTO, error) {
	if caller == "" {
		return nil, domain.ErrInvalidInput
	}
	var dto *LoanDTO
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domain.Loan) error {
		if l.Closed {
			return domain.ErrClosed
		}
		// Resolving the lend ticket also covers the no-lender case: a loan
		// that was never underwritten has no lend ticket to pay.
		lender, err := r.Tickets.OwnerOf(ctx, l.ID, ticket.SideLend)
		if err != nil {
			return err
		}
		borrower, err := r.Tickets.OwnerOf(ctx, l.ID, ticket.SideBorrow)
		if err != nil {
			return err
		}
		if borrower != caller {
			return domain.ErrNotBorrower
		}

		now := u.now().Unix()
		interestOwed := u.interestOwed(l, now)
		total := new(big.Int).Add(l.LoanAmount.Int(), interestOwed)
		if err := u.custody.FundsIn(ctx, l.LoanAsset, caller, total); err != nil {
			return err
		}
		if err := u.custody.FundsOut(ctx, l.LoanAsset, lender, total); err != nil {
			return err
		}
		if err := u.custody.CollateralOut(ctx, l.CollateralAsset, l.CollateralItemID, borrower); err != nil {
			return err
		}

		l.AccumulatedInterest.Set(interestOwed)
		l.LastAccrualAt = now
		l.AmountDrawn.Set(big.NewInt(0))
		l.Closed = true
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		dto = toDTO(l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// SeizeCollateral is the lender's default remedy once the loan term has run
// out without repayment.
func (u *Usecase) SeizeCollateral(ctx context.Context, loanID uint64, caller, recipient string) (*LoanDTO, error) {
	if caller == "" {
		return nil, domain.ErrInvalidInput
	}
	if recipient == "" {
		recipient = caller
	}
	var dto *LoanDTO
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domain.Loan) error {
		if l.Closed {
			return domain.ErrClosed
		}
		lender, err := r.Tickets.OwnerOf(ctx, l.ID, ticket.SideLend)
		if err != nil {
			return err
		}
		if lender != caller {
			return domain.ErrNotLender
		}
		if u.now().Unix() < l.LastAccrualAt+int64(l.DurationSeconds) {
			return domain.ErrPaymentNotLate
		}
		if err := u.custody.CollateralOut(ctx, l.CollateralAsset, l.CollateralItemID, recipient); err != nil {
			return err
		}
		l.Closed = true
		l.CollateralSeized = true
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		dto = toDTO(l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Close withdraws a listing that never attracted a lender and returns the
// collateral. Once underwritten the loan can only end via repay or seizure.
func (u *Usecase) Close(ctx context.Context, loanID uint64, caller, recipient string) (*LoanDTO, error) {
	if caller == "" {
		return nil, domain.ErrInvalidInput
	}
	if recipient == "" {
		recipient = caller
	}
	var dto *LoanDTO
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domain.Loan) error {
		if l.Closed {
			return domain.ErrClosed
		}
		if l.HasLender {
			return domain.ErrHasLender
		}
		borrower, err := r.Tickets.OwnerOf(ctx, l.ID, ticket.SideBorrow)
		if err != nil {
			return err
		}
		if borrower != caller {
			return domain.ErrNotBorrower
		}
		if err := u.custody.CollateralOut(ctx, l.CollateralAsset, l.CollateralItemID, recipient); err != nil {
			return err
		}
		l.Closed = true
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		dto = toDTO(l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (u *Usecase) Get(ctx context.Context, loanID uint64) (*LoanDTO, error) {
	var dto *LoanDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByID(ctx, loanID)
		if err != nil {
			return err
		}
		dto = toDTO(l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// InterestOwed reports the live payoff cost at the caller-observed clock
// without mutating the checkpoint.
func (u *Usecase) InterestOwed(ctx context.Context, loanID uint64) (*InterestDTO, error) {
	var dto *InterestDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByID(ctx, loanID)
		if err != nil {
			return err
		}
		owed := big.NewInt(0)
		if l.HasLender && !l.Closed {
			owed = u.interestOwed(l, u.now().Unix())
		}
		dto = &InterestDTO{
			LoanID:       l.ID,
			InterestOwed: owed.String(),
			TotalOwed:    new(big.Int).Add(l.LoanAmount.Int(), owed).String(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (u *Usecase) ListOpenByCollateral(ctx context.Context, asset string) ([]*LoanDTO, error) {
	var dtos []*LoanDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		loans, err := r.Loans.ListOpenByCollateral(ctx, asset)
		if err != nil {
			return err
		}
		dtos = make([]*LoanDTO, 0, len(loans))
		for _, l := range loans {
			dtos = append(dtos, toDTO(l))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dtos, nil
}

// interestOwed folds the interest accrued since the checkpoint on top of the
// frozen amount. Elapsed time clamps at zero: the checkpoint never lies in
// the future under a monotonic host clock, but a clamped subtraction keeps
// the math total.
func (u *Usecase) interestOwed(l *domain.Loan, now int64) *big.Int {
	var elapsed uint64
	if now > l.LastAccrualAt {
		elapsed = uint64(now - l.LastAccrualAt)
	}
	delta := rate.Accrue(l.LoanAmount.Int(), l.RatePerSecond, elapsed)
	return delta.Add(delta, l.AccumulatedInterest.Int())
}

// drawable is the cap on lifetime principal released to the borrower side:
// the current principal net of the origination fee captured at first
// underwrite. Zero until a lender funds the loan.
func (u *Usecase) drawable(l *domain.Loan) *big.Int {
	if !l.HasLender {
		return big.NewInt(0)
	}
	amount := l.LoanAmount.Int()
	return amount.Sub(amount, rate.Fee(l.LoanAmount.Int(), l.OriginationFeeRate))
}
