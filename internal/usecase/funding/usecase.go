// Package funding is the funding engine: it applies investor
// contributions to open loans and releases them again, keeping the
// loan's funding record, the investments and the loan status consistent
// inside one locked unit of work per call.
package funding

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/audit"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/investment"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/ledger"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/loan"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/uow"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/user"
	"github.com/nancy-13-hue/p2p-lending-database/internal/observability"
	"github.com/nancy-13-hue/p2p-lending-database/internal/usecase/record"
	"github.com/nancy-13-hue/p2p-lending-database/pkg/id"
)

const (
	opApplyInvestment    = "apply_investment"
	opWithdrawInvestment = "withdraw_investment"
)

var hundred = decimal.NewFromInt(100)

type Usecase struct {
	loanRepo       loan.Repository
	investmentRepo investment.Repository
	uow            uow.UnitOfWork
	metrics        *observability.Metrics
	attempts       int
	log            zerolog.Logger
}

// NewUsecase: repos are for unlocked pre-reads only; every mutation runs
// through the UoW. retryAttempts bounds deadlock retries per call.
func NewUsecase(loans loan.Repository, investments investment.Repository, tx uow.UnitOfWork, m *observability.Metrics, retryAttempts int) *Usecase {
	if retryAttempts < 1 {
		retryAttempts = 3
	}
	return &Usecase{
		loanRepo:       loans,
		investmentRepo: investments,
		uow:            tx,
		metrics:        m,
		attempts:       retryAttempts,
		log:            observability.NewLogger("funding"),
	}
}

// ApplyInvestment books one contribution against a loan. The whole
// read-modify-write runs under the loan's row lock: capacity check,
// investment insert, funding totals, ownership recompute, the
// Open→Funded transition when the target is reached, and the ledger and
// audit rows. Concurrent calls against the same loan serialize; the sum
// of Active investments never exceeds the requested principal.
func (u *Usecase) ApplyInvestment(ctx context.Context, in ApplyInvestmentInput) (*InvestmentDTO, error) {
	start := time.Now()
	if err := in.validate(); err != nil {
		u.metrics.Rejected(opApplyInvestment, record.FailureReason(err))
		return nil, err
	}

	var (
		dto         *InvestmentDTO
		fullyFunded bool
	)
	err := uow.RetryLoanTx(ctx, u.uow, u.attempts, in.LoanID, func(r uow.Repos, l *loan.Loan) error {
		// On retry the closure starts over against fresh state.
		dto, fullyFunded = nil, false

		investor, err := r.Users.GetByUserID(ctx, in.InvestorID)
		if err != nil {
			return fmt.Errorf("investor: %w", err)
		}
		if investor.Role != user.RoleInvestor {
			return fmt.Errorf("%w: user %s has role %s, want investor", loan.ErrInvalidInput, in.InvestorID, investor.Role)
		}
		if !investor.CanTransact() {
			return fmt.Errorf("%w: investor %s is %s", user.ErrAccountInactive, in.InvestorID, investor.AccountStatus)
		}
		actingID, err := record.ResolveActor(ctx, r, investor, in.ActingUserID)
		if err != nil {
			return err
		}

		// State guard: only Open/Funded loans accept money.
		if !loan.AcceptsFunding(l.Status) {
			return fmt.Errorf("%w: loan %s is %s", loan.ErrInvalidState, l.LoanID, l.Status)
		}

		f, err := r.Fundings.GetByLoanID(ctx, l.ID)
		if err != nil {
			return err
		}
		remaining := f.TotalRequired.Sub(f.TotalFunded)
		if in.Amount.GreaterThan(remaining) {
			return fmt.Errorf("%w: amount %s exceeds remaining requirement %s", loan.ErrInvalidInput, in.Amount, remaining)
		}

		inv := &investment.Investment{
			InvestmentID:     id.NewID32(),
			InvestorID:       investor.ID,
			LoanID:           l.ID,
			InvestedAmount:   in.Amount,
			OwnershipPercent: sharePercent(in.Amount, f.TotalRequired),
			Status:           investment.StatusActive,
		}
		if err := r.Investments.Create(ctx, inv); err != nil {
			return err
		}

		f.TotalFunded = f.TotalFunded.Add(in.Amount)
		f.RecomputeStatus()
		if err := r.Fundings.Save(ctx, f); err != nil {
			return err
		}
		if err := refreshOwnership(ctx, r, l.ID, f.TotalRequired); err != nil {
			return err
		}

		l.FundedAmount = f.TotalFunded
		if f.Reached() && l.Status == loan.StatusOpen {
			if err := record.StatusChange(ctx, r, l, loan.StatusFunded, actingID, "funding target reached"); err != nil {
				return err
			}
			fullyFunded = true
		} else if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}

		if err := record.Transaction(ctx, r, record.Movement{
			UserID:       investor.ID,
			LoanID:       &l.ID,
			InvestmentID: &inv.ID,
			Type:         ledger.TypeInvestment,
			Amount:       in.Amount,
		}); err != nil {
			return err
		}
		if err := record.Audit(ctx, r, audit.ActionInvestmentMade, audit.EntityInvestment, inv.InvestmentID, actingID,
			fmt.Sprintf("loan=%s amount=%s", l.LoanID, in.Amount)); err != nil {
			return err
		}

		dto = &InvestmentDTO{
			InvestmentID:     inv.InvestmentID,
			LoanID:           l.LoanID,
			InvestorID:       investor.UserID,
			InvestedAmount:   inv.InvestedAmount,
			OwnershipPercent: inv.OwnershipPercent,
			TotalRequired:    f.TotalRequired,
			TotalFunded:      f.TotalFunded,
			FundingStatus:    string(f.FundingStatus),
			LoanStatus:       string(l.Status),
			CreatedAt:        inv.CreatedAt,
		}
		return nil
	})
	if err != nil {
		u.metrics.Rejected(opApplyInvestment, record.FailureReason(err))
		return nil, err
	}

	u.metrics.Applied(opApplyInvestment)
	u.metrics.Observe(opApplyInvestment, start)
	if fullyFunded {
		u.metrics.Transition(string(loan.StatusOpen), string(loan.StatusFunded))
	}
	u.log.Info().
		Str("loan_id", dto.LoanID).
		Str("investment_id", dto.InvestmentID).
		Str("amount", dto.InvestedAmount.String()).
		Str("funding_status", dto.FundingStatus).
		Msg("investment applied")
	return dto, nil
}

// WithdrawInvestment releases an Active investment back to its owner and
// rolls the loan's funding position back by the released amount. If that
// drops a still-Funded loan below its requirement the loan reverts to
// Open; loans already Active or settled keep their status.
func (u *Usecase) WithdrawInvestment(ctx context.Context, in WithdrawInput) (*WithdrawalDTO, error) {
	start := time.Now()
	if err := in.validate(); err != nil {
		u.metrics.Rejected(opWithdrawInvestment, record.FailureReason(err))
		return nil, err
	}

	// Unlocked pre-read only to learn which loan row to lock. Every
	// guard reruns on locked state inside the transaction.
	peek, err := u.investmentRepo.GetByInvestmentID(ctx, in.InvestmentID)
	if err != nil {
		u.metrics.Rejected(opWithdrawInvestment, record.FailureReason(err))
		return nil, err
	}
	owner, err := u.loanRepo.GetByID(ctx, peek.LoanID)
	if err != nil {
		u.metrics.Rejected(opWithdrawInvestment, record.FailureReason(err))
		return nil, err
	}

	var (
		dto      *WithdrawalDTO
		reverted bool
	)
	err = uow.RetryLoanTx(ctx, u.uow, u.attempts, owner.LoanID, func(r uow.Repos, l *loan.Loan) error {
		dto, reverted = nil, false

		inv, err := r.Investments.GetByInvestmentIDForUpdate(ctx, in.InvestmentID)
		if err != nil {
			return err
		}
		investor, err := r.Users.GetByUserID(ctx, in.InvestorID)
		if err != nil {
			return fmt.Errorf("investor: %w", err)
		}
		actingID, err := record.ResolveActor(ctx, r, investor, in.ActingUserID)
		if err != nil {
			return err
		}

		if inv.InvestorID != investor.ID {
			return fmt.Errorf("%w: investment %s does not belong to %s", investment.ErrInvalidWithdrawal, in.InvestmentID, in.InvestorID)
		}
		if inv.Status != investment.StatusActive {
			return fmt.Errorf("%w: investment %s is %s", investment.ErrInvalidWithdrawal, in.InvestmentID, inv.Status)
		}

		released := inv.InvestedAmount
		inv.Status = investment.StatusWithdrawn
		inv.InvestedAmount = decimal.Zero
		inv.OwnershipPercent = decimal.Zero
		inv.IsForSale = false
		inv.ListedPrice = decimal.NullDecimal{}
		if err := r.Investments.Save(ctx, inv); err != nil {
			return err
		}

		f, err := r.Fundings.GetByLoanID(ctx, l.ID)
		if err != nil {
			return err
		}
		f.TotalFunded = f.TotalFunded.Sub(released)
		if f.TotalFunded.IsNegative() {
			f.TotalFunded = decimal.Zero
		}
		f.RecomputeStatus()
		if err := r.Fundings.Save(ctx, f); err != nil {
			return err
		}

		l.FundedAmount = f.TotalFunded
		// Reversion applies only during the funding phase.
		if !f.Reached() && l.Status == loan.StatusFunded {
			if err := record.StatusChange(ctx, r, l, loan.StatusOpen, actingID, "funding dropped below requirement"); err != nil {
				return err
			}
			reverted = true
		} else if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}

		if err := record.Transaction(ctx, r, record.Movement{
			UserID:       investor.ID,
			LoanID:       &l.ID,
			InvestmentID: &inv.ID,
			Type:         ledger.TypeWithdrawal,
			Amount:       released,
		}); err != nil {
			return err
		}
		if err := record.Audit(ctx, r, audit.ActionWithdrawal, audit.EntityInvestment, inv.InvestmentID, actingID,
			fmt.Sprintf("loan=%s amount=%s", l.LoanID, released)); err != nil {
			return err
		}

		dto = &WithdrawalDTO{
			InvestmentID:   inv.InvestmentID,
			LoanID:         l.LoanID,
			AmountReleased: released,
			TotalFunded:    f.TotalFunded,
			FundingStatus:  string(f.FundingStatus),
			LoanStatus:     string(l.Status),
		}
		return nil
	})
	if err != nil {
		u.metrics.Rejected(opWithdrawInvestment, record.FailureReason(err))
		return nil, err
	}

	u.metrics.Applied(opWithdrawInvestment)
	u.metrics.Observe(opWithdrawInvestment, start)
	if reverted {
		u.metrics.Transition(string(loan.StatusFunded), string(loan.StatusOpen))
	}
	u.log.Info().
		Str("loan_id", dto.LoanID).
		Str("investment_id", dto.InvestmentID).
		Str("amount_released", dto.AmountReleased.String()).
		Str("loan_status", dto.LoanStatus).
		Msg("investment withdrawn")
	return dto, nil
}

func (in ApplyInvestmentInput) validate() error {
	if !id.IsID32(in.LoanID) || !id.IsID32(in.InvestorID) || !id.IsID32(in.ActingUserID) {
		return fmt.Errorf("%w: ids must be 32-char hex", loan.ErrInvalidInput)
	}
	if !in.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", loan.ErrInvalidInput, in.Amount)
	}
	return nil
}

func (in WithdrawInput) validate() error {
	if !id.IsID32(in.InvestmentID) || !id.IsID32(in.InvestorID) || !id.IsID32(in.ActingUserID) {
		return fmt.Errorf("%w: ids must be 32-char hex", loan.ErrInvalidInput)
	}
	return nil
}

// sharePercent is amount/total*100 rounded to 2dp. total is never zero:
// origination rejects non-positive principals.
func sharePercent(amount, total decimal.Decimal) decimal.Decimal {
	return amount.Div(total).Mul(hundred).Round(2)
}

// refreshOwnership recomputes ownership_percent for every Active
// investment of the loan and saves only the rows whose share changed.
func refreshOwnership(ctx context.Context, r uow.Repos, loanID uint64, total decimal.Decimal) error {
	list, err := r.Investments.ListActiveByLoan(ctx, loanID)
	if err != nil {
		return err
	}
	for i := range list {
		pct := sharePercent(list[i].InvestedAmount, total)
		if pct.Equal(list[i].OwnershipPercent) {
			continue
		}
		list[i].OwnershipPercent = pct
		if err := r.Investments.Save(ctx, &list[i]); err != nil {
			return err
		}
	}
	return nil
}
