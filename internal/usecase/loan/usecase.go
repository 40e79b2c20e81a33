// Package loan originates loans and drives the operator-owned status
// edges. Origination writes the loan, its funding record and the full
// repayment schedule in one transaction; the EMI is computed once here
// and never recomputed.
package loan

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/audit"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/installment"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/loan"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/uow"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/user"
	"github.com/nancy-13-hue/p2p-lending-database/internal/emi"
	"github.com/nancy-13-hue/p2p-lending-database/internal/observability"
	"github.com/nancy-13-hue/p2p-lending-database/internal/usecase/record"
	"github.com/nancy-13-hue/p2p-lending-database/pkg/id"
)

const (
	opCreateLoan   = "create_loan"
	opChangeStatus = "change_status"
)

type Usecase struct {
	loanRepo    loan.Repository
	fundingRepo loan.FundingRepository
	userRepo    user.Repository
	uow         uow.UnitOfWork
	metrics     *observability.Metrics
	attempts    int
	log         zerolog.Logger
}

func NewUsecase(loans loan.Repository, fundings loan.FundingRepository, users user.Repository, tx uow.UnitOfWork, m *observability.Metrics, retryAttempts int) *Usecase {
	if retryAttempts < 1 {
		retryAttempts = 3
	}
	return &Usecase{
		loanRepo:    loans,
		fundingRepo: fundings,
		userRepo:    users,
		uow:         tx,
		metrics:     m,
		attempts:    retryAttempts,
		log:         observability.NewLogger("loan"),
	}
}

// Create originates a loan: computes the EMI from principal, annual rate
// and duration, then inserts the loan (Open, unfunded), its funding
// record and the full schedule of monthly installments atomically.
func (u *Usecase) Create(ctx context.Context, in CreateLoanInput) (*LoanDTO, error) {
	start := time.Now()
	if err := in.validate(); err != nil {
		u.metrics.Rejected(opCreateLoan, record.FailureReason(err))
		return nil, err
	}

	installmentAmount, err := emi.Calculate(in.AmountRequested, in.InterestRate, in.DurationMonths)
	if err != nil {
		err = fmt.Errorf("%w: %v", loan.ErrInvalidInput, err)
		u.metrics.Rejected(opCreateLoan, record.FailureReason(err))
		return nil, err
	}

	var dto *LoanDTO
	txErr := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		dto = nil

		borrower, err := r.Users.GetByUserID(ctx, in.BorrowerID)
		if err != nil {
			return fmt.Errorf("borrower: %w", err)
		}
		if borrower.Role != user.RoleBorrower {
			return fmt.Errorf("%w: user %s has role %s, want borrower", loan.ErrInvalidInput, in.BorrowerID, borrower.Role)
		}
		if !borrower.CanTransact() {
			return fmt.Errorf("%w: borrower %s is %s", user.ErrAccountInactive, in.BorrowerID, borrower.AccountStatus)
		}
		actingID, err := record.ResolveActor(ctx, r, borrower, in.ActingUserID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		l := &loan.Loan{
			LoanID:          id.NewID32(),
			BorrowerID:      borrower.ID,
			AmountRequested: in.AmountRequested,
			InterestRate:    in.InterestRate,
			DurationMonths:  in.DurationMonths,
			EMIAmount:       installmentAmount,
			FundedAmount:    decimal.Zero,
			Status:          loan.StatusOpen,
			StatusUpdatedAt: now,
		}
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}

		f := &loan.FundingRecord{
			LoanID:        l.ID,
			TotalRequired: in.AmountRequested,
			TotalFunded:   decimal.Zero,
			FundingStatus: loan.FundingPartial,
		}
		if err := r.Fundings.Create(ctx, f); err != nil {
			return err
		}

		// Schedule rows 1..n, due monthly from origination.
		rows := make([]installment.Installment, in.DurationMonths)
		for i := range rows {
			rows[i] = installment.Installment{
				InstallmentID:     id.NewID32(),
				LoanID:            l.ID,
				InstallmentNumber: i + 1,
				DueDate:           now.AddDate(0, i+1, 0),
				AmountDue:         installmentAmount,
				AmountPaid:        decimal.Zero,
				Status:            installment.StatusPending,
			}
		}
		if err := r.Installments.CreateBatch(ctx, rows); err != nil {
			return err
		}

		if err := record.Audit(ctx, r, audit.ActionLoanCreated, audit.EntityLoan, l.LoanID, actingID,
			fmt.Sprintf("amount=%s rate=%s months=%d emi=%s", in.AmountRequested, in.InterestRate, in.DurationMonths, installmentAmount)); err != nil {
			return err
		}

		dto = toDTO(l, f, borrower.UserID)
		return nil
	})
	if txErr != nil {
		u.metrics.Rejected(opCreateLoan, record.FailureReason(txErr))
		return nil, txErr
	}

	u.metrics.Applied(opCreateLoan)
	u.metrics.Observe(opCreateLoan, start)
	u.log.Info().
		Str("loan_id", dto.LoanID).
		Str("borrower_id", dto.BorrowerID).
		Str("amount", dto.AmountRequested.String()).
		Str("emi", dto.EMIAmount.String()).
		Msg("loan originated")
	return dto, nil
}

// Get returns one loan with its funding progress.
func (u *Usecase) Get(ctx context.Context, loanID string) (*LoanDTO, error) {
	l, err := u.loanRepo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	f, err := u.fundingRepo.GetByLoanID(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	borrower, err := u.userRepo.GetByID(ctx, l.BorrowerID)
	if err != nil {
		return nil, err
	}
	return toDTO(l, f, borrower.UserID), nil
}

// ChangeStatus drives the operator-owned edges: Cancelled, Defaulted and
// Completed. Engine-driven statuses (Funded, Active and the Open
// reversion) cannot be set here; the edge itself is validated by the
// shared transition step.
func (u *Usecase) ChangeStatus(ctx context.Context, in ChangeStatusInput) (*LoanDTO, error) {
	start := time.Now()
	to := loan.Status(in.NewStatus)
	if err := in.validate(to); err != nil {
		u.metrics.Rejected(opChangeStatus, record.FailureReason(err))
		return nil, err
	}

	var (
		dto  *LoanDTO
		from loan.Status
	)
	err := uow.RetryLoanTx(ctx, u.uow, u.attempts, in.LoanID, func(r uow.Repos, l *loan.Loan) error {
		dto, from = nil, l.Status

		actor, err := r.Users.GetByUserID(ctx, in.ActingUserID)
		if err != nil {
			return fmt.Errorf("acting user: %w", err)
		}
		if !actor.CanTransact() {
			return fmt.Errorf("%w: acting user %s is %s", user.ErrAccountInactive, in.ActingUserID, actor.AccountStatus)
		}

		if err := record.StatusChange(ctx, r, l, to, actor.ID, in.Remarks); err != nil {
			return err
		}

		f, err := r.Fundings.GetByLoanID(ctx, l.ID)
		if err != nil {
			return err
		}
		borrower, err := r.Users.GetByID(ctx, l.BorrowerID)
		if err != nil {
			return err
		}
		dto = toDTO(l, f, borrower.UserID)
		return nil
	})
	if err != nil {
		u.metrics.Rejected(opChangeStatus, record.FailureReason(err))
		return nil, err
	}

	u.metrics.Applied(opChangeStatus)
	u.metrics.Observe(opChangeStatus, start)
	u.metrics.Transition(string(from), string(to))
	u.log.Info().
		Str("loan_id", dto.LoanID).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("loan status changed")
	return dto, nil
}

func (in CreateLoanInput) validate() error {
	if !id.IsID32(in.BorrowerID) || !id.IsID32(in.ActingUserID) {
		return fmt.Errorf("%w: ids must be 32-char hex", loan.ErrInvalidInput)
	}
	if !in.AmountRequested.IsPositive() {
		return fmt.Errorf("%w: amount_requested must be positive, got %s", loan.ErrInvalidInput, in.AmountRequested)
	}
	if in.InterestRate.IsNegative() {
		return fmt.Errorf("%w: interest_rate must not be negative, got %s", loan.ErrInvalidInput, in.InterestRate)
	}
	if in.DurationMonths < 1 {
		return fmt.Errorf("%w: duration_months must be >= 1, got %d", loan.ErrInvalidInput, in.DurationMonths)
	}
	return nil
}

// operator-ownable target statuses
var operatorEdges = map[loan.Status]bool{
	loan.StatusCancelled: true,
	loan.StatusDefaulted: true,
	loan.StatusCompleted: true,
}

func (in ChangeStatusInput) validate(to loan.Status) error {
	if !id.IsID32(in.LoanID) || !id.IsID32(in.ActingUserID) {
		return fmt.Errorf("%w: ids must be 32-char hex", loan.ErrInvalidInput)
	}
	if !loan.ValidStatus(to) {
		return fmt.Errorf("%w: unknown status %q", loan.ErrInvalidInput, in.NewStatus)
	}
	if !operatorEdges[to] {
		return fmt.Errorf("%w: status %s is engine-driven", loan.ErrInvalidInput, to)
	}
	return nil
}

func toDTO(l *loan.Loan, f *loan.FundingRecord, borrowerPublicID string) *LoanDTO {
	return &LoanDTO{
		LoanID:          l.LoanID,
		BorrowerID:      borrowerPublicID,
		AmountRequested: l.AmountRequested,
		InterestRate:    l.InterestRate,
		DurationMonths:  l.DurationMonths,
		EMIAmount:       l.EMIAmount,
		TotalRequired:   f.TotalRequired,
		TotalFunded:     f.TotalFunded,
		FundingStatus:   string(f.FundingStatus),
		Status:          string(l.Status),
		StatusUpdatedAt: l.StatusUpdatedAt,
		CreatedAt:       l.CreatedAt,
	}
}
