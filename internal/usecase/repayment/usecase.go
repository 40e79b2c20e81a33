// Package repayment is the repayment engine: it applies borrower
// payments to schedule rows under the loan's row lock and sweeps missed
// installments to Overdue.
package repayment

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/audit"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/installment"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/ledger"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/loan"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/uow"
	"github.com/nancy-13-hue/p2p-lending-database/internal/observability"
	"github.com/nancy-13-hue/p2p-lending-database/internal/usecase/record"
	"github.com/nancy-13-hue/p2p-lending-database/pkg/id"
)

const (
	opApplyRepayment = "apply_repayment"
	opMarkOverdue    = "mark_overdue"
)

type Usecase struct {
	uow      uow.UnitOfWork
	metrics  *observability.Metrics
	attempts int
	log      zerolog.Logger
}

func NewUsecase(tx uow.UnitOfWork, m *observability.Metrics, retryAttempts int) *Usecase {
	if retryAttempts < 1 {
		retryAttempts = 3
	}
	return &Usecase{
		uow:      tx,
		metrics:  m,
		attempts: retryAttempts,
		log:      observability.NewLogger("repayment"),
	}
}

// ApplyRepayment books one payment against a schedule row. Partial
// payments accumulate; the installment turns Paid when the running total
// covers the amount due, and only then is payment_date stamped. The
// first installment paid on a Funded loan drives Funded→Active.
func (u *Usecase) ApplyRepayment(ctx context.Context, in ApplyRepaymentInput) (*RepaymentDTO, error) {
	start := time.Now()
	if err := in.validate(); err != nil {
		u.metrics.Rejected(opApplyRepayment, record.FailureReason(err))
		return nil, err
	}

	var (
		dto       *RepaymentDTO
		activated bool
	)
	err := uow.RetryLoanTx(ctx, u.uow, u.attempts, in.LoanID, func(r uow.Repos, l *loan.Loan) error {
		dto, activated = nil, false

		it, err := r.Installments.GetByInstallmentIDForUpdate(ctx, in.InstallmentID)
		if err != nil {
			return err
		}
		// A schedule row addressed through the wrong loan does not exist
		// as far as the caller is concerned.
		if it.LoanID != l.ID {
			return fmt.Errorf("%w: installment %s does not belong to loan %s", installment.ErrNotFound, in.InstallmentID, l.LoanID)
		}
		borrower, err := r.Users.GetByID(ctx, l.BorrowerID)
		if err != nil {
			return fmt.Errorf("borrower: %w", err)
		}
		actingID, err := record.ResolveActor(ctx, r, borrower, in.ActingUserID)
		if err != nil {
			return err
		}

		if it.Status == installment.StatusPaid {
			return fmt.Errorf("%w: installment %s", installment.ErrAlreadyPaid, in.InstallmentID)
		}

		// Partial payments accumulate toward the amount due.
		it.AmountPaid = it.AmountPaid.Add(in.Amount)
		becamePaid := it.AmountPaid.GreaterThanOrEqual(it.AmountDue)
		if becamePaid {
			it.Status = installment.StatusPaid
			now := time.Now().UTC()
			it.PaymentDate = &now
		}
		if err := r.Installments.Save(ctx, it); err != nil {
			return err
		}

		if becamePaid && l.Status == loan.StatusFunded {
			if err := record.StatusChange(ctx, r, l, loan.StatusActive, actingID, "first installment paid"); err != nil {
				return err
			}
			activated = true
		}

		if err := record.Transaction(ctx, r, record.Movement{
			UserID:        l.BorrowerID,
			LoanID:        &l.ID,
			InstallmentID: &it.ID,
			Type:          ledger.TypeRepayment,
			Amount:        in.Amount,
		}); err != nil {
			return err
		}
		if err := record.Audit(ctx, r, audit.ActionRepaymentMade, audit.EntityInstallment, it.InstallmentID, actingID,
			fmt.Sprintf("loan=%s amount=%s status=%s", l.LoanID, in.Amount, it.Status)); err != nil {
			return err
		}

		paid, err := r.Installments.CountPaidByLoan(ctx, l.ID)
		if err != nil {
			return err
		}

		dto = &RepaymentDTO{
			InstallmentID:     it.InstallmentID,
			LoanID:            l.LoanID,
			InstallmentNumber: it.InstallmentNumber,
			AmountDue:         it.AmountDue,
			AmountPaid:        it.AmountPaid,
			Outstanding:       it.Outstanding(),
			Status:            string(it.Status),
			PaymentDate:       it.PaymentDate,
			InstallmentsPaid:  paid,
			InstallmentsTotal: l.DurationMonths,
			LoanStatus:        string(l.Status),
		}
		return nil
	})
	if err != nil {
		u.metrics.Rejected(opApplyRepayment, record.FailureReason(err))
		return nil, err
	}

	u.metrics.Applied(opApplyRepayment)
	u.metrics.Observe(opApplyRepayment, start)
	if activated {
		u.metrics.Transition(string(loan.StatusFunded), string(loan.StatusActive))
	}
	u.log.Info().
		Str("loan_id", dto.LoanID).
		Str("installment_id", dto.InstallmentID).
		Str("amount", in.Amount.String()).
		Str("status", dto.Status).
		Msg("repayment applied")
	return dto, nil
}

// MarkOverdue flips every Pending installment due strictly before asOf
// to Overdue, appending one audit row per flip, all in one transaction.
// Loan statuses are untouched; defaulting is an operator decision.
func (u *Usecase) MarkOverdue(ctx context.Context, asOf time.Time, actingUserID string) (*OverdueDTO, error) {
	start := time.Now()
	if !id.IsID32(actingUserID) {
		err := fmt.Errorf("%w: acting user id must be 32-char hex", loan.ErrInvalidInput)
		u.metrics.Rejected(opMarkOverdue, record.FailureReason(err))
		return nil, err
	}

	var dto *OverdueDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		actingID, err := record.ResolveActor(ctx, r, nil, actingUserID)
		if err != nil {
			return err
		}

		rows, err := r.Installments.ListPendingDueBefore(ctx, asOf)
		if err != nil {
			return err
		}
		flipped := make([]string, 0, len(rows))
		for i := range rows {
			it := rows[i]
			it.Status = installment.StatusOverdue
			if err := r.Installments.Save(ctx, &it); err != nil {
				return err
			}
			if err := record.Audit(ctx, r, audit.ActionInstallmentOverdue, audit.EntityInstallment, it.InstallmentID, actingID,
				fmt.Sprintf("due=%s as_of=%s", it.DueDate.Format("2006-01-02"), asOf.Format("2006-01-02"))); err != nil {
				return err
			}
			flipped = append(flipped, it.InstallmentID)
		}

		dto = &OverdueDTO{AsOf: asOf, Marked: len(flipped), InstallmentIDs: flipped}
		return nil
	})
	if err != nil {
		u.metrics.Rejected(opMarkOverdue, record.FailureReason(err))
		return nil, err
	}

	u.metrics.Applied(opMarkOverdue)
	u.metrics.Observe(opMarkOverdue, start)
	u.log.Info().
		Time("as_of", dto.AsOf).
		Int("marked", dto.Marked).
		Msg("overdue sweep finished")
	return dto, nil
}

func (in ApplyRepaymentInput) validate() error {
	if !id.IsID32(in.LoanID) || !id.IsID32(in.InstallmentID) || !id.IsID32(in.ActingUserID) {
		return fmt.Errorf("%w: ids must be 32-char hex", loan.ErrInvalidInput)
	}
	if !in.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", loan.ErrInvalidInput, in.Amount)
	}
	return nil
}
