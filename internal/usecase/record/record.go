// Package record holds the append-only side effects shared by every
// engine operation: loan status transitions, transaction-ledger rows and
// audit rows. All functions write through the caller's transaction-bound
// repositories and never retry; storage errors propagate to the caller,
// which rolls back the whole unit of work.
package record

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/audit"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/history"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/installment"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/investment"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/ledger"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/loan"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/uow"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/user"
)

// StatusChange is the single code path for loan status transitions.
// It validates the edge, appends exactly one history row and one audit
// row, and only then saves the loan with the new status, so the history
// is in place before the new state becomes visible to later reads in
// the same transaction. actingUserID is always explicit; there is no
// session-implicit actor.
func StatusChange(ctx context.Context, r uow.Repos, l *loan.Loan, to loan.Status, actingUserID uint64, remarks string) error {
	from := l.Status
	if !loan.CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", loan.ErrInvalidTransition, from, to)
	}

	if err := r.History.Append(ctx, &history.Entry{
		LoanID:    l.ID,
		OldStatus: string(from),
		NewStatus: string(to),
		ChangedBy: actingUserID,
		ChangedAt: time.Now().UTC(),
	}); err != nil {
		return err
	}
	if err := Audit(ctx, r, audit.ActionStatusChanged, audit.EntityLoan, l.LoanID, actingUserID,
		fmt.Sprintf("%s -> %s: %s", from, to, remarks)); err != nil {
		return err
	}

	l.Status = to
	l.StatusUpdatedAt = time.Now().UTC()
	return r.Loans.Save(ctx, l)
}

// Movement describes one money movement to append to the transaction
// ledger. Optional back-references stay nil when the movement does not
// concern them.
type Movement struct {
	UserID        uint64
	LoanID        *uint64
	InvestmentID  *uint64
	InstallmentID *uint64
	Type          ledger.EntryType
	Amount        decimal.Decimal
}

// Transaction appends one immutable ledger row for a money movement.
func Transaction(ctx context.Context, r uow.Repos, m Movement) error {
	return r.Ledger.Append(ctx, &ledger.Entry{
		Reference:     uuid.NewString(),
		UserID:        m.UserID,
		LoanID:        m.LoanID,
		InvestmentID:  m.InvestmentID,
		InstallmentID: m.InstallmentID,
		Type:          m.Type,
		Amount:        m.Amount,
	})
}

// FailureReason buckets an engine error into the label recorded on the
// rejection counter. Unrecognized errors count as storage failures.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, loan.ErrNotFound), errors.Is(err, user.ErrNotFound),
		errors.Is(err, investment.ErrNotFound), errors.Is(err, installment.ErrNotFound):
		return "not_found"
	case errors.Is(err, loan.ErrConcurrencyConflict):
		return "conflict"
	case errors.Is(err, loan.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, loan.ErrInvalidState), errors.Is(err, loan.ErrInvalidTransition),
		errors.Is(err, investment.ErrInvalidWithdrawal), errors.Is(err, installment.ErrAlreadyPaid),
		errors.Is(err, user.ErrAccountInactive):
		return "invalid_state"
	default:
		return "storage"
	}
}

// ResolveActor maps a public acting-user id onto the numeric id stored
// on history, audit and ledger rows. When the actor is the user already
// in hand no second lookup is made.
func ResolveActor(ctx context.Context, r uow.Repos, same *user.User, actingUserID string) (uint64, error) {
	if same != nil && same.UserID == actingUserID {
		return same.ID, nil
	}
	actor, err := r.Users.GetByUserID(ctx, actingUserID)
	if err != nil {
		return 0, fmt.Errorf("acting user: %w", err)
	}
	return actor.ID, nil
}

// Audit appends one immutable audit row.
func Audit(ctx context.Context, r uow.Repos, action, entityType, entityID string, actionBy uint64, remarks string) error {
	return r.Audits.Append(ctx, &audit.Entry{
		Reference:  uuid.NewString(),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		ActionBy:   actionBy,
		Remarks:    remarks,
	})
}
