package installment

import (
	"context"
	"time"
)

type Repository interface {
	// CreateBatch inserts a full schedule in one statement.
	CreateBatch(ctx context.Context, rows []Installment) error

	// Get by public installment_id
	GetByInstallmentID(ctx context.Context, installmentID string) (*Installment, error)

	// Same lookup with a row lock, for use inside a unit of work.
	GetByInstallmentIDForUpdate(ctx context.Context, installmentID string) (*Installment, error)

	// Schedule rows of a loan (by loans.id), ordered by installment number.
	ListByLoan(ctx context.Context, loanID uint64) ([]Installment, error)

	// Number of Paid installments for a loan.
	CountPaidByLoan(ctx context.Context, loanID uint64) (int64, error)

	// Pending rows due strictly before the cutoff, across all loans.
	ListPendingDueBefore(ctx context.Context, cutoff time.Time) ([]Installment, error)

	Save(ctx context.Context, i *Installment) error
}
