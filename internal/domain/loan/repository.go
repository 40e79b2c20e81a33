package loan

import "context"

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	// Same lookup with a row lock; serializes concurrent engine calls
	// against the same loan for the duration of the transaction.
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)
	GetByID(ctx context.Context, id uint64) (*Loan, error)
	Save(ctx context.Context, l *Loan) error
	ListByStatuses(ctx context.Context, statuses []Status) ([]Loan, error)
	// Bulk lookup by numeric PKs, for resolving back-references.
	ListByIDs(ctx context.Context, ids []uint64) ([]Loan, error)
}

type FundingRepository interface {
	Create(ctx context.Context, f *FundingRecord) error

	// Get the funding record by loans.id (numeric FK)
	GetByLoanID(ctx context.Context, loanID uint64) (*FundingRecord, error)
	Save(ctx context.Context, f *FundingRecord) error
}
