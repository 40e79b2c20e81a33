package investment

import "context"

type Repository interface {
	Create(ctx context.Context, inv *Investment) error

	// Get by public investment_id
	GetByInvestmentID(ctx context.Context, investmentID string) (*Investment, error)

	// Same lookup with a row lock, for use inside a unit of work.
	GetByInvestmentIDForUpdate(ctx context.Context, investmentID string) (*Investment, error)

	// All Active investments of a loan (by loans.id), ordered by creation.
	ListActiveByLoan(ctx context.Context, loanID uint64) ([]Investment, error)

	// All investments of an investor (by users.id), newest first.
	ListByInvestor(ctx context.Context, investorID uint64) ([]Investment, error)

	Save(ctx context.Context, inv *Investment) error
}
