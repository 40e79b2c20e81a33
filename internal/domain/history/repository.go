package history

import "context"

// Repository is append-only: no update, no delete.
type Repository interface {
	Append(ctx context.Context, e *Entry) error

	// Transitions of a loan (by loans.id) in chronological order.
	ListByLoan(ctx context.Context, loanID uint64) ([]Entry, error)
}
