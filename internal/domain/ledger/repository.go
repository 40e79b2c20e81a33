package ledger

import "context"

// Repository is append-only: no update, no delete.
type Repository interface {
	Append(ctx context.Context, e *Entry) error

	// Entries of a user (by users.id), newest first.
	ListByUser(ctx context.Context, userID uint64) ([]Entry, error)

	// Entries touching a loan (by loans.id), in chronological order.
	ListByLoan(ctx context.Context, loanID uint64) ([]Entry, error)
}
