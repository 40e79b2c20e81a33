package audit

import "context"

// Repository is append-only: no update, no delete.
type Repository interface {
	Append(ctx context.Context, e *Entry) error

	// Most recent entries, newest first, capped at limit.
	ListRecent(ctx context.Context, limit int) ([]Entry, error)
}
