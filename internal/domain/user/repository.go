package user

import "context"

type Repository interface {
	Create(ctx context.Context, u *User) error

	// Get by public user_id
	GetByUserID(ctx context.Context, userID string) (*User, error)

	// Get by internal numeric PK
	GetByID(ctx context.Context, id uint64) (*User, error)

	// Bulk lookup by numeric PKs, for resolving back-references.
	ListByIDs(ctx context.Context, ids []uint64) ([]User, error)
}
