package mysql

import (
	"context"
	"errors"
	"testing"

	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/user"
	"github.com/nancy-13-hue/p2p-lending-database/pkg/id"
)

func makeUser(userID, email string, role user.Role) *user.User {
	return &user.User{
		UserID:        userID,
		Name:          "Test User",
		Email:         email,
		Role:          role,
		AccountStatus: user.AccountActive,
	}
}

func TestUserCreateAndGet(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	userID := id.NewID32()
	u := makeUser(userID, "investor@example.com", user.RoleInvestor)
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.ID == 0 {
		t.Fatalf("Create did not set auto-increment ID")
	}

	got, err := repo.GetByUserID(ctx, userID)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if got.Email != "investor@example.com" || got.Role != user.RoleInvestor {
		t.Errorf("unexpected user: %+v", got)
	}

	byID, err := repo.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if byID.UserID != userID {
		t.Errorf("GetByID returned wrong row: %+v", byID)
	}
}

func TestUserGet_NotFound(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	if _, err := repo.GetByUserID(ctx, "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("expected user.ErrNotFound, got %v", err)
	}
	if _, err := repo.GetByID(ctx, 12345); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("expected user.ErrNotFound, got %v", err)
	}
}

func TestUserListByIDs(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	a := makeUser(id.NewID32(), "a@example.com", user.RoleBorrower)
	b := makeUser(id.NewID32(), "b@example.com", user.RoleInvestor)
	for _, u := range []*user.User{a, b} {
		if err := repo.Create(ctx, u); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	got, err := repo.ListByIDs(ctx, []uint64{a.ID, b.ID, 99999})
	if err != nil {
		t.Fatalf("ListByIDs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListByIDs returned %d rows, want 2", len(got))
	}

	empty, err := repo.ListByIDs(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("ListByIDs(nil) = %v, %v; want empty, nil", empty, err)
	}
}

func TestUserDuplicateEmailRejected(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, makeUser(id.NewID32(), "dup@example.com", user.RoleBorrower)); err != nil {
		t.Fatalf("Create first: %v", err)
	}
	if err := repo.Create(ctx, makeUser(id.NewID32(), "dup@example.com", user.RoleInvestor)); err == nil {
		t.Fatalf("expected unique violation for duplicate email")
	}
}
