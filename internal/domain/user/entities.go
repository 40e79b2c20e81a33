package user

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("user not found")
	// Mutating operation attempted by a suspended or closed account.
	ErrAccountInactive = errors.New("user account is not active")
)

type Role string

const (
	RoleBorrower Role = "borrower"
	RoleInvestor Role = "investor"
	RoleAdmin    Role = "admin"
)

func ValidRole(r Role) bool {
	switch r {
	case RoleBorrower, RoleInvestor, RoleAdmin:
		return true
	}
	return false
}

type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountSuspended AccountStatus = "suspended"
	AccountClosed    AccountStatus = "closed"
)

type User struct {
	// Internal numeric PK
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	// Public identifier (32-char lowercase hex); immutable once created
	UserID        string         `gorm:"column:user_id;type:char(32);not null;uniqueIndex:ux_users_user_id" json:"user_id"`
	Name          string         `gorm:"column:name;size:120;not null" json:"name"`
	Email         string         `gorm:"column:email;size:255;not null;uniqueIndex:ux_users_email" json:"email"`
	Role          Role           `gorm:"column:role;type:enum('borrower','investor','admin');not null" json:"role"`
	AccountStatus AccountStatus  `gorm:"column:account_status;type:enum('active','suspended','closed');default:'active'" json:"account_status"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (User) TableName() string { return "users" }

// CanTransact reports whether the account may originate loans, invest,
// or repay. Suspended and closed accounts are read-only.
func (u *User) CanTransact() bool { return u.AccountStatus == AccountActive }
