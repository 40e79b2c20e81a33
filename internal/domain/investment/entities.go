package investment

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("investment not found")
	// Withdrawal attempted by a non-owner or against a non-Active investment.
	ErrInvalidWithdrawal = errors.New("invalid withdrawal")
)

type Status string

const (
	StatusActive    Status = "Active"
	StatusSold      Status = "Sold"
	StatusWithdrawn Status = "Withdrawn"
)

type Investment struct {
	// Internal numeric PK
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	// Public identifier (32-char lowercase hex)
	InvestmentID string `gorm:"column:investment_id;type:char(32);not null;uniqueIndex:ux_investments_investment_id" json:"investment_id"`
	// FK to users.id
	InvestorID uint64 `gorm:"column:investor_id;not null;index:idx_investments_investor" json:"-"`
	// FK to loans.id
	LoanID uint64 `gorm:"column:loan_id;not null;index:idx_investments_loan" json:"-"`
	// Positive while Active; reset to 0 on withdrawal
	InvestedAmount decimal.Decimal `gorm:"column:invested_amount;type:decimal(18,2);not null" json:"invested_amount"`
	// Share of the loan's total requested principal, percent with 2dp
	OwnershipPercent decimal.Decimal     `gorm:"column:ownership_percent;type:decimal(5,2);not null;default:0" json:"ownership_percent"`
	Status           Status              `gorm:"column:status;type:enum('Active','Sold','Withdrawn');default:'Active'" json:"status"`
	IsForSale        bool                `gorm:"column:is_for_sale;not null;default:false" json:"is_for_sale"`
	ListedPrice      decimal.NullDecimal `gorm:"column:listed_price;type:decimal(18,2)" json:"listed_price"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt      `gorm:"column:deleted_at;index" json:"-"`
}

func (Investment) TableName() string { return "investments" }
