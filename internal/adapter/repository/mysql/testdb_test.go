package mysql

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/audit"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/history"
)

// --- SQLite-friendly schemas only for tests (no ENUM columns) ---

type userSQLite struct {
	ID            uint64         `gorm:"primaryKey;column:id"`
	UserID        string         `gorm:"size:32;column:user_id;uniqueIndex"`
	Name          string         `gorm:"column:name"`
	Email         string         `gorm:"column:email;uniqueIndex"`
	Role          string         `gorm:"type:text;column:role"` // ← no enum
	AccountStatus string         `gorm:"type:text;column:account_status"`
	CreatedAt     time.Time      `gorm:"column:created_at"`
	UpdatedAt     time.Time      `gorm:"column:updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"column:deleted_at"`
}

func (userSQLite) TableName() string { return "users" }

type loanSQLite struct {
	ID              uint64         `gorm:"primaryKey;column:id"`
	LoanID          string         `gorm:"size:32;column:loan_id;uniqueIndex"`
	BorrowerID      uint64         `gorm:"column:borrower_id"`
	AmountRequested float64        `gorm:"column:amount_requested"`
	InterestRate    float64        `gorm:"column:interest_rate"`
	DurationMonths  int            `gorm:"column:duration_months"`
	EMIAmount       float64        `gorm:"column:emi_amount"`
	FundedAmount    float64        `gorm:"column:funded_amount"`
	Status          string         `gorm:"type:text;column:status"` // ← no enum
	StatusUpdatedAt time.Time      `gorm:"column:status_updated_at"`
	CreatedAt       time.Time      `gorm:"column:created_at"`
	UpdatedAt       time.Time      `gorm:"column:updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"column:deleted_at"`
}

func (loanSQLite) TableName() string { return "loans" }

type fundingSQLite struct {
	ID            uint64    `gorm:"primaryKey;column:id"`
	LoanID        uint64    `gorm:"column:loan_id;uniqueIndex"`
	TotalRequired float64   `gorm:"column:total_required"`
	TotalFunded   float64   `gorm:"column:total_funded"`
	FundingStatus string    `gorm:"type:text;column:funding_status"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (fundingSQLite) TableName() string { return "loan_funding" }

type investmentSQLite struct {
	ID               uint64         `gorm:"primaryKey;column:id"`
	InvestmentID     string         `gorm:"size:32;column:investment_id;uniqueIndex"`
	InvestorID       uint64         `gorm:"column:investor_id"`
	LoanID           uint64         `gorm:"column:loan_id"`
	InvestedAmount   float64        `gorm:"column:invested_amount"`
	OwnershipPercent float64        `gorm:"column:ownership_percent"`
	Status           string         `gorm:"type:text;column:status"`
	IsForSale        bool           `gorm:"column:is_for_sale"`
	ListedPrice      *float64       `gorm:"column:listed_price"`
	CreatedAt        time.Time      `gorm:"column:created_at"`
	UpdatedAt        time.Time      `gorm:"column:updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"column:deleted_at"`
}

func (investmentSQLite) TableName() string { return "investments" }

type installmentSQLite struct {
	ID                uint64     `gorm:"primaryKey;column:id"`
	InstallmentID     string     `gorm:"size:32;column:installment_id;uniqueIndex"`
	LoanID            uint64     `gorm:"column:loan_id;uniqueIndex:ux_schedule_loan_number,priority:1"`
	InstallmentNumber int        `gorm:"column:installment_number;uniqueIndex:ux_schedule_loan_number,priority:2"`
	DueDate           time.Time  `gorm:"column:due_date"`
	AmountDue         float64    `gorm:"column:amount_due"`
	AmountPaid        float64    `gorm:"column:amount_paid"`
	Status            string     `gorm:"type:text;column:status"`
	PaymentDate       *time.Time `gorm:"column:payment_date"`
	CreatedAt         time.Time  `gorm:"column:created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at"`
}

func (installmentSQLite) TableName() string { return "repayment_schedule" }

type transactionSQLite struct {
	ID            uint64    `gorm:"primaryKey;column:id"`
	Reference     string    `gorm:"size:36;column:reference;uniqueIndex"`
	UserID        uint64    `gorm:"column:user_id"`
	LoanID        *uint64   `gorm:"column:loan_id"`
	InvestmentID  *uint64   `gorm:"column:investment_id"`
	InstallmentID *uint64   `gorm:"column:installment_id"`
	Type          string    `gorm:"type:text;column:type"`
	Amount        float64   `gorm:"column:amount"`
	CreatedAt     time.Time `gorm:"column:created_at"`
}

func (transactionSQLite) TableName() string { return "transactions" }

// openTestDB creates an in-memory sqlite DB and migrates ONLY the
// sqlite-safe schemas. History and audit carry no enum columns, so their
// domain models migrate as-is.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&userSQLite{},
		&loanSQLite{},
		&fundingSQLite{},
		&investmentSQLite{},
		&installmentSQLite{},
		&transactionSQLite{},
		&history.Entry{},
		&audit.Entry{},
	); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
