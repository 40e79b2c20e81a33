package loan

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Sentinel errors for the ledger core. Handlers and callers inspect these
// with errors.Is; the engines never swallow them.
var (
	ErrNotFound            = errors.New("loan not found")
	ErrInvalidState        = errors.New("loan status forbids this operation")
	ErrInvalidTransition   = errors.New("invalid loan status transition")
	ErrInvalidInput        = errors.New("invalid input")
	ErrConcurrencyConflict = errors.New("concurrent update conflict")
)

type Status string

const (
	StatusOpen      Status = "Open"
	StatusFunded    Status = "Funded"
	StatusActive    Status = "Active"
	StatusCompleted Status = "Completed"
	StatusDefaulted Status = "Defaulted"
	StatusCancelled Status = "Cancelled"
)

// transitions holds the only legal status edges. Funded→Open is the
// withdrawal reversion; Completed/Defaulted/Cancelled are terminal.
var transitions = map[Status][]Status{
	StatusOpen:   {StatusFunded, StatusCancelled},
	StatusFunded: {StatusActive, StatusOpen, StatusCancelled},
	StatusActive: {StatusCompleted, StatusDefaulted},
}

func ValidStatus(s Status) bool {
	switch s {
	case StatusOpen, StatusFunded, StatusActive, StatusCompleted, StatusDefaulted, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether from→to is a legal edge of the loan
// status state machine. Same-status is not a transition.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AcceptsFunding reports whether investments may still be applied.
func AcceptsFunding(s Status) bool { return s == StatusOpen || s == StatusFunded }

type Loan struct {
	// Internal numeric PK
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	// Public identifier (32-char lowercase hex)
	LoanID string `gorm:"column:loan_id;type:char(32);not null;uniqueIndex:ux_loans_loan_id" json:"loan_id"`
	// FK to users.id
	BorrowerID      uint64          `gorm:"column:borrower_id;not null;index:idx_loans_borrower" json:"-"`
	AmountRequested decimal.Decimal `gorm:"column:amount_requested;type:decimal(18,2);not null" json:"amount_requested"`
	// Annual interest rate in percent, e.g. 12.50
	InterestRate   decimal.Decimal `gorm:"column:interest_rate;type:decimal(5,2);not null" json:"interest_rate"`
	DurationMonths int             `gorm:"column:duration_months;not null" json:"duration_months"`
	// Monthly installment, computed once at origination and never recomputed
	EMIAmount       decimal.Decimal `gorm:"column:emi_amount;type:decimal(18,2);not null" json:"emi_amount"`
	FundedAmount    decimal.Decimal `gorm:"column:funded_amount;type:decimal(18,2);not null;default:0" json:"funded_amount"`
	Status          Status          `gorm:"column:status;type:enum('Open','Funded','Active','Completed','Defaulted','Cancelled');default:'Open'" json:"status"`
	StatusUpdatedAt time.Time       `gorm:"column:status_updated_at;autoCreateTime" json:"status_updated_at"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"column:deleted_at;index" json:"-"`
}

func (Loan) TableName() string { return "loans" }

type FundingStatus string

const (
	FundingPartial     FundingStatus = "Partial"
	FundingFullyFunded FundingStatus = "FullyFunded"
)

// FundingRecord tracks funding progress for one loan (1:1, created in the
// same transaction as the loan). Invariant: TotalFunded equals the sum of
// invested_amount over this loan's Active investments, and
// FundingStatus == FullyFunded iff TotalFunded >= TotalRequired.
type FundingRecord struct {
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	// FK to loans.id, unique: one record per loan
	LoanID        uint64          `gorm:"column:loan_id;not null;uniqueIndex:ux_loan_funding_loan" json:"-"`
	TotalRequired decimal.Decimal `gorm:"column:total_required;type:decimal(18,2);not null" json:"total_required"`
	TotalFunded   decimal.Decimal `gorm:"column:total_funded;type:decimal(18,2);not null;default:0" json:"total_funded"`
	FundingStatus FundingStatus   `gorm:"column:funding_status;type:enum('Partial','FullyFunded');default:'Partial'" json:"funding_status"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (FundingRecord) TableName() string { return "loan_funding" }

// Reached reports whether the funding threshold is met.
func (f *FundingRecord) Reached() bool {
	return f.TotalFunded.GreaterThanOrEqual(f.TotalRequired)
}

// RecomputeStatus derives FundingStatus from the current totals.
func (f *FundingRecord) RecomputeStatus() {
	if f.Reached() {
		f.FundingStatus = FundingFullyFunded
	} else {
		f.FundingStatus = FundingPartial
	}
}
