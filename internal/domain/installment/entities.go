package installment

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("installment not found")
	// Repayment attempted against an installment that is already settled.
	ErrAlreadyPaid = errors.New("installment already paid")
)

type Status string

const (
	StatusPending Status = "Pending"
	StatusPaid    Status = "Paid"
	StatusOverdue Status = "Overdue"
)

// Installment is one row of a loan's repayment schedule. Numbers run 1..n
// with no gaps; the whole schedule is generated when the loan is created.
type Installment struct {
	// Internal numeric PK
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	// Public identifier (32-char lowercase hex)
	InstallmentID string `gorm:"column:installment_id;type:char(32);not null;uniqueIndex:ux_schedule_installment_id" json:"installment_id"`
	// FK to loans.id
	LoanID            uint64          `gorm:"column:loan_id;not null;uniqueIndex:ux_schedule_loan_number,priority:1" json:"-"`
	InstallmentNumber int             `gorm:"column:installment_number;not null;uniqueIndex:ux_schedule_loan_number,priority:2" json:"installment_number"`
	DueDate           time.Time       `gorm:"column:due_date;type:date;not null" json:"due_date"`
	AmountDue         decimal.Decimal `gorm:"column:amount_due;type:decimal(18,2);not null" json:"amount_due"`
	AmountPaid        decimal.Decimal `gorm:"column:amount_paid;type:decimal(18,2);not null;default:0" json:"amount_paid"`
	Status            Status          `gorm:"column:status;type:enum('Pending','Paid','Overdue');default:'Pending'" json:"status"`
	// Stamped only when the installment transitions to Paid
	PaymentDate *time.Time `gorm:"column:payment_date;type:date" json:"payment_date,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Installment) TableName() string { return "repayment_schedule" }

// Outstanding returns the unpaid remainder (never negative).
func (i *Installment) Outstanding() decimal.Decimal {
	rem := i.AmountDue.Sub(i.AmountPaid)
	if rem.IsNegative() {
		return decimal.Zero
	}
	return rem
}
