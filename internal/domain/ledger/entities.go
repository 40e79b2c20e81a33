package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

type EntryType string

const (
	TypeInvestment EntryType = "Investment"
	TypeRepayment  EntryType = "Repayment"
	TypePayout     EntryType = "Payout"
	TypeWithdrawal EntryType = "Withdrawal"
	TypePenalty    EntryType = "Penalty"
)

func ValidEntryType(t EntryType) bool {
	switch t {
	case TypeInvestment, TypeRepayment, TypePayout, TypeWithdrawal, TypePenalty:
		return true
	}
	return false
}

// Entry is one row of the transaction ledger: a single money movement.
// Rows are immutable once written; the repository exposes no update or
// delete. Every mutating engine operation appends exactly one entry.
type Entry struct {
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	// External reference (UUID), safe to hand to other systems
	Reference string `gorm:"column:reference;type:char(36);not null;uniqueIndex:ux_transactions_reference" json:"reference"`
	// FK to users.id: the account the money moved for
	UserID uint64 `gorm:"column:user_id;not null;index:idx_transactions_user" json:"-"`
	// Optional back-references, set where the movement concerns them
	LoanID        *uint64         `gorm:"column:loan_id;index:idx_transactions_loan" json:"-"`
	InvestmentID  *uint64         `gorm:"column:investment_id" json:"-"`
	InstallmentID *uint64         `gorm:"column:installment_id" json:"-"`
	Type          EntryType       `gorm:"column:type;type:enum('Investment','Repayment','Payout','Withdrawal','Penalty');not null" json:"type"`
	Amount        decimal.Decimal `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Entry) TableName() string { return "transactions" }
