package audit

import (
	"time"
)

// Actions recorded in the audit trail.
const (
	ActionLoanCreated        = "LoanCreated"
	ActionInvestmentMade     = "InvestmentMade"
	ActionWithdrawal         = "Withdrawal"
	ActionRepaymentMade      = "RepaymentMade"
	ActionStatusChanged      = "Status Changed"
	ActionUserRegistered     = "UserRegistered"
	ActionInstallmentOverdue = "InstallmentOverdue"
)

// Entity types an audit row may point at.
const (
	EntityLoan        = "loan"
	EntityInvestment  = "investment"
	EntityInstallment = "installment"
	EntityUser        = "user"
)

// Entry is one immutable audit row. Every mutating action (investment,
// repayment, withdrawal, status change) appends one inside its unit of work.
type Entry struct {
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	// External reference (UUID)
	Reference  string `gorm:"column:reference;type:char(36);not null;uniqueIndex:ux_audit_reference" json:"reference"`
	Action     string `gorm:"column:action;size:64;not null;index:idx_audit_action" json:"action"`
	EntityType string `gorm:"column:entity_type;size:32;not null" json:"entity_type"`
	// Public id of the entity acted on
	EntityID string `gorm:"column:entity_id;type:char(32);not null;index:idx_audit_entity" json:"entity_id"`
	// FK to users.id: the acting user, always explicit
	ActionBy  uint64    `gorm:"column:action_by;not null" json:"-"`
	Remarks   string    `gorm:"column:remarks;type:text" json:"remarks,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Entry) TableName() string { return "audit_log" }
