package query

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanSummaryDTO is one row of a loan listing.
type LoanSummaryDTO struct {
	LoanID          string          `json:"loan_id"`
	BorrowerID      string          `json:"borrower_id"`
	AmountRequested decimal.Decimal `json:"amount_requested"`
	InterestRate    decimal.Decimal `json:"interest_rate"`
	DurationMonths  int             `json:"duration_months"`
	EMIAmount       decimal.Decimal `json:"emi_amount"`
	FundedAmount    decimal.Decimal `json:"funded_amount"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}

// InvestorShareDTO is one investor's stake in a loan's funding.
type InvestorShareDTO struct {
	InvestmentID     string          `json:"investment_id"`
	InvestorID       string          `json:"investor_id"`
	InvestedAmount   decimal.Decimal `json:"invested_amount"`
	OwnershipPercent decimal.Decimal `json:"ownership_percent"`
}

// FundingProgressDTO is a loan's funding position with the Active
// investments backing it.
type FundingProgressDTO struct {
	LoanID        string             `json:"loan_id"`
	LoanStatus    string             `json:"loan_status"`
	TotalRequired decimal.Decimal    `json:"total_required"`
	TotalFunded   decimal.Decimal    `json:"total_funded"`
	Remaining     decimal.Decimal    `json:"remaining"`
	FundingStatus string             `json:"funding_status"`
	Investors     []InvestorShareDTO `json:"investors"`
}

// PortfolioItemDTO is one investment in an investor's portfolio.
type PortfolioItemDTO struct {
	InvestmentID     string          `json:"investment_id"`
	LoanID           string          `json:"loan_id"`
	LoanStatus       string          `json:"loan_status"`
	InvestedAmount   decimal.Decimal `json:"invested_amount"`
	OwnershipPercent decimal.Decimal `json:"ownership_percent"`
	Status           string          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
}

// PortfolioDTO aggregates an investor's positions; totals cover Active
// investments only.
type PortfolioDTO struct {
	InvestorID    string             `json:"investor_id"`
	TotalInvested decimal.Decimal    `json:"total_invested"`
	ActiveCount   int                `json:"active_count"`
	Items         []PortfolioItemDTO `json:"items"`
}

// ScheduleRowDTO is one repayment schedule row.
type ScheduleRowDTO struct {
	InstallmentID     string          `json:"installment_id"`
	InstallmentNumber int             `json:"installment_number"`
	DueDate           time.Time       `json:"due_date"`
	AmountDue         decimal.Decimal `json:"amount_due"`
	AmountPaid        decimal.Decimal `json:"amount_paid"`
	Status            string          `json:"status"`
	PaymentDate       *time.Time      `json:"payment_date,omitempty"`
}

// PaymentDTO is one booked repayment from the transaction ledger.
type PaymentDTO struct {
	Reference string          `json:"reference"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// RepaymentHistoryDTO is a loan's schedule plus the payments booked
// against it, in chronological order.
type RepaymentHistoryDTO struct {
	LoanID     string           `json:"loan_id"`
	LoanStatus string           `json:"loan_status"`
	EMIAmount  decimal.Decimal  `json:"emi_amount"`
	Paid       int64            `json:"installments_paid"`
	Total      int              `json:"installments_total"`
	Schedule   []ScheduleRowDTO `json:"schedule"`
	Payments   []PaymentDTO     `json:"payments"`
}

// TransactionDTO is one ledger row from a user's point of view. LoanID
// is empty when the movement does not reference a loan.
type TransactionDTO struct {
	Reference string          `json:"reference"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	LoanID    string          `json:"loan_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// TransactionsDTO is a user's ledger, newest first.
type TransactionsDTO struct {
	UserID       string           `json:"user_id"`
	Transactions []TransactionDTO `json:"transactions"`
}

// AuditEntryDTO is one audit row with the actor resolved to a public id.
type AuditEntryDTO struct {
	Reference  string    `json:"reference"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	ActionBy   string    `json:"action_by"`
	Remarks    string    `json:"remarks,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
