package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateLoanInput struct {
	BorrowerID      string
	AmountRequested decimal.Decimal
	InterestRate    decimal.Decimal
	DurationMonths  int
	ActingUserID    string
}

type ChangeStatusInput struct {
	LoanID       string
	NewStatus    string
	ActingUserID string
	Remarks      string
}

// LoanDTO is the loan joined with its funding record. BorrowerID is the
// borrower's public user id, never the numeric FK.
type LoanDTO struct {
	LoanID          string          `json:"loan_id"`
	BorrowerID      string          `json:"borrower_id"`
	AmountRequested decimal.Decimal `json:"amount_requested"`
	InterestRate    decimal.Decimal `json:"interest_rate"`
	DurationMonths  int             `json:"duration_months"`
	EMIAmount       decimal.Decimal `json:"emi_amount"`
	TotalRequired   decimal.Decimal `json:"total_required"`
	TotalFunded     decimal.Decimal `json:"total_funded"`
	FundingStatus   string          `json:"funding_status"`
	Status          string          `json:"status"`
	StatusUpdatedAt time.Time       `json:"status_updated_at"`
	CreatedAt       time.Time       `json:"created_at"`
}
