package funding

import (
	"time"

	"github.com/shopspring/decimal"
)

type ApplyInvestmentInput struct {
	LoanID       string
	InvestorID   string
	Amount       decimal.Decimal
	ActingUserID string
}

type WithdrawInput struct {
	InvestmentID string
	InvestorID   string
	ActingUserID string
}

// InvestmentDTO reports the investment together with the loan's funding
// position after the contribution was applied.
type InvestmentDTO struct {
	InvestmentID     string          `json:"investment_id"`
	LoanID           string          `json:"loan_id"`
	InvestorID       string          `json:"investor_id"`
	InvestedAmount   decimal.Decimal `json:"invested_amount"`
	OwnershipPercent decimal.Decimal `json:"ownership_percent"`
	TotalRequired    decimal.Decimal `json:"total_required"`
	TotalFunded      decimal.Decimal `json:"total_funded"`
	FundingStatus    string          `json:"funding_status"`
	LoanStatus       string          `json:"loan_status"`
	CreatedAt        time.Time       `json:"created_at"`
}

type WithdrawalDTO struct {
	InvestmentID   string          `json:"investment_id"`
	LoanID         string          `json:"loan_id"`
	AmountReleased decimal.Decimal `json:"amount_released"`
	TotalFunded    decimal.Decimal `json:"total_funded"`
	FundingStatus  string          `json:"funding_status"`
	LoanStatus     string          `json:"loan_status"`
}
