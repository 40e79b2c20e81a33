package repayment

import (
	"time"

	"github.com/shopspring/decimal"
)

type ApplyRepaymentInput struct {
	LoanID        string
	InstallmentID string
	Amount        decimal.Decimal
	ActingUserID  string
}

// RepaymentDTO reports the installment after the payment was applied,
// together with the loan's repayment progress.
type RepaymentDTO struct {
	InstallmentID     string          `json:"installment_id"`
	LoanID            string          `json:"loan_id"`
	InstallmentNumber int             `json:"installment_number"`
	AmountDue         decimal.Decimal `json:"amount_due"`
	AmountPaid        decimal.Decimal `json:"amount_paid"`
	Outstanding       decimal.Decimal `json:"outstanding"`
	Status            string          `json:"status"`
	PaymentDate       *time.Time      `json:"payment_date,omitempty"`
	InstallmentsPaid  int64           `json:"installments_paid"`
	InstallmentsTotal int             `json:"installments_total"`
	LoanStatus        string          `json:"loan_status"`
}

// OverdueDTO reports one overdue sweep.
type OverdueDTO struct {
	AsOf           time.Time `json:"as_of"`
	Marked         int       `json:"marked"`
	InstallmentIDs []string  `json:"installment_ids"`
}
