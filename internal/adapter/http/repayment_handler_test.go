package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	dominst "github.com/nancy-13-hue/p2p-lending-database/internal/domain/installment"
	domloan "github.com/nancy-13-hue/p2p-lending-database/internal/domain/loan"
	domuser "github.com/nancy-13-hue/p2p-lending-database/internal/domain/user"
	"github.com/nancy-13-hue/p2p-lending-database/internal/usecase/query"
	"github.com/nancy-13-hue/p2p-lending-database/internal/usecase/repayment"
	"github.com/nancy-13-hue/p2p-lending-database/pkg/id"
)

// schedule fetches the loan's repayment view through the handler.
func (a *api) schedule(t *testing.T, loanID string) query.RepaymentHistoryDTO {
	t.Helper()
	c, rec := a.ctxFor(stdhttp.MethodGet, "/loans/"+loanID+"/repayments", nil, "")
	c.SetParamNames("loan_id")
	c.SetParamValues(loanID)
	if err := a.loans.RepaymentHistory(c); err != nil {
		t.Fatalf("RepaymentHistory error: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}
	var dto query.RepaymentHistoryDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	return dto
}

func (a *api) pay(t *testing.T, loanID, installmentID string, amount float64, actor string) (int, string) {
	t.Helper()
	c, rec := a.ctxFor(stdhttp.MethodPost,
		"/loans/"+loanID+"/installments/"+installmentID+"/payments",
		map[string]any{"amount": amount}, actor)
	c.SetParamNames("loan_id", "installment_id")
	c.SetParamValues(loanID, installmentID)
	if err := a.repayments.Pay(c); err != nil {
		t.Fatalf("Pay error: %v", err)
	}
	return rec.Code, rec.Body.String()
}

// Full borrower journey: originate, fund, repay, observe the schedule.
func TestPay_HandlerFlow(t *testing.T) {
	a := newAPI(t)
	borrower := a.seedUser(t, domuser.RoleBorrower)
	investor := a.seedUser(t, domuser.RoleInvestor)

	// Originate through the handler so the schedule comes from the
	// real EMI split.
	c, rec := a.ctxFor(stdhttp.MethodPost, "/loans", map[string]any{
		"borrower_id":      borrower.UserID,
		"amount_requested": 10000.00,
		"interest_rate":    12.0,
		"duration_months":  12,
	}, borrower.UserID)
	if err := a.loans.CreateLoan(c); err != nil {
		t.Fatalf("CreateLoan error: %v", err)
	}
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("create status = %d; body=%s", rec.Code, rec.Body.String())
	}
	var created struct {
		LoanID string `json:"loan_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("bad json: %v", err)
	}

	a.invest(t, created.LoanID, investor.UserID, 10000.00)

	view := a.schedule(t, created.LoanID)
	if view.Total != 12 || len(view.Schedule) != 12 {
		t.Fatalf("schedule %d/%d rows, want 12/12", view.Total, len(view.Schedule))
	}
	if !view.EMIAmount.Equal(decimal.NewFromFloat(888.49)) {
		t.Fatalf("emi = %s, want 888.49", view.EMIAmount)
	}

	// Settle the first installment: Funded -> Active.
	code, body := a.pay(t, created.LoanID, view.Schedule[0].InstallmentID, 888.49, borrower.UserID)
	if code != stdhttp.StatusCreated {
		t.Fatalf("pay status = %d; body=%s", code, body)
	}
	var paid repayment.RepaymentDTO
	if err := json.Unmarshal([]byte(body), &paid); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if paid.Status != string(dominst.StatusPaid) || paid.PaymentDate == nil {
		t.Fatalf("installment %s with date %v, want Paid with date", paid.Status, paid.PaymentDate)
	}
	if paid.LoanStatus != string(domloan.StatusActive) {
		t.Fatalf("loan status = %s, want Active", paid.LoanStatus)
	}
	if paid.InstallmentsPaid != 1 {
		t.Fatalf("progress = %d, want 1", paid.InstallmentsPaid)
	}

	// Partial payment stays Pending.
	code, body = a.pay(t, created.LoanID, view.Schedule[1].InstallmentID, 400.00, borrower.UserID)
	if code != stdhttp.StatusCreated {
		t.Fatalf("partial pay status = %d; body=%s", code, body)
	}
	var partial repayment.RepaymentDTO
	if err := json.Unmarshal([]byte(body), &partial); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if partial.Status != string(dominst.StatusPending) || partial.PaymentDate != nil {
		t.Fatalf("installment %s with date %v, want Pending without date", partial.Status, partial.PaymentDate)
	}

	after := a.schedule(t, created.LoanID)
	if after.Paid != 1 {
		t.Fatalf("paid count = %d, want 1", after.Paid)
	}
	if len(after.Payments) != 2 {
		t.Fatalf("got %d payments, want 2", len(after.Payments))
	}
}

func TestPay_HandlerRejections(t *testing.T) {
	a := newAPI(t)
	borrower := a.seedUser(t, domuser.RoleBorrower)
	l := a.seedLoan(t, borrower.ID, "10000.00", domloan.StatusActive)

	paidAt := time.Now().UTC()
	rows := []dominst.Installment{
		{InstallmentID: id.NewID32(), LoanID: l.ID, InstallmentNumber: 1, DueDate: paidAt, AmountDue: decimal.NewFromFloat(888.49), AmountPaid: decimal.NewFromFloat(888.49), Status: dominst.StatusPaid, PaymentDate: &paidAt},
		{InstallmentID: id.NewID32(), LoanID: l.ID, InstallmentNumber: 2, DueDate: paidAt.AddDate(0, 1, 0), AmountDue: decimal.NewFromFloat(888.49), AmountPaid: decimal.Zero, Status: dominst.StatusPending},
	}
	if err := a.repos.Installments.CreateBatch(context.Background(), rows); err != nil {
		t.Fatalf("seed schedule: %v", err)
	}

	t.Run("already paid conflicts", func(t *testing.T) {
		code, body := a.pay(t, l.LoanID, rows[0].InstallmentID, 100.00, borrower.UserID)
		if code != stdhttp.StatusConflict {
			t.Fatalf("status = %d, want 409; body=%s", code, body)
		}
	})
	t.Run("unknown installment", func(t *testing.T) {
		code, body := a.pay(t, l.LoanID, id.NewID32(), 100.00, borrower.UserID)
		if code != stdhttp.StatusNotFound {
			t.Fatalf("status = %d, want 404; body=%s", code, body)
		}
	})
	t.Run("zero amount fails validation", func(t *testing.T) {
		code, body := a.pay(t, l.LoanID, rows[1].InstallmentID, 0, borrower.UserID)
		if code != stdhttp.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want 422; body=%s", code, body)
		}
	})
}

func TestOverdueSweep_Handler(t *testing.T) {
	a := newAPI(t)
	admin := a.seedUser(t, domuser.RoleAdmin)
	borrower := a.seedUser(t, domuser.RoleBorrower)
	l := a.seedLoan(t, borrower.ID, "10000.00", domloan.StatusActive)

	due := time.Now().UTC().AddDate(0, -2, 0)
	rows := []dominst.Installment{
		{InstallmentID: id.NewID32(), LoanID: l.ID, InstallmentNumber: 1, DueDate: due, AmountDue: decimal.NewFromFloat(888.49), AmountPaid: decimal.Zero, Status: dominst.StatusPending},
		{InstallmentID: id.NewID32(), LoanID: l.ID, InstallmentNumber: 2, DueDate: time.Now().UTC().AddDate(0, 1, 0), AmountDue: decimal.NewFromFloat(888.49), AmountPaid: decimal.Zero, Status: dominst.StatusPending},
	}
	if err := a.repos.Installments.CreateBatch(context.Background(), rows); err != nil {
		t.Fatalf("seed schedule: %v", err)
	}

	c, rec := a.ctxFor(stdhttp.MethodPost, "/overdue-sweeps", map[string]any{}, admin.UserID)
	if err := a.repayments.OverdueSweep(c); err != nil {
		t.Fatalf("OverdueSweep error: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}
	var dto repayment.OverdueDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if dto.Marked != 1 || len(dto.InstallmentIDs) != 1 || dto.InstallmentIDs[0] != rows[0].InstallmentID {
		t.Fatalf("sweep marked %d (%v), want row 1 only", dto.Marked, dto.InstallmentIDs)
	}

	t.Run("explicit cutoff", func(t *testing.T) {
		cutoff := time.Now().UTC().AddDate(0, 2, 0).Format(time.RFC3339)
		c, rec := a.ctxFor(stdhttp.MethodPost, "/overdue-sweeps", map[string]any{"as_of": cutoff}, admin.UserID)
		if err := a.repayments.OverdueSweep(c); err != nil {
			t.Fatalf("OverdueSweep error: %v", err)
		}
		if rec.Code != stdhttp.StatusOK {
			t.Fatalf("status = %d, want 200; body=%s", rec.Code, rec.Body.String())
		}
		var dto repayment.OverdueDTO
		if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
			t.Fatalf("bad json: %v", err)
		}
		if dto.Marked != 1 {
			t.Fatalf("second sweep marked %d, want 1 (the future row)", dto.Marked)
		}
	})

	t.Run("bad cutoff", func(t *testing.T) {
		c, rec := a.ctxFor(stdhttp.MethodPost, "/overdue-sweeps", map[string]any{"as_of": "yesterday"}, admin.UserID)
		if err := a.repayments.OverdueSweep(c); err != nil {
			t.Fatalf("OverdueSweep error: %v", err)
		}
		if rec.Code != stdhttp.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("unknown actor", func(t *testing.T) {
		c, rec := a.ctxFor(stdhttp.MethodPost, "/overdue-sweeps", map[string]any{}, id.NewID32())
		if err := a.repayments.OverdueSweep(c); err != nil {
			t.Fatalf("OverdueSweep error: %v", err)
		}
		if rec.Code != stdhttp.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})
}
