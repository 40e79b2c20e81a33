package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	domloan "github.com/nancy-13-hue/p2p-lending-database/internal/domain/loan"
	domuser "github.com/nancy-13-hue/p2p-lending-database/internal/domain/user"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/uow"
	"github.com/nancy-13-hue/p2p-lending-database/internal/testutil/memstore"
	"github.com/nancy-13-hue/p2p-lending-database/internal/usecase/funding"
	loanuc "github.com/nancy-13-hue/p2p-lending-database/internal/usecase/loan"
	"github.com/nancy-13-hue/p2p-lending-database/internal/usecase/query"
	"github.com/nancy-13-hue/p2p-lending-database/internal/usecase/repayment"
	useruc "github.com/nancy-13-hue/p2p-lending-database/internal/usecase/user"
	"github.com/nancy-13-hue/p2p-lending-database/pkg/id"
)

// -------- shared fixture --------

// api wires every handler against one in-memory store, the way cmd/api
// wires them against MySQL.
type api struct {
	store *memstore.Store
	repos uow.Repos
	e     *echo.Echo

	loans       *LoanHandler
	investments *InvestmentHandler
	repayments  *RepaymentHandler
	users       *UserHandler
	audits      *AuditHandler
}

func newAPI(t *testing.T) *api {
	t.Helper()
	s := memstore.New()
	r := s.Repos()

	queries := query.NewUsecase(r.Loans, r.Fundings, r.Users, r.Investments, r.Installments, r.Ledger, r.Audits)
	e := echo.New()
	e.Validator = NewValidator()

	return &api{
		store:       s,
		repos:       r,
		e:           e,
		loans:       NewLoanHandler(loanuc.NewUsecase(r.Loans, r.Fundings, r.Users, s, nil, 3), queries),
		investments: NewInvestmentHandler(funding.NewUsecase(r.Loans, r.Investments, s, nil, 3), queries),
		repayments:  NewRepaymentHandler(repayment.NewUsecase(s, nil, 3)),
		users:       NewUserHandler(useruc.NewUsecase(s, nil), queries),
		audits:      NewAuditHandler(queries),
	}
}

func (a *api) seedUser(t *testing.T, role domuser.Role) *domuser.User {
	t.Helper()
	u := &domuser.User{
		UserID:        id.NewID32(),
		Name:          "someone",
		Email:         id.NewID32() + "@example.com",
		Role:          role,
		AccountStatus: domuser.AccountActive,
	}
	if err := a.repos.Users.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func (a *api) seedLoan(t *testing.T, borrowerID uint64, principal string, status domloan.Status) *domloan.Loan {
	t.Helper()
	ctx := context.Background()
	amount, err := decimal.NewFromString(principal)
	if err != nil {
		t.Fatalf("bad principal %q: %v", principal, err)
	}
	l := &domloan.Loan{
		LoanID:          id.NewID32(),
		BorrowerID:      borrowerID,
		AmountRequested: amount,
		InterestRate:    decimal.NewFromInt(12),
		DurationMonths:  12,
		EMIAmount:       decimal.NewFromFloat(888.49),
		FundedAmount:    decimal.Zero,
		Status:          status,
	}
	if err := a.repos.Loans.Create(ctx, l); err != nil {
		t.Fatalf("seed loan: %v", err)
	}
	f := &domloan.FundingRecord{
		LoanID:        l.ID,
		TotalRequired: amount,
		TotalFunded:   decimal.Zero,
		FundingStatus: domloan.FundingPartial,
	}
	if err := a.repos.Fundings.Create(ctx, f); err != nil {
		t.Fatalf("seed funding: %v", err)
	}
	return l
}

func mustJSON(v any) *bytes.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

// ctxFor builds an echo context for a JSON request. actor goes into the
// Ax-User-Id header when non-empty.
func (a *api) ctxFor(method, target string, body any, actor string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, mustJSON(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if actor != "" {
		req.Header.Set(HeaderUserID, actor)
	}
	rec := httptest.NewRecorder()
	return a.e.NewContext(req, rec), rec
}

func decodeErr(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var er ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
		t.Fatalf("bad error json: %v; raw=%s", err, rec.Body.String())
	}
	return er
}

// -------- health --------

func TestHealth_ReturnsOKWithRFC3339NanoUTC(t *testing.T) {
	e := echo.New()
	h := NewHealthHandler()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	start := time.Now().UTC()

	if err := h.Health(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	ct := rec.Header().Get(echo.HeaderContentType)
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		t.Fatalf("expected Content-Type application/json, got %q", ct)
	}

	var body struct {
		Status string `json:"status"`
		Time   string `json:"time"`
		Uptime string `json:"uptime"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v; raw=%s", err, rec.Body.String())
	}
	if body.Status != "ok" {
		t.Fatalf(`expected status "ok", got %q`, body.Status)
	}
	if body.Uptime == "" {
		t.Fatalf("expected non-empty uptime")
	}

	parsed, err := time.Parse(time.RFC3339Nano, body.Time)
	if err != nil {
		t.Fatalf("time not RFC3339Nano: %v (value=%q)", err, body.Time)
	}
	if parsed.Location() != time.UTC {
		t.Fatalf("expected UTC location, got %v", parsed.Location())
	}
	now := time.Now().UTC()
	if parsed.Before(start.Add(-2*time.Second)) || parsed.After(now.Add(2*time.Second)) {
		t.Fatalf("time not within expected window: parsed=%v start=%v now=%v", parsed, start, now)
	}
}
