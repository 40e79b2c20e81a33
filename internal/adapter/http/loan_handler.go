package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/nancy-13-hue/p2p-lending-database/internal/usecase/loan"
	"github.com/nancy-13-hue/p2p-lending-database/internal/usecase/query"
)

type LoanHandler struct {
	loans   *loan.Usecase
	queries *query.Usecase
}

func NewLoanHandler(loans *loan.Usecase, queries *query.Usecase) *LoanHandler {
	return &LoanHandler{loans: loans, queries: queries}
}

type createLoanReq struct {
	BorrowerID      string  `json:"borrower_id"      validate:"required,hex32"`
	AmountRequested float64 `json:"amount_requested" validate:"required,gt=0,dec2"`
	InterestRate    float64 `json:"interest_rate"    validate:"gte=0,dec2"`
	DurationMonths  int     `json:"duration_months"  validate:"required,gte=1,lte=360"`
}

func (h *LoanHandler) CreateLoan(c echo.Context) error {
	var req createLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.loans.Create(c.Request().Context(), loan.CreateLoanInput{
		BorrowerID:      req.BorrowerID,
		AmountRequested: decimal.NewFromFloat(req.AmountRequested).Round(2),
		InterestRate:    decimal.NewFromFloat(req.InterestRate).Round(2),
		DurationMonths:  req.DurationMonths,
		ActingUserID:    actingUserID(c),
	})
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) ListLoans(c echo.Context) error {
	out, err := h.queries.ActiveLoans(c.Request().Context())
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"loans": out})
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	dto, err := h.loans.Get(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type changeStatusReq struct {
	Status  string `json:"status" validate:"required"`
	Remarks string `json:"remarks"`
}

func (h *LoanHandler) ChangeStatus(c echo.Context) error {
	var req changeStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.loans.ChangeStatus(c.Request().Context(), loan.ChangeStatusInput{
		LoanID:       c.Param("loan_id"),
		NewStatus:    req.Status,
		ActingUserID: actingUserID(c),
		Remarks:      req.Remarks,
	})
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) FundingProgress(c echo.Context) error {
	dto, err := h.queries.FundingProgress(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) RepaymentHistory(c echo.Context) error {
	dto, err := h.queries.RepaymentHistory(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
