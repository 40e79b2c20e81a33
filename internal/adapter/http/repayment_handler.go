package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/nancy-13-hue/p2p-lending-database/internal/usecase/repayment"
)

type RepaymentHandler struct {
	repayments *repayment.Usecase
}

func NewRepaymentHandler(repayments *repayment.Usecase) *RepaymentHandler {
	return &RepaymentHandler{repayments: repayments}
}

type payReq struct {
	Amount float64 `json:"amount" validate:"required,gt=0,dec2"`
}

func (h *RepaymentHandler) Pay(c echo.Context) error {
	var req payReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.repayments.ApplyRepayment(c.Request().Context(), repayment.ApplyRepaymentInput{
		LoanID:        c.Param("loan_id"),
		InstallmentID: c.Param("installment_id"),
		Amount:        decimal.NewFromFloat(req.Amount).Round(2),
		ActingUserID:  actingUserID(c),
	})
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

type overdueSweepReq struct {
	// RFC3339 cutoff; empty means "now".
	AsOf string `json:"as_of"`
}

func (h *RepaymentHandler) OverdueSweep(c echo.Context) error {
	var req overdueSweepReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	asOf := time.Now().UTC()
	if req.AsOf != "" {
		t, err := time.Parse(time.RFC3339, req.AsOf)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "as_of must be RFC3339"})
		}
		asOf = t.UTC()
	}
	dto, err := h.repayments.MarkOverdue(c.Request().Context(), asOf, actingUserID(c))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
