package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/nancy-13-hue/p2p-lending-database/internal/usecase/funding"
	"github.com/nancy-13-hue/p2p-lending-database/internal/usecase/query"
)

type InvestmentHandler struct {
	fundings *funding.Usecase
	queries  *query.Usecase
}

func NewInvestmentHandler(fundings *funding.Usecase, queries *query.Usecase) *InvestmentHandler {
	return &InvestmentHandler{fundings: fundings, queries: queries}
}

type applyInvestmentReq struct {
	InvestorID string  `json:"investor_id" validate:"required,hex32"`
	Amount     float64 `json:"amount"      validate:"required,gt=0,dec2"`
}

func (h *InvestmentHandler) ApplyInvestment(c echo.Context) error {
	var req applyInvestmentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.fundings.ApplyInvestment(c.Request().Context(), funding.ApplyInvestmentInput{
		LoanID:       c.Param("loan_id"),
		InvestorID:   req.InvestorID,
		Amount:       decimal.NewFromFloat(req.Amount).Round(2),
		ActingUserID: actingUserID(c),
	})
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

type withdrawReq struct {
	InvestorID string `json:"investor_id" validate:"required,hex32"`
}

func (h *InvestmentHandler) Withdraw(c echo.Context) error {
	var req withdrawReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.fundings.WithdrawInvestment(c.Request().Context(), funding.WithdrawInput{
		InvestmentID: c.Param("investment_id"),
		InvestorID:   req.InvestorID,
		ActingUserID: actingUserID(c),
	})
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *InvestmentHandler) Portfolio(c echo.Context) error {
	dto, err := h.queries.PortfolioByInvestor(c.Request().Context(), c.Param("investor_id"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
