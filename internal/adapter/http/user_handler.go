package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nancy-13-hue/p2p-lending-database/internal/usecase/query"
	"github.com/nancy-13-hue/p2p-lending-database/internal/usecase/user"
)

type UserHandler struct {
	users   *user.Usecase
	queries *query.Usecase
}

func NewUserHandler(users *user.Usecase, queries *query.Usecase) *UserHandler {
	return &UserHandler{users: users, queries: queries}
}

type registerReq struct {
	Name  string `json:"name"  validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role"  validate:"required,oneof=borrower investor admin"`
}

func (h *UserHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.users.Register(c.Request().Context(), user.RegisterInput{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	})
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *UserHandler) Transactions(c echo.Context) error {
	dto, err := h.queries.TransactionsByUser(c.Request().Context(), c.Param("user_id"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
