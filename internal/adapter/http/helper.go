package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/installment"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/investment"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/loan"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/user"
)

// HeaderUserID carries the acting user's public id on mutating requests.
const HeaderUserID = "Ax-User-Id"

func actingUserID(c echo.Context) string {
	return strings.TrimSpace(c.Request().Header.Get(HeaderUserID))
}

// statusFor translates domain sentinels to HTTP status codes. Unknown
// errors are treated as storage failures.
func statusFor(err error) int {
	switch {
	case errors.Is(err, loan.ErrNotFound),
		errors.Is(err, user.ErrNotFound),
		errors.Is(err, investment.ErrNotFound),
		errors.Is(err, installment.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, loan.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, loan.ErrInvalidState),
		errors.Is(err, loan.ErrInvalidTransition),
		errors.Is(err, investment.ErrInvalidWithdrawal),
		errors.Is(err, installment.ErrAlreadyPaid),
		errors.Is(err, user.ErrAccountInactive):
		return http.StatusConflict
	case errors.Is(err, loan.ErrConcurrencyConflict):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// jsonError writes the mapped status with the sentinel text. Internal
// failures never leak their cause to the client.
func jsonError(c echo.Context, err error) error {
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		msg = "internal error"
	}
	return c.JSON(code, ErrorResponse{Error: msg})
}
