package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/nancy-13-hue/p2p-lending-database/internal/usecase/query"
)

type AuditHandler struct {
	queries *query.Usecase
}

func NewAuditHandler(queries *query.Usecase) *AuditHandler {
	return &AuditHandler{queries: queries}
}

// AuditLog lists recent audit rows. ?limit=N; omitted or non-numeric
// falls back to the store default.
func (h *AuditHandler) AuditLog(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	out, err := h.queries.AuditLog(c.Request().Context(), limit)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"entries": out})
}
