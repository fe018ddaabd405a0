package handler

import (
	"net/http"
	"strconv"
	"time"

	"eventmart/internal/domain/model"
	"eventmart/internal/middleware"
	"eventmart/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminOrderHandler struct {
	uc *usecase.AdminOrderUsecase
}

func NewAdminOrderHandler(uc *usecase.AdminOrderUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc}
}

func (h *AdminOrderHandler) RegisterRoutes(e *echo.Echo, auth echo.MiddlewareFunc) {
	admin := e.Group("/admin")
	admin.Use(auth)
	admin.Use(middleware.RoleGuard(model.RoleAdmin, model.RoleStaff))

	admin.POST("/orders/:id/mark-paid", h.markPaid)
	admin.GET("/audit-logs", h.auditLogs)
}

func (h *AdminOrderHandler) markPaid(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid id")
	}

	if err := h.uc.MarkPaid(c.Request().Context(), p, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "paid"})
}

func (h *AdminOrderHandler) auditLogs(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}

	in := usecase.AuditLogListInput{Action: c.QueryParam("action")}

	if v := c.QueryParam("resource_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return badRequest(c, "invalid resource_id")
		}
		in.ResourceID = &id
	}
	if v := c.QueryParam("from"); v != "" {
		tm, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return badRequest(c, "invalid from")
		}
		in.From = &tm
	}
	if v := c.QueryParam("to"); v != "" {
		tm, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return badRequest(c, "invalid to")
		}
		in.To = &tm
	}
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return badRequest(c, "invalid limit")
		}
		in.Limit = n
	}
	if v := c.QueryParam("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return badRequest(c, "invalid offset")
		}
		in.Offset = n
	}

	out, err := h.uc.ListAuditLogs(c.Request().Context(), p, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
