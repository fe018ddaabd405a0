package handler

import (
	"net/http"

	"eventmart/internal/domain/model"
	"eventmart/internal/middleware"
	"eventmart/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 入場ゲートのスタッフ端末から呼ばれる
type CheckInHandler struct {
	uc *usecase.CheckInUsecase
}

func NewCheckInHandler(uc *usecase.CheckInUsecase) *CheckInHandler {
	return &CheckInHandler{uc: uc}
}

type VerifyTicketRequest struct {
	Code string `json:"code"`
}

func (h *CheckInHandler) RegisterRoutes(e *echo.Echo, auth echo.MiddlewareFunc) {
	g := e.Group("/check-in")
	g.Use(auth)
	g.Use(middleware.RoleGuard(model.RoleStaff, model.RoleOrganizer, model.RoleAdmin))

	g.POST("/verify", h.verify)
}

func (h *CheckInHandler) verify(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}

	var req VerifyTicketRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.Verify(c.Request().Context(), p, req.Code)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
