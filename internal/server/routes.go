package server

import (
	"eventmart/internal/handler"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Health     *handler.HealthHandler
	Cart       *handler.CartHandler
	Order      *handler.OrderHandler
	CheckIn    *handler.CheckInHandler
	AdminOrder *handler.AdminOrderHandler
}

// auth は認証済みの操作者を context に入れるミドルウェア
func RegisterRoutes(e *echo.Echo, auth echo.MiddlewareFunc, h Handlers) {
	h.Health.RegisterRoutes(e)
	h.Cart.RegisterRoutes(e, auth)
	h.Order.RegisterRoutes(e, auth)
	h.CheckIn.RegisterRoutes(e, auth)
	h.AdminOrder.RegisterRoutes(e, auth)
}
