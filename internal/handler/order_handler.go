package handler

import (
	"net/http"
	"strconv"

	"eventmart/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

type AttendeeRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Gender string `json:"gender"`
}

type OrderCreateRequest struct {
	BillingName    string `json:"billing_name"`
	BillingPhone   string `json:"billing_phone"`
	BillingAddress string `json:"billing_address"`
	PaymentMethod  string `json:"payment_method"`
	DeliveryMethod string `json:"delivery_method"`
	CouponCode     string `json:"coupon_code"`
	// 数値でも文字列でも受ける（decimal の UnmarshalJSON）
	TotalAmount *decimal.Decimal  `json:"total_amount"`
	Attendees   []AttendeeRequest `json:"attendees"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, auth echo.MiddlewareFunc) {
	g := e.Group("/orders")
	g.Use(auth)

	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.detail)
	g.DELETE("/:id", h.cancel)
	g.POST("/:id/repay", h.repay)
}

func (h *OrderHandler) create(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}

	var req OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.TotalAmount == nil {
		return badRequest(c, "total_amount is required")
	}

	attendees := make([]usecase.AttendeeInput, 0, len(req.Attendees))
	for _, a := range req.Attendees {
		attendees = append(attendees, usecase.AttendeeInput{
			Name:   a.Name,
			Email:  a.Email,
			Phone:  a.Phone,
			Gender: a.Gender,
		})
	}

	out, err := h.uc.CreateOrder(c.Request().Context(), p, usecase.CreateOrderInput{
		BillingName:    req.BillingName,
		BillingPhone:   req.BillingPhone,
		BillingAddress: req.BillingAddress,
		PaymentMethod:  req.PaymentMethod,
		DeliveryMethod: req.DeliveryMethod,
		CouponCode:     req.CouponCode,
		SubmittedTotal: *req.TotalAmount,
		Attendees:      attendees,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) list(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}

	page := 1
	if v := c.QueryParam("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return badRequest(c, "invalid page")
		}
		page = n
	}
	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return badRequest(c, "invalid limit")
		}
		limit = n
	}

	out, err := h.uc.ListMyOrders(c.Request().Context(), p, page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid id")
	}

	out, err := h.uc.GetMyOrder(c.Request().Context(), p, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) cancel(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid id")
	}

	if err := h.uc.CancelOrder(c.Request().Context(), p, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "cancelled"})
}

func (h *OrderHandler) repay(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid id")
	}

	out, err := h.uc.RepayOrder(c.Request().Context(), p, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"paymentRedirect": out})
}
