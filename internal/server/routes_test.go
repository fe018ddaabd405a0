package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"eventmart/internal/domain/model"
	"eventmart/internal/handler"
	"eventmart/internal/infra/db"
	"eventmart/internal/infra/notify"
	"eventmart/internal/infra/payment"
	infraRepo "eventmart/internal/infra/repository"
	"eventmart/internal/middleware"
	"eventmart/internal/server"
	"eventmart/internal/usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const jwtSecret = "test-secret"

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type app struct {
	e  *echo.Echo
	db *gorm.DB
}

// main と同じ組み立てを SQLite で行う
func newApp(t *testing.T) *app {
	t.Helper()

	gdb, err := db.ConnectSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	log := zerolog.Nop()
	clock := fixedClock{now: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
	txm := infraRepo.NewTxManagerGorm(gdb)
	gateway := payment.NewECPayGateway(payment.Config{
		GatewayURL: "https://payment-stage.example.test/Cashier/AioCheckOut/V5",
		MerchantID: "3002607",
		HashKey:    "k",
		HashIV:     "v",
		ReturnURL:  "https://api.example.test/payments/notify",
	})
	notifier := notify.NewLogNotifier(log)

	cartUC := usecase.NewCartUsecase(infraRepo.NewCartGormRepository(gdb), infraRepo.NewCatalogGormRepository(gdb), clock, log)
	orderUC := usecase.NewOrderUsecase(txm, gateway, notifier, clock, usecase.UUIDCodes{}, usecase.OrderConfig{ReservationWindow: 30 * time.Minute}, log)
	checkInUC := usecase.NewCheckInUsecase(txm, notifier, clock, log)
	adminUC := usecase.NewAdminOrderUsecase(txm, infraRepo.NewAuditLogGormRepository(gdb), clock, false, log)

	e := server.New(log)
	server.RegisterRoutes(e, middleware.AuthJWT(jwtSecret), server.Handlers{
		Health:     handler.NewHealthHandler(sqlDB),
		Cart:       handler.NewCartHandler(cartUC),
		Order:      handler.NewOrderHandler(orderUC),
		CheckIn:    handler.NewCheckInHandler(checkInUC),
		AdminOrder: handler.NewAdminOrderHandler(adminUC),
	})
	return &app{e: e, db: gdb}
}

func token(t *testing.T, userID int64, role model.Role) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"exp":  9999999999,
	}).SignedString([]byte(jwtSecret))
	require.NoError(t, err)
	return s
}

func (a *app) do(t *testing.T, method, path, tok string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if tok != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

type errorBody struct {
	Error   string                 `json:"error"`
	Kind    string                 `json:"kind"`
	Details map[string]interface{} `json:"details"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (a *app) seed(t *testing.T) (ticketTypeID int64, variantID int64) {
	t.Helper()
	ev := model.Event{OrganizerID: 900, Name: "Summer Fest", StartsAt: time.Date(2026, 4, 1, 18, 0, 0, 0, time.UTC)}
	require.NoError(t, a.db.Create(&ev).Error)
	tt := model.TicketType{EventID: ev.ID, Name: "VIP", Price: decimal.NewFromInt(1000), TotalQuantity: 10}
	require.NoError(t, a.db.Create(&tt).Error)
	p := model.Product{Name: "Festival Tee", BasePrice: decimal.NewFromInt(200), IsActive: true}
	require.NoError(t, a.db.Create(&p).Error)
	v := model.ProductVariant{ProductID: p.ID, Name: "M", StockQuantity: 5}
	require.NoError(t, a.db.Create(&v).Error)
	return tt.ID, v.ID
}

func orderBody(total interface{}) map[string]interface{} {
	b := map[string]interface{}{
		"billing_name":   "Jordan Lee",
		"billing_phone":  "0987654321",
		"payment_method": "credit_card",
		"attendees": []map[string]string{
			{"name": "Jordan Lee", "email": "jordan@example.com", "phone": "0987654321"},
		},
	}
	if total != nil {
		b["total_amount"] = total
	}
	return b
}

func TestHealthz(t *testing.T) {
	a := newApp(t)
	rec := a.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoutes_RequireAuth(t *testing.T) {
	a := newApp(t)
	for _, path := range []string{"/cart", "/orders"} {
		rec := a.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	//購入者は入場・管理APIに入れない
	buyer := token(t, 1, model.RoleBuyer)
	rec := a.do(t, http.MethodPost, "/check-in/verify", buyer, map[string]string{"code": "TKT-x"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = a.do(t, http.MethodPost, "/admin/orders/1/mark-paid", buyer, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// カート → 注文 → 入場 を HTTP 越しに通す
func TestPurchaseAndCheckInFlow(t *testing.T) {
	a := newApp(t)
	ticketTypeID, variantID := a.seed(t)
	buyer := token(t, 1, model.RoleBuyer)
	staff := token(t, 50, model.RoleStaff)

	rec := a.do(t, http.MethodPost, "/cart/tickets", buyer, map[string]int64{"ticket_type_id": ticketTypeID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = a.do(t, http.MethodPost, "/cart/products", buyer, map[string]int64{"variant_id": variantID, "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	cart := decode[usecase.CartResponse](t, rec)
	assert.True(t, cart.Subtotal.Equal(decimal.NewFromInt(1400)))

	//合計の送り忘れ
	rec = a.do(t, http.MethodPost, "/orders", buyer, orderBody(nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodPost, "/orders", buyer, orderBody(1300))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(usecase.KindAmountMismatch), decode[errorBody](t, rec).Kind)

	rec = a.do(t, http.MethodPost, "/orders", buyer, orderBody("1400"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[usecase.CreateOrderOutput](t, rec)
	assert.NotZero(t, created.OrderID)
	require.NotNil(t, created.PaymentRedirect)
	assert.Equal(t, "1400", created.PaymentRedirect.FormFields["TotalAmount"])
	assert.Len(t, created.PaymentRedirect.FormFields["CheckMacValue"], 64)
	require.Len(t, created.Order.Tickets, 1)
	code := created.Order.Tickets[0].Code

	orderPath := "/orders/" + strconv.FormatInt(created.OrderID, 10)
	rec = a.do(t, http.MethodGet, orderPath, token(t, 2, model.RoleBuyer), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(t, http.MethodPost, orderPath+"/repay", buyer, nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodPost, "/check-in/verify", staff, map[string]string{"code": code})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	scanned := decode[usecase.CheckInOutput](t, rec)
	assert.Equal(t, "Jordan Lee", scanned.AttendeeName)
	assert.Equal(t, "Summer Fest", scanned.EventName)

	rec = a.do(t, http.MethodPost, "/check-in/verify", staff, map[string]string{"code": code})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(usecase.KindAlreadyUsed), decode[errorBody](t, rec).Kind)

	//入場済みの注文はキャンセルできない
	rec = a.do(t, http.MethodDelete, orderPath, buyer, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(usecase.KindInvalidState), decode[errorBody](t, rec).Kind)

	rec = a.do(t, http.MethodGet, orderPath, buyer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.OrderStatusCompleted, decode[usecase.OrderOutput](t, rec).Status)
}

func TestStockConflictOverHTTP(t *testing.T) {
	a := newApp(t)
	_, variantID := a.seed(t)
	buyer := token(t, 1, model.RoleBuyer)

	rec := a.do(t, http.MethodPost, "/cart/products", buyer, map[string]int64{"variant_id": variantID, "quantity": 6})
	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decode[errorBody](t, rec)
	assert.Equal(t, string(usecase.KindStockConflict), body.Kind)
	assert.Equal(t, "Festival Tee (M)", body.Details["item"])
	assert.Equal(t, float64(5), body.Details["remaining"])
}

func TestManualPaymentDisabled(t *testing.T) {
	a := newApp(t)
	rec := a.do(t, http.MethodPost, "/admin/orders/1/mark-paid", token(t, 60, model.RoleAdmin), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
