package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"eventmart/internal/domain/model"
	"eventmart/internal/infra/db"
	infraRepo "eventmart/internal/infra/repository"
	"eventmart/internal/usecase"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// =====================
// テスト用の部品
// =====================

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

type fakeGateway struct {
	mu    sync.Mutex
	fail  bool
	calls []usecase.PaymentRequest
}

func (g *fakeGateway) Checkout(_ context.Context, req usecase.PaymentRequest) (usecase.PaymentRedirect, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, req)
	if g.fail {
		return usecase.PaymentRedirect{}, errors.New("gateway down")
	}
	return usecase.PaymentRedirect{
		URL: "https://pay.example.test/checkout",
		FormFields: map[string]string{
			"MerchantTradeNo": req.OrderNumber,
			"TotalAmount":     req.TotalAmount.String(),
		},
	}, nil
}

func (g *fakeGateway) setFail(v bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fail = v
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []usecase.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, msg usecase.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return nil
}

func (n *recordingNotifier) ofType(typ usecase.NotificationType) []usecase.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := []usecase.Notification{}
	for _, m := range n.sent {
		if m.Type == typ {
			out = append(out, m)
		}
	}
	return out
}

// =====================
// SQLite 上の実repoで組んだ環境
// =====================

type testEnv struct {
	db       *gorm.DB
	clock    *fakeClock
	gateway  *fakeGateway
	notifier *recordingNotifier

	carts    *usecase.CartUsecase
	orders   *usecase.OrderUsecase
	checkIns *usecase.CheckInUsecase
	admin    *usecase.AdminOrderUsecase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gdb, err := db.ConnectSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	env := &testEnv{
		db:       gdb,
		clock:    newFakeClock(),
		gateway:  &fakeGateway{},
		notifier: &recordingNotifier{},
	}
	log := zerolog.Nop()
	txm := infraRepo.NewTxManagerGorm(gdb)

	env.carts = usecase.NewCartUsecase(
		infraRepo.NewCartGormRepository(gdb),
		infraRepo.NewCatalogGormRepository(gdb),
		env.clock, log,
	)
	env.orders = usecase.NewOrderUsecase(txm, env.gateway, env.notifier, env.clock, usecase.UUIDCodes{},
		usecase.OrderConfig{ReservationWindow: 30 * time.Minute, SweepBatch: 50}, log)
	env.checkIns = usecase.NewCheckInUsecase(txm, env.notifier, env.clock, log)
	env.admin = usecase.NewAdminOrderUsecase(txm, infraRepo.NewAuditLogGormRepository(gdb), env.clock, true, log)
	return env
}

func buyer(id int64) model.Principal {
	return model.Principal{UserID: id, Role: model.RoleBuyer}
}

func staff(id int64) model.Principal {
	return model.Principal{UserID: id, Role: model.RoleStaff}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (e *testEnv) seedEvent(t *testing.T, organizerID int64, name string) model.Event {
	t.Helper()
	ev := model.Event{OrganizerID: organizerID, Name: name, Venue: "Hall A", StartsAt: e.clock.Now().Add(14 * 24 * time.Hour)}
	require.NoError(t, e.db.Create(&ev).Error)
	return ev
}

func (e *testEnv) seedTicketType(t *testing.T, eventID int64, name string, price string, qty int64) model.TicketType {
	t.Helper()
	tt := model.TicketType{EventID: eventID, Name: name, Price: dec(price), TotalQuantity: qty}
	require.NoError(t, e.db.Create(&tt).Error)
	return tt
}

func (e *testEnv) seedVariant(t *testing.T, productName string, basePrice string, offset string, stock int64) model.ProductVariant {
	t.Helper()
	p := model.Product{Name: productName, BasePrice: dec(basePrice), IsActive: true}
	require.NoError(t, e.db.Create(&p).Error)
	v := model.ProductVariant{ProductID: p.ID, Name: "M", StockQuantity: stock, PriceOffset: dec(offset)}
	require.NoError(t, e.db.Create(&v).Error)
	return v
}

func (e *testEnv) variantStock(t *testing.T, id int64) int64 {
	t.Helper()
	var v model.ProductVariant
	require.NoError(t, e.db.First(&v, id).Error)
	return v.StockQuantity
}

func (e *testEnv) ticketCapacity(t *testing.T, id int64) int64 {
	t.Helper()
	var tt model.TicketType
	require.NoError(t, e.db.First(&tt, id).Error)
	return tt.TotalQuantity
}

func (e *testEnv) orderStatus(t *testing.T, id int64) model.OrderStatus {
	t.Helper()
	var o model.Order
	require.NoError(t, e.db.First(&o, id).Error)
	return o.Status
}

func (e *testEnv) count(t *testing.T, m interface{}, where ...interface{}) int64 {
	t.Helper()
	var n int64
	q := e.db.Model(m)
	if len(where) > 0 {
		q = q.Where(where[0], where[1:]...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func attendees(n int) []usecase.AttendeeInput {
	out := make([]usecase.AttendeeInput, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, usecase.AttendeeInput{
			Name:  "Attendee " + string(rune('A'+i)),
			Email: "attendee" + string(rune('a'+i)) + "@example.com",
			Phone: "0912345678",
		})
	}
	return out
}

func checkoutInput(total string, att []usecase.AttendeeInput) usecase.CreateOrderInput {
	return usecase.CreateOrderInput{
		BillingName:    "Jordan Lee",
		BillingPhone:   "0987654321",
		BillingAddress: "1 Main St",
		PaymentMethod:  usecase.PaymentMethodCreditCard,
		DeliveryMethod: "e_ticket",
		SubmittedTotal: dec(total),
		Attendees:      att,
	}
}

func requireKind(t *testing.T, err error, kind usecase.ErrorKind) *usecase.HTTPError {
	t.Helper()
	require.Error(t, err)
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok, "expected HTTPError, got %v", err)
	require.Equal(t, kind, he.Kind, he.Message)
	return he
}

func decFromInt(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}
