package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"eventmart/internal/domain/model"
	repo "eventmart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// 予約期限の既定値
const DefaultReservationWindow = 30 * time.Minute

const (
	PaymentMethodCreditCard       = "credit_card"
	PaymentMethodATM              = "atm"
	PaymentMethodConvenienceStore = "convenience_store"
)

var validPaymentMethods = map[string]bool{
	PaymentMethodCreditCard:       true,
	PaymentMethodATM:              true,
	PaymentMethodConvenienceStore: true,
}

var validDeliveryMethods = map[string]bool{
	"e_ticket":      true,
	"pickup":        true,
	"home_delivery": true,
}

type OrderConfig struct {
	ReservationWindow time.Duration
	// 1回の掃除で見る注文数
	SweepBatch int
}

// OrderUsecase はカート→注文→キャンセル/期限切れの一連を扱う。
// 在庫・注文ステータスの変更は必ず1つのTxの中で前提条件と一緒に書く
type OrderUsecase struct {
	tx       repo.TransactionManager
	gateway  PaymentGateway
	notifier Notifier
	clock    Clock
	codes    CodeGenerator
	cfg      OrderConfig
	log      zerolog.Logger
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	gateway PaymentGateway,
	notifier Notifier,
	clock Clock,
	codes CodeGenerator,
	cfg OrderConfig,
	log zerolog.Logger,
) *OrderUsecase {
	if cfg.ReservationWindow <= 0 {
		cfg.ReservationWindow = DefaultReservationWindow
	}
	if cfg.SweepBatch <= 0 {
		cfg.SweepBatch = 200
	}
	return &OrderUsecase{
		tx:       tx,
		gateway:  gateway,
		notifier: notifier,
		clock:    clock,
		codes:    codes,
		cfg:      cfg,
		log:      log,
	}
}

type AttendeeInput struct {
	Name   string
	Email  string
	Phone  string
	Gender string
}

type CreateOrderInput struct {
	BillingName    string
	BillingPhone   string
	BillingAddress string
	PaymentMethod  string
	DeliveryMethod string
	CouponCode     string
	// クライアントが表示していた合計（サーバー側の計算と一致しなければ拒否）
	SubmittedTotal decimal.Decimal
	Attendees      []AttendeeInput
}

type OrderItemOutput struct {
	ID                 int64           `json:"id"`
	ItemType           model.ItemType  `json:"item_type"`
	ItemName           string          `json:"item_name"`
	VariantDescription string          `json:"variant_description"`
	Quantity           int64           `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	LineTotal          decimal.Decimal `json:"line_total"`
}

type TicketOutput struct {
	ID            int64              `json:"id"`
	Code          string             `json:"code"`
	Status        model.TicketStatus `json:"status"`
	EventID       int64              `json:"event_id"`
	TicketTypeID  int64              `json:"ticket_type_id"`
	AttendeeName  string             `json:"attendee_name"`
	AttendeeEmail string             `json:"attendee_email"`
	UsedAt        *time.Time         `json:"used_at,omitempty"`
}

type OrderOutput struct {
	ID             int64             `json:"id"`
	OrderNumber    string            `json:"order_number"`
	UserID         int64             `json:"user_id"`
	Status         model.OrderStatus `json:"status"`
	BillingName    string            `json:"billing_name"`
	BillingPhone   string            `json:"billing_phone"`
	BillingAddress string            `json:"billing_address"`
	PaymentMethod  string            `json:"payment_method"`
	DeliveryMethod string            `json:"delivery_method"`
	Subtotal       decimal.Decimal   `json:"subtotal"`
	DiscountAmount decimal.Decimal   `json:"discount_amount"`
	TotalAmount    decimal.Decimal   `json:"total_amount"`
	ExpiresAt      time.Time         `json:"expires_at"`
	CreatedAt      time.Time         `json:"created_at"`
	Items          []OrderItemOutput `json:"items"`
	Tickets        []TicketOutput    `json:"tickets"`
}

type CreateOrderOutput struct {
	OrderID int64       `json:"orderId"`
	Order   OrderOutput `json:"order"`
	// 決済側の失敗時は nil（注文はPENDINGのまま残り、repayできる）
	PaymentRedirect *PaymentRedirect `json:"paymentRedirect"`
}

type OrderListOutput struct {
	Items []OrderOutput `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// 掃除1回分の結果
type SweepResult struct {
	Scanned int `json:"scanned"`
	Expired int `json:"expired"`
	// 他の操作が先に状態を変えていた
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// カートから注文を作る。
// 在庫の確認・減算、明細とチケットの作成、カートのクリアまでを1つのTxで行う
func (u *OrderUsecase) CreateOrder(ctx context.Context, p model.Principal, in CreateOrderInput) (CreateOrderOutput, error) {
	if p.UserID <= 0 {
		return CreateOrderOutput{}, errUnauthorized()
	}
	if err := in.validate(); err != nil {
		return CreateOrderOutput{}, err
	}

	now := u.clock.Now()
	var (
		order   model.Order
		items   []model.OrderItem
		tickets []model.Ticket
	)

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().FindByUserID(ctx, p.UserID)
		if errors.Is(err, repo.ErrNotFound) {
			return errValidation("cart is empty")
		}
		if err != nil {
			return u.fault(err, p.UserID, "find cart")
		}

		//在庫行をロックして1つのスナップショットで全明細を確認する
		snap, err := resolveCart(ctx, r.Carts(), r.Catalog(), cart.ID, now, true)
		if err != nil {
			return u.fault(err, p.UserID, "resolve cart")
		}
		if len(snap.Lines) == 0 {
			return errValidation("cart is empty")
		}
		for _, l := range snap.Lines {
			if !l.Active {
				return errInvalidState(fmt.Sprintf("%s is no longer available", l.Label()))
			}
			if !l.OnSale {
				return errInvalidState(fmt.Sprintf("%s is not on sale", l.Label()))
			}
			if l.Available < l.Quantity {
				return errStockConflict(l.Label(), l.Available)
			}
		}

		discount, couponID, err := u.discountFor(ctx, r, in.CouponCode, snap.Subtotal, now, p.UserID)
		if err != nil {
			return err
		}
		total := snap.Subtotal.Sub(discount)
		if !in.SubmittedTotal.Equal(total) {
			return errAmountMismatch(in.SubmittedTotal, total)
		}

		ticketQty := snap.TicketQuantity()
		if int64(len(in.Attendees)) != ticketQty {
			return errAttendeeCountMismatch(ticketQty, int64(len(in.Attendees)))
		}

		order = model.Order{
			UserID:         p.UserID,
			OrderNumber:    u.codes.OrderNumber(now),
			Status:         model.OrderStatusPending,
			BillingName:    strings.TrimSpace(in.BillingName),
			BillingPhone:   strings.TrimSpace(in.BillingPhone),
			BillingAddress: strings.TrimSpace(in.BillingAddress),
			PaymentMethod:  in.PaymentMethod,
			DeliveryMethod: in.DeliveryMethod,
			ExpiresAt:      now.Add(u.cfg.ReservationWindow),
			Subtotal:       snap.Subtotal,
			DiscountAmount: discount,
			TotalAmount:    total,
			CouponID:       couponID,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			return u.fault(err, p.UserID, "create order")
		}
		order.ID = orderID

		//明細はカタログから切り離したスナップショット
		items = make([]model.OrderItem, 0, len(snap.Lines))
		for _, l := range snap.Lines {
			items = append(items, model.OrderItem{
				ItemType:           l.ItemType,
				ProductVariantID:   l.ProductVariantID,
				TicketTypeID:       l.TicketTypeID,
				ItemName:           l.ItemName,
				VariantDescription: l.VariantDescription,
				Quantity:           l.Quantity,
				UnitPrice:          l.UnitPrice,
				CreatedAt:          now,
			})
		}
		if err := r.OrderItems().CreateBulk(ctx, orderID, items); err != nil {
			return u.fault(err, p.UserID, "create order items")
		}

		//チケットは1枚ずつ、参加者を明細順に割り当てる
		tickets = make([]model.Ticket, 0, ticketQty)
		next := 0
		for i, it := range items {
			if it.ItemType != model.ItemTypeTicketType {
				continue
			}
			eventID := snap.Lines[i].EventID
			for n := int64(0); n < it.Quantity; n++ {
				a := in.Attendees[next]
				next++
				t := model.Ticket{
					OrderID:        orderID,
					OrderItemID:    it.ID,
					TicketTypeID:   *it.TicketTypeID,
					Code:           u.codes.TicketCode(),
					Status:         model.TicketStatusValid,
					AttendeeName:   strings.TrimSpace(a.Name),
					AttendeeEmail:  strings.TrimSpace(a.Email),
					AttendeePhone:  strings.TrimSpace(a.Phone),
					AttendeeGender: strings.TrimSpace(a.Gender),
					CreatedAt:      now,
				}
				if eventID != nil {
					t.EventID = *eventID
				}
				tickets = append(tickets, t)
			}
		}
		if err := r.Tickets().CreateBulk(ctx, tickets); err != nil {
			return u.fault(err, p.UserID, "create tickets")
		}

		//条件付きUPDATEで減算（ロックが効かないDBでもここで売り越しを防ぐ）
		movements := make([]model.InventoryMovement, 0, len(snap.Lines))
		for _, l := range snap.Lines {
			mv, err := u.reserve(ctx, r, l, orderID)
			if err != nil {
				return err
			}
			movements = append(movements, mv)
		}
		if err := r.Inventory().RecordMovements(ctx, movements); err != nil {
			return u.fault(err, p.UserID, "record inventory movements")
		}

		if err := r.Carts().Clear(ctx, cart.ID); err != nil {
			return u.fault(err, p.UserID, "clear cart")
		}
		return nil
	})
	if err != nil {
		return CreateOrderOutput{}, err
	}

	u.log.Info().
		Int64("order_id", order.ID).
		Int64("user_id", p.UserID).
		Str("order_number", order.OrderNumber).
		Str("total_amount", order.TotalAmount.StringFixed(2)).
		Int("tickets", len(tickets)).
		Msg("order created")
	u.notify(ctx, order, NotificationOrderCreated, "your order has been placed")

	out := CreateOrderOutput{
		OrderID: order.ID,
		Order:   toOrderOutput(order, items, tickets),
	}

	//決済リダイレクトはTxの外。失敗しても注文は残す
	redirect, err := u.gateway.Checkout(ctx, paymentRequestFor(order, items, now))
	if err != nil {
		u.log.Error().Err(err).Int64("order_id", order.ID).Msg("payment checkout")
		return out, nil
	}
	out.PaymentRedirect = &redirect
	return out, nil
}

// 自分の注文一覧（新しい順）
func (u *OrderUsecase) ListMyOrders(ctx context.Context, p model.Principal, page int, limit int) (OrderListOutput, error) {
	if p.UserID <= 0 {
		return OrderListOutput{}, errUnauthorized()
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	out := OrderListOutput{Page: page, Limit: limit}
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListByUserID(ctx, p.UserID, page, limit)
		if err != nil {
			return u.fault(err, p.UserID, "list orders")
		}
		out.Total = total
		out.Items = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return u.fault(err, p.UserID, "list order items")
			}
			out.Items = append(out.Items, toOrderOutput(o, items, nil))
		}
		return nil
	})
	if err != nil {
		return OrderListOutput{}, err
	}
	return out, nil
}

// 注文詳細（チケット込み）。他人の注文は存在しない扱い
func (u *OrderUsecase) GetMyOrder(ctx context.Context, p model.Principal, orderID int64) (OrderOutput, error) {
	if p.UserID <= 0 {
		return OrderOutput{}, errUnauthorized()
	}
	if orderID <= 0 {
		return OrderOutput{}, errValidation("invalid id")
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound("order not found")
		}
		if err != nil {
			return u.fault(err, p.UserID, "find order")
		}
		if o.UserID != p.UserID {
			return errNotFound("order not found")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
		if err != nil {
			return u.fault(err, p.UserID, "list order items")
		}
		tickets, err := r.Tickets().ListByOrderID(ctx, o.ID)
		if err != nil {
			return u.fault(err, p.UserID, "list tickets")
		}
		out = toOrderOutput(o, items, tickets)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// 購入者によるキャンセル（PENDINGのみ）。在庫は同じTxで戻す
func (u *OrderUsecase) CancelOrder(ctx context.Context, p model.Principal, orderID int64) error {
	if p.UserID <= 0 {
		return errUnauthorized()
	}
	if orderID <= 0 {
		return errValidation("invalid id")
	}

	now := u.clock.Now()
	var order model.Order
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound("order not found")
		}
		if err != nil {
			return u.fault(err, p.UserID, "find order")
		}
		if o.UserID != p.UserID {
			return errForbidden("forbidden")
		}
		if o.Status != model.OrderStatusPending {
			return errInvalidState(fmt.Sprintf("order is %s, only pending orders can be cancelled", o.Status))
		}

		cancelled, err := u.cancelInTx(ctx, r, o, p.UserID, model.InventoryReasonOrderCancelled, now)
		if err != nil {
			return err
		}
		if !cancelled {
			//掃除が先にキャンセルした
			return errInvalidState("order is no longer pending")
		}
		order = o
		return nil
	})
	if err != nil {
		return err
	}

	u.log.Info().Int64("order_id", orderID).Int64("user_id", p.UserID).Msg("order cancelled")
	u.notify(ctx, order, NotificationOrderCancelled, "your order has been cancelled")
	return nil
}

// 決済リダイレクトを作り直す。在庫には触らない
func (u *OrderUsecase) RepayOrder(ctx context.Context, p model.Principal, orderID int64) (PaymentRedirect, error) {
	if p.UserID <= 0 {
		return PaymentRedirect{}, errUnauthorized()
	}
	if orderID <= 0 {
		return PaymentRedirect{}, errValidation("invalid id")
	}

	now := u.clock.Now()
	var (
		order model.Order
		items []model.OrderItem
	)
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound("order not found")
		}
		if err != nil {
			return u.fault(err, p.UserID, "find order")
		}
		if o.UserID != p.UserID {
			return errForbidden("forbidden")
		}
		if o.Status != model.OrderStatusPending {
			return errInvalidState(fmt.Sprintf("order is %s, only pending orders can be paid", o.Status))
		}
		if o.Expired(now) {
			return errInvalidState("order has expired")
		}

		items, err = r.OrderItems().ListByOrderID(ctx, o.ID)
		if err != nil {
			return u.fault(err, p.UserID, "list order items")
		}
		order = o
		return nil
	})
	if err != nil {
		return PaymentRedirect{}, err
	}

	redirect, err := u.gateway.Checkout(ctx, paymentRequestFor(order, items, now))
	if err != nil {
		u.log.Error().Err(err).Int64("order_id", orderID).Msg("payment checkout")
		return PaymentRedirect{}, NewHTTPError(http.StatusBadGateway, KindInternal, "payment gateway unavailable")
	}
	return redirect, nil
}

// ExpireOrders は予約期限を過ぎたPENDING注文をキャンセルする。
// 1件の失敗で全体を止めない。既に他で状態が変わっていた注文は何もしない
func (u *OrderUsecase) ExpireOrders(ctx context.Context, now time.Time) (SweepResult, error) {
	var res SweepResult

	var candidates []model.Order
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		candidates, err = r.Orders().ListExpiredPending(ctx, now, u.cfg.SweepBatch)
		return err
	})
	if err != nil {
		u.log.Error().Err(err).Msg("list expired orders")
		return res, err
	}
	res.Scanned = len(candidates)

	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		var (
			expired bool
			order   model.Order
		)
		err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
			o, err := r.Orders().FindByIDForUpdate(ctx, c.ID)
			if err != nil {
				return err
			}
			if o.Status != model.OrderStatusPending || !o.Expired(now) {
				return nil
			}
			expired, err = u.cancelInTx(ctx, r, o, model.SystemActorID, model.InventoryReasonOrderExpired, now)
			order = o
			return err
		})
		if err != nil {
			res.Failed++
			u.log.Error().Err(err).Int64("order_id", c.ID).Msg("expire order")
			continue
		}
		if !expired {
			res.Skipped++
			continue
		}

		res.Expired++
		u.log.Info().Int64("order_id", order.ID).Int64("user_id", order.UserID).Msg("order expired")
		u.notify(ctx, order, NotificationOrderExpired, "your reservation has expired and the order was cancelled")
	}
	return res, nil
}

// PENDING→CANCELLED と在庫戻しを同じTxで行う。
// 既にPENDINGでなければ何もせず false（二重の在庫戻しはしない）
func (u *OrderUsecase) cancelInTx(ctx context.Context, r repo.TxRepos, o model.Order, actorID int64, reason model.InventoryReason, now time.Time) (bool, error) {
	ok, err := r.Orders().UpdateStatusIf(ctx, o.ID,
		[]model.OrderStatus{model.OrderStatusPending},
		model.OrderStatusCancelled,
		repo.StatusChange{At: now, Reason: string(reason)},
	)
	if err != nil {
		return false, u.fault(err, o.UserID, "update order status")
	}
	if !ok {
		return false, nil
	}

	items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
	if err != nil {
		return false, u.fault(err, o.UserID, "list order items")
	}

	movements := make([]model.InventoryMovement, 0, len(items))
	for _, it := range items {
		switch {
		case it.ItemType == model.ItemTypeProductVariant && it.ProductVariantID != nil:
			err = r.Inventory().IncreaseVariantStock(ctx, *it.ProductVariantID, it.Quantity)
			movements = append(movements, model.InventoryMovement{
				ResourceType: model.InventoryResourceVariant,
				ResourceID:   *it.ProductVariantID,
				OrderID:      o.ID,
				Delta:        it.Quantity,
				Reason:       reason,
				CreatedAt:    now,
			})
		case it.ItemType == model.ItemTypeTicketType && it.TicketTypeID != nil:
			err = r.Inventory().IncreaseTicketCapacity(ctx, *it.TicketTypeID, it.Quantity)
			movements = append(movements, model.InventoryMovement{
				ResourceType: model.InventoryResourceTicketType,
				ResourceID:   *it.TicketTypeID,
				OrderID:      o.ID,
				Delta:        it.Quantity,
				Reason:       reason,
				CreatedAt:    now,
			})
		}
		//カタログから消えた行は戻し先がないので履歴だけ残さない
		if errors.Is(err, repo.ErrNotFound) {
			movements = movements[:len(movements)-1]
			err = nil
		}
		if err != nil {
			return false, u.fault(err, o.UserID, "restore inventory")
		}
	}
	if err := r.Inventory().RecordMovements(ctx, movements); err != nil {
		return false, u.fault(err, o.UserID, "record inventory movements")
	}

	action := model.AuditActionCancelOrder
	if reason == model.InventoryReasonOrderExpired {
		action = model.AuditActionExpireOrder
	}
	if err := r.AuditLogs().Create(ctx, statusAudit(actorID, action, o.ID, o.Status, model.OrderStatusCancelled, now)); err != nil {
		return false, u.fault(err, o.UserID, "create audit log")
	}
	return true, nil
}

// 1明細分の在庫を減らす
func (u *OrderUsecase) reserve(ctx context.Context, r repo.TxRepos, l SnapshotLine, orderID int64) (model.InventoryMovement, error) {
	var (
		ok  bool
		err error
		mv  = model.InventoryMovement{OrderID: orderID, Delta: -l.Quantity, Reason: model.InventoryReasonOrderCreated}
	)
	switch l.ItemType {
	case model.ItemTypeProductVariant:
		ok, err = r.Inventory().DecreaseVariantStockIfEnough(ctx, *l.ProductVariantID, l.Quantity)
		mv.ResourceType = model.InventoryResourceVariant
		mv.ResourceID = *l.ProductVariantID
	case model.ItemTypeTicketType:
		ok, err = r.Inventory().DecreaseTicketCapacityIfEnough(ctx, *l.TicketTypeID, l.Quantity)
		mv.ResourceType = model.InventoryResourceTicketType
		mv.ResourceID = *l.TicketTypeID
	default:
		return mv, errInvalidState(fmt.Sprintf("%s is no longer available", l.Label()))
	}
	if err != nil {
		return mv, u.fault(err, 0, "decrease inventory")
	}
	if !ok {
		return mv, errStockConflict(l.Label(), l.Available)
	}
	return mv, nil
}

// クーポンの割引額。コード無しなら0
func (u *OrderUsecase) discountFor(ctx context.Context, r repo.TxRepos, code string, subtotal decimal.Decimal, now time.Time, userID int64) (decimal.Decimal, *int64, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return decimal.Zero, nil, nil
	}

	c, err := r.Coupons().FindByCode(ctx, code)
	if errors.Is(err, repo.ErrNotFound) {
		return decimal.Zero, nil, errValidation(fmt.Sprintf("coupon %s is not valid", code))
	}
	if err != nil {
		return decimal.Zero, nil, u.fault(err, userID, "find coupon")
	}
	if !c.ValidAt(now) {
		return decimal.Zero, nil, errValidation(fmt.Sprintf("coupon %s is not valid", code))
	}
	if subtotal.LessThan(c.MinSpend) {
		return decimal.Zero, nil, errValidation(fmt.Sprintf("coupon %s requires a minimum spend of %s", code, c.MinSpend.StringFixed(2)))
	}
	id := c.ID
	return c.DiscountFor(subtotal), &id, nil
}

// 通知はベストエフォート（失敗しても注文の結果は変えない）
func (u *OrderUsecase) notify(ctx context.Context, o model.Order, typ NotificationType, msg string) {
	err := u.notifier.Notify(ctx, Notification{
		ID:          uuid.NewString(),
		Type:        typ,
		UserID:      o.UserID,
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		Message:     msg,
		OccurredAt:  u.clock.Now(),
	})
	if err != nil {
		u.log.Warn().Err(err).Int64("order_id", o.ID).Str("type", string(typ)).Msg("notify")
	}
}

func (u *OrderUsecase) fault(err error, userID int64, op string) error {
	u.log.Error().Err(err).Int64("user_id", userID).Msg(op)
	return errInternal()
}

func (in CreateOrderInput) validate() error {
	if s := strings.TrimSpace(in.BillingName); s == "" || len(s) > 255 {
		return errValidation("invalid billing_name")
	}
	if s := strings.TrimSpace(in.BillingPhone); s == "" || len(s) > 30 {
		return errValidation("invalid billing_phone")
	}
	if len(in.BillingAddress) > 500 {
		return errValidation("invalid billing_address")
	}
	if !validPaymentMethods[in.PaymentMethod] {
		return errValidation("invalid payment_method")
	}
	if in.DeliveryMethod != "" && !validDeliveryMethods[in.DeliveryMethod] {
		return errValidation("invalid delivery_method")
	}
	if in.SubmittedTotal.IsNegative() {
		return errValidation("invalid total_amount")
	}
	for i, a := range in.Attendees {
		if strings.TrimSpace(a.Name) == "" {
			return errValidation(fmt.Sprintf("attendees[%d].name is required", i))
		}
		if e := strings.TrimSpace(a.Email); e == "" || !strings.Contains(e, "@") {
			return errValidation(fmt.Sprintf("attendees[%d].email is invalid", i))
		}
		if s := strings.TrimSpace(a.Phone); s == "" || len(s) > 30 {
			return errValidation(fmt.Sprintf("attendees[%d].phone is invalid", i))
		}
		if len(a.Gender) > 20 {
			return errValidation(fmt.Sprintf("attendees[%d].gender is invalid", i))
		}
	}
	return nil
}

func paymentRequestFor(o model.Order, items []model.OrderItem, now time.Time) PaymentRequest {
	names := make([]string, 0, len(items))
	for _, it := range items {
		name := it.ItemName
		if it.VariantDescription != "" {
			name += " " + it.VariantDescription
		}
		names = append(names, fmt.Sprintf("%s x%d", name, it.Quantity))
	}
	return PaymentRequest{
		OrderNumber:   o.OrderNumber,
		TotalAmount:   o.TotalAmount,
		PaymentMethod: o.PaymentMethod,
		ItemNames:     names,
		Description:   "order " + o.OrderNumber,
		CreatedAt:     now,
	}
}

func statusAudit(actorID int64, action model.AuditAction, orderID int64, before, after model.OrderStatus, now time.Time) model.AuditLog {
	return model.AuditLog{
		ActorUserID:  actorID,
		Action:       action,
		ResourceType: model.AuditResourceOrder,
		ResourceID:   orderID,
		BeforeJSON:   `{"status":"` + string(before) + `"}`,
		AfterJSON:    `{"status":"` + string(after) + `"}`,
		CreatedAt:    now,
	}
}

func toOrderOutput(o model.Order, items []model.OrderItem, tickets []model.Ticket) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ID:                 it.ID,
			ItemType:           it.ItemType,
			ItemName:           it.ItemName,
			VariantDescription: it.VariantDescription,
			Quantity:           it.Quantity,
			UnitPrice:          it.UnitPrice,
			LineTotal:          it.LineTotal(),
		})
	}

	outTickets := make([]TicketOutput, 0, len(tickets))
	for _, t := range tickets {
		outTickets = append(outTickets, TicketOutput{
			ID:            t.ID,
			Code:          t.Code,
			Status:        t.Status,
			EventID:       t.EventID,
			TicketTypeID:  t.TicketTypeID,
			AttendeeName:  t.AttendeeName,
			AttendeeEmail: t.AttendeeEmail,
			UsedAt:        t.UsedAt,
		})
	}

	return OrderOutput{
		ID:             o.ID,
		OrderNumber:    o.OrderNumber,
		UserID:         o.UserID,
		Status:         o.Status,
		BillingName:    o.BillingName,
		BillingPhone:   o.BillingPhone,
		BillingAddress: o.BillingAddress,
		PaymentMethod:  o.PaymentMethod,
		DeliveryMethod: o.DeliveryMethod,
		Subtotal:       o.Subtotal,
		DiscountAmount: o.DiscountAmount,
		TotalAmount:    o.TotalAmount,
		ExpiresAt:      o.ExpiresAt,
		CreatedAt:      o.CreatedAt,
		Items:          outItems,
		Tickets:        outTickets,
	}
}
