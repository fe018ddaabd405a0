package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

// DBには UTC で入れる
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// 注文番号・チケットコードの採番
type CodeGenerator interface {
	OrderNumber(now time.Time) string
	TicketCode() string
}

// uuid ベースの採番
// 注文番号は "EM" + yymmddHHMMSS + 6桁（決済側の20文字制限に収まる）
type UUIDCodes struct{}

func (UUIDCodes) OrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return "EM" + now.UTC().Format("060102150405") + suffix
}

func (UUIDCodes) TicketCode() string {
	return "TKT-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// 決済ゲートウェイに渡すもの
type PaymentRequest struct {
	OrderNumber   string
	TotalAmount   decimal.Decimal
	PaymentMethod string
	ItemNames     []string
	Description   string
	CreatedAt     time.Time
}

// ブラウザをPOSTさせる先と署名済みフォーム
type PaymentRedirect struct {
	URL        string            `json:"url"`
	FormFields map[string]string `json:"formFields"`
}

type PaymentGateway interface {
	Checkout(ctx context.Context, req PaymentRequest) (PaymentRedirect, error)
}

type NotificationType string

const (
	NotificationOrderCreated    NotificationType = "ORDER_CREATED"
	NotificationOrderCancelled  NotificationType = "ORDER_CANCELLED"
	NotificationOrderExpired    NotificationType = "ORDER_EXPIRED"
	NotificationTicketCheckedIn NotificationType = "TICKET_CHECKED_IN"
)

type Notification struct {
	ID          string           `json:"id"`
	Type        NotificationType `json:"type"`
	UserID      int64            `json:"user_id"`
	OrderID     int64            `json:"order_id"`
	OrderNumber string           `json:"order_number"`
	Message     string           `json:"message"`
	OccurredAt  time.Time        `json:"occurred_at"`
}

// 通知の配送（本文の整形・配送先は外側）
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
