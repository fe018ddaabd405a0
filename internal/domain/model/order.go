package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

type Order struct {
	ID          int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64       `gorm:"not null;index" json:"user_id"`
	OrderNumber string      `gorm:"type:varchar(32);not null;uniqueIndex" json:"order_number"`
	Status      OrderStatus `gorm:"type:varchar(20);not null;index:idx_orders_status_expires,priority:1" json:"status"`

	//請求情報のスナップショット
	BillingName    string `gorm:"type:varchar(255);not null" json:"billing_name"`
	BillingPhone   string `gorm:"type:varchar(30);not null" json:"billing_phone"`
	BillingAddress string `gorm:"type:varchar(500)" json:"billing_address"`
	PaymentMethod  string `gorm:"type:varchar(30);not null" json:"payment_method"`
	DeliveryMethod string `gorm:"type:varchar(30)" json:"delivery_method"`

	//予約期限。これを過ぎたPENDINGは掃除される
	ExpiresAt time.Time `gorm:"not null;index:idx_orders_status_expires,priority:2" json:"expires_at"`

	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"discount_amount"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	CouponID       *int64          `gorm:"index" json:"coupon_id,omitempty"`

	PaidAt       *time.Time `json:"paid_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	CancelReason string     `gorm:"type:varchar(50)" json:"cancel_reason,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 期限切れか（PENDINGかどうかは見ない）
func (o Order) Expired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}
