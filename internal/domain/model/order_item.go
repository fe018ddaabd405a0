package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文明細。購入時点の名前・価格を固定で残す（カタログが変わっても履歴は変わらない）
type OrderItem struct {
	ID                 int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID            int64           `gorm:"not null;index" json:"order_id"`
	ItemType           ItemType        `gorm:"type:varchar(20);not null" json:"item_type"`
	ProductVariantID   *int64          `gorm:"index" json:"product_variant_id,omitempty"`
	TicketTypeID       *int64          `gorm:"index" json:"ticket_type_id,omitempty"`
	ItemName           string          `gorm:"type:varchar(255);not null" json:"item_name"`
	VariantDescription string          `gorm:"type:varchar(255)" json:"variant_description"`
	Quantity           int64           `gorm:"not null" json:"quantity"`
	UnitPrice          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	CreatedAt          time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (it OrderItem) LineTotal() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(it.Quantity))
}
