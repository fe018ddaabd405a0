package model

import "time"

type ItemType string

const (
	ItemTypeProductVariant ItemType = "product_variant"
	ItemTypeTicketType     ItemType = "ticket_type"
)

// カートの明細
// ProductVariantID / TicketTypeID はどちらか一方だけ埋まる。
// チケット明細は数量1固定で、同じイベントのチケットは1カートに1行まで（cart_id, event_id のユニーク）。
type CartLine struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID           int64     `gorm:"not null;index;uniqueIndex:idx_cart_lines_cart_event,priority:1" json:"cart_id"`
	ItemType         ItemType  `gorm:"type:varchar(20);not null" json:"item_type"`
	ProductVariantID *int64    `gorm:"index" json:"product_variant_id,omitempty"`
	TicketTypeID     *int64    `gorm:"index" json:"ticket_type_id,omitempty"`
	EventID          *int64    `gorm:"uniqueIndex:idx_cart_lines_cart_event,priority:2" json:"event_id,omitempty"`
	Quantity         int64     `gorm:"not null" json:"quantity"`
	CreatedAt        time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
