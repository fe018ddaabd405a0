package model

import "time"

type InventoryResource string

const (
	InventoryResourceVariant    InventoryResource = "product_variant"
	InventoryResourceTicketType InventoryResource = "ticket_type"
)

type InventoryReason string

const (
	InventoryReasonOrderCreated   InventoryReason = "ORDER_CREATED"
	InventoryReasonOrderCancelled InventoryReason = "ORDER_CANCELLED"
	InventoryReasonOrderExpired   InventoryReason = "ORDER_EXPIRED"
)

// 在庫増減の履歴。Delta はマイナスが引当、プラスが戻し
type InventoryMovement struct {
	ID           int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	ResourceType InventoryResource `gorm:"type:varchar(20);not null;index:idx_inventory_movements_resource,priority:1" json:"resource_type"`
	ResourceID   int64             `gorm:"not null;index:idx_inventory_movements_resource,priority:2" json:"resource_id"`
	OrderID      int64             `gorm:"not null;index" json:"order_id"`
	Delta        int64             `gorm:"not null" json:"delta"`
	Reason       InventoryReason   `gorm:"type:varchar(30);not null" json:"reason"`
	CreatedAt    time.Time         `gorm:"not null;autoCreateTime" json:"created_at"`
}
