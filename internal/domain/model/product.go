package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID     *int64          `gorm:"index" json:"event_id,omitempty"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	BasePrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"base_price"`
	IsActive    bool            `gorm:"not null;default:false" json:"is_active"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

// 商品のバリエーション（サイズ・色など）。在庫はここで持つ
type ProductVariant struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID     int64           `gorm:"not null;index" json:"product_id"`
	Name          string          `gorm:"type:varchar(255);not null" json:"name"`
	StockQuantity int64           `gorm:"not null;check:stock_quantity >= 0" json:"stock_quantity"`
	PriceOffset   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price_offset"`
	CreatedAt     time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`

	Product Product `gorm:"foreignKey:ProductID" json:"-"`
}

// 単価 = 商品の基本価格 + バリエーションの差額
func (v ProductVariant) UnitPrice() decimal.Decimal {
	return v.Product.BasePrice.Add(v.PriceOffset)
}

// 明細に残す表示名（商品名 + バリエーション名）
func (v ProductVariant) DisplayName() string {
	if v.Name == "" {
		return v.Product.Name
	}
	return v.Product.Name + " (" + v.Name + ")"
}
