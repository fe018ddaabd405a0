package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 割引クーポン。DiscountAmount（定額）と PercentOff（率）のどちらかを使う
type Coupon struct {
	ID             int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Code           string          `gorm:"type:varchar(64);not null;uniqueIndex" json:"code"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"discount_amount"`
	PercentOff     decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"percent_off"`
	MinSpend       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"min_spend"`
	StartsAt       *time.Time      `json:"starts_at,omitempty"`
	EndsAt         *time.Time      `json:"ends_at,omitempty"`
	IsActive       bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (c Coupon) ValidAt(now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if c.StartsAt != nil && now.Before(*c.StartsAt) {
		return false
	}
	if c.EndsAt != nil && now.After(*c.EndsAt) {
		return false
	}
	return true
}

// 小計に対する割引額（小計を超えない）
func (c Coupon) DiscountFor(subtotal decimal.Decimal) decimal.Decimal {
	d := c.DiscountAmount
	if c.PercentOff.IsPositive() {
		d = subtotal.Mul(c.PercentOff).Div(decimal.NewFromInt(100)).Round(2)
	}
	if d.GreaterThan(subtotal) {
		return subtotal
	}
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
