package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Event struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrganizerID int64     `gorm:"not null;index" json:"organizer_id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Venue       string    `gorm:"type:varchar(255)" json:"venue"`
	StartsAt    time.Time `gorm:"not null" json:"starts_at"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// チケット種別
// TotalQuantity は「残りの販売可能数」。販売で減り、キャンセルで戻る
type TicketType struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID       int64           `gorm:"not null;index" json:"event_id"`
	Name          string          `gorm:"type:varchar(255);not null" json:"name"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	TotalQuantity int64           `gorm:"not null;check:total_quantity >= 0" json:"total_quantity"`
	SaleStartTime *time.Time      `json:"sale_start_time,omitempty"`
	SaleEndTime   *time.Time      `json:"sale_end_time,omitempty"`
	CreatedAt     time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`

	Event Event `gorm:"foreignKey:EventID" json:"-"`
}

// 販売期間内か
func (t TicketType) OnSale(now time.Time) bool {
	if t.SaleStartTime != nil && now.Before(*t.SaleStartTime) {
		return false
	}
	if t.SaleEndTime != nil && now.After(*t.SaleEndTime) {
		return false
	}
	return true
}
