package model

import "time"

type TicketStatus string

const (
	TicketStatusValid TicketStatus = "VALID"
	TicketStatusUsed  TicketStatus = "USED"
)

// 1枚 = 1参加者。Code は入場時に読み取るコード
type Ticket struct {
	ID             int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID        int64        `gorm:"not null;index" json:"order_id"`
	OrderItemID    int64        `gorm:"not null;index" json:"order_item_id"`
	TicketTypeID   int64        `gorm:"not null;index" json:"ticket_type_id"`
	EventID        int64        `gorm:"not null;index" json:"event_id"`
	Code           string       `gorm:"type:varchar(64);not null;uniqueIndex" json:"code"`
	Status         TicketStatus `gorm:"type:varchar(20);not null" json:"status"`
	AttendeeName   string       `gorm:"type:varchar(255);not null" json:"attendee_name"`
	AttendeeEmail  string       `gorm:"type:varchar(255);not null" json:"attendee_email"`
	AttendeePhone  string       `gorm:"type:varchar(30);not null" json:"attendee_phone"`
	AttendeeGender string       `gorm:"type:varchar(20)" json:"attendee_gender,omitempty"`
	UsedAt         *time.Time   `json:"used_at,omitempty"`
	CreatedAt      time.Time    `gorm:"not null;autoCreateTime" json:"created_at"`
}
