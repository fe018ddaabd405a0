package repository

import (
	"context"
	"time"

	"eventmart/internal/domain/model"
)

type TicketRepository interface {
	CreateBulk(ctx context.Context, tickets []model.Ticket) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.Ticket, error)
	FindByCode(ctx context.Context, code string) (model.Ticket, error)
	// VALID のときだけ USED にする（既に USED なら false）
	MarkUsed(ctx context.Context, ticketID int64, at time.Time) (bool, error)
}

type CheckInRepository interface {
	// 成功の二重登録は ErrConflict
	Create(ctx context.Context, checkIn model.CheckIn) error
	ListByTicketID(ctx context.Context, ticketID int64) ([]model.CheckIn, error)
}

type EventRepository interface {
	FindByID(ctx context.Context, eventID int64) (model.Event, error)
}

type CouponRepository interface {
	FindByCode(ctx context.Context, code string) (model.Coupon, error)
}
