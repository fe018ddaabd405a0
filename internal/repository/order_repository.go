package repository

import (
	"context"
	"time"

	"eventmart/internal/domain/model"
)

// ステータス更新時に一緒に書くもの
type StatusChange struct {
	At     time.Time
	Reason string
}

type OrderRepository interface {
	Create(ctx context.Context, order model.Order) (int64, error)
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	// 行ロック付き
	FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)

	// PENDING かつ expires_at <= now の注文
	ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]model.Order, error)

	// 現在のステータスが from のどれかのときだけ to に更新する。
	// 更新できなかった（他で先に変わった）ときは false
	UpdateStatusIf(ctx context.Context, orderID int64, from []model.OrderStatus, to model.OrderStatus, change StatusChange) (bool, error)
}

type OrderItemRepository interface {
	// 作成後、items の各要素に ID が入る
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
}
