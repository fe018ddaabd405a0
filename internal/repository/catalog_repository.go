package repository

import (
	"context"

	"eventmart/internal/domain/model"
)

// 商品バリエーション・チケット種別の読み取り
// Lock* は SELECT ... FOR UPDATE（id昇順で取るのでデッドロックしない）
type CatalogRepository interface {
	FindVariant(ctx context.Context, variantID int64) (model.ProductVariant, error)
	FindTicketType(ctx context.Context, ticketTypeID int64) (model.TicketType, error)

	FindVariants(ctx context.Context, ids []int64) (map[int64]model.ProductVariant, error)
	FindTicketTypes(ctx context.Context, ids []int64) (map[int64]model.TicketType, error)

	LockVariants(ctx context.Context, ids []int64) (map[int64]model.ProductVariant, error)
	LockTicketTypes(ctx context.Context, ids []int64) (map[int64]model.TicketType, error)
}
