package repository

import (
	"context"

	"eventmart/internal/domain/model"
)

type CartRepository interface {
	// 無ければ作る
	GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error)
	FindByUserID(ctx context.Context, userID int64) (model.Cart, error)

	ListLines(ctx context.Context, cartID int64) ([]model.CartLine, error)
	FindLine(ctx context.Context, lineID int64) (model.CartLine, error)

	// 同一バリエーションは数量加算
	AddVariantLine(ctx context.Context, cartID int64, variantID int64, addQty int64) error
	// 同じイベントのチケット行が既にあれば ErrConflict
	AddTicketLine(ctx context.Context, cartID int64, ticketTypeID int64, eventID int64) error

	UpdateLineQuantity(ctx context.Context, lineID int64, qty int64) error
	DeleteLine(ctx context.Context, lineID int64) error

	// 明細を全削除（カート自体は残す）
	Clear(ctx context.Context, cartID int64) error
}
