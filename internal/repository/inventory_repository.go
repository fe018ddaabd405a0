package repository

import (
	"context"

	"eventmart/internal/domain/model"
)

type InventoryRepository interface {
	// 在庫が足りるときだけ減算（足りなければ false）
	DecreaseVariantStockIfEnough(ctx context.Context, variantID int64, qty int64) (bool, error)
	// 在庫戻し（キャンセルなど）
	IncreaseVariantStock(ctx context.Context, variantID int64, qty int64) error

	DecreaseTicketCapacityIfEnough(ctx context.Context, ticketTypeID int64, qty int64) (bool, error)
	IncreaseTicketCapacity(ctx context.Context, ticketTypeID int64, qty int64) error

	// 増減履歴
	RecordMovements(ctx context.Context, movements []model.InventoryMovement) error
}
