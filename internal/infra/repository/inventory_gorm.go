package repository

import (
	"context"

	"eventmart/internal/domain/model"
	repo "eventmart/internal/repository"

	"gorm.io/gorm"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

// 在庫が足りるときだけ減らす
func (r *InventoryGormRepository) DecreaseVariantStockIfEnough(ctx context.Context, variantID int64, qty int64) (bool, error) {
	return r.decreaseIfEnough(ctx, &model.ProductVariant{}, "stock_quantity", variantID, qty)
}

// 在庫戻し（キャンセル）
func (r *InventoryGormRepository) IncreaseVariantStock(ctx context.Context, variantID int64, qty int64) error {
	return r.increase(ctx, &model.ProductVariant{}, "stock_quantity", variantID, qty)
}

// 残り枠が足りるときだけ減らす
func (r *InventoryGormRepository) DecreaseTicketCapacityIfEnough(ctx context.Context, ticketTypeID int64, qty int64) (bool, error) {
	return r.decreaseIfEnough(ctx, &model.TicketType{}, "total_quantity", ticketTypeID, qty)
}

func (r *InventoryGormRepository) IncreaseTicketCapacity(ctx context.Context, ticketTypeID int64, qty int64) error {
	return r.increase(ctx, &model.TicketType{}, "total_quantity", ticketTypeID, qty)
}

// 増減履歴作成
func (r *InventoryGormRepository) RecordMovements(ctx context.Context, movements []model.InventoryMovement) error {
	if len(movements) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&movements).Error
}

// 読みと書きを1文で行う（条件に合わなければ0行）
func (r *InventoryGormRepository) decreaseIfEnough(ctx context.Context, table interface{}, column string, id int64, qty int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(table).
		Where("id = ? AND "+column+" >= ?", id, qty).
		Update(column, gorm.Expr(column+" - ?", qty))

	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *InventoryGormRepository) increase(ctx context.Context, table interface{}, column string, id int64, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(table).
		Where("id = ?", id).
		Update(column, gorm.Expr(column+" + ?", qty))

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
