package repository

import (
	"context"
	"time"

	"eventmart/internal/domain/model"
	repo "eventmart/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		return 0, translateError(err)
	}
	return order.ID, nil
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	if err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&o).Error; err != nil {
		return model.Order{}, translateError(err)
	}
	return o, nil
}

func (r *OrderGormRepository) FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", orderID).
		First(&o).Error
	if err != nil {
		return model.Order{}, translateError(err)
	}
	return o, nil
}

func (r *OrderGormRepository) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return []model.Order{}, 0, err
	}

	items := []model.Order{}
	offset := (page - 1) * limit
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return []model.Order{}, 0, err
	}

	return items, total, nil
}

// 期限切れの未払い注文（古い順）
func (r *OrderGormRepository) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]model.Order, error) {
	if limit <= 0 {
		limit = 100
	}

	orders := []model.Order{}
	err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at <= ?", model.OrderStatusPending, now).
		Order("expires_at asc").
		Order("id asc").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return []model.Order{}, err
	}
	return orders, nil
}

// ステータスの前提条件とUPDATEを1文で行う
func (r *OrderGormRepository) UpdateStatusIf(ctx context.Context, orderID int64, from []model.OrderStatus, to model.OrderStatus, change repo.StatusChange) (bool, error) {
	fromValues := make([]string, 0, len(from))
	for _, s := range from {
		fromValues = append(fromValues, string(s))
	}

	updates := map[string]interface{}{
		"status":     string(to),
		"updated_at": change.At,
	}
	switch to {
	case model.OrderStatusPaid:
		updates["paid_at"] = change.At
	case model.OrderStatusCompleted:
		updates["completed_at"] = change.At
	case model.OrderStatusCancelled:
		updates["cancelled_at"] = change.At
		updates["cancel_reason"] = change.Reason
	}

	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status IN ?", orderID, fromValues).
		Updates(updates)

	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
