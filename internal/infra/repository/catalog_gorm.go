package repository

import (
	"context"

	"eventmart/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CatalogGormRepository struct {
	db *gorm.DB
}

func NewCatalogGormRepository(db *gorm.DB) *CatalogGormRepository {
	return &CatalogGormRepository{db: db}
}

func (r *CatalogGormRepository) FindVariant(ctx context.Context, variantID int64) (model.ProductVariant, error) {
	var v model.ProductVariant
	if err := r.db.WithContext(ctx).Preload("Product").First(&v, variantID).Error; err != nil {
		return model.ProductVariant{}, translateError(err)
	}
	return v, nil
}

func (r *CatalogGormRepository) FindTicketType(ctx context.Context, ticketTypeID int64) (model.TicketType, error) {
	var t model.TicketType
	if err := r.db.WithContext(ctx).Preload("Event").First(&t, ticketTypeID).Error; err != nil {
		return model.TicketType{}, translateError(err)
	}
	return t, nil
}

func (r *CatalogGormRepository) FindVariants(ctx context.Context, ids []int64) (map[int64]model.ProductVariant, error) {
	return r.variants(r.db.WithContext(ctx), ids)
}

func (r *CatalogGormRepository) FindTicketTypes(ctx context.Context, ids []int64) (map[int64]model.TicketType, error) {
	return r.ticketTypes(r.db.WithContext(ctx), ids)
}

// 在庫行をロックして読む。同じTx内の後続チェックはこのスナップショットに対して行う
func (r *CatalogGormRepository) LockVariants(ctx context.Context, ids []int64) (map[int64]model.ProductVariant, error) {
	return r.variants(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), ids)
}

func (r *CatalogGormRepository) LockTicketTypes(ctx context.Context, ids []int64) (map[int64]model.TicketType, error) {
	return r.ticketTypes(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), ids)
}

func (r *CatalogGormRepository) variants(q *gorm.DB, ids []int64) (map[int64]model.ProductVariant, error) {
	out := make(map[int64]model.ProductVariant, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []model.ProductVariant
	if err := q.Preload("Product").Where("id IN ?", ids).Order("id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, v := range rows {
		out[v.ID] = v
	}
	return out, nil
}

func (r *CatalogGormRepository) ticketTypes(q *gorm.DB, ids []int64) (map[int64]model.TicketType, error) {
	out := make(map[int64]model.TicketType, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []model.TicketType
	if err := q.Preload("Event").Where("id IN ?", ids).Order("id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, t := range rows {
		out[t.ID] = t
	}
	return out, nil
}

type EventGormRepository struct {
	db *gorm.DB
}

func NewEventGormRepository(db *gorm.DB) *EventGormRepository {
	return &EventGormRepository{db: db}
}

func (r *EventGormRepository) FindByID(ctx context.Context, eventID int64) (model.Event, error) {
	var e model.Event
	if err := r.db.WithContext(ctx).First(&e, eventID).Error; err != nil {
		return model.Event{}, translateError(err)
	}
	return e, nil
}

type CouponGormRepository struct {
	db *gorm.DB
}

func NewCouponGormRepository(db *gorm.DB) *CouponGormRepository {
	return &CouponGormRepository{db: db}
}

func (r *CouponGormRepository) FindByCode(ctx context.Context, code string) (model.Coupon, error) {
	var c model.Coupon
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&c).Error; err != nil {
		return model.Coupon{}, translateError(err)
	}
	return c, nil
}
