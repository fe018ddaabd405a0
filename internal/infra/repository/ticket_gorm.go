package repository

import (
	"context"
	"time"

	"eventmart/internal/domain/model"

	"gorm.io/gorm"
)

type TicketGormRepository struct {
	db *gorm.DB
}

func NewTicketGormRepository(db *gorm.DB) *TicketGormRepository {
	return &TicketGormRepository{db: db}
}

func (r *TicketGormRepository) CreateBulk(ctx context.Context, tickets []model.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	return translateError(r.db.WithContext(ctx).Create(&tickets).Error)
}

func (r *TicketGormRepository) ListByOrderID(ctx context.Context, orderID int64) ([]model.Ticket, error) {
	tickets := []model.Ticket{}
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id asc").
		Find(&tickets).Error; err != nil {
		return []model.Ticket{}, err
	}
	return tickets, nil
}

func (r *TicketGormRepository) FindByCode(ctx context.Context, code string) (model.Ticket, error) {
	var t model.Ticket
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&t).Error; err != nil {
		return model.Ticket{}, translateError(err)
	}
	return t, nil
}

// VALID→USED。2回目は0行になる
func (r *TicketGormRepository) MarkUsed(ctx context.Context, ticketID int64, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Ticket{}).
		Where("id = ? AND status = ?", ticketID, model.TicketStatusValid).
		Updates(map[string]interface{}{
			"status":  model.TicketStatusUsed,
			"used_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

type CheckInGormRepository struct {
	db *gorm.DB
}

func NewCheckInGormRepository(db *gorm.DB) *CheckInGormRepository {
	return &CheckInGormRepository{db: db}
}

func (r *CheckInGormRepository) Create(ctx context.Context, checkIn model.CheckIn) error {
	return translateError(r.db.WithContext(ctx).Create(&checkIn).Error)
}

func (r *CheckInGormRepository) ListByTicketID(ctx context.Context, ticketID int64) ([]model.CheckIn, error) {
	rows := []model.CheckIn{}
	if err := r.db.WithContext(ctx).
		Where("ticket_id = ?", ticketID).
		Order("id asc").
		Find(&rows).Error; err != nil {
		return []model.CheckIn{}, err
	}
	return rows, nil
}
