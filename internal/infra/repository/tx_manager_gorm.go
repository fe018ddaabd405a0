package repository

import (
	"context"

	repo "eventmart/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	tickets    repo.TicketRepository
	checkIns   repo.CheckInRepository
	carts      repo.CartRepository
	catalog    repo.CatalogRepository
	events     repo.EventRepository
	inventory  repo.InventoryRepository
	coupons    repo.CouponRepository
	auditLogs  repo.AuditLogRepository
}

func (r *txReposGorm) Orders() repo.OrderRepository         { return r.orders }
func (r *txReposGorm) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *txReposGorm) Tickets() repo.TicketRepository       { return r.tickets }
func (r *txReposGorm) CheckIns() repo.CheckInRepository     { return r.checkIns }
func (r *txReposGorm) Carts() repo.CartRepository           { return r.carts }
func (r *txReposGorm) Catalog() repo.CatalogRepository      { return r.catalog }
func (r *txReposGorm) Events() repo.EventRepository         { return r.events }
func (r *txReposGorm) Inventory() repo.InventoryRepository  { return r.inventory }
func (r *txReposGorm) Coupons() repo.CouponRepository       { return r.coupons }
func (r *txReposGorm) AuditLogs() repo.AuditLogRepository   { return r.auditLogs }

// 全部のrepoを同じ *gorm.DB で作る（txでもtxでなくても）
func newReposGorm(db *gorm.DB) *txReposGorm {
	return &txReposGorm{
		orders:     NewOrderGormRepository(db),
		orderItems: NewOrderItemGormRepository(db),
		tickets:    NewTicketGormRepository(db),
		checkIns:   NewCheckInGormRepository(db),
		carts:      NewCartGormRepository(db),
		catalog:    NewCatalogGormRepository(db),
		events:     NewEventGormRepository(db),
		inventory:  NewInventoryGormRepository(db),
		coupons:    NewCouponGormRepository(db),
		auditLogs:  NewAuditLogGormRepository(db),
	}
}

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		return fn(newReposGorm(tx))
	})
}
