package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	Tickets() TicketRepository
	CheckIns() CheckInRepository
	Carts() CartRepository
	Catalog() CatalogRepository
	Events() EventRepository
	Inventory() InventoryRepository
	Coupons() CouponRepository
	AuditLogs() AuditLogRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
// fn が error を返したら全部ロールバック
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
