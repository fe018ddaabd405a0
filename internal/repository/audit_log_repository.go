package repository

import (
	"context"
	"time"

	"eventmart/internal/domain/model"
)

// 状態遷移履歴の検索条件。nil の項目は絞らない
// ResourceID を指定すると古い順（注文1件・チケット1枚の経緯を追う用途）
type AuditLogFilter struct {
	// 掃除ジョブによる失効は SystemActorID
	ActorUserID *int64
	// CANCEL_ORDER / EXPIRE_ORDER / MARK_ORDER_PAID / CHECK_IN
	Action *model.AuditAction
	// order か ticket
	ResourceType *model.AuditResourceType
	ResourceID   *int64
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	Limit        int
	Offset       int
}

// 注文とチケットの状態遷移（キャンセル・失効・入金・入場）を残す
type AuditLogRepository interface {
	// 遷移と同じTxで書く（ロールバックされたら履歴も残らない）
	Create(ctx context.Context, log model.AuditLog) error

	List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, error)
}
