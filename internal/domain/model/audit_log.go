package model

import "time"

// 注文・チケットの状態遷移
type AuditAction string

const (
	AuditActionCancelOrder   AuditAction = "CANCEL_ORDER"
	AuditActionExpireOrder   AuditAction = "EXPIRE_ORDER"
	AuditActionMarkOrderPaid AuditAction = "MARK_ORDER_PAID"
	AuditActionCheckIn       AuditAction = "CHECK_IN"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceOrder  AuditResourceType = "order"
	AuditResourceTicket AuditResourceType = "ticket"
)

// システム（スイーパー）による操作の ActorUserID
const SystemActorID int64 = 0

// 監査ログ
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作したユーザーのID。スイーパーは SystemActorID
	ActorUserID int64 `gorm:"not null;index" json:"actor_user_id"`

	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`

	ResourceID int64 `gorm:"not null;index" json:"resource_id"`

	//JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" json:"before_json"`

	//JSON文字列で保存する。
	AfterJSON string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
