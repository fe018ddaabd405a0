package model

import "time"

type CheckInOutcome string

const (
	CheckInOutcomeSuccess CheckInOutcome = "SUCCESS"
)

// 入場記録（追記のみ）
// 成功の二重登録はチケットの VALID→USED 更新で防ぐ。ユニーク制約は最後の砦
type CheckIn struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TicketID  int64          `gorm:"not null;uniqueIndex:idx_check_ins_ticket_outcome,priority:1" json:"ticket_id"`
	ScannerID int64          `gorm:"not null;index" json:"scanner_id"`
	Outcome   CheckInOutcome `gorm:"type:varchar(20);not null;uniqueIndex:idx_check_ins_ticket_outcome,priority:2" json:"outcome"`
	ScannedAt time.Time      `gorm:"not null" json:"scanned_at"`
}
