package model

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLogEntry is one immutable row of the audit trail. The application
// only ever inserts and reads these; there is no update or delete path.
type AuditLogEntry struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"index"`

	Table    string      `gorm:"column:table_name;type:varchar(64);not null;index"`
	RecordID uint        `gorm:"index"`
	Action   AuditAction `gorm:"type:varchar(16);not null;index"`
	ActorID  uint        `gorm:"index;comment:操作者"`

	// Opaque before/after snapshots of the touched record.
	OldData datatypes.JSON `gorm:"type:jsonb"`
	NewData datatypes.JSON `gorm:"type:jsonb"`

	Reason *string `gorm:"type:varchar(512)"`
}

func (AuditLogEntry) TableName() string {
	return "audit_log_entries"
}
