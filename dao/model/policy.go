package model

// DeletionPolicy configures what a delete request does to one governed
// table. Tables without a row fall back to DefaultDeletionPolicy.
type DeletionPolicy struct {
	Base
	Table          GovernedTable `gorm:"column:table_name;type:varchar(64);uniqueIndex;not null"`
	Mode           DeletionMode  `gorm:"column:deletion_mode;type:varchar(16);not null;default:soft_delete"`
	RetentionDays  int           `gorm:"not null;default:30;comment:軟刪除保留天數"`
	RequireReason  bool          `gorm:"not null;default:false"`
	RequireConfirm bool          `gorm:"not null;default:false"`
	AllowAutoPurge bool          `gorm:"not null;default:false"`
}

func (DeletionPolicy) TableName() string {
	return "deletion_policies"
}

// DefaultDeletionPolicy is the safe fallback when a table has no policy
// row: soft delete, no auto purge.
func DefaultDeletionPolicy(table GovernedTable) DeletionPolicy {
	return DeletionPolicy{
		Table:         table,
		Mode:          ModeSoftDelete,
		RetentionDays: 30,
	}
}
