package model

import (
	"time"

	"gorm.io/gorm"
)

// Base replaces gorm.Model for governed entities. We do not embed
// gorm.DeletedAt because soft-delete visibility is owned by the deletion
// policy dispatcher, not by GORM's automatic query scoping.
type Base struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Governed carries the columns the deletion policy dispatcher manages.
// Which of them a delete request touches depends on the table's policy.
type Governed struct {
	IsDeleted    bool       `gorm:"not null;default:false;index"`
	DeletedAt    *time.Time `gorm:"index"`
	DeleteReason *string    `gorm:"type:varchar(512)"`
	IsArchived   bool       `gorm:"not null;default:false;index"`
	ArchivedAt   *time.Time
	IsActive     bool `gorm:"not null;default:true;index"`
}

// NotDeleted keeps soft-deleted rows out of the regular read and write
// paths. The recycle bin is the only read path for deleted rows.
func NotDeleted(tx *gorm.DB) *gorm.DB {
	return tx.Where("is_deleted = ?", false)
}
