package model

import (
	"time"

	"gorm.io/datatypes"
)

// DocumentExtra holds optional attributes stored as one JSON column.
type DocumentExtra struct {
	Tags []string `json:"tags,omitempty"`
	Note *string  `json:"note,omitempty"`
}

// Document is one permit / filing / certificate attached to a project.
type Document struct {
	Base
	Governed
	ProjectID   uint    `gorm:"index;not null"`
	Project     *Project
	DocType     string  `gorm:"type:varchar(128);not null;comment:文件類型"`
	DocTypeCode string  `gorm:"type:varchar(32);index;comment:文件類型代碼"`
	SubmittedAt *time.Time `gorm:"comment:送件日期"`
	IssuedAt    *time.Time `gorm:"comment:取得日期"`
	DueAt       *time.Time `gorm:"comment:期限日期"`
	DriveFileID *string    `gorm:"type:varchar(128);comment:雲端檔案ID"`
	OCRText     *string    `gorm:"type:text;comment:辨識文字"`

	Extra datatypes.JSONType[DocumentExtra] `gorm:"comment:額外資訊(tags、備註等)"`
}

func (Document) TableName() string {
	return string(TableDocuments)
}

// Status derives the document lifecycle state from its date fields. The
// result is computed on every read and never persisted, so editing either
// date immediately changes the reported status.
func (d *Document) Status() DocStatus {
	switch {
	case d.IssuedAt != nil:
		return DocObtained
	case d.SubmittedAt != nil:
		return DocInProgress
	default:
		return DocNotStarted
	}
}

// Overdue reports whether the document passed its due date without being
// obtained.
func (d *Document) Overdue(now time.Time) bool {
	return d.DueAt != nil && d.IssuedAt == nil && now.After(*d.DueAt)
}
