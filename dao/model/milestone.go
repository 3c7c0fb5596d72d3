package model

import (
	"time"

	"gorm.io/datatypes"
)

// ProgressMilestone is one admin-configurable step contributing weighted
// percentage points to a project's track progress.
type ProgressMilestone struct {
	Base
	Governed
	Name       string `gorm:"type:varchar(128);not null;comment:里程碑名稱"`
	Track      Track  `gorm:"type:varchar(16);not null;index;comment:所屬軌道(行政/工程)"`
	Weight     int    `gorm:"not null;default:0;comment:權重(百分點)"`
	IsRequired bool   `gorm:"not null;default:false"`
	SortOrder  int    `gorm:"not null;default:0"`
}

func (ProgressMilestone) TableName() string {
	return string(TableMilestones)
}

// ProjectMilestone records the completion state of one milestone for one
// project.
type ProjectMilestone struct {
	Base
	ProjectID   uint `gorm:"uniqueIndex:idx_project_milestone;not null"`
	MilestoneID uint `gorm:"uniqueIndex:idx_project_milestone;not null"`
	CompletedAt *time.Time
}

func (pm *ProjectMilestone) Completed() bool {
	return pm.CompletedAt != nil
}

// ProgressConfig is the singleton row of admin-tunable progress settings:
// the track weight split and the stalled-project thresholds.
type ProgressConfig struct {
	Base
	AdminWeight       int `gorm:"not null;default:50;comment:行政軌道權重"`
	EngineeringWeight int `gorm:"not null;default:50;comment:工程軌道權重"`

	MonthsThreshold       int `gorm:"not null;default:6;comment:停滯判定月數"`
	MinProgressOldProject int `gorm:"not null;default:30;comment:老案最低進度"`
	MinProgressLateStage  int `gorm:"not null;default:50;comment:後期案最低進度"`

	LateStages datatypes.JSONSlice[ProjectStatus] `gorm:"comment:後期階段集合"`
}
