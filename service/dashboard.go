package service

import (
	"time"

	"solarops/dao/model"
	"solarops/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type DashboardHandler struct {
	db *gorm.DB
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{db: db}
}

func (h *DashboardHandler) Register(g *gin.RouterGroup) {
	g.GET("/dashboard/summary", h.Summary)
}

type stalledProject struct {
	ID              uint                `json:"id"`
	Name            string              `json:"name"`
	Status          model.ProjectStatus `json:"status"`
	OverallProgress float64             `json:"overallProgress"`
	CreatedAt       time.Time           `json:"createdAt"`
}

type dashboardSummary struct {
	TotalProjects    int64                         `json:"totalProjects"`
	ByStatus         map[model.ProjectStatus]int64 `json:"byStatus"`
	AverageProgress  float64                       `json:"averageProgress"`
	StalledProjects  []stalledProject              `json:"stalledProjects"`
	DocumentsOverdue int64                         `json:"documentsOverdue"`
	DocumentsDueSoon int64                         `json:"documentsDueSoon"`
}

func (h *DashboardHandler) Summary(c *gin.Context) {
	ctx := c.Request.Context()

	var projects []model.Project
	err := h.db.WithContext(ctx).
		Preload("MilestoneStates").
		Where("is_deleted = ? AND is_archived = ?", false, false).
		Find(&projects).Error
	if err != nil {
		dbError(c, err)
		return
	}

	dc, err := loadDerivationContext(ctx, h.db)
	if err != nil {
		dbError(c, err)
		return
	}

	summary := dashboardSummary{
		TotalProjects:   int64(len(projects)),
		ByStatus:        map[model.ProjectStatus]int64{},
		StalledProjects: []stalledProject{},
	}

	var progressSum float64
	for _, p := range projects {
		v := dc.view(p)
		summary.ByStatus[p.Status]++
		progressSum += v.OverallProgress
		if v.Stalled {
			summary.StalledProjects = append(summary.StalledProjects, stalledProject{
				ID:              p.ID,
				Name:            p.Name,
				Status:          p.Status,
				OverallProgress: v.OverallProgress,
				CreatedAt:       p.CreatedAt,
			})
		}
	}
	if len(projects) > 0 {
		summary.AverageProgress = progressSum / float64(len(projects))
	}

	now := dc.now
	soon := now.AddDate(0, 0, 30)
	docs := h.db.WithContext(ctx).Model(&model.Document{}).
		Where("is_deleted = ? AND issued_at IS NULL AND due_at IS NOT NULL", false)
	if err := docs.Session(&gorm.Session{}).Where("due_at < ?", now).Count(&summary.DocumentsOverdue).Error; err != nil {
		dbError(c, err)
		return
	}
	if err := docs.Session(&gorm.Session{}).Where("due_at >= ? AND due_at < ?", now, soon).Count(&summary.DocumentsDueSoon).Error; err != nil {
		dbError(c, err)
		return
	}

	response.Success(c, summary)
}
