package service

import (
	"context"
	"time"

	"solarops/audit"
	"solarops/dao/model"
	"solarops/progress"
	"solarops/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ProjectHandler struct {
	db  *gorm.DB
	log audit.Recorder
}

func NewProjectHandler(db *gorm.DB, log audit.Recorder) *ProjectHandler {
	return &ProjectHandler{db: db, log: log}
}

func (h *ProjectHandler) Register(g *gin.RouterGroup) {
	g.GET("/projects", h.List)
	g.POST("/projects", h.Create)
	g.GET("/projects/:id", h.Get)
	g.PUT("/projects/:id", h.Update)
	g.PUT("/projects/:id/status", h.UpdateStatus)
}

// ProjectView augments a stored project with its derived fields. Progress
// is recomputed on every read, never persisted.
type ProjectView struct {
	model.Project
	OverallProgress float64 `json:"overallProgress"`
	Stalled         bool    `json:"stalled"`
}

// derivationContext bundles what project derivations need: the milestone
// catalog and the progress configuration.
type derivationContext struct {
	cfg        progress.Config
	milestones []model.ProgressMilestone
	now        time.Time
}

func loadDerivationContext(ctx context.Context, db *gorm.DB) (*derivationContext, error) {
	cfgRow, err := loadProgressConfig(ctx, db)
	if err != nil {
		return nil, err
	}
	var milestones []model.ProgressMilestone
	if err := db.WithContext(ctx).
		Scopes(model.NotDeleted).
		Order("sort_order").
		Find(&milestones).Error; err != nil {
		return nil, err
	}
	return &derivationContext{
		cfg:        progress.FromModel(&cfgRow),
		milestones: milestones,
		now:        time.Now(),
	}, nil
}

func (dc *derivationContext) view(p model.Project) ProjectView {
	overall := progress.Compute(dc.milestones, p.MilestoneStates, dc.cfg)
	return ProjectView{
		Project:         p,
		OverallProgress: overall,
		Stalled:         progress.Stalled(p.CreatedAt, p.Status, overall, dc.cfg, dc.now),
	}
}

type projectListQuery struct {
	Status   *model.ProjectStatus `form:"status"`
	Stalled  *bool                `form:"stalled"`
	Archived bool                 `form:"archived"`
}

func (h *ProjectHandler) List(c *gin.Context) {
	var q projectListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	tx := h.db.WithContext(c.Request.Context()).
		Preload("MilestoneStates").
		Preload("Investor").
		Scopes(model.NotDeleted).
		Where("is_archived = ?", q.Archived)
	if q.Status != nil {
		tx = tx.Where("status = ?", *q.Status)
	}

	var projects []model.Project
	if err := tx.Order("id").Find(&projects).Error; err != nil {
		dbError(c, err)
		return
	}

	dc, err := loadDerivationContext(c.Request.Context(), h.db)
	if err != nil {
		dbError(c, err)
		return
	}

	views := make([]ProjectView, 0, len(projects))
	for _, p := range projects {
		v := dc.view(p)
		if q.Stalled != nil && v.Stalled != *q.Stalled {
			continue
		}
		views = append(views, v)
	}
	response.Success(c, views)
}

func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var p model.Project
	err := h.db.WithContext(c.Request.Context()).
		Scopes(model.NotDeleted).
		Preload("MilestoneStates").
		Preload("Investor").
		Preload("Partners").
		Take(&p, id).Error
	if err != nil {
		dbError(c, err)
		return
	}

	dc, err := loadDerivationContext(c.Request.Context(), h.db)
	if err != nil {
		dbError(c, err)
		return
	}
	response.Success(c, dc.view(p))
}

type projectReq struct {
	Name       string              `json:"name" binding:"required"`
	Code       string              `json:"code" binding:"required"`
	Site       *string             `json:"site"`
	CapacityKW float64             `json:"capacityKw"`
	Status     model.ProjectStatus `json:"status"`
	InvestorID *uint               `json:"investorId"`
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var req projectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	if req.Status == 0 {
		req.Status = model.ProjectPlanning
	}

	p := model.Project{
		Name:       req.Name,
		Code:       req.Code,
		Site:       req.Site,
		CapacityKW: req.CapacityKW,
		Status:     req.Status,
		InvestorID: req.InvestorID,
	}
	p.IsActive = true

	if err := h.db.WithContext(c.Request.Context()).Create(&p).Error; err != nil {
		dbError(c, err)
		return
	}

	audit.RecordBestEffort(c.Request.Context(), h.log, audit.Entry{
		Table:    string(model.TableProjects),
		RecordID: p.ID,
		Action:   model.ActionCreate,
		ActorID:  actorID(c),
		NewData:  p,
	})
	response.Success(c, p)
}

func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req projectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	var p model.Project
	if err := h.db.WithContext(c.Request.Context()).Scopes(model.NotDeleted).Take(&p, id).Error; err != nil {
		dbError(c, err)
		return
	}
	old := p

	p.Name = req.Name
	p.Code = req.Code
	p.Site = req.Site
	p.CapacityKW = req.CapacityKW
	if req.Status != 0 {
		p.Status = req.Status
	}
	p.InvestorID = req.InvestorID

	if err := h.db.WithContext(c.Request.Context()).Save(&p).Error; err != nil {
		dbError(c, err)
		return
	}

	audit.RecordBestEffort(c.Request.Context(), h.log, audit.Entry{
		Table:    string(model.TableProjects),
		RecordID: p.ID,
		Action:   model.ActionUpdate,
		ActorID:  actorID(c),
		OldData:  old,
		NewData:  p,
	})
	response.Success(c, p)
}

type projectStatusReq struct {
	Status model.ProjectStatus `json:"status" binding:"required"`
}

func (h *ProjectHandler) UpdateStatus(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req projectStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	if req.Status < model.ProjectPlanning || req.Status > model.ProjectOnHold {
		response.ValidationError(c, "unknown project status")
		return
	}

	var p model.Project
	if err := h.db.WithContext(c.Request.Context()).Scopes(model.NotDeleted).Take(&p, id).Error; err != nil {
		dbError(c, err)
		return
	}
	old := p

	p.Status = req.Status
	if err := h.db.WithContext(c.Request.Context()).Save(&p).Error; err != nil {
		dbError(c, err)
		return
	}

	audit.RecordBestEffort(c.Request.Context(), h.log, audit.Entry{
		Table:    string(model.TableProjects),
		RecordID: p.ID,
		Action:   model.ActionUpdate,
		ActorID:  actorID(c),
		OldData:  old,
		NewData:  p,
	})
	response.Success(c, p)
}
