package service

import (
	"errors"
	"time"

	"solarops/audit"
	"solarops/dao/model"
	"solarops/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type MilestoneHandler struct {
	db  *gorm.DB
	log audit.Recorder
}

func NewMilestoneHandler(db *gorm.DB, log audit.Recorder) *MilestoneHandler {
	return &MilestoneHandler{db: db, log: log}
}

func (h *MilestoneHandler) Register(g *gin.RouterGroup) {
	g.GET("/milestones", h.List)
	g.POST("/milestones", h.Create)
	g.PUT("/milestones/:id", h.Update)
	g.PUT("/projects/:id/milestones/:milestoneId", h.SetCompletion)
}

// milestoneCatalog is the list response: milestones plus the per-track
// active weight sums, so the UI can warn when a track does not add up
// to 100. The sum is advisory only; nothing rejects other totals.
type milestoneCatalog struct {
	Milestones   []model.ProgressMilestone `json:"milestones"`
	TrackWeights map[model.Track]int       `json:"trackWeights"`
}

func (h *MilestoneHandler) List(c *gin.Context) {
	var milestones []model.ProgressMilestone
	err := h.db.WithContext(c.Request.Context()).
		Scopes(model.NotDeleted).
		Order("sort_order").
		Find(&milestones).Error
	if err != nil {
		dbError(c, err)
		return
	}

	weights := map[model.Track]int{model.TrackAdmin: 0, model.TrackEngineering: 0}
	for i := range milestones {
		if milestones[i].IsActive {
			weights[milestones[i].Track] += milestones[i].Weight
		}
	}
	response.Success(c, milestoneCatalog{Milestones: milestones, TrackWeights: weights})
}

type milestoneReq struct {
	Name       string      `json:"name" binding:"required"`
	Track      model.Track `json:"track" binding:"required"`
	Weight     *int        `json:"weight" binding:"required"`
	IsRequired bool        `json:"isRequired"`
	IsActive   *bool       `json:"isActive"`
	SortOrder  int         `json:"sortOrder"`
}

func (r *milestoneReq) validate() string {
	if r.Track != model.TrackAdmin && r.Track != model.TrackEngineering {
		return "track must be admin or engineering"
	}
	if *r.Weight < 0 || *r.Weight > 100 {
		return "weight must be in [0,100]"
	}
	return ""
}

func (h *MilestoneHandler) Create(c *gin.Context) {
	var req milestoneReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		response.ValidationError(c, msg)
		return
	}

	m := model.ProgressMilestone{
		Name:       req.Name,
		Track:      req.Track,
		Weight:     *req.Weight,
		IsRequired: req.IsRequired,
		SortOrder:  req.SortOrder,
	}
	m.IsActive = true
	if req.IsActive != nil {
		m.IsActive = *req.IsActive
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&m).Error; err != nil {
		dbError(c, err)
		return
	}

	audit.RecordBestEffort(c.Request.Context(), h.log, audit.Entry{
		Table:    string(model.TableMilestones),
		RecordID: m.ID,
		Action:   model.ActionCreate,
		ActorID:  actorID(c),
		NewData:  m,
	})
	response.Success(c, m)
}

func (h *MilestoneHandler) Update(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req milestoneReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		response.ValidationError(c, msg)
		return
	}

	var m model.ProgressMilestone
	if err := h.db.WithContext(c.Request.Context()).Scopes(model.NotDeleted).Take(&m, id).Error; err != nil {
		dbError(c, err)
		return
	}
	old := m

	m.Name = req.Name
	m.Track = req.Track
	m.Weight = *req.Weight
	m.IsRequired = req.IsRequired
	m.SortOrder = req.SortOrder
	if req.IsActive != nil {
		m.IsActive = *req.IsActive
	}

	if err := h.db.WithContext(c.Request.Context()).Save(&m).Error; err != nil {
		dbError(c, err)
		return
	}

	audit.RecordBestEffort(c.Request.Context(), h.log, audit.Entry{
		Table:    string(model.TableMilestones),
		RecordID: m.ID,
		Action:   model.ActionUpdate,
		ActorID:  actorID(c),
		OldData:  old,
		NewData:  m,
	})
	response.Success(c, m)
}

type completionReq struct {
	Completed *bool `json:"completed" binding:"required"`
}

// SetCompletion marks one milestone done or not done for one project,
// upserting the per-project completion row.
func (h *MilestoneHandler) SetCompletion(c *gin.Context) {
	projectID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	milestoneID, ok := uintParam(c, "milestoneId")
	if !ok {
		return
	}
	var req completionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	ctx := c.Request.Context()

	// Both sides must exist before a completion row is written.
	var project model.Project
	if err := h.db.WithContext(ctx).Scopes(model.NotDeleted).Take(&project, projectID).Error; err != nil {
		dbError(c, err)
		return
	}
	var milestone model.ProgressMilestone
	if err := h.db.WithContext(ctx).Scopes(model.NotDeleted).Take(&milestone, milestoneID).Error; err != nil {
		dbError(c, err)
		return
	}

	var state model.ProjectMilestone
	err := h.db.WithContext(ctx).
		Where("project_id = ? AND milestone_id = ?", projectID, milestoneID).
		Take(&state).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		dbError(c, err)
		return
	}
	old := state

	state.ProjectID = projectID
	state.MilestoneID = milestoneID
	if *req.Completed {
		now := time.Now()
		state.CompletedAt = &now
	} else {
		state.CompletedAt = nil
	}

	if err := h.db.WithContext(ctx).Save(&state).Error; err != nil {
		dbError(c, err)
		return
	}

	audit.RecordBestEffort(ctx, h.log, audit.Entry{
		Table:    "project_milestones",
		RecordID: state.ID,
		Action:   model.ActionUpdate,
		ActorID:  actorID(c),
		OldData:  old,
		NewData:  state,
	})
	response.Success(c, state)
}
