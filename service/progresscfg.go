package service

import (
	"context"
	"errors"

	"solarops/audit"
	"solarops/dao/model"
	"solarops/progress"
	"solarops/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ProgressConfigHandler exposes the admin-tunable weight split and
// stalled-project thresholds.
type ProgressConfigHandler struct {
	db  *gorm.DB
	log audit.Recorder
}

func NewProgressConfigHandler(db *gorm.DB, log audit.Recorder) *ProgressConfigHandler {
	return &ProgressConfigHandler{db: db, log: log}
}

func (h *ProgressConfigHandler) Register(g *gin.RouterGroup) {
	g.GET("/progress/config", h.Get)
	g.PUT("/progress/config", h.Update)
	g.PUT("/progress/weights", h.UpdateWeights)
}

// loadProgressConfig returns the singleton configuration row, or its
// defaults when the row was never saved.
func loadProgressConfig(ctx context.Context, db *gorm.DB) (model.ProgressConfig, error) {
	var cfg model.ProgressConfig
	err := db.WithContext(ctx).Order("id").First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return defaultProgressConfig(), nil
	}
	return cfg, err
}

func defaultProgressConfig() model.ProgressConfig {
	return model.ProgressConfig{
		AdminWeight:           50,
		EngineeringWeight:     50,
		MonthsThreshold:       6,
		MinProgressOldProject: 30,
		MinProgressLateStage:  50,
		LateStages: []model.ProjectStatus{
			model.ProjectConstruction,
			model.ProjectGridConnection,
		},
	}
}

func (h *ProgressConfigHandler) Get(c *gin.Context) {
	cfg, err := loadProgressConfig(c.Request.Context(), h.db)
	if err != nil {
		dbError(c, err)
		return
	}
	response.Success(c, cfg)
}

type progressConfigReq struct {
	AdminWeight           *int                  `json:"adminWeight" binding:"required"`
	EngineeringWeight     *int                  `json:"engineeringWeight" binding:"required"`
	MonthsThreshold       *int                  `json:"monthsThreshold" binding:"required"`
	MinProgressOldProject *int                  `json:"minProgressOldProject" binding:"required"`
	MinProgressLateStage  *int                  `json:"minProgressLateStage" binding:"required"`
	LateStages            []model.ProjectStatus `json:"lateStages"`
}

func (r *progressConfigReq) validate() string {
	if *r.AdminWeight < 0 || *r.AdminWeight > 100 || *r.AdminWeight+*r.EngineeringWeight != 100 {
		return "track weights must be in [0,100] and sum to 100"
	}
	if *r.MonthsThreshold < 0 {
		return "monthsThreshold must not be negative"
	}
	if *r.MinProgressOldProject < 0 || *r.MinProgressOldProject > 100 ||
		*r.MinProgressLateStage < 0 || *r.MinProgressLateStage > 100 {
		return "progress thresholds must be in [0,100]"
	}
	for _, s := range r.LateStages {
		if s < model.ProjectPlanning || s > model.ProjectOnHold {
			return "unknown project status in lateStages"
		}
	}
	return ""
}

func (h *ProgressConfigHandler) Update(c *gin.Context) {
	var req progressConfigReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		response.ValidationError(c, msg)
		return
	}

	cfg, err := loadProgressConfig(c.Request.Context(), h.db)
	if err != nil {
		dbError(c, err)
		return
	}
	old := cfg

	cfg.AdminWeight = *req.AdminWeight
	cfg.EngineeringWeight = *req.EngineeringWeight
	cfg.MonthsThreshold = *req.MonthsThreshold
	cfg.MinProgressOldProject = *req.MinProgressOldProject
	cfg.MinProgressLateStage = *req.MinProgressLateStage
	cfg.LateStages = req.LateStages

	if err := h.db.WithContext(c.Request.Context()).Save(&cfg).Error; err != nil {
		dbError(c, err)
		return
	}

	audit.RecordBestEffort(c.Request.Context(), h.log, audit.Entry{
		Table:    "progress_configs",
		RecordID: cfg.ID,
		Action:   model.ActionUpdate,
		ActorID:  actorID(c),
		OldData:  old,
		NewData:  cfg,
	})
	response.Success(c, cfg)
}

type weightsReq struct {
	AdminWeight *int `json:"adminWeight" binding:"required"`
}

// UpdateWeights is the single-slider endpoint: the admin weight is set
// and the engineering weight is inferred as the remainder.
func (h *ProgressConfigHandler) UpdateWeights(c *gin.Context) {
	var req weightsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	cfg, err := loadProgressConfig(c.Request.Context(), h.db)
	if err != nil {
		dbError(c, err)
		return
	}
	old := cfg

	cfg.AdminWeight, cfg.EngineeringWeight = progress.SplitWeights(*req.AdminWeight)
	if err := h.db.WithContext(c.Request.Context()).Save(&cfg).Error; err != nil {
		dbError(c, err)
		return
	}

	audit.RecordBestEffort(c.Request.Context(), h.log, audit.Entry{
		Table:    "progress_configs",
		RecordID: cfg.ID,
		Action:   model.ActionUpdate,
		ActorID:  actorID(c),
		OldData:  old,
		NewData:  cfg,
	})
	response.Success(c, cfg)
}
