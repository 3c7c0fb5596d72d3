package service

import (
	"errors"

	"solarops/audit"
	"solarops/dao/model"
	"solarops/deletion"
	"solarops/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PolicyHandler manages the per-table deletion policy rows. Admin only.
type PolicyHandler struct {
	db  *gorm.DB
	log audit.Recorder
}

func NewPolicyHandler(db *gorm.DB, log audit.Recorder) *PolicyHandler {
	return &PolicyHandler{db: db, log: log}
}

func (h *PolicyHandler) Register(g *gin.RouterGroup) {
	g.GET("/policies", h.List)
	g.PUT("/policies/:table", h.Update)
}

// List returns one policy per governed table, filling in the default for
// tables without a stored row.
func (h *PolicyHandler) List(c *gin.Context) {
	var stored []model.DeletionPolicy
	if err := h.db.WithContext(c.Request.Context()).Find(&stored).Error; err != nil {
		dbError(c, err)
		return
	}

	byTable := map[model.GovernedTable]model.DeletionPolicy{}
	for _, p := range stored {
		byTable[p.Table] = p
	}

	policies := make([]model.DeletionPolicy, 0, len(model.GovernedTables()))
	for _, table := range model.GovernedTables() {
		if p, ok := byTable[table]; ok {
			policies = append(policies, p)
			continue
		}
		policies = append(policies, model.DefaultDeletionPolicy(table))
	}
	response.Success(c, policies)
}

type policyReq struct {
	Mode           model.DeletionMode `json:"mode" binding:"required"`
	RetentionDays  *int               `json:"retentionDays" binding:"required"`
	RequireReason  bool               `json:"requireReason"`
	RequireConfirm bool               `json:"requireConfirm"`
	AllowAutoPurge bool               `json:"allowAutoPurge"`
}

func (r *policyReq) validate() string {
	switch r.Mode {
	case model.ModeSoftDelete, model.ModeArchive, model.ModeHardDelete, model.ModeDisableOnly:
	default:
		return "unknown deletion mode"
	}
	if *r.RetentionDays < 0 {
		return "retentionDays must not be negative"
	}
	return ""
}

func (h *PolicyHandler) Update(c *gin.Context) {
	table, ok := deletion.ParseTable(c.Param("table"))
	if !ok {
		response.BadRequestError(c, "unknown governed table")
		return
	}
	var req policyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		response.ValidationError(c, msg)
		return
	}

	ctx := c.Request.Context()

	var pol model.DeletionPolicy
	err := h.db.WithContext(ctx).Where("table_name = ?", table).Take(&pol).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		dbError(c, err)
		return
	}
	old := pol

	pol.Table = table
	pol.Mode = req.Mode
	pol.RetentionDays = *req.RetentionDays
	pol.RequireReason = req.RequireReason
	pol.RequireConfirm = req.RequireConfirm
	pol.AllowAutoPurge = req.AllowAutoPurge

	if err := h.db.WithContext(ctx).Save(&pol).Error; err != nil {
		dbError(c, err)
		return
	}

	audit.RecordBestEffort(ctx, h.log, audit.Entry{
		Table:    "deletion_policies",
		RecordID: pol.ID,
		Action:   model.ActionUpdate,
		ActorID:  actorID(c),
		OldData:  old,
		NewData:  pol,
	})
	response.Success(c, pol)
}
