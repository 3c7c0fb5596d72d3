package service

import (
	"solarops/audit"
	"solarops/dao/model"
	"solarops/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ResetConfirmPhrase must be typed twice, verbatim, to reset the
// database. A manual safeguard, not an automated one.
const ResetConfirmPhrase = "RESET-ALL-DATA"

// AdminHandler hosts the destructive database-level operations. All
// routes are mounted behind the admin-role middleware.
type AdminHandler struct {
	db  *gorm.DB
	log audit.Recorder
}

func NewAdminHandler(db *gorm.DB, log audit.Recorder) *AdminHandler {
	return &AdminHandler{db: db, log: log}
}

func (h *AdminHandler) Register(g *gin.RouterGroup) {
	g.POST("/admin/reset", h.Reset)
	g.GET("/admin/export", h.Export)
	g.POST("/admin/import", h.Import)
}

type resetReq struct {
	Confirm      string `json:"confirm"`
	ConfirmAgain string `json:"confirmAgain"`
}

// Reset wipes all business data. Policies, progress configuration, users
// and the audit trail survive; the reset itself is recorded.
func (h *AdminHandler) Reset(c *gin.Context) {
	var req resetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	if req.Confirm != ResetConfirmPhrase || req.ConfirmAgain != ResetConfirmPhrase {
		response.ValidationError(c, "confirmation phrase mismatch")
		return
	}

	ctx := c.Request.Context()
	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{
			&model.ProjectMilestone{},
			&model.Document{},
			&model.Project{},
			&model.Investor{},
			&model.Partner{},
		} {
			if err := tx.Where("1 = 1").Delete(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		dbError(c, err)
		return
	}

	audit.RecordBestEffort(ctx, h.log, audit.Entry{
		Table:   "database",
		Action:  model.ActionDBReset,
		ActorID: actorID(c),
	})
	response.Success(c, gin.H{"reset": true})
}

// databaseDump is the JSON export/import payload.
type databaseDump struct {
	Projects   []model.Project           `json:"projects"`
	Documents  []model.Document          `json:"documents"`
	Investors  []model.Investor          `json:"investors"`
	Partners   []model.Partner           `json:"partners"`
	Milestones []model.ProgressMilestone `json:"milestones"`
	States     []model.ProjectMilestone  `json:"projectMilestones"`
}

func (h *AdminHandler) Export(c *gin.Context) {
	ctx := c.Request.Context()
	var dump databaseDump

	for _, dst := range []any{
		&dump.Projects,
		&dump.Documents,
		&dump.Investors,
		&dump.Partners,
		&dump.Milestones,
		&dump.States,
	} {
		if err := h.db.WithContext(ctx).Find(dst).Error; err != nil {
			dbError(c, err)
			return
		}
	}

	audit.RecordBestEffort(ctx, h.log, audit.Entry{
		Table:   "database",
		Action:  model.ActionDBExport,
		ActorID: actorID(c),
	})
	response.Success(c, dump)
}

// Import loads an exported dump into an empty-or-not database. Rows keep
// their IDs; conflicting rows fail individually without aborting the
// rest, mirroring batch semantics elsewhere.
func (h *AdminHandler) Import(c *gin.Context) {
	var dump databaseDump
	if err := c.ShouldBindJSON(&dump); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	var imported, failed int

	importRows := func(rows []any) {
		for _, row := range rows {
			if err := h.db.WithContext(ctx).Create(row).Error; err != nil {
				failed++
				continue
			}
			imported++
		}
	}

	var rows []any
	for i := range dump.Investors {
		rows = append(rows, &dump.Investors[i])
	}
	for i := range dump.Partners {
		rows = append(rows, &dump.Partners[i])
	}
	for i := range dump.Milestones {
		rows = append(rows, &dump.Milestones[i])
	}
	for i := range dump.Projects {
		rows = append(rows, &dump.Projects[i])
	}
	for i := range dump.Documents {
		rows = append(rows, &dump.Documents[i])
	}
	for i := range dump.States {
		rows = append(rows, &dump.States[i])
	}
	importRows(rows)

	audit.RecordBestEffort(ctx, h.log, audit.Entry{
		Table:   "database",
		Action:  model.ActionDBImport,
		ActorID: actorID(c),
	})
	response.Success(c, gin.H{"imported": imported, "failed": failed})
}
