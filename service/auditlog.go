package service

import (
	"time"

	"solarops/dao/model"
	"solarops/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuditLogHandler is the read side of the audit trail. There is no write
// endpoint: entries are only ever produced by mutating operations.
type AuditLogHandler struct {
	db *gorm.DB
}

func NewAuditLogHandler(db *gorm.DB) *AuditLogHandler {
	return &AuditLogHandler{db: db}
}

func (h *AuditLogHandler) Register(g *gin.RouterGroup) {
	g.GET("/audit", h.List)
}

type auditListQuery struct {
	Table    string     `form:"table"`
	Action   string     `form:"action"`
	ActorID  *uint      `form:"actorId"`
	RecordID *uint      `form:"recordId"`
	From     *time.Time `form:"from" time_format:"2006-01-02"`
	To       *time.Time `form:"to" time_format:"2006-01-02"`
	Page     int        `form:"page,default=1"`
	PageSize int        `form:"pageSize,default=50"`
}

type auditListResp struct {
	Entries []model.AuditLogEntry `json:"entries"`
	Total   int64                 `json:"total"`
	Page    int                   `json:"page"`
}

func (h *AuditLogHandler) List(c *gin.Context) {
	var q auditListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 500 {
		q.PageSize = 50
	}

	tx := h.db.WithContext(c.Request.Context()).Model(&model.AuditLogEntry{})
	if q.Table != "" {
		tx = tx.Where("table_name = ?", q.Table)
	}
	if q.Action != "" {
		tx = tx.Where("action = ?", q.Action)
	}
	if q.ActorID != nil {
		tx = tx.Where("actor_id = ?", *q.ActorID)
	}
	if q.RecordID != nil {
		tx = tx.Where("record_id = ?", *q.RecordID)
	}
	if q.From != nil {
		tx = tx.Where("created_at >= ?", *q.From)
	}
	if q.To != nil {
		tx = tx.Where("created_at < ?", q.To.AddDate(0, 0, 1))
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		dbError(c, err)
		return
	}

	var entries []model.AuditLogEntry
	err := tx.Order("created_at DESC, id DESC").
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&entries).Error
	if err != nil {
		dbError(c, err)
		return
	}

	response.Success(c, auditListResp{Entries: entries, Total: total, Page: q.Page})
}
