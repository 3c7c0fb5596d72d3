package service

import (
	"solarops/dao/model"
	"solarops/deletion"
	"solarops/metrics"
	"solarops/middleware"
	"solarops/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RecycleHandler exposes the deletion policy dispatcher and the recycle
// bin views over HTTP.
type RecycleHandler struct {
	dispatcher *deletion.Dispatcher
	db         *gorm.DB
}

func NewRecycleHandler(dispatcher *deletion.Dispatcher, db *gorm.DB) *RecycleHandler {
	return &RecycleHandler{dispatcher: dispatcher, db: db}
}

func (h *RecycleHandler) Register(g *gin.RouterGroup) {
	g.DELETE("/records/:table/:id", h.Delete)
	g.POST("/records/:table/:id/restore", h.Restore)
	g.POST("/records/:table/:id/unarchive", h.Unarchive)
	g.DELETE("/records/:table/:id/purge", h.Purge)
	g.POST("/batch/records/:table/delete", h.BatchDelete)
	g.POST("/batch/records/:table/restore", h.BatchRestore)
	g.POST("/batch/records/:table/purge", h.BatchPurge)
	g.GET("/recycle/:table", h.ListDeleted)
	g.POST("/recycle/:table/purge-expired", h.PurgeExpired)
}

func (h *RecycleHandler) table(c *gin.Context) (model.GovernedTable, bool) {
	table, ok := deletion.ParseTable(c.Param("table"))
	if !ok {
		response.BadRequestError(c, "unknown governed table")
		return "", false
	}
	return table, true
}

// dispatchError separates pre-mutation validation rejections from
// backend failures, per the two-bucket error model.
func dispatchError(c *gin.Context, err error) {
	if deletion.IsValidation(err) {
		response.ValidationError(c, err.Error())
		return
	}
	dbError(c, err)
}

type deleteReq struct {
	Reason string `json:"reason"`
}

func (h *RecycleHandler) Delete(c *gin.Context) {
	table, ok := h.table(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req deleteReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequestError(c, err.Error())
			return
		}
	}

	out, err := h.dispatcher.Delete(c.Request.Context(), table, id, actorID(c), req.Reason)
	metrics.RecordDispatch(string(table), string(model.ActionDelete), err == nil)
	if err != nil {
		dispatchError(c, err)
		return
	}
	response.Success(c, out)
}

func (h *RecycleHandler) Restore(c *gin.Context) {
	table, ok := h.table(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	err := h.dispatcher.Restore(c.Request.Context(), table, id, actorID(c))
	metrics.RecordDispatch(string(table), string(model.ActionRestore), err == nil)
	if err != nil {
		dispatchError(c, err)
		return
	}
	response.Success(c, gin.H{"restored": id})
}

func (h *RecycleHandler) Unarchive(c *gin.Context) {
	table, ok := h.table(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	err := h.dispatcher.Unarchive(c.Request.Context(), table, id, actorID(c))
	metrics.RecordDispatch(string(table), string(model.ActionUnarchive), err == nil)
	if err != nil {
		dispatchError(c, err)
		return
	}
	response.Success(c, gin.H{"unarchived": id})
}

func (h *RecycleHandler) Purge(c *gin.Context) {
	table, ok := h.table(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	admin := middleware.GetActor(c).Role == model.RoleAdmin
	err := h.dispatcher.Purge(c.Request.Context(), table, id, actorID(c), admin)
	metrics.RecordDispatch(string(table), string(model.ActionPurge), err == nil)
	if err != nil {
		dispatchError(c, err)
		return
	}
	response.Success(c, gin.H{"purged": id})
}

type batchReq struct {
	IDs    []uint `json:"ids" binding:"required,min=1"`
	Reason string `json:"reason"`
}

func (h *RecycleHandler) BatchDelete(c *gin.Context) {
	table, ok := h.table(c)
	if !ok {
		return
	}
	var req batchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	results := h.dispatcher.BatchDelete(c.Request.Context(), table, req.IDs, actorID(c), req.Reason)
	response.Success(c, results)
}

func (h *RecycleHandler) BatchRestore(c *gin.Context) {
	table, ok := h.table(c)
	if !ok {
		return
	}
	var req batchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	results := h.dispatcher.BatchRestore(c.Request.Context(), table, req.IDs, actorID(c))
	response.Success(c, results)
}

func (h *RecycleHandler) BatchPurge(c *gin.Context) {
	table, ok := h.table(c)
	if !ok {
		return
	}
	var req batchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	admin := middleware.GetActor(c).Role == model.RoleAdmin
	results := h.dispatcher.BatchPurge(c.Request.Context(), table, req.IDs, actorID(c), admin)
	response.Success(c, results)
}

// ListDeleted is the recycle bin view: soft-deleted rows of one table,
// newest deletions first.
func (h *RecycleHandler) ListDeleted(c *gin.Context) {
	table, ok := h.table(c)
	if !ok {
		return
	}

	var rows []map[string]any
	err := h.db.WithContext(c.Request.Context()).
		Table(string(table)).
		Where("is_deleted = ?", true).
		Order("deleted_at DESC").
		Find(&rows).Error
	if err != nil {
		dbError(c, err)
		return
	}
	response.Success(c, rows)
}

func (h *RecycleHandler) PurgeExpired(c *gin.Context) {
	table, ok := h.table(c)
	if !ok {
		return
	}

	results, err := h.dispatcher.PurgeExpired(c.Request.Context(), table, actorID(c))
	if err != nil {
		dispatchError(c, err)
		return
	}
	response.Success(c, results)
}
