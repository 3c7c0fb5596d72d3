package service

import (
	"time"

	"solarops/audit"
	"solarops/dao/model"
	"solarops/response"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DocumentHandler struct {
	db  *gorm.DB
	log audit.Recorder
}

func NewDocumentHandler(db *gorm.DB, log audit.Recorder) *DocumentHandler {
	return &DocumentHandler{db: db, log: log}
}

func (h *DocumentHandler) Register(g *gin.RouterGroup) {
	g.GET("/projects/:id/documents", h.ListByProject)
	g.GET("/documents/:id", h.Get)
	g.POST("/documents", h.Create)
	g.PUT("/documents/:id", h.Update)
	g.POST("/batch/documents", h.BatchImport)
}

// DocumentView carries the derived status alongside the stored fields.
type DocumentView struct {
	model.Document
	Status  model.DocStatus `json:"status"`
	Overdue bool            `json:"overdue"`
}

func newDocumentView(d model.Document, now time.Time) DocumentView {
	return DocumentView{
		Document: d,
		Status:   d.Status(),
		Overdue:  d.Overdue(now),
	}
}

type documentListQuery struct {
	Status *model.DocStatus `form:"status"`
}

func (h *DocumentHandler) ListByProject(c *gin.Context) {
	projectID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var q documentListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	var docs []model.Document
	err := h.db.WithContext(c.Request.Context()).
		Where("project_id = ? AND is_deleted = ?", projectID, false).
		Order("id").
		Find(&docs).Error
	if err != nil {
		dbError(c, err)
		return
	}

	now := time.Now()
	views := make([]DocumentView, 0, len(docs))
	for _, d := range docs {
		v := newDocumentView(d, now)
		// Status filtering happens here, not in SQL: the status is derived
		// from the date fields and has no column.
		if q.Status != nil && v.Status != *q.Status {
			continue
		}
		views = append(views, v)
	}
	response.Success(c, views)
}

func (h *DocumentHandler) Get(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var d model.Document
	if err := h.db.WithContext(c.Request.Context()).Scopes(model.NotDeleted).Take(&d, id).Error; err != nil {
		dbError(c, err)
		return
	}
	response.Success(c, newDocumentView(d, time.Now()))
}

type documentReq struct {
	ProjectID   uint       `json:"projectId" binding:"required"`
	DocType     string     `json:"docType" binding:"required"`
	DocTypeCode string     `json:"docTypeCode"`
	SubmittedAt *time.Time `json:"submittedAt"`
	IssuedAt    *time.Time `json:"issuedAt"`
	DueAt       *time.Time `json:"dueAt"`
	DriveFileID *string    `json:"driveFileId"`
	Tags        []string   `json:"tags"`
	Note        *string    `json:"note"`
}

func (r *documentReq) toModel() model.Document {
	d := model.Document{
		ProjectID:   r.ProjectID,
		DocType:     r.DocType,
		DocTypeCode: r.DocTypeCode,
		SubmittedAt: r.SubmittedAt,
		IssuedAt:    r.IssuedAt,
		DueAt:       r.DueAt,
		DriveFileID: r.DriveFileID,
	}
	d.IsActive = true
	if len(r.Tags) > 0 || r.Note != nil {
		d.Extra = datatypes.NewJSONType(model.DocumentExtra{Tags: r.Tags, Note: r.Note})
	}
	return d
}

func (h *DocumentHandler) Create(c *gin.Context) {
	var req documentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	d := req.toModel()
	if err := h.db.WithContext(c.Request.Context()).Create(&d).Error; err != nil {
		dbError(c, err)
		return
	}

	audit.RecordBestEffort(c.Request.Context(), h.log, audit.Entry{
		Table:    string(model.TableDocuments),
		RecordID: d.ID,
		Action:   model.ActionCreate,
		ActorID:  actorID(c),
		NewData:  d,
	})
	response.Success(c, newDocumentView(d, time.Now()))
}

func (h *DocumentHandler) Update(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req documentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	var d model.Document
	if err := h.db.WithContext(c.Request.Context()).Scopes(model.NotDeleted).Take(&d, id).Error; err != nil {
		dbError(c, err)
		return
	}
	old := d

	d.ProjectID = req.ProjectID
	d.DocType = req.DocType
	d.DocTypeCode = req.DocTypeCode
	d.SubmittedAt = req.SubmittedAt
	d.IssuedAt = req.IssuedAt
	d.DueAt = req.DueAt
	d.DriveFileID = req.DriveFileID
	d.Extra = datatypes.NewJSONType(model.DocumentExtra{Tags: req.Tags, Note: req.Note})

	if err := h.db.WithContext(c.Request.Context()).Save(&d).Error; err != nil {
		dbError(c, err)
		return
	}

	audit.RecordBestEffort(c.Request.Context(), h.log, audit.Entry{
		Table:    string(model.TableDocuments),
		RecordID: d.ID,
		Action:   model.ActionUpdate,
		ActorID:  actorID(c),
		OldData:  old,
		NewData:  d,
	})
	response.Success(c, newDocumentView(d, time.Now()))
}

type batchImportReq struct {
	Documents []documentReq `json:"documents" binding:"required,min=1,dive"`
}

type batchImportItem struct {
	Index int    `json:"index"`
	ID    uint   `json:"id,omitempty"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// BatchImport creates documents independently: a failed row does not
// abort the rest, and each created row gets its own audit entry.
func (h *DocumentHandler) BatchImport(c *gin.Context) {
	var req batchImportReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	actor := actorID(c)
	results := make([]batchImportItem, 0, len(req.Documents))
	for i := range req.Documents {
		d := req.Documents[i].toModel()
		if err := h.db.WithContext(c.Request.Context()).Create(&d).Error; err != nil {
			results = append(results, batchImportItem{Index: i, Error: err.Error()})
			continue
		}
		audit.RecordBestEffort(c.Request.Context(), h.log, audit.Entry{
			Table:    string(model.TableDocuments),
			RecordID: d.ID,
			Action:   model.ActionCreate,
			ActorID:  actor,
			NewData:  d,
		})
		results = append(results, batchImportItem{Index: i, ID: d.ID, OK: true})
	}
	response.Success(c, results)
}
