package service

import (
	"solarops/audit"
	"solarops/dao/model"
	"solarops/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// InvestorHandler covers the two lightweight directory entities:
// investors and partner companies.
type InvestorHandler struct {
	db  *gorm.DB
	log audit.Recorder
}

func NewInvestorHandler(db *gorm.DB, log audit.Recorder) *InvestorHandler {
	return &InvestorHandler{db: db, log: log}
}

func (h *InvestorHandler) Register(g *gin.RouterGroup) {
	g.GET("/investors", h.ListInvestors)
	g.POST("/investors", h.CreateInvestor)
	g.PUT("/investors/:id", h.UpdateInvestor)
	g.GET("/partners", h.ListPartners)
	g.POST("/partners", h.CreatePartner)
	g.PUT("/partners/:id", h.UpdatePartner)
}

func (h *InvestorHandler) ListInvestors(c *gin.Context) {
	var investors []model.Investor
	err := h.db.WithContext(c.Request.Context()).
		Scopes(model.NotDeleted).
		Order("name").
		Find(&investors).Error
	if err != nil {
		dbError(c, err)
		return
	}
	response.Success(c, investors)
}

type investorReq struct {
	Name    string  `json:"name" binding:"required"`
	Contact *string `json:"contact"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
}

func (h *InvestorHandler) CreateInvestor(c *gin.Context) {
	var req investorReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	inv := model.Investor{Name: req.Name, Contact: req.Contact, Phone: req.Phone, Email: req.Email}
	inv.IsActive = true
	if err := h.db.WithContext(c.Request.Context()).Create(&inv).Error; err != nil {
		dbError(c, err)
		return
	}

	audit.RecordBestEffort(c.Request.Context(), h.log, audit.Entry{
		Table:    string(model.TableInvestors),
		RecordID: inv.ID,
		Action:   model.ActionCreate,
		ActorID:  actorID(c),
		NewData:  inv,
	})
	response.Success(c, inv)
}

func (h *InvestorHandler) UpdateInvestor(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req investorReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	var inv model.Investor
	if err := h.db.WithContext(c.Request.Context()).Scopes(model.NotDeleted).Take(&inv, id).Error; err != nil {
		dbError(c, err)
		return
	}
	old := inv

	inv.Name = req.Name
	inv.Contact = req.Contact
	inv.Phone = req.Phone
	inv.Email = req.Email
	if err := h.db.WithContext(c.Request.Context()).Save(&inv).Error; err != nil {
		dbError(c, err)
		return
	}

	audit.RecordBestEffort(c.Request.Context(), h.log, audit.Entry{
		Table:    string(model.TableInvestors),
		RecordID: inv.ID,
		Action:   model.ActionUpdate,
		ActorID:  actorID(c),
		OldData:  old,
		NewData:  inv,
	})
	response.Success(c, inv)
}

func (h *InvestorHandler) ListPartners(c *gin.Context) {
	var partners []model.Partner
	err := h.db.WithContext(c.Request.Context()).
		Scopes(model.NotDeleted).
		Order("name").
		Find(&partners).Error
	if err != nil {
		dbError(c, err)
		return
	}
	response.Success(c, partners)
}

type partnerReq struct {
	Name     string  `json:"name" binding:"required"`
	Category string  `json:"category"`
	Contact  *string `json:"contact"`
	Phone    *string `json:"phone"`
}

func (h *InvestorHandler) CreatePartner(c *gin.Context) {
	var req partnerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	p := model.Partner{Name: req.Name, Category: req.Category, Contact: req.Contact, Phone: req.Phone}
	p.IsActive = true
	if err := h.db.WithContext(c.Request.Context()).Create(&p).Error; err != nil {
		dbError(c, err)
		return
	}

	audit.RecordBestEffort(c.Request.Context(), h.log, audit.Entry{
		Table:    string(model.TablePartners),
		RecordID: p.ID,
		Action:   model.ActionCreate,
		ActorID:  actorID(c),
		NewData:  p,
	})
	response.Success(c, p)
}

func (h *InvestorHandler) UpdatePartner(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req partnerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	var p model.Partner
	if err := h.db.WithContext(c.Request.Context()).Scopes(model.NotDeleted).Take(&p, id).Error; err != nil {
		dbError(c, err)
		return
	}
	old := p

	p.Name = req.Name
	p.Category = req.Category
	p.Contact = req.Contact
	p.Phone = req.Phone
	if err := h.db.WithContext(c.Request.Context()).Save(&p).Error; err != nil {
		dbError(c, err)
		return
	}

	audit.RecordBestEffort(c.Request.Context(), h.log, audit.Entry{
		Table:    string(model.TablePartners),
		RecordID: p.ID,
		Action:   model.ActionUpdate,
		ActorID:  actorID(c),
		OldData:  old,
		NewData:  p,
	})
	response.Success(c, p)
}
