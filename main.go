package main

import (
	"fmt"
	"os"

	"solarops/audit"
	"solarops/config"
	"solarops/dao/query"
	"solarops/deletion"
	"solarops/logutils"
	"solarops/metrics"
	"solarops/middleware"
	"solarops/service"
	"solarops/util"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.GetConfig()

	if err := query.InitDB(); err != nil {
		fmt.Println("err init:", err)
		os.Exit(1)
	}
	db := query.DB

	auditWriter := audit.NewWriter(db)
	dispatcher := deletion.NewDispatcher(
		deletion.NewGormStore(db),
		deletion.NewGormPolicySource(db),
		auditWriter,
	)
	recognizer := service.NewRecognizeClient(cfg)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(metrics.HTTPMetrics())
	metrics.Register(r)

	api := r.Group("/api", middleware.Auth(util.GetTokenMgr()))
	service.NewProjectHandler(db, auditWriter).Register(api)
	service.NewDocumentHandler(db, auditWriter).Register(api)
	service.NewMilestoneHandler(db, auditWriter).Register(api)
	service.NewInvestorHandler(db, auditWriter).Register(api)
	service.NewRecycleHandler(dispatcher, db).Register(api)
	service.NewAuditLogHandler(db).Register(api)
	service.NewDashboardHandler(db).Register(api)
	service.NewRecognizeHandler(db, auditWriter, recognizer, cfg.Recognize.MaxConcurrent).Register(api)

	adminAPI := r.Group("/api", middleware.Auth(util.GetTokenMgr()), middleware.RequireAdmin())
	service.NewProgressConfigHandler(db, auditWriter).Register(adminAPI)
	service.NewPolicyHandler(db, auditWriter).Register(adminAPI)
	service.NewAdminHandler(db, auditWriter).Register(adminAPI)

	if err := r.Run(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		logutils.Log.Fatal(err)
	}
}
