// Migration entrypoint: creates the schema and seeds the default
// deletion policies, milestone catalog and progress configuration.
package main

import (
	"fmt"

	"solarops/config"
	"solarops/dao/model"
	"solarops/dao/query"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func connectPostgres() *gorm.DB {
	dsn := query.BuildDSN(config.GetConfig())
	db, err := gorm.Open(postgres.Open(dsn))
	if err != nil {
		panic(fmt.Errorf("connect to postgres: %w", err))
	}
	return db
}

func main() {
	db := connectPostgres()

	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			// add the OCR text column to documents
			ID: "2026041801",
			Migrate: func(tx *gorm.DB) error {
				// it's a good practice to copy the struct inside the function,
				// so side effects are prevented if the original struct changes during the time
				type Document struct {
					OCRText string `gorm:"type:text;comment:辨識文字"`
				}
				return tx.Migrator().AddColumn(&Document{}, "OCRText")
			},
			Rollback: func(tx *gorm.DB) error {
				type Document struct {
					OCRText string
				}
				return tx.Migrator().DropColumn(&Document{}, "OCRText")
			},
		},
	})

	m.InitSchema(func(tx *gorm.DB) error {
		err := tx.AutoMigrate(
			&model.User{},
			&model.Investor{},
			&model.Partner{},
			&model.Project{},
			&model.Document{},
			&model.ProgressMilestone{},
			&model.ProjectMilestone{},
			&model.ProgressConfig{},
			&model.DeletionPolicy{},
			&model.AuditLogEntry{},
		)
		if err != nil {
			return err
		}
		if err := seedPolicies(tx); err != nil {
			return err
		}
		if err := seedMilestones(tx); err != nil {
			return err
		}
		return seedProgressConfig(tx)
	})

	if err := m.Migrate(); err != nil {
		panic(fmt.Errorf("could not migrate: %w", err))
	}
}

func seedPolicies(tx *gorm.DB) error {
	policies := []model.DeletionPolicy{
		{Table: model.TableProjects, Mode: model.ModeSoftDelete, RetentionDays: 90, RequireReason: true, RequireConfirm: true},
		{Table: model.TableDocuments, Mode: model.ModeSoftDelete, RetentionDays: 30, RequireReason: true, AllowAutoPurge: true},
		{Table: model.TableInvestors, Mode: model.ModeArchive, RetentionDays: 365},
		{Table: model.TablePartners, Mode: model.ModeArchive, RetentionDays: 365},
		{Table: model.TableMilestones, Mode: model.ModeDisableOnly, RetentionDays: 0},
	}
	for i := range policies {
		if res := tx.Create(&policies[i]); res.Error != nil {
			return res.Error
		}
	}
	return nil
}

func seedMilestones(tx *gorm.DB) error {
	type seed struct {
		name     string
		track    model.Track
		weight   int
		required bool
	}
	seeds := []seed{
		{"土地使用同意", model.TrackAdmin, 15, true},
		{"電業籌設許可", model.TrackAdmin, 25, true},
		{"雜項執照", model.TrackAdmin, 20, false},
		{"躉購合約簽訂", model.TrackAdmin, 25, true},
		{"電業執照", model.TrackAdmin, 15, true},
		{"結構工程完工", model.TrackEngineering, 30, true},
		{"模組安裝完成", model.TrackEngineering, 30, true},
		{"機電工程完工", model.TrackEngineering, 25, true},
		{"併網試運轉", model.TrackEngineering, 15, true},
	}
	for i, s := range seeds {
		m := model.ProgressMilestone{
			Name:       s.name,
			Track:      s.track,
			Weight:     s.weight,
			IsRequired: s.required,
			SortOrder:  i,
		}
		m.IsActive = true
		if res := tx.Create(&m); res.Error != nil {
			return res.Error
		}
	}
	return nil
}

func seedProgressConfig(tx *gorm.DB) error {
	cfg := model.ProgressConfig{
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
	return tx.Create(&cfg).Error
}
