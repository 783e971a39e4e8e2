package pkg

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/eduzayn/lms-edunexia-sub001/internal/config"
	"github.com/eduzayn/lms-edunexia-sub001/internal/models"
)

// InitDatabase opens the Postgres connection pool and, when enabled,
// runs migrations and seeds reference data.
func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if cfg.Environment == "development" {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if cfg.AutoMigrate {
		if err := migrate(db); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	if cfg.SeedReferenceData {
		if err := seedAssessmentTypes(db); err != nil {
			return nil, fmt.Errorf("failed to seed assessment types: %w", err)
		}
	}

	return db, nil
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.AssessmentType{},
		&models.Assessment{},
		&models.AssessmentQuestion{},
		&models.QuestionOption{},
		&models.StudentSubmission{},
		&models.SubmissionAnswer{},
	)
}

// seedAssessmentTypes inserts the built-in assessment types when they
// are missing. Existing rows are left untouched.
func seedAssessmentTypes(db *gorm.DB) error {
	types := []models.AssessmentType{
		{Name: "quiz", Description: strPtr("Short knowledge check"), Icon: strPtr("help-circle")},
		{Name: "exam", Description: strPtr("Formal timed examination"), Icon: strPtr("clipboard-check")},
		{Name: "assignment", Description: strPtr("Graded homework or task"), Icon: strPtr("file-text")},
		{Name: "project", Description: strPtr("Long-form project work"), Icon: strPtr("folder")},
	}

	for _, t := range types {
		var existing models.AssessmentType
		err := db.Where("name = ?", t.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := db.Create(&t).Error; err != nil {
			return err
		}
	}

	return nil
}

func strPtr(s string) *string {
	return &s
}
