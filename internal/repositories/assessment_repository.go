package repositories

import (
	"context"

	"github.com/eduzayn/lms-edunexia-sub001/internal/models"
	"gorm.io/gorm"
)

// AssessmentTypeRepository interface for assessment type reference data
type AssessmentTypeRepository interface {
	List(ctx context.Context, tx *gorm.DB) ([]*models.AssessmentType, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.AssessmentType, error)
	GetByName(ctx context.Context, tx *gorm.DB, name string) (*models.AssessmentType, error)
	ExistsByID(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
}

// AssessmentRepository interface for assessment-specific operations
type AssessmentRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, assessment *models.Assessment) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Assessment, error)
	GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Assessment, error) // Includes ordered questions and options
	Update(ctx context.Context, tx *gorm.DB, assessment *models.Assessment) error
	UpdateFields(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters AssessmentFilters) ([]*models.Assessment, int64, error)
	GetByCourse(ctx context.Context, tx *gorm.DB, courseID uint, filters AssessmentFilters) ([]*models.Assessment, int64, error)
	GetByCreator(ctx context.Context, tx *gorm.DB, creatorID string, filters AssessmentFilters) ([]*models.Assessment, int64, error)

	// Status management
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.AssessmentStatus) error

	// Validation and checks
	HasSubmissions(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
	IsOwner(ctx context.Context, tx *gorm.DB, id uint, userID string) (bool, error)

	// Statistics
	GetStats(ctx context.Context, tx *gorm.DB, id uint) (*AssessmentStats, error)
	GetCreatorStats(ctx context.Context, tx *gorm.DB, creatorID string) (*CreatorStats, error)
}
