package repositories

import (
	"context"

	"github.com/eduzayn/lms-edunexia-sub001/internal/models"
	"gorm.io/gorm"
)

// QuestionRepository interface for assessment question operations
type QuestionRepository interface {
	// Basic CRUD operations. Create assigns Order as the current
	// maximum for the assessment plus one, inside the insert.
	Create(ctx context.Context, tx *gorm.DB, question *models.AssessmentQuestion) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.AssessmentQuestion, error)
	GetByIDWithOptions(ctx context.Context, tx *gorm.DB, id uint) (*models.AssessmentQuestion, error)
	Update(ctx context.Context, tx *gorm.DB, question *models.AssessmentQuestion) error
	UpdateFields(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// Query operations
	GetByAssessment(ctx context.Context, tx *gorm.DB, assessmentID uint) ([]*models.AssessmentQuestion, error)
	CountByAssessment(ctx context.Context, tx *gorm.DB, assessmentID uint) (int64, error)
	GetTotalPoints(ctx context.Context, tx *gorm.DB, assessmentID uint) (int, error)

	// Ordering
	UpdateOrders(ctx context.Context, tx *gorm.DB, assessmentID uint, orders []QuestionOrder) error
}

// OptionRepository interface for question option operations
type OptionRepository interface {
	// Basic CRUD operations. Create assigns Order the same way
	// QuestionRepository.Create does.
	Create(ctx context.Context, tx *gorm.DB, option *models.QuestionOption) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.QuestionOption, error)
	Update(ctx context.Context, tx *gorm.DB, option *models.QuestionOption) error
	UpdateFields(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// Query operations
	GetByQuestion(ctx context.Context, tx *gorm.DB, questionID uint) ([]*models.QuestionOption, error)
	GetCorrectOption(ctx context.Context, tx *gorm.DB, questionID uint) (*models.QuestionOption, error)
}
