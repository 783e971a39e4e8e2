package repositories

import (
	"context"

	"github.com/eduzayn/lms-edunexia-sub001/internal/models"
	"gorm.io/gorm"
)

// SubmissionRepository interface for student submission operations
type SubmissionRepository interface {
	// Create assigns AttemptNumber inside the insert statement so
	// concurrent starts never collide on the unique index.
	Create(ctx context.Context, tx *gorm.DB, submission *models.StudentSubmission) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.StudentSubmission, error)
	GetByIDWithAnswers(ctx context.Context, tx *gorm.DB, id uint) (*models.StudentSubmission, error)
	Update(ctx context.Context, tx *gorm.DB, submission *models.StudentSubmission) error
	UpdateFields(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error

	// Query operations
	GetByAssessment(ctx context.Context, tx *gorm.DB, assessmentID uint, filters SubmissionFilters) ([]*models.StudentSubmission, int64, error)
	GetByStudent(ctx context.Context, tx *gorm.DB, assessmentID uint, studentID string) ([]*models.StudentSubmission, error)
	GetActiveSubmission(ctx context.Context, tx *gorm.DB, assessmentID uint, studentID string) (*models.StudentSubmission, error)
	CountByStudent(ctx context.Context, tx *gorm.DB, assessmentID uint, studentID string) (int64, error)

	// Grade-book export
	GetExportRows(ctx context.Context, tx *gorm.DB, assessmentID uint) ([]*models.SubmissionExportRow, error)
}

// AnswerRepository interface for submission answer operations
type AnswerRepository interface {
	// Upsert writes the answer for (submission, question), inserting
	// or replacing in a single statement.
	Upsert(ctx context.Context, tx *gorm.DB, answer *models.SubmissionAnswer) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.SubmissionAnswer, error)
	GetBySubmission(ctx context.Context, tx *gorm.DB, submissionID uint) ([]*models.SubmissionAnswer, error)
	GetBySubmissionAndQuestion(ctx context.Context, tx *gorm.DB, submissionID, questionID uint) (*models.SubmissionAnswer, error)

	// Grading writes
	UpdateGrade(ctx context.Context, tx *gorm.DB, grade AnswerGrade) error
	SaveGrades(ctx context.Context, tx *gorm.DB, answers []*models.SubmissionAnswer) error
	CountUngraded(ctx context.Context, tx *gorm.DB, submissionID uint) (int64, error)

	// Statistics
	GetGradingStats(ctx context.Context, tx *gorm.DB, assessmentID uint) (*GradingStats, error)
}
