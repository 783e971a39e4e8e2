package services

import (
	"context"
	"time"

	"github.com/eduzayn/lms-edunexia-sub001/internal/models"
	"github.com/eduzayn/lms-edunexia-sub001/internal/repositories"
	"github.com/eduzayn/lms-edunexia-sub001/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type CreateAssessmentRequest = validator.AssessmentCreateRequest
type UpdateAssessmentRequest = validator.AssessmentUpdateRequest
type CreateQuestionRequest = validator.QuestionCreateRequest
type UpdateQuestionRequest = validator.QuestionUpdateRequest
type CreateOptionRequest = validator.OptionCreateRequest
type UpdateOptionRequest = validator.OptionUpdateRequest
type ReorderQuestionsRequest = validator.ReorderQuestionsRequest
type UpdateSubmissionRequest = validator.SubmissionUpdateRequest
type SaveAnswerRequest = validator.SaveAnswerRequest
type GradeAnswerRequest = validator.GradeAnswerRequest

type UpdateStatusRequest struct {
	Status models.AssessmentStatus `json:"status" validate:"required,oneof=draft active archived"`
	Reason *string                 `json:"reason" validate:"omitempty,max=500"`
}

type AssessmentResponse struct {
	*models.Assessment
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
	CanTake   bool `json:"can_take"`
}

type AssessmentListResponse struct {
	Assessments []*AssessmentResponse `json:"assessments"`
	Total       int64                 `json:"total"`
	Page        int                   `json:"page"`
	Size        int                   `json:"size"`
}

type QuestionResponse struct {
	*models.AssessmentQuestion
	CanEdit bool `json:"can_edit"`
}

type SubmissionResponse struct {
	*models.StudentSubmission
	CanSubmit bool `json:"can_submit"`

	// Questions as presented to the student: correct answers and
	// option flags are stripped while the submission is in progress.
	Questions []*models.AssessmentQuestion `json:"questions,omitempty"`
}

type SubmissionListResponse struct {
	Submissions []*SubmissionResponse `json:"submissions"`
	Total       int64                 `json:"total"`
	Page        int                   `json:"page"`
	Size        int                   `json:"size"`
}

// ===== GRADING DTOs =====

type GradingResult struct {
	AnswerID      uint      `json:"answer_id"`
	QuestionID    uint      `json:"question_id"`
	QuestionType  string    `json:"question_type"`
	PointsAwarded float64   `json:"points_awarded"`
	MaxPoints     float64   `json:"max_points"`
	IsCorrect     *bool     `json:"is_correct"`
	NeedsReview   bool      `json:"needs_review"`
	Feedback      *string   `json:"feedback,omitempty"`
	GradedAt      time.Time `json:"graded_at"`
}

type SubmissionGradingResult struct {
	SubmissionID uint                    `json:"submission_id"`
	Status       models.SubmissionStatus `json:"status"`
	TotalPoints  float64                 `json:"total_points"`
	EarnedPoints float64                 `json:"earned_points"`
	Score        float64                 `json:"score"`
	Passed       bool                    `json:"passed"`
	NeedsReview  bool                    `json:"needs_review"`
	Answers      []GradingResult         `json:"answers"`
	GradedAt     time.Time               `json:"graded_at"`
}

// ===== SERVICE INTERFACES =====

type AssessmentService interface {
	// Reference data
	GetTypes(ctx context.Context) ([]*models.AssessmentType, error)

	// Core CRUD operations
	Create(ctx context.Context, req *CreateAssessmentRequest, creatorID string) (*AssessmentResponse, error)
	GetByID(ctx context.Context, id uint, userID string) (*AssessmentResponse, error)
	GetByIDWithDetails(ctx context.Context, id uint, userID string) (*AssessmentResponse, error)
	Update(ctx context.Context, id uint, req *UpdateAssessmentRequest, userID string) (*AssessmentResponse, error)
	Delete(ctx context.Context, id uint, userID string) error

	// List operations
	List(ctx context.Context, filters repositories.AssessmentFilters, userID string) (*AssessmentListResponse, error)
	GetByCourse(ctx context.Context, courseID uint, filters repositories.AssessmentFilters, userID string) (*AssessmentListResponse, error)
	GetByCreator(ctx context.Context, creatorID string, filters repositories.AssessmentFilters) (*AssessmentListResponse, error)

	// Status management
	UpdateStatus(ctx context.Context, id uint, req *UpdateStatusRequest, userID string) error
	Publish(ctx context.Context, id uint, userID string) error
	Archive(ctx context.Context, id uint, userID string) error

	// Statistics
	GetStats(ctx context.Context, id uint, userID string) (*repositories.AssessmentStats, error)
	GetCreatorStats(ctx context.Context, creatorID string) (*repositories.CreatorStats, error)

	// Permission checks
	CanAccess(ctx context.Context, assessmentID uint, userID string) (bool, error)
	CanEdit(ctx context.Context, assessmentID uint, userID string) (bool, error)
	CanDelete(ctx context.Context, assessmentID uint, userID string) (bool, error)
	CanTake(ctx context.Context, assessmentID uint, userID string) (bool, error)
}

type QuestionService interface {
	// Question operations
	Create(ctx context.Context, assessmentID uint, req *CreateQuestionRequest, userID string) (*QuestionResponse, error)
	GetByID(ctx context.Context, id uint, userID string) (*QuestionResponse, error)
	Update(ctx context.Context, id uint, req *UpdateQuestionRequest, userID string) (*QuestionResponse, error)
	Delete(ctx context.Context, id uint, userID string) error
	GetByAssessment(ctx context.Context, assessmentID uint, userID string) ([]*QuestionResponse, error)
	Reorder(ctx context.Context, assessmentID uint, req *ReorderQuestionsRequest, userID string) error

	// Option operations
	AddOption(ctx context.Context, questionID uint, req *CreateOptionRequest, userID string) (*models.QuestionOption, error)
	UpdateOption(ctx context.Context, optionID uint, req *UpdateOptionRequest, userID string) (*models.QuestionOption, error)
	DeleteOption(ctx context.Context, optionID uint, userID string) error
	GetOptions(ctx context.Context, questionID uint, userID string) ([]*models.QuestionOption, error)
}

type SubmissionService interface {
	// Lifecycle
	Start(ctx context.Context, assessmentID uint, studentID string) (*SubmissionResponse, error)
	Update(ctx context.Context, id uint, req *UpdateSubmissionRequest, userID string) (*SubmissionResponse, error)
	SaveAnswer(ctx context.Context, submissionID uint, req *SaveAnswerRequest, studentID string) (*models.SubmissionAnswer, error)
	Submit(ctx context.Context, id uint, studentID string) (*SubmissionGradingResult, error)

	// Get operations
	GetByID(ctx context.Context, id uint, userID string) (*SubmissionResponse, error)
	GetByIDWithAnswers(ctx context.Context, id uint, userID string) (*SubmissionResponse, error)
	GetByAssessment(ctx context.Context, assessmentID uint, filters repositories.SubmissionFilters, userID string) (*SubmissionListResponse, error)
	GetMySubmissions(ctx context.Context, assessmentID uint, studentID string) ([]*SubmissionResponse, error)
}

type GradingService interface {
	// Auto grading of a submitted attempt
	GradeSubmission(ctx context.Context, submissionID uint, userID string) (*SubmissionGradingResult, error)

	// Manual grading of essay and code answers
	GradeAnswer(ctx context.Context, answerID uint, req *GradeAnswerRequest, graderID string) (*GradingResult, error)

	// Statistics
	GetGradingOverview(ctx context.Context, assessmentID uint, userID string) (*repositories.GradingStats, error)
}

type ReportService interface {
	// ExportSubmissions renders the grade book of an assessment as an
	// xlsx workbook.
	ExportSubmissions(ctx context.Context, assessmentID uint, userID string) ([]byte, string, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Assessment() AssessmentService
	Question() QuestionService
	Submission() SubmissionService
	Grading() GradingService
	Report() ReportService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
