package validator

import (
	"encoding/json"
	"time"

	"github.com/eduzayn/lms-edunexia-sub001/internal/models"
)

// AssessmentCreateRequest creates an assessment. Every field is
// optional; the service fills documented defaults for missing values.
type AssessmentCreateRequest struct {
	Title            *string    `json:"title" validate:"omitempty,assessment_title"`
	Description      *string    `json:"description" validate:"omitempty,max=2000"`
	Instructions     *string    `json:"instructions" validate:"omitempty,max=5000"`
	AssessmentTypeID *uint      `json:"assessment_type_id"`
	CourseID         *uint      `json:"course_id"`
	ModuleID         *uint      `json:"module_id"`
	Points           *int       `json:"points" validate:"omitempty,min=0,max=1000"`
	PassingScore     *int       `json:"passing_score" validate:"omitempty,passing_score"`
	AttemptsAllowed  *int       `json:"attempts_allowed" validate:"omitempty,min=1,max=10"`
	TimeLimitMinutes *int       `json:"time_limit_minutes" validate:"omitempty,min=1,max=600"`
	ShuffleQuestions *bool      `json:"shuffle_questions"`
	ShowResults      *bool      `json:"show_results"`
	AvailableFrom    *time.Time `json:"available_from"`
	AvailableUntil   *time.Time `json:"available_until"`
}

// AssessmentUpdateRequest updates an assessment. Only provided fields
// are written.
type AssessmentUpdateRequest struct {
	Title            *string                  `json:"title" validate:"omitempty,assessment_title"`
	Description      *string                  `json:"description" validate:"omitempty,max=2000"`
	Instructions     *string                  `json:"instructions" validate:"omitempty,max=5000"`
	AssessmentTypeID *uint                    `json:"assessment_type_id"`
	CourseID         *uint                    `json:"course_id"`
	ModuleID         *uint                    `json:"module_id"`
	Points           *int                     `json:"points" validate:"omitempty,min=0,max=1000"`
	PassingScore     *int                     `json:"passing_score" validate:"omitempty,passing_score"`
	AttemptsAllowed  *int                     `json:"attempts_allowed" validate:"omitempty,min=1,max=10"`
	TimeLimitMinutes *int                     `json:"time_limit_minutes" validate:"omitempty,min=1,max=600"`
	ShuffleQuestions *bool                    `json:"shuffle_questions"`
	ShowResults      *bool                    `json:"show_results"`
	AvailableFrom    *time.Time               `json:"available_from"`
	AvailableUntil   *time.Time               `json:"available_until"`
	Status           *models.AssessmentStatus `json:"status" validate:"omitempty,oneof=draft active archived"`
}

// QuestionCreateRequest adds a question to an assessment. Order is
// assigned server-side (max existing + 1).
type QuestionCreateRequest struct {
	QuestionText  string                `json:"question_text" validate:"required,min=1,max=5000"`
	QuestionType  *models.QuestionType  `json:"question_type" validate:"omitempty,question_type"`
	Points        *int                  `json:"points" validate:"omitempty,points_range"`
	CorrectAnswer *string               `json:"correct_answer"`
	Feedback      *string               `json:"feedback" validate:"omitempty,max=2000"`
	Settings      json.RawMessage       `json:"settings"`
	Options       []OptionCreateRequest `json:"options" validate:"omitempty,max=20,dive"`
}

type QuestionUpdateRequest struct {
	QuestionText  *string              `json:"question_text" validate:"omitempty,min=1,max=5000"`
	QuestionType  *models.QuestionType `json:"question_type" validate:"omitempty,question_type"`
	Points        *int                 `json:"points" validate:"omitempty,points_range"`
	Order         *int                 `json:"order" validate:"omitempty,min=1"`
	CorrectAnswer *string              `json:"correct_answer"`
	Feedback      *string              `json:"feedback" validate:"omitempty,max=2000"`
	Settings      json.RawMessage      `json:"settings"`
}

// OptionCreateRequest adds an option to a question. OptionText falls
// back to "New Option" and IsCorrect to false.
type OptionCreateRequest struct {
	OptionText *string `json:"option_text" validate:"omitempty,min=1,max=2000"`
	IsCorrect  *bool   `json:"is_correct"`
}

type OptionUpdateRequest struct {
	OptionText *string `json:"option_text" validate:"omitempty,min=1,max=2000"`
	IsCorrect  *bool   `json:"is_correct"`
	Order      *int    `json:"order" validate:"omitempty,min=1"`
}

// QuestionOrderItem is one entry of a reorder request.
type QuestionOrderItem struct {
	QuestionID uint `json:"question_id" validate:"required"`
	Order      int  `json:"order" validate:"required,min=1"`
}

type ReorderQuestionsRequest struct {
	Orders []QuestionOrderItem `json:"orders" validate:"required,min=1,dive"`
}

// SubmissionUpdateRequest patches a submission. Only provided fields
// are written.
type SubmissionUpdateRequest struct {
	Status           *models.SubmissionStatus `json:"status" validate:"omitempty,submission_status"`
	TimeSpentSeconds *int                     `json:"time_spent_seconds" validate:"omitempty,min=0"`
	SubmittedAt      *time.Time               `json:"submitted_at"`
}

// SaveAnswerRequest upserts the answer for one question of an
// in-progress submission.
type SaveAnswerRequest struct {
	QuestionID uint            `json:"question_id" validate:"required"`
	AnswerText *string         `json:"answer_text"`
	AnswerData json.RawMessage `json:"answer_data"`
}

// GradeAnswerRequest is a manual grade for an essay or code answer.
type GradeAnswerRequest struct {
	PointsAwarded float64 `json:"points_awarded" validate:"min=0"`
	Feedback      *string `json:"feedback" validate:"omitempty,max=2000"`
}
